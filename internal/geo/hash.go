package geo

import "strings"

// CallsignHash computes the 15-bit Jenkins-style one-at-a-time hash of an
// uppercase callsign used by C8 to resolve Type 2/3 (compound callsign /
// extended grid) decodes against previously seen Type 1 decodes. The
// initial accumulator value is 146, per spec.md §4.8/§4.9.
func CallsignHash(call string) uint16 {
	call = strings.ToUpper(strings.TrimSpace(call))

	var hash uint32 = 146
	for i := 0; i < len(call); i++ {
		hash += uint32(call[i])
		hash += hash << 10
		hash ^= hash >> 6
	}
	hash += hash << 3
	hash ^= hash >> 11
	hash += hash << 15

	return uint16(hash & 0x7FFF)
}
