package wspr

import (
	"fmt"
	"strings"
)

/*
 * Character/radix packer (C1) and its inverse (part of C8).
 * Packing follows spec.md §4.1: a canonical 6-character callsign layout
 * [c0][c1][d][s0][s1][s2] packed by mixed radix into 28 bits, and a grid+
 * power field packed into 22 bits via a 180-radix grid-square index.
 */

// charAlphanumSpace maps the 37-symbol alphabet {0-9, A-Z, space} = 0..36.
func charAlphanumSpace(c byte) (int, error) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), nil
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, nil
	case c == ' ':
		return 36, nil
	}
	return 0, fmt.Errorf("%w: character %q outside callsign alphabet", ErrInvalidInput, c)
}

func unAlphanumSpace(n int) byte {
	switch {
	case n < 10:
		return byte('0' + n)
	case n < 36:
		return byte('A' + (n - 10))
	default:
		return ' '
	}
}

// charDigit maps '0'..'9' to 0..9.
func charDigit(c byte) (int, error) {
	if c < '0' || c > '9' {
		return 0, fmt.Errorf("%w: expected digit, got %q", ErrInvalidInput, c)
	}
	return int(c - '0'), nil
}

// charLetterSpace maps the 27-symbol suffix alphabet {A-Z, space} = 0..26,
// with space as symbol 26 (distinct from the 36 used in charAlphanumSpace —
// see spec.md §9 "callsign alphabet ambiguity").
func charLetterSpace(c byte) (int, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), nil
	case c == ' ':
		return 26, nil
	}
	return 0, fmt.Errorf("%w: character %q outside suffix alphabet", ErrInvalidInput, c)
}

func unLetterSpace(n int) byte {
	if n < 26 {
		return byte('A' + n)
	}
	return ' '
}

// canonicalCallsign left-pads call so its digit (which must sit at index 1
// or 2 of the original string) lands at index 2 of a 6-character field, then
// right-pads with spaces to exactly 6 characters.
func canonicalCallsign(call string) (string, error) {
	call = strings.ToUpper(strings.TrimSpace(call))
	if len(call) == 0 || len(call) > 6 {
		return "", fmt.Errorf("%w: callsign %q must be 1-6 characters", ErrInvalidInput, call)
	}

	digitPos := -1
	for i := 0; i < len(call); i++ {
		if call[i] >= '0' && call[i] <= '9' {
			digitPos = i
			break
		}
	}
	if digitPos != 1 && digitPos != 2 {
		return "", fmt.Errorf("%w: callsign %q has no digit at position 1 or 2", ErrInvalidInput, call)
	}

	padded := call
	if digitPos == 1 {
		padded = " " + call
	}
	for len(padded) < 6 {
		padded += " "
	}
	if len(padded) != 6 {
		return "", fmt.Errorf("%w: callsign %q does not fit the 6-character field", ErrInvalidInput, call)
	}
	return padded, nil
}

// packCallsign implements the mixed-radix packing of spec.md §4.1, returning
// a value that fits in 28 bits.
func packCallsign(call string) (uint32, error) {
	padded, err := canonicalCallsign(call)
	if err != nil {
		return 0, err
	}

	c0, err := charAlphanumSpace(padded[0])
	if err != nil {
		return 0, err
	}
	c1, err := charAlphanumSpace(padded[1])
	if err != nil {
		return 0, err
	}
	d, err := charDigit(padded[2])
	if err != nil {
		return 0, err
	}
	s0, err := charLetterSpace(padded[3])
	if err != nil {
		return 0, err
	}
	s1, err := charLetterSpace(padded[4])
	if err != nil {
		return 0, err
	}
	s2, err := charLetterSpace(padded[5])
	if err != nil {
		return 0, err
	}

	n := ((((c0*36+c1)*10+d)*27+s0)*27+s1)*27 + s2
	return uint32(n), nil
}

// unpackCallsign inverts packCallsign, trimming the padding spaces.
func unpackCallsign(n uint32) string {
	v := int(n)
	s2 := v % 27
	v /= 27
	s1 := v % 27
	v /= 27
	s0 := v % 27
	v /= 27
	d := v % 10
	v /= 10
	c1 := v % 36
	v /= 36
	c0 := v

	buf := [6]byte{
		unAlphanumSpace(c0),
		unAlphanumSpace(c1),
		byte('0' + d),
		unLetterSpace(s0),
		unLetterSpace(s1),
		unLetterSpace(s2),
	}
	return strings.TrimSpace(string(buf[:]))
}

// snapPower applies the power-correction table, snapping p to the nearest
// value of the form n where n%10 in {0,3,7}. Idempotent: applying it twice
// yields the same result as once (spec.md §8).
func snapPower(p int) int {
	idx := ((p % 10) + 10) % 10
	return p + powerCorrection[idx]
}

// packGridPower implements spec.md §4.1's grid+power packing, returning a
// value that fits in 22 bits, and the power value after snapping.
func packGridPower(grid string, power int) (uint32, int, error) {
	grid = strings.ToUpper(grid)
	if len(grid) != 4 {
		return 0, 0, fmt.Errorf("%w: grid %q must be exactly 4 characters", ErrInvalidInput, grid)
	}
	if grid[0] < 'A' || grid[0] > 'R' || grid[1] < 'A' || grid[1] > 'R' {
		return 0, 0, fmt.Errorf("%w: grid %q field letters must be A-R", ErrInvalidInput, grid)
	}
	if grid[2] < '0' || grid[2] > '9' || grid[3] < '0' || grid[3] > '9' {
		return 0, 0, fmt.Errorf("%w: grid %q square digits must be 0-9", ErrInvalidInput, grid)
	}
	if power < 0 || power > 60 {
		return 0, 0, fmt.Errorf("%w: power %d dBm must be in [0,60]", ErrInvalidInput, power)
	}

	field1 := int(grid[0] - 'A')
	field2 := int(grid[1] - 'A')
	sq1 := int(grid[2] - '0')
	sq2 := int(grid[3] - '0')

	m := 180*(179-10*field1-sq1) + 10*field2 + sq2
	corrected := snapPower(power)

	ng := 128*m + corrected + 64
	return uint32(ng), corrected, nil
}

// unpackGridPower inverts packGridPower. ng is the 22-bit grid+power field.
func unpackGridPower(ng uint32) (grid string, power int) {
	m := int(ng) >> 7
	powerField := int(ng) & 0x7F
	power = powerField - 64

	a := m / 180
	rem := m % 180
	field2 := rem / 10
	sq2 := rem % 10
	field1 := (179 - a) / 10
	sq1 := (179 - a) % 10

	buf := [4]byte{
		byte('A' + field1),
		byte('A' + field2),
		byte('0' + sq1),
		byte('0' + sq2),
	}
	return string(buf[:]), power
}

// Pack implements C1: it validates and packs msg into an 11-byte (88-bit)
// buffer with the 50 payload bits left-aligned and the remaining 38 bits
// zeroed (the convolutional-encoder flush tail plus 7 unused bits).
func Pack(msg Message) ([BufferBytes]byte, Message, error) {
	var buf [BufferBytes]byte

	callsignBits, err := packCallsign(msg.Callsign)
	if err != nil {
		return buf, Message{}, err
	}
	ngBits, correctedPower, err := packGridPower(msg.Grid, msg.PowerDBm)
	if err != nil {
		return buf, Message{}, err
	}

	writeBits(buf[:], 0, 28, uint64(callsignBits))
	writeBits(buf[:], 28, 22, uint64(ngBits))

	snapped := Message{Callsign: strings.ToUpper(strings.TrimSpace(msg.Callsign)), Grid: strings.ToUpper(msg.Grid), PowerDBm: correctedPower}
	return buf, snapped, nil
}

// Unpack implements the message-reconstruction half of C8: given the 50
// payload bits (already recovered by C7), reconstruct the Type-1 message.
func Unpack(buf [BufferBytes]byte) (Message, MessageType) {
	var callsignBits, ngBits uint64
	for i := 0; i < 28; i++ {
		callsignBits = callsignBits<<1 | uint64(readBit(buf[:], i))
	}
	for i := 0; i < 22; i++ {
		ngBits = ngBits<<1 | uint64(readBit(buf[:], 28+i))
	}

	grid, power := unpackGridPower(uint32(ngBits))
	call := unpackCallsign(uint32(callsignBits))

	if power < 0 || power > 60 || snapPower(power) != power {
		return Message{Callsign: call, Grid: grid, PowerDBm: power}, TypeCompound
	}
	return Message{Callsign: call, Grid: grid, PowerDBm: power}, TypeStandard
}
