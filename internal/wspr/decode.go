package wspr

import (
	"encoding/binary"
	"fmt"
	"sort"
)

/*
 * Decode orchestration: PCM bytes -> C4 -> C5 -> C6 -> C7 -> C8 -> []Decode.
 * Single-threaded and synchronous per spec.md §5: one call in, one result
 * slice out, no goroutines or suspension points inside.
 */

// samplesFromPCM converts little-endian signed 16-bit mono PCM into the
// float64 samples the spectrogram front-end operates on.
func samplesFromPCM(pcm []byte) []float64 {
	n := len(pcm) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i : 2*i+2]))
		out[i] = float64(v)
	}
	return out
}

// Decode consumes a PCM byte buffer (>= 114 s of little-endian 16-bit mono
// 12 kHz audio) and returns the list of recovered WSPR messages, sorted by
// sync score descending then frequency ascending, de-duplicated.
func Decode(pcm []byte, dialFreqMHz float64, lsb bool, hashTable HashTable) ([]Decode, error) {
	if len(pcm) < 2*DecodeWindowSamples {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrInsufficientData, 2*DecodeWindowSamples, len(pcm))
	}
	window := pcm[:2*DecodeWindowSamples]
	samples := samplesFromPCM(window)

	sg := BuildSpectrogram(samples)
	candidates := FindCandidates(sg, lsb)

	var results []Decode
	for _, cand := range candidates {
		metrics := ExtractMetrics(sg, cand, lsb)
		buf, ok := FanoDecode(metrics)
		if !ok {
			continue
		}

		msg, msgType := Unpack(buf)
		resolved := resolveCallsign(msg, msgType, hashTable)

		symbols := overlaySync(interleave(convolutionalEncode(buf)))
		snr := CalculateSNR(sg, cand, symbols, lsb)

		results = append(results, Decode{
			SNRDb:          snr,
			SyncScore:      cand.SyncScore,
			FreqOffsetHz:   cand.FreqOffsetHz,
			TimeOffsetS:    cand.TimeOffsetS,
			DriftHzPerS:    cand.DriftHzPerS,
			MessageText:    formatMessage(resolved),
			Callsign:       resolved.Callsign,
			Grid:           resolved.Grid,
			PowerDBm:       resolved.PowerDBm,
			Type:           msgType,
			DialFreqMHz:    dialFreqMHz,
			TxFrequencyMHz: dialFreqMHz + (CenterFreqHz+cand.FreqOffsetHz)/1e6,
		})
	}

	results = dedupe(results)
	sortDecodes(results)
	return results, nil
}

// resolveCallsign applies C8's hash-table consultation for Type 2/3
// decodes; Type 1 decodes are inserted into the table for future lookups.
func resolveCallsign(msg Message, msgType MessageType, hashTable HashTable) Message {
	if hashTable == nil {
		return msg
	}
	switch msgType {
	case TypeStandard:
		hashTable.Insert(hashOf(msg.Callsign), msg.Callsign)
		return msg
	default:
		if call, ok := hashTable.Lookup(hashOf(msg.Callsign)); ok {
			msg.Callsign = call
		} else {
			msg.Callsign = UnresolvedCallsign
		}
		return msg
	}
}

func formatMessage(msg Message) string {
	return fmt.Sprintf("%s %s %d", msg.Callsign, msg.Grid, msg.PowerDBm)
}

// dedupe keeps the first of any set of decodes sharing (callsign, grid,
// power, SNR-to-0.1dB) — spec.md §5's ordering guarantee.
func dedupe(in []Decode) []Decode {
	type key struct {
		call  string
		grid  string
		power int
		snr10 int
	}
	seen := make(map[key]bool)
	var out []Decode
	for _, d := range in {
		k := key{d.Callsign, d.Grid, d.PowerDBm, int(d.SNRDb * 10)}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

func sortDecodes(d []Decode) {
	sort.Slice(d, func(i, j int) bool {
		if d[i].SyncScore != d[j].SyncScore {
			return d[i].SyncScore > d[j].SyncScore
		}
		return d[i].FreqOffsetHz < d[j].FreqOffsetHz
	})
}
