package wspr

import (
	"encoding/binary"
	"math"
)

/*
 * FSK synthesiser (C3). Tone frequency for symbol i is
 * f_c + offset + symbol_i * tone spacing, with LSB mode reversing spectral
 * orientation by substituting 3-symbol_i. See spec.md §4.3.
 *
 * Phase is carried continuously across symbol boundaries rather than reset
 * at each boundary; spec.md §9 notes both choices satisfy the round-trip
 * test, and continuous phase avoids audible clicks and spectral spreading
 * at the symbol boundaries (see DESIGN.md).
 */

// toneFrequency returns the tone frequency in Hz for a given symbol value,
// after applying offset and (if lsb) spectral inversion.
func toneFrequency(symbol uint8, offsetHz int, lsb bool) float64 {
	s := symbol
	if lsb {
		s = 3 - symbol
	}
	return CenterFreqHz + float64(offsetHz) + float64(s)*ToneSpacingHz
}

// EncodeFrequencies implements the "encode-to-frequencies" external
// operation (spec.md §6): 162 tone frequencies in centihertz (Hz*100).
func EncodeFrequencies(msg Message, opts EncodeOptions) ([NumSymbols]int64, Message, error) {
	symbols, snapped, err := EncodeSymbols(msg)
	if err != nil {
		return [NumSymbols]int64{}, Message{}, err
	}

	var freqs [NumSymbols]int64
	for i, s := range symbols {
		hz := toneFrequency(s, opts.OffsetHz, opts.LSB)
		freqs[i] = int64(math.Round(hz * 100))
	}
	return freqs, snapped, nil
}

// EncodePCM implements the "encode" external operation (spec.md §6):
// renders the 162-symbol waveform as little-endian 16-bit PCM at 12 kHz,
// exactly 2*162*8192 = 2,654,208 bytes.
func EncodePCM(msg Message, opts EncodeOptions) ([]byte, Message, error) {
	symbols, snapped, err := EncodeSymbols(msg)
	if err != nil {
		return nil, Message{}, err
	}

	pcm := make([]byte, EncodeBytes)
	phase := 0.0
	idx := 0
	for _, s := range symbols {
		freq := toneFrequency(s, opts.OffsetHz, opts.LSB)
		phaseIncr := 2 * math.Pi * freq / SampleRate
		for n := 0; n < SamplesPerSymbol; n++ {
			sample := int16(Amplitude * math.Sin(phase))
			binary.LittleEndian.PutUint16(pcm[idx:idx+2], uint16(sample))
			idx += 2
			phase += phaseIncr
			if phase > 2*math.Pi {
				phase -= 2 * math.Pi
			}
		}
	}
	return pcm, snapped, nil
}
