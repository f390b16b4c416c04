package wspr

import (
	"sort"
)

/*
 * Candidate search (C5). For every (frequency, time, drift) triple on the
 * search grid, score how well the spectrogram's power pattern matches the
 * expected sync-tone/non-sync-tone split implied by the fixed sync vector,
 * then keep the strongest candidates. Grounded on the teacher's FT8
 * sync-correlation search (decoder.go's coarse-search loop), generalised
 * from Costas-array correlation to WSPR's per-symbol sync-bit correlation.
 */

// ScoreThresholdFactor is the minimum sync-correlation score retained as a
// candidate, expressed as a multiple of the spectrogram's median bin power
// (spec.md gives no exact threshold value; scaling by the noise floor keeps
// the search selective across different input signal levels — see
// DESIGN.md).
const ScoreThresholdFactor = 3.0

// noiseFloor estimates the spectrogram's median bin power, used to scale
// the candidate-search threshold to the actual signal level.
func noiseFloor(sg *Spectrogram) float64 {
	if sg.NumFrames == 0 || sg.NumBins == 0 {
		return 0
	}
	samples := make([]float64, 0, sg.NumFrames*sg.NumBins)
	for _, row := range sg.Power {
		samples = append(samples, row...)
	}
	sort.Float64s(samples)
	return samples[len(samples)/2]
}

// tonePairs returns the two tone indices that signal sync bit 1 ("hi") and
// sync bit 0 ("lo") under USB orientation, or their swap under LSB
// orientation (spec.md §4.3: LSB substitutes 3-symbol before synthesis, so
// the receiver must undo the same substitution when interpreting tones).
func tonePairs(lsb bool) (hi, lo [2]float64) {
	if !lsb {
		return [2]float64{1, 3}, [2]float64{0, 2}
	}
	return [2]float64{0, 2}, [2]float64{1, 3}
}

// parityTones returns, for the sync-1 ("hi") and sync-0 ("lo") symbol
// groups, the pair of *transmitted* tone indices in (parity=0, parity=1)
// order. Under LSB orientation the transmitted tone is 3-symbol, which both
// swaps the hi/lo group membership (handled by tonePairs) and reverses
// which tone within a group carries parity 0 versus parity 1.
func parityTones(lsb bool) (hi, lo [2]float64) {
	if !lsb {
		return [2]float64{1, 3}, [2]float64{0, 2}
	}
	return [2]float64{2, 0}, [2]float64{3, 1}
}

// transmittedTone returns the actual tone index (0-3) radiated for a given
// encoded symbol value under the given spectral orientation.
func transmittedTone(symbol uint8, lsb bool) float64 {
	if lsb {
		return float64(3 - symbol)
	}
	return float64(symbol)
}

func syncScore(sg *Spectrogram, freq0, t0, drift float64, lsb bool) float64 {
	hiTones, loTones := tonePairs(lsb)

	var score float64
	for i := 0; i < NumSymbols; i++ {
		t := t0 + float64(i)*SymbolPeriodSec
		base := freq0 + drift*float64(i)*SymbolPeriodSec

		hi := sg.powerAt(base+hiTones[0]*ToneSpacingHz, t) + sg.powerAt(base+hiTones[1]*ToneSpacingHz, t)
		lo := sg.powerAt(base+loTones[0]*ToneSpacingHz, t) + sg.powerAt(base+loTones[1]*ToneSpacingHz, t)

		if syncVector[i] == 1 {
			score += hi - lo
		} else {
			score += lo - hi
		}
	}
	return score
}

// FindCandidates implements C5: scans the search grid described in
// spec.md §4.5 and returns up to MaxCandidates candidates, sorted by sync
// score descending then by |freq offset| ascending (ties broken per §4.5).
func FindCandidates(sg *Spectrogram, lsb bool) []Candidate {
	threshold := ScoreThresholdFactor * float64(NumSymbols) * noiseFloor(sg)

	var candidates []Candidate

	for f := -FreqSearchHalfWidthHz; f <= FreqSearchHalfWidthHz; f += FreqSearchStepHz {
		freq0 := CenterFreqHz + f
		for t := TimeSearchMinSec; t <= TimeSearchMaxSec; t += TimeSearchStepSec {
			for d := -DriftSearchMaxHzPerS; d <= DriftSearchMaxHzPerS; d += DriftSearchStepHzPerS {
				score := syncScore(sg, freq0, t, d, lsb)
				if score > threshold {
					candidates = append(candidates, Candidate{
						FreqOffsetHz: f,
						TimeOffsetS:  t,
						DriftHzPerS:  d,
						SyncScore:    score,
					})
				}
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].SyncScore != candidates[j].SyncScore {
			return candidates[i].SyncScore > candidates[j].SyncScore
		}
		return absFloat(candidates[i].FreqOffsetHz) < absFloat(candidates[j].FreqOffsetHz)
	})

	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
