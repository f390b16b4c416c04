package wspr

import "math"

/*
 * Symbol soft-metric extractor (C6). The sync bit at each of the 162
 * positions is known (it is the fixed sync vector), which narrows the
 * 4-ary tone ambiguity down to the two tones consistent with that sync bit;
 * the soft metric is the log-power-ratio between the "parity bit = 1" tone
 * and the "parity bit = 0" tone of that pair. Metrics are then run back
 * through the interleaver so the Fano decoder (C7) sees them in the same
 * encounter order the encoder produced its two output bits per input bit.
 */

// MetricClamp bounds soft metrics to a range suitable for the Fano
// decoder's branch-cost accumulation.
const MetricClamp = 20.0

const metricEpsilon = 1e-9

// ExtractMetrics implements C6 for one candidate: returns 162 soft metrics
// in encoder encounter order (metrics[2k], metrics[2k+1] are the b0/b1
// metrics for information bit k).
func ExtractMetrics(sg *Spectrogram, cand Candidate, lsb bool) [NumSymbols]float64 {
	freq0 := CenterFreqHz + cand.FreqOffsetHz
	hiTones, loTones := parityTones(lsb)

	var byPosition [NumSymbols]float64
	for i := 0; i < NumSymbols; i++ {
		t := cand.TimeOffsetS + float64(i)*SymbolPeriodSec
		base := freq0 + cand.DriftHzPerS*float64(i)*SymbolPeriodSec

		var p0, p1 float64
		if syncVector[i] == 1 {
			p0 = sg.powerAt(base+hiTones[0]*ToneSpacingHz, t) // parity=0 tone of the hi pair
			p1 = sg.powerAt(base+hiTones[1]*ToneSpacingHz, t) // parity=1 tone of the hi pair
		} else {
			p0 = sg.powerAt(base+loTones[0]*ToneSpacingHz, t)
			p1 = sg.powerAt(base+loTones[1]*ToneSpacingHz, t)
		}

		metric := math.Log((p1+metricEpsilon)/(p0+metricEpsilon))
		if metric > MetricClamp {
			metric = MetricClamp
		}
		if metric < -MetricClamp {
			metric = -MetricClamp
		}
		byPosition[i] = metric
	}

	var encounter [NumSymbols]float64
	for i, pos := range interleaveTable {
		encounter[i] = byPosition[pos]
	}
	return encounter
}
