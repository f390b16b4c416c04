package wspr

import "math"

/*
 * SNR estimation, grounded on the teacher's snr.go (WSJT-X baseline-ratio
 * method): power is measured only at the actually-transmitted tone for
 * each symbol; no separate noise or baseline measurement is taken. The sum
 * of squared powers and the sum of powers over those tones are combined via
 * the same log-ratio formula the teacher uses for
 * FT8, whose calibration constants (3.0e6 baseline scale, -27 dB offset,
 * -24 dB floor) are carried over unchanged since spec.md does not mandate
 * an exact formula, only the 2500 Hz reference bandwidth convention.
 */

// CalculateSNR estimates the SNR (dB, 2500 Hz reference bandwidth) of a
// successful decode given the candidate location and the 162 symbols that
// were actually transmitted (recovered by re-encoding the decoded bits).
func CalculateSNR(sg *Spectrogram, cand Candidate, symbols [NumSymbols]uint8, lsb bool) float64 {
	freq0 := CenterFreqHz + cand.FreqOffsetHz

	var xsig, xbase float64
	valid := 0
	for i, s := range symbols {
		t := cand.TimeOffsetS + float64(i)*SymbolPeriodSec
		base := freq0 + cand.DriftHzPerS*float64(i)*SymbolPeriodSec

		power := sg.powerAt(base+transmittedTone(s, lsb)*ToneSpacingHz, t)
		xsig += power * power
		xbase += power
		valid++
	}

	if valid == 0 || xbase == 0 {
		return -24.0
	}

	arg := xsig/xbase/3.0e6 - 1.0
	if arg <= 0.1 {
		return -24.0
	}

	snr := 10.0*math.Log10(arg) - 27.0
	if snr < -24.0 {
		snr = -24.0
	}
	return snr
}
