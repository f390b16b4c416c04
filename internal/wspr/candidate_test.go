package wspr

import "testing"

func TestTonePairsLSBIsSwapOfUSB(t *testing.T) {
	usbHi, usbLo := tonePairs(false)
	lsbHi, lsbLo := tonePairs(true)
	if usbHi != lsbLo || usbLo != lsbHi {
		t.Errorf("tonePairs(true) should swap hi/lo of tonePairs(false): usb=(%v,%v) lsb=(%v,%v)", usbHi, usbLo, lsbHi, lsbLo)
	}
}

func TestTransmittedToneUSBIsIdentity(t *testing.T) {
	for s := uint8(0); s < 4; s++ {
		if got := transmittedTone(s, false); got != float64(s) {
			t.Errorf("transmittedTone(%d, false) = %v, want %v", s, got, s)
		}
	}
}

func TestTransmittedToneLSBReverses(t *testing.T) {
	for s := uint8(0); s < 4; s++ {
		want := float64(3 - s)
		if got := transmittedTone(s, true); got != want {
			t.Errorf("transmittedTone(%d, true) = %v, want %v", s, got, want)
		}
	}
}

func TestFindCandidatesSilenceYieldsNone(t *testing.T) {
	samples := make([]float64, DecodeWindowSamples)
	sg := BuildSpectrogram(samples)
	cands := FindCandidates(sg, false)
	if len(cands) != 0 {
		t.Fatalf("FindCandidates(silence) = %d candidates, want 0", len(cands))
	}
}
