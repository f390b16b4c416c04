package wspr

import "testing"

func TestBuildSpectrogramDimensions(t *testing.T) {
	samples := make([]float64, DecodeWindowSamples)
	sg := BuildSpectrogram(samples)

	wantFrames := (DecodeWindowSamples-FFTSize)/frameStep + 1
	if sg.NumFrames != wantFrames {
		t.Errorf("NumFrames = %d, want %d", sg.NumFrames, wantFrames)
	}
	if sg.NumBins <= 0 {
		t.Fatal("NumBins should be positive")
	}
	if len(sg.Power) != sg.NumFrames {
		t.Fatalf("len(Power) = %d, want %d", len(sg.Power), sg.NumFrames)
	}
	for _, row := range sg.Power {
		if len(row) != sg.NumBins {
			t.Fatalf("row length = %d, want %d", len(row), sg.NumBins)
		}
	}
}

func TestBinAndFrameLookupClampToRange(t *testing.T) {
	samples := make([]float64, DecodeWindowSamples)
	sg := BuildSpectrogram(samples)

	if bin := sg.BinForFreq(-1e9); bin != 0 {
		t.Errorf("BinForFreq(very low) = %d, want 0", bin)
	}
	if bin := sg.BinForFreq(1e9); bin != sg.NumBins-1 {
		t.Errorf("BinForFreq(very high) = %d, want %d", bin, sg.NumBins-1)
	}
	if frame := sg.FrameForTime(-1e9); frame != 0 {
		t.Errorf("FrameForTime(very negative) = %d, want 0", frame)
	}
	if frame := sg.FrameForTime(1e9); frame != sg.NumFrames-1 {
		t.Errorf("FrameForTime(very large) = %d, want %d", frame, sg.NumFrames-1)
	}
}

func TestSilentSpectrogramHasZeroPower(t *testing.T) {
	samples := make([]float64, DecodeWindowSamples)
	sg := BuildSpectrogram(samples)
	for _, row := range sg.Power {
		for _, p := range row {
			if p != 0 {
				t.Fatalf("silent input produced nonzero power %v", p)
			}
		}
	}
}
