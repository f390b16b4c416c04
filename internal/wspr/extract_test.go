package wspr

import "testing"

func TestExtractMetricsClampedRange(t *testing.T) {
	samples := make([]float64, DecodeWindowSamples)
	sg := BuildSpectrogram(samples)
	cand := Candidate{FreqOffsetHz: 0, TimeOffsetS: 0, DriftHzPerS: 0}

	metrics := ExtractMetrics(sg, cand, false)
	for i, m := range metrics {
		if m > MetricClamp || m < -MetricClamp {
			t.Errorf("metrics[%d] = %v, outside [-%v, %v]", i, m, MetricClamp, MetricClamp)
		}
	}
}

func TestExtractMetricsSilenceIsZero(t *testing.T) {
	samples := make([]float64, DecodeWindowSamples)
	sg := BuildSpectrogram(samples)
	cand := Candidate{}

	metrics := ExtractMetrics(sg, cand, false)
	for i, m := range metrics {
		if m != 0 {
			t.Errorf("metrics[%d] = %v, want 0 for equal (zero) power on both tones", i, m)
		}
	}
}
