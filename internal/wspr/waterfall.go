package wspr

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

/*
 * Spectrogram front-end (C4). Overlapping Hann-windowed FFTs of the
 * captured window, retaining only the WSPR sub-band (1350-1650 Hz). Grounded
 * on the teacher's waterfall.go Monitor/Waterfall pair, generalised from
 * FT8's 6.25 Hz bin spacing to WSPR's ~0.73 Hz spacing and from FT8's
 * one-step-per-symbol timing to a half-symbol step so the time axis
 * resolves finer than one full symbol (spec.md §4.4).
 */

const frameStep = SamplesPerSymbol / 2 // half-symbol hop: finer than one symbol period

// Spectrogram is the time-frequency power grid produced by C4.
type Spectrogram struct {
	Power     [][]float64 // [timeIndex][binIndex], power (linear, not dB)
	MinBinHz  float64     // absolute frequency of Power[.][0]
	BinWidth  float64     // Hz per bin
	TimeStep  float64     // seconds between successive time indices
	NumBins   int
	NumFrames int
}

// BinForFreq returns the bin index nearest to freqHz, clamped to range.
func (s *Spectrogram) BinForFreq(freqHz float64) int {
	bin := int(math.Round((freqHz - s.MinBinHz) / s.BinWidth))
	if bin < 0 {
		bin = 0
	}
	if bin >= s.NumBins {
		bin = s.NumBins - 1
	}
	return bin
}

// FrameForTime returns the frame index nearest to tSec.
func (s *Spectrogram) FrameForTime(tSec float64) int {
	frame := int(math.Round(tSec / s.TimeStep))
	if frame < 0 {
		frame = 0
	}
	if frame >= s.NumFrames {
		frame = s.NumFrames - 1
	}
	return frame
}

// hannWindow returns a Hann window pre-scaled by the FFT normalisation
// factor 2/N, following the teacher's waterfall.go convention of folding
// normalisation into the window rather than the per-bin power computation.
func hannWindow(n int) []float64 {
	norm := 2.0 / float64(n)
	w := make([]float64, n)
	for i := range w {
		x := math.Sin(math.Pi * float64(i) / float64(n))
		w[i] = norm * x * x
	}
	return w
}

// BuildSpectrogram implements C4: consumes int16 PCM samples (12 kHz mono)
// and produces the power spectrogram over the WSPR sub-band.
func BuildSpectrogram(samples []float64) *Spectrogram {
	window := hannWindow(FFTSize)
	fft := fourier.NewFFT(FFTSize)

	lowHz, highHz := SubBandLowHz, SubBandHighHz
	minBin := int(lowHz / FreqBinWidthHz)
	maxBin := int(highHz/FreqBinWidthHz) + 1
	numBins := maxBin - minBin

	numFrames := 0
	if len(samples) >= FFTSize {
		numFrames = (len(samples)-FFTSize)/frameStep + 1
	}

	sg := &Spectrogram{
		Power:     make([][]float64, numFrames),
		MinBinHz:  float64(minBin) * FreqBinWidthHz,
		BinWidth:  FreqBinWidthHz,
		TimeStep:  float64(frameStep) / SampleRate,
		NumBins:   numBins,
		NumFrames: numFrames,
	}

	timeData := make([]float64, FFTSize)
	for frame := 0; frame < numFrames; frame++ {
		off := frame * frameStep
		for i := 0; i < FFTSize; i++ {
			timeData[i] = samples[off+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, timeData)

		row := make([]float64, numBins)
		for b := 0; b < numBins; b++ {
			c := coeffs[minBin+b]
			re, im := real(c), imag(c)
			row[b] = re*re + im*im
		}
		sg.Power[frame] = row
	}

	return sg
}

// powerAt returns the interpolation-free power at the given absolute
// frequency and time, or 0 if out of range.
func (s *Spectrogram) powerAt(freqHz, tSec float64) float64 {
	bin := int(math.Round((freqHz - s.MinBinHz) / s.BinWidth))
	frame := int(math.Round(tSec / s.TimeStep))
	if bin < 0 || bin >= s.NumBins || frame < 0 || frame >= s.NumFrames {
		return 0
	}
	return s.Power[frame][bin]
}
