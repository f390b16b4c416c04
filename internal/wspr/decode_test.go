package wspr

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// padToWindow appends silence to pcm until it reaches the 114 s decode
// window length.
func padToWindow(pcm []byte) []byte {
	want := 2 * DecodeWindowSamples
	if len(pcm) >= want {
		return pcm
	}
	out := make([]byte, want)
	copy(out, pcm)
	return out
}

func TestDecodeInsufficientData(t *testing.T) {
	short := make([]byte, 1000)
	_, err := Decode(short, 14.0956, false, nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Decode(short pcm) err = %v, want ErrInsufficientData", err)
	}
}

func TestDecodeSilenceReturnsEmpty(t *testing.T) {
	silence := make([]byte, 2*DecodeWindowSamples)
	got, err := Decode(silence, 14.0956, false, nil)
	if err != nil {
		t.Fatalf("Decode(silence): unexpected error %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Decode(silence) = %d results, want 0", len(got))
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	msg := Message{Callsign: "Q0QQQ", Grid: "FN20", PowerDBm: 30}
	pcm, snapped, err := EncodePCM(msg, EncodeOptions{})
	if err != nil {
		t.Fatalf("EncodePCM: %v", err)
	}
	if len(pcm) != EncodeBytes {
		t.Fatalf("len(pcm) = %d, want %d", len(pcm), EncodeBytes)
	}

	window := padToWindow(pcm)
	results, err := Decode(window, 14.0956, false, NewMemHashTable())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Decode(noise-free encoded message) returned no results")
	}

	d := results[0]
	if d.Callsign != snapped.Callsign {
		t.Errorf("Callsign = %q, want %q", d.Callsign, snapped.Callsign)
	}
	if d.Grid != snapped.Grid {
		t.Errorf("Grid = %q, want %q", d.Grid, snapped.Grid)
	}
	if d.PowerDBm != snapped.PowerDBm {
		t.Errorf("PowerDBm = %d, want %d", d.PowerDBm, snapped.PowerDBm)
	}
}

// TestDecodeScenario5K1JT pins spec.md §8's literal end-to-end scenario 5: a
// noise-free "K1JT FN20 37" at 1500 Hz must decode with tight offset/drift
// bounds and a high SNR.
func TestDecodeScenario5K1JT(t *testing.T) {
	msg := Message{Callsign: "K1JT", Grid: "FN20", PowerDBm: 37}
	pcm, snapped, err := EncodePCM(msg, EncodeOptions{})
	if err != nil {
		t.Fatalf("EncodePCM: %v", err)
	}

	window := padToWindow(pcm)
	results, err := Decode(window, 14.0956, false, NewMemHashTable())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Decode(noise-free K1JT FN20 37) returned no results")
	}

	d := results[0]
	if d.Callsign != snapped.Callsign || d.Grid != snapped.Grid || d.PowerDBm != snapped.PowerDBm {
		t.Fatalf("decode = %+v, want callsign/grid/power %s/%s/%d", d, snapped.Callsign, snapped.Grid, snapped.PowerDBm)
	}
	if math.Abs(d.FreqOffsetHz) >= 1.5 {
		t.Errorf("FreqOffsetHz = %v, want |x| < 1.5", d.FreqOffsetHz)
	}
	if math.Abs(d.TimeOffsetS) >= 0.1 {
		t.Errorf("TimeOffsetS = %v, want |x| < 0.1", d.TimeOffsetS)
	}
	if math.Abs(d.DriftHzPerS) >= DriftSearchStepHzPerS {
		t.Errorf("DriftHzPerS = %v, want ~0", d.DriftHzPerS)
	}
	if d.SNRDb <= 20.0 {
		t.Errorf("SNRDb = %v, want > 20 dB", d.SNRDb)
	}
}

// noiseSigmaForSNR returns the AWGN standard deviation that gives a sine
// wave of the given amplitude the requested SNR, referenced to the 2500 Hz
// bandwidth convention of spec.md §8 ("measured in the 2500 Hz SSB
// bandwidth"): noise power in that slice is the full-Nyquist noise variance
// scaled by 2500/(SampleRate/2).
func noiseSigmaForSNR(amplitude, snrDb float64) float64 {
	signalPower := amplitude * amplitude / 2
	ratio := math.Pow(10, snrDb/10)
	nyquistHz := float64(SampleRate) / 2
	variance := signalPower * (nyquistHz / 2500) / ratio
	return math.Sqrt(variance)
}

// synthesizeNoisySlot encodes msg, attenuates it to headroom-friendly
// amplitude, and fills a full 114 s decode window with AWGN at targetSNRdB
// added on top — silence beyond the ~110.6 s transmission is noise-only,
// matching a real receiver's continuously-running front end.
func synthesizeNoisySlot(msg Message, gain, targetSNRdB float64, noise *distuv.Normal) ([]byte, Message, error) {
	pcm, snapped, err := EncodePCM(msg, EncodeOptions{})
	if err != nil {
		return nil, Message{}, err
	}
	noise.Sigma = noiseSigmaForSNR(gain*Amplitude, targetSNRdB)

	out := make([]byte, 2*DecodeWindowSamples)
	cleanSamples := len(pcm) / 2
	for i := 0; i < DecodeWindowSamples; i++ {
		var signal float64
		if i < cleanSamples {
			v := int16(binary.LittleEndian.Uint16(pcm[2*i : 2*i+2]))
			signal = gain * float64(v)
		}
		sample := signal + noise.Rand()
		if sample > 32767 {
			sample = 32767
		} else if sample < -32768 {
			sample = -32768
		}
		binary.LittleEndian.PutUint16(out[2*i:2*i+2], uint16(int16(sample)))
	}
	return out, snapped, nil
}

// randomType1Message produces a random, valid, packable Type 1 message:
// letter-digit-letter-letter-letter callsign (digit at index 1, one of the
// two positions canonicalCallsign accepts), A-R/A-R/0-9/0-9 grid, and a power already
// snapped per spec.md's correction table.
func randomType1Message(rng *rand.Rand) Message {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const gridLetters = "ABCDEFGHIJKLMNOPQR"
	snappedPowers := []int{0, 3, 7, 10, 13, 17, 20, 23, 27, 30, 33, 37, 40, 43, 47, 50, 53, 57, 60}

	call := []byte{
		letters[rng.Intn(len(letters))],
		byte('0' + rng.Intn(10)),
		letters[rng.Intn(len(letters))],
		letters[rng.Intn(len(letters))],
		letters[rng.Intn(len(letters))],
	}
	grid := []byte{
		gridLetters[rng.Intn(len(gridLetters))],
		gridLetters[rng.Intn(len(gridLetters))],
		byte('0' + rng.Intn(10)),
		byte('0' + rng.Intn(10)),
	}
	return Message{
		Callsign: string(call),
		Grid:     string(grid),
		PowerDBm: snappedPowers[rng.Intn(len(snappedPowers))],
	}
}

func decodedMessage(results []Decode, want Message) bool {
	for _, d := range results {
		if d.Callsign == want.Callsign && d.Grid == want.Grid && d.PowerDBm == want.PowerDBm {
			return true
		}
	}
	return false
}

// TestDecoderNoiseFloor enforces spec.md §8's "Decoder noise floor" property:
// AWGN at -28 dB SNR (2500 Hz reference bandwidth) must still decode at
// least half the time. Spec.md's literal bound samples 1000 random
// messages; this runs a smaller representative sample to keep the test
// suite fast, since each iteration runs the full FFT/candidate-search/Fano
// pipeline over a 114 s window.
func TestDecoderNoiseFloor(t *testing.T) {
	const (
		numMessages          = 40
		targetSNRdB          = -28.0
		minDecodeProbability = 0.5
		gain                 = 0.05 // keeps signal+noise within int16 headroom
	)

	rng := rand.New(rand.NewSource(1))
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(2)}

	decoded := 0
	for i := 0; i < numMessages; i++ {
		msg := randomType1Message(rng)
		window, snapped, err := synthesizeNoisySlot(msg, gain, targetSNRdB, &noise)
		if err != nil {
			t.Fatalf("synthesizeNoisySlot(%+v): %v", msg, err)
		}

		results, err := Decode(window, 14.0956, false, NewMemHashTable())
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decodedMessage(results, snapped) {
			decoded++
		}
	}

	prob := float64(decoded) / float64(numMessages)
	if prob < minDecodeProbability {
		t.Errorf("decode probability at %.0f dB SNR = %.2f (%d/%d), want >= %.2f",
			targetSNRdB, prob, decoded, numMessages, minDecodeProbability)
	}
}

func TestSortDecodesBySyncScoreThenFrequency(t *testing.T) {
	d := []Decode{
		{Callsign: "A", SyncScore: 1.0, FreqOffsetHz: 10, SNRDb: 99},
		{Callsign: "B", SyncScore: 3.0, FreqOffsetHz: -5, SNRDb: 0},
		{Callsign: "C", SyncScore: 3.0, FreqOffsetHz: -20, SNRDb: -50},
		{Callsign: "D", SyncScore: 2.0, FreqOffsetHz: 0, SNRDb: 50},
	}
	sortDecodes(d)

	want := []string{"C", "B", "D", "A"}
	for i, w := range want {
		if d[i].Callsign != w {
			t.Fatalf("sortDecodes order[%d] = %q, want %q (full order: %v)", i, d[i].Callsign, w, d)
		}
	}
}

func TestDedupeKeepsFirst(t *testing.T) {
	in := []Decode{
		{Callsign: "W1ABC", Grid: "FN20", PowerDBm: 30, SNRDb: -5.0, FreqOffsetHz: 1},
		{Callsign: "W1ABC", Grid: "FN20", PowerDBm: 30, SNRDb: -5.04, FreqOffsetHz: 2},
		{Callsign: "K1JT", Grid: "FN20", PowerDBm: 37, SNRDb: 0},
	}
	out := dedupe(in)
	if len(out) != 2 {
		t.Fatalf("dedupe returned %d entries, want 2", len(out))
	}
	if out[0].FreqOffsetHz != 1 {
		t.Errorf("dedupe should keep the first of a duplicate pair")
	}
}
