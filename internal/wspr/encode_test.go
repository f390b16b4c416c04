package wspr

import (
	"math"
	"testing"
)

func TestEncodeSymbolsCountAndRange(t *testing.T) {
	msg := Message{Callsign: "W1ABC", Grid: "FN20", PowerDBm: 30}
	symbols, _, err := EncodeSymbols(msg)
	if err != nil {
		t.Fatalf("EncodeSymbols: %v", err)
	}
	if len(symbols) != NumSymbols {
		t.Fatalf("len(symbols) = %d, want %d", len(symbols), NumSymbols)
	}
	for i, s := range symbols {
		if s > 3 {
			t.Errorf("symbols[%d] = %d, want < 4", i, s)
		}
	}
}

func TestSyncBitLaw(t *testing.T) {
	msg := Message{Callsign: "W1ABC", Grid: "FN20", PowerDBm: 30}
	symbols, _, err := EncodeSymbols(msg)
	if err != nil {
		t.Fatalf("EncodeSymbols: %v", err)
	}
	for i, s := range symbols {
		if s&1 != syncVector[i] {
			t.Errorf("symbols[%d] low bit = %d, want sync[%d] = %d", i, s&1, i, syncVector[i])
		}
	}
}

func TestOffsetLinearity(t *testing.T) {
	msg := Message{Callsign: "W1ABC", Grid: "FN20", PowerDBm: 30}
	base, _, err := EncodeFrequencies(msg, EncodeOptions{OffsetHz: 0})
	if err != nil {
		t.Fatalf("EncodeFrequencies(offset=0): %v", err)
	}
	shifted, _, err := EncodeFrequencies(msg, EncodeOptions{OffsetHz: 1000})
	if err != nil {
		t.Fatalf("EncodeFrequencies(offset=1000): %v", err)
	}
	for i := range base {
		want := base[i] + 1000*100
		if shifted[i] != want {
			t.Errorf("shifted[%d] = %d, want %d", i, shifted[i], want)
		}
	}
}

func TestLSBInversion(t *testing.T) {
	msg := Message{Callsign: "W1ABC", Grid: "FN20", PowerDBm: 30}
	usb, _, err := EncodeSymbols(msg)
	if err != nil {
		t.Fatalf("EncodeSymbols(usb): %v", err)
	}
	lsbFreqs, _, err := EncodeFrequencies(msg, EncodeOptions{LSB: true})
	if err != nil {
		t.Fatalf("EncodeFrequencies(lsb): %v", err)
	}
	usbFreqs, _, err := EncodeFrequencies(msg, EncodeOptions{LSB: false})
	if err != nil {
		t.Fatalf("EncodeFrequencies(usb): %v", err)
	}
	for i, s := range usb {
		wantSymbol := 3 - s
		wantHz := float64(CenterFreqHz) + float64(wantSymbol)*ToneSpacingHz
		wantCentiHz := int64(math.Round(wantHz * 100))
		if lsbFreqs[i] != wantCentiHz {
			t.Errorf("lsb freq[%d] = %d cHz, want %d cHz (usb freq was %d cHz)", i, lsbFreqs[i], wantCentiHz, usbFreqs[i])
		}
	}
}

func TestEncodePCMLength(t *testing.T) {
	msg := Message{Callsign: "Q0QQQ", Grid: "FN20", PowerDBm: 30}
	pcm, _, err := EncodePCM(msg, EncodeOptions{})
	if err != nil {
		t.Fatalf("EncodePCM: %v", err)
	}
	if len(pcm) != EncodeBytes {
		t.Fatalf("len(pcm) = %d, want %d", len(pcm), EncodeBytes)
	}
}

func TestPackRejectsInvalidInput(t *testing.T) {
	bad := Message{Callsign: "ABCDEF", Grid: "FN20", PowerDBm: 30}
	if _, _, err := EncodeSymbols(bad); err == nil {
		t.Fatal("expected error for callsign with no digit at position 1 or 2")
	}
}
