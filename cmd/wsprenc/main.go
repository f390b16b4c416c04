// Command wsprenc encodes a single WSPR Type 1 message to a 12 kHz mono WAV
// file, for testing a decoder or generating a reference transmission.
// Grounded on the teacher's kiwi_wspr/main.go pflag CLI conventions.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/cwsl/wsprgo/internal/wav"
	"github.com/cwsl/wsprgo/internal/wspr"
)

const version = "v1.0.0"

func main() {
	var (
		callsign = pflag.StringP("callsign", "c", "", "Station callsign (required)")
		grid     = pflag.StringP("grid", "g", "", "4-character Maidenhead grid locator (required)")
		power    = pflag.IntP("power", "p", 37, "Transmit power in dBm")
		offset   = pflag.IntP("offset", "o", 0, "Tone offset in Hz added to the 1500 Hz centre frequency")
		lsb      = pflag.Bool("lsb", false, "Encode for an LSB passband (reverses spectral orientation)")
		out      = pflag.StringP("out", "f", "wspr.wav", "Output WAV file path")
		showVer  = pflag.BoolP("version", "v", false, "Print version and exit")
	)
	pflag.Parse()

	if *showVer {
		fmt.Printf("wsprenc %s\n", version)
		os.Exit(0)
	}

	if *callsign == "" || *grid == "" {
		log.Fatal("wsprenc: --callsign and --grid are required")
	}

	msg := wspr.Message{Callsign: *callsign, Grid: *grid, PowerDBm: *power}
	opts := wspr.EncodeOptions{OffsetHz: *offset, LSB: *lsb}

	pcm, canonical, err := wspr.EncodePCM(msg, opts)
	if err != nil {
		log.Fatalf("wsprenc: encode: %v", err)
	}

	writer, err := wav.NewWriter(*out, wspr.SampleRate, 1, 16)
	if err != nil {
		log.Fatalf("wsprenc: %v", err)
	}
	if _, err := writer.Write(pcm); err != nil {
		log.Fatalf("wsprenc: write PCM: %v", err)
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("wsprenc: close: %v", err)
	}

	log.Printf("wsprenc: encoded %s %s %ddBm -> %s", canonical.Callsign, canonical.Grid, canonical.PowerDBm, *out)
}
