//go:build opus
// +build opus

package audiosource

import (
	"encoding/binary"
	"fmt"
	"sync"

	opus "gopkg.in/hraban/opus.v2"
)

// Opus frames are mono, carry at most 120ms at 12 kHz (the WSPR sample
// rate), so a fixed 1440-sample output buffer never truncates a frame.
const maxOpusFrameSamples = 1440

var (
	decoderMu sync.Mutex
	decoder   *opus.Decoder
)

func opusDecoder() (*opus.Decoder, error) {
	decoderMu.Lock()
	defer decoderMu.Unlock()
	if decoder != nil {
		return decoder, nil
	}
	d, err := opus.NewDecoder(12000, 1)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}
	decoder = d
	return decoder, nil
}

// decodeOpus decodes one Opus frame to big-endian 16-bit PCM, matching the
// ka9q-radio wire convention the rest of the package assumes.
func decodeOpus(payload []byte) ([]byte, error) {
	dec, err := opusDecoder()
	if err != nil {
		return nil, err
	}

	decoderMu.Lock()
	pcmInt16 := make([]int16, maxOpusFrameSamples)
	n, err := dec.Decode(payload, pcmInt16)
	decoderMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("opus decode: %w", err)
	}

	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.BigEndian.PutUint16(pcm[i*2:i*2+2], uint16(pcmInt16[i]))
	}
	return pcm, nil
}
