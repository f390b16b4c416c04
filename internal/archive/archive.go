// Package archive optionally persists each decoded slot's raw PCM to disk,
// zstd-compressed, for later re-decoding or spectrogram review. Grounded on
// the teacher's pcm_binary.go PCMFormatZstd path: a pooled zstd.Encoder
// wrapping the PCM payload, here applied to whole-slot archival instead of
// per-RTP-packet streaming.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Store writes zstd-compressed PCM slot captures under a directory, one
// file per slot.
type Store struct {
	dir     string
	encoder *zstd.Encoder
}

// Open creates dir if needed and prepares a reusable zstd encoder, the same
// SpeedDefault level the teacher uses for its PCM-zstd packets.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create %s: %w", dir, err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("archive: new encoder: %w", err)
	}
	return &Store{dir: dir, encoder: enc}, nil
}

// SaveSlot compresses pcm and writes it to
// "<start as UTC yyyymmddThhmmssZ>-<runID>.pcm.zst" under dir.
func (s *Store) SaveSlot(runID string, start time.Time, pcm []byte) error {
	name := fmt.Sprintf("%s-%s.pcm.zst", start.UTC().Format("20060102T150405Z"), runID)
	path := filepath.Join(s.dir, name)

	compressed := s.encoder.EncodeAll(pcm, nil)
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	return nil
}

// LoadSlot decompresses a previously archived slot file back to raw PCM.
func LoadSlot(path string) ([]byte, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", path, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("archive: new decoder: %w", err)
	}
	defer dec.Close()

	pcm, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: decode %s: %w", path, err)
	}
	return pcm, nil
}

// Close releases the encoder's resources.
func (s *Store) Close() error {
	return s.encoder.Close()
}
