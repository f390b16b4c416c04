package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "station:\n  callsign: K1JT\n  grid: FN20\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != 12000 {
		t.Errorf("Audio.SampleRate = %d, want 12000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Source != "rtp" {
		t.Errorf("Audio.Source = %q, want rtp", cfg.Audio.Source)
	}
	if cfg.WSPRNet.ProgramName != "wsprgo" {
		t.Errorf("WSPRNet.ProgramName = %q, want wsprgo", cfg.WSPRNet.ProgramName)
	}
	if cfg.Web.Listen != ":8080" {
		t.Errorf("Web.Listen = %q, want :8080", cfg.Web.Listen)
	}
}

func TestLoadRequiresStationIdentity(t *testing.T) {
	path := writeTempConfig(t, "audio:\n  source: rtp\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing station.callsign/grid")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
