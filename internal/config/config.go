// Package config loads the daemon's YAML configuration, following the
// teacher's config.go convention: a single root struct decoded with
// yaml.v3, followed by an explicit defaulting pass (YAML's zero-value
// unmarshalling can't distinguish "absent" from "explicitly zero", so
// defaults are only applied where zero is never a meaningful setting).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the daemon's root configuration.
type Config struct {
	Station    StationConfig  `yaml:"station"`
	Audio      AudioConfig    `yaml:"audio"`
	Schedule   ScheduleConfig `yaml:"schedule"`
	WSPRNet    WSPRNetConfig  `yaml:"wsprnet"`
	MQTT       MQTTConfig     `yaml:"mqtt"`
	Web        WebConfig      `yaml:"web"`
	MCP        MCPConfig      `yaml:"mcp"`
	HashFile   string         `yaml:"hash_file"`   // path to the persistent C8 hash-table store, empty = in-memory only
	ArchiveDir string         `yaml:"archive_dir"` // directory for zstd-compressed slot PCM archives, empty = disabled
}

// StationConfig identifies the receiving station (used both for labelling
// decodes and for wsprnet.org's required rcall/rgrid fields).
type StationConfig struct {
	Callsign string  `yaml:"callsign"`
	Grid     string  `yaml:"grid"`
	DialMHz  float64 `yaml:"dial_mhz"`
	LSB      bool    `yaml:"lsb"`
}

// AudioConfig configures internal/audiosource.
type AudioConfig struct {
	Source     string `yaml:"source"` // "rtp" or "opus"
	Multicast  string `yaml:"multicast_group"`
	Interface  string `yaml:"interface"`
	SampleRate int    `yaml:"sample_rate"`
}

// ScheduleConfig configures internal/scheduler.
type ScheduleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WSPRNetConfig configures internal/wsprnet reporting.
type WSPRNetConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ProgramName    string `yaml:"program_name"`
	ProgramVersion string `yaml:"program_version"`
}

// MQTTConfig configures internal/mqttpub.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// WebConfig configures internal/webstatus.
type WebConfig struct {
	Listen string `yaml:"listen"`
}

// MCPConfig configures internal/mcpserver.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and validates a YAML configuration file, applying defaults for
// fields whose zero value is never intentional.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", filename, err)
	}

	cfg.applyDefaults()

	if cfg.Station.Callsign == "" {
		return nil, fmt.Errorf("config: station.callsign is required")
	}
	if cfg.Station.Grid == "" {
		return nil, fmt.Errorf("config: station.grid is required")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 12000
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "rtp"
	}
	if c.WSPRNet.ProgramName == "" {
		c.WSPRNet.ProgramName = "wsprgo"
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "wspr/decodes"
	}
	if c.Web.Listen == "" {
		c.Web.Listen = ":8080"
	}
}
