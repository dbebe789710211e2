package config

import "time"

// Config is the demo runner configuration.
//
// All durations are Go duration strings (e.g. "250ms", "10s", "1m").
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Loop    LoopConfig    `json:"loop"`
	Demos   DemosConfig   `json:"demos"`
	Watch   WatchConfig   `json:"watch"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoopConfig controls the scheduling loop.
type LoopConfig struct {
	// HistorySize caps the in-memory fire history (default 200).
	HistorySize int `json:"history_size,omitempty"`
}

// DemosConfig controls the demonstration routines.
type DemosConfig struct {
	// Unit scales every demo delay (default "100ms"). Lower it to make the
	// suite faster, raise it to watch the output at human speed.
	Unit string `json:"unit,omitempty"`
	// Only restricts the run to the listed demos; empty means all.
	Only []string `json:"only,omitempty"`
}

// WatchConfig controls the filesystem-watch demo.
type WatchConfig struct {
	// Dir is the directory to watch; empty means a per-run temp directory.
	Dir string `json:"dir,omitempty"`
	// Debounce is the quiet window applied to event bursts (default "250ms").
	Debounce string `json:"debounce,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Console: true},
	}
}

// UnitDuration resolves the demo delay unit.
func (d DemosConfig) UnitDuration() (time.Duration, error) {
	return ParseDurationOrDefault("demos.unit", d.Unit, 100*time.Millisecond)
}

// DebounceDuration resolves the watch debounce window.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	return ParseDurationOrDefault("watch.debounce", w.Debounce, 250*time.Millisecond)
}
