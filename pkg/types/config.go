package types

import (
	"errors"
	"time"
)

// Config is the resolved configuration shared by all commands.
type Config struct {
	LedgerPath     string        `json:"ledger" yaml:"ledger"`
	BaseURL        string        `json:"base_url" yaml:"base_url"`
	ProjectRoot    string        `json:"project_root" yaml:"project_root"`
	Timezone       string        `json:"timezone" yaml:"timezone"`
	LogLevel       string        `json:"log_level" yaml:"log_level"`
	LogFormat      string        `json:"log_format" yaml:"log_format"`
	ProbeTimeout   time.Duration `json:"probe_timeout" yaml:"probe_timeout"`
	PlanPath       string        `json:"plan" yaml:"plan"`
	HistoryPath    string        `json:"history_path" yaml:"history_path"`
	HistoryEnabled bool          `json:"history_enabled" yaml:"history_enabled"`
}

// Config validation errors.
var (
	ErrLedgerPathEmpty  = errors.New("ledger path must not be empty")
	ErrBaseURLEmpty     = errors.New("base url must not be empty")
	ErrTimeoutNegative  = errors.New("probe timeout must not be negative")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

var knownLogFormats = map[string]bool{
	"":       true,
	"text":   true,
	"json":   true,
	"logfmt": true,
}

// Validate checks that the Config is well-formed and returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.LedgerPath == "" {
		return ErrLedgerPathEmpty
	}
	if c.BaseURL == "" {
		return ErrBaseURLEmpty
	}
	if c.ProbeTimeout < 0 {
		return ErrTimeoutNegative
	}
	if !knownLogFormats[c.LogFormat] {
		return ErrLogFormatUnknown
	}
	return nil
}

// Location resolves the configured timezone. An empty value or "Local"
// selects the process's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
