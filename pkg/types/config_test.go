package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		LedgerPath: "docs/TASK_LIST.md",
		BaseURL:    "http://localhost:12883",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "empty ledger path returns ErrLedgerPathEmpty",
			mutate:  func(c *Config) { c.LedgerPath = "" },
			wantErr: ErrLedgerPathEmpty,
		},
		{
			name:    "empty base url returns ErrBaseURLEmpty",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: ErrBaseURLEmpty,
		},
		{
			name:    "negative timeout returns ErrTimeoutNegative",
			mutate:  func(c *Config) { c.ProbeTimeout = -time.Second },
			wantErr: ErrTimeoutNegative,
		},
		{
			name:    "unknown log format returns ErrLogFormatUnknown",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: ErrLogFormatUnknown,
		},
		{
			name:    "json log format is valid",
			mutate:  func(c *Config) { c.LogFormat = "json" },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigLocation(t *testing.T) {
	loc, err := Config{}.Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != time.Local {
		t.Errorf("empty timezone = %v, want Local", loc)
	}

	loc, err = Config{Timezone: "UTC"}.Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "UTC" {
		t.Errorf("timezone = %v, want UTC", loc)
	}

	if _, err := (Config{Timezone: "Nowhere/Atlantis"}).Location(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
