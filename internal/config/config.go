// Package config loads config.yaml for the ledger CLI using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

const (
	fileName = "config"
	fileType = "yaml"
	fileExt  = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. LEDGER_BASE_URL or
	// LEDGER_PROBE_TIMEOUT.
	EnvPrefix = "LEDGER"
)

// Config keys.
const (
	KeyLedger         = "ledger"
	KeyBaseURL        = "base_url"
	KeyProjectRoot    = "project_root"
	KeyTimezone       = "timezone"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyProbeTimeout   = "probe.timeout"
	KeyProbePlan      = "probe.plan"
	KeyHistoryPath    = "history.path"
	KeyHistoryEnabled = "history.enabled"
)

// File is the on-disk layout of config.yaml.
type File struct {
	Ledger      string      `yaml:"ledger"`
	BaseURL     string      `yaml:"base_url"`
	ProjectRoot string      `yaml:"project_root"`
	Timezone    string      `yaml:"timezone"`
	Log         LogFile     `yaml:"log"`
	Probe       ProbeFile   `yaml:"probe"`
	History     HistoryFile `yaml:"history"`
}

// LogFile is the log section of config.yaml.
type LogFile struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ProbeFile is the probe section of config.yaml.
type ProbeFile struct {
	Timeout string `yaml:"timeout"`
	Plan    string `yaml:"plan"`
}

// HistoryFile is the history section of config.yaml.
type HistoryFile struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// Defaults returns the configuration written on first run.
func Defaults() File {
	return File{
		Ledger:      "docs/TASK_LIST.md",
		BaseURL:     "http://localhost:12883",
		ProjectRoot: "saasfly",
		Timezone:    "Local",
		Log:         LogFile{Level: "info", Format: "text"},
		Probe:       ProbeFile{Timeout: "0s"},
		History:     HistoryFile{Path: "history.db", Enabled: true},
	}
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. Environment variables with the LEDGER_ prefix
// override file values.
func Load(configDir string) (types.Config, error) {
	if _, err := WriteDefault(configDir); err != nil {
		return types.Config{}, err
	}

	v := newViper()
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

// WriteDefault writes a default config.yaml into configDir unless one
// exists. It reports whether a file was written.
func WriteDefault(configDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, fileExt)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := "# Task ledger configuration. LEDGER_<KEY> environment variables override these values.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

func newViper() *viper.Viper {
	d := Defaults()

	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLedger, d.Ledger)
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyProjectRoot, d.ProjectRoot)
	v.SetDefault(KeyTimezone, d.Timezone)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyProbeTimeout, d.Probe.Timeout)
	v.SetDefault(KeyProbePlan, d.Probe.Plan)
	v.SetDefault(KeyHistoryPath, d.History.Path)
	v.SetDefault(KeyHistoryEnabled, d.History.Enabled)
	return v
}

func fromViper(v *viper.Viper) (types.Config, error) {
	timeout, err := time.ParseDuration(v.GetString(KeyProbeTimeout))
	if err != nil {
		return types.Config{}, fmt.Errorf("%s: %w", KeyProbeTimeout, err)
	}

	cfg := types.Config{
		LedgerPath:     v.GetString(KeyLedger),
		BaseURL:        v.GetString(KeyBaseURL),
		ProjectRoot:    v.GetString(KeyProjectRoot),
		Timezone:       v.GetString(KeyTimezone),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		ProbeTimeout:   timeout,
		PlanPath:       v.GetString(KeyProbePlan),
		HistoryPath:    v.GetString(KeyHistoryPath),
		HistoryEnabled: v.GetBool(KeyHistoryEnabled),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
