// Package paths resolves the configuration directory and the files the
// ledger tools read and write.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Defaults. DefaultConfigDirName and DefaultLedgerFile are relative to the
// working directory, DefaultHistoryFile to the configuration directory.
const (
	DefaultConfigDirName = ".ledger"
	DefaultLedgerFile    = "docs/TASK_LIST.md"
	DefaultHistoryFile   = "history.db"
)

// appName names the per-user configuration directory.
const appName = "taskledger"

// EnvConfigDir overrides the configuration directory.
const EnvConfigDir = "LEDGER_CONFIG_DIR"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// UserConfigDir returns the per-user configuration directory written by
// "ledger init --global".
//
// Linux:   $XDG_CONFIG_HOME/taskledger (fallback ~/.config/taskledger)
// macOS:   ~/Library/Application Support/taskledger
// Windows: %APPDATA%/taskledger
func UserConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > LEDGER_CONFIG_DIR env > $(CWD)/.ledger when it
// exists > UserConfigDir() when it holds a config.yaml > $(CWD)/.ledger.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}

	local, err := filepath.Abs(DefaultConfigDirName)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	if user, err := UserConfigDir(); err == nil {
		if _, err := os.Stat(filepath.Join(user, "config.yaml")); err == nil {
			return user, nil
		}
	}
	return local, nil
}

// ResolveLedger returns the ledger file following the precedence chain:
// flag > config value (LEDGER_LEDGER env or config.yaml) >
// $(CWD)/docs/TASK_LIST.md.
func ResolveLedger(flag, configValue string) (string, error) {
	switch {
	case flag != "":
		return filepath.Abs(flag)
	case configValue != "":
		return filepath.Abs(configValue)
	default:
		return filepath.Abs(DefaultLedgerFile)
	}
}

// ResolveHistory returns the run history database path. Relative values,
// including the default, are taken from configDir so the history stays
// next to the config.yaml that named it.
func ResolveHistory(configDir, configValue string) (string, error) {
	if configValue == "" {
		configValue = DefaultHistoryFile
	}
	if filepath.IsAbs(configValue) {
		return configValue, nil
	}
	return filepath.Abs(filepath.Join(configDir, configValue))
}
