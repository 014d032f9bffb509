package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".ledger")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, types.Config{
		LedgerPath:     "docs/TASK_LIST.md",
		BaseURL:        "http://localhost:12883",
		ProjectRoot:    "saasfly",
		Timezone:       "Local",
		LogLevel:       "info",
		LogFormat:      "text",
		HistoryPath:    "history.db",
		HistoryEnabled: true,
	}, cfg)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	var f File
	require.NoError(t, yaml.Unmarshal(data, &f))
	assert.Equal(t, Defaults(), f)
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `ledger: plans/TASKS.md
base_url: http://127.0.0.1:9000
timezone: Asia/Shanghai
log:
  level: debug
  format: json
probe:
  timeout: 3s
  plan: plan.toml
history:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "plans/TASKS.md", cfg.LedgerPath)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.BaseURL)
	assert.Equal(t, "saasfly", cfg.ProjectRoot, "unset keys keep defaults")
	assert.Equal(t, "Asia/Shanghai", cfg.Timezone)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, "plan.toml", cfg.PlanPath)
	assert.False(t, cfg.HistoryEnabled)

	after, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, content, string(after), "existing file is not rewritten")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LEDGER_BASE_URL", "http://env:1")
	t.Setenv("LEDGER_PROBE_TIMEOUT", "250ms")
	t.Setenv("LEDGER_HISTORY_ENABLED", "false")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://env:1", cfg.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.ProbeTimeout)
	assert.False(t, cfg.HistoryEnabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"bad timeout", "probe:\n  timeout: soon\n", nil},
		{"negative timeout", "probe:\n  timeout: -1s\n", types.ErrTimeoutNegative},
		{"unknown format", "log:\n  format: xml\n", types.ErrLogFormatUnknown},
		{"malformed yaml", "ledger: [\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0o644))

			_, err := Load(dir)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefaultIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	written, err := WriteDefault(dir)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = WriteDefault(dir)
	require.NoError(t, err)
	assert.False(t, written)
}
