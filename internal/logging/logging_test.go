package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{})
	require.NoError(t, err)

	assert.Equal(t, log.InfoLevel, logger.GetLevel())
	assert.Equal(t, Prefix, logger.GetPrefix())

	logger.Debug("hidden")
	logger.Info("shown", "task", "1.1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "task=1.1")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Format: "json"})
	require.NoError(t, err)

	logger.Debug("probe finished", "probe", "port")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "probe finished", entry["msg"])
	assert.Equal(t, "port", entry["probe"])
	assert.Equal(t, Prefix, entry["prefix"])
}

func TestNewReportTimestamp(t *testing.T) {
	var plain, stamped bytes.Buffer
	logger, err := New(&plain, Options{})
	require.NoError(t, err)
	logger.Info("saved")

	logger, err = New(&stamped, Options{ReportTimestamp: true})
	require.NoError(t, err)
	logger.Info("saved")

	stampPattern := `\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}`
	assert.NotRegexp(t, stampPattern, plain.String())
	assert.Regexp(t, "^"+stampPattern, stamped.String())
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]log.Formatter{
		"":       log.TextFormatter,
		"TEXT":   log.TextFormatter,
		"json":   log.JSONFormatter,
		"logfmt": log.LogfmtFormatter,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}
