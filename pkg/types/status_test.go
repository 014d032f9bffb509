package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"pending", StatusPending},
		{"in_progress", StatusInProgress},
		{"in-progress", StatusInProgress},
		{"COMPLETED", StatusCompleted},
		{" verified ", StatusVerified},
		{"failed", StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "✅ 已完成", StatusCompleted.Label())
	assert.Equal(t, "🔄 进行中", StatusInProgress.Label())
	assert.Equal(t, "⏳ 待开始", StatusPending.Label())
	assert.Equal(t, "✅ 已验证", StatusVerified.Label())
	assert.Equal(t, "❌ 验证失败", StatusFailed.Label())
	assert.Empty(t, Status("bogus").Label())
}

func TestStatusFromLabel(t *testing.T) {
	for _, s := range AllStatuses {
		got, ok := StatusFromLabel(" " + s.Label() + " ")
		require.True(t, ok, s)
		assert.Equal(t, s, got)
	}

	_, ok := StatusFromLabel("✅")
	assert.False(t, ok)
}

func TestTaskRowStatus(t *testing.T) {
	row := TaskRow{ID: "1.1", Label: LabelVerified}
	s, ok := row.Status()
	require.True(t, ok)
	assert.Equal(t, StatusVerified, s)
}

func TestHistoryEntryString(t *testing.T) {
	e := HistoryEntry{At: "2026/10/15 09:30:00", Action: "完成任务 1.1"}
	assert.Equal(t, "- **2026/10/15 09:30:00**: 完成任务 1.1", e.String())
}
