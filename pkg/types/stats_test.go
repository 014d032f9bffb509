package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsAdd(t *testing.T) {
	var s Stats
	for _, st := range []Status{StatusCompleted, StatusCompleted, StatusPending, StatusVerified, StatusFailed, StatusInProgress} {
		s.Add(st)
	}
	assert.Equal(t, Stats{Completed: 2, Pending: 1, Verified: 1, Failed: 1, InProgress: 1}, s)
}

func TestStatsCompletionRate(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  string
	}{
		{"quarter", Stats{Total: 4, Completed: 1}, "25.0"},
		{"thirds round to one decimal", Stats{Total: 3, Completed: 1}, "33.3"},
		{"all done", Stats{Total: 2, Completed: 2}, "100.0"},
		{"none done", Stats{Total: 5}, "0.0"},
		{"empty ledger is NaN", Stats{}, "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stats.CompletionRate())
		})
	}
}

func TestRunCounts(t *testing.T) {
	run := &Run{Results: []ProbeResult{
		{Probe: "port", Success: true},
		{Probe: "files", Success: false},
		{Probe: "files", Success: true},
		{Probe: "deps", Success: true},
	}}
	assert.Equal(t, 3, run.Passed())
	assert.Equal(t, 1, run.Failed())
	assert.Equal(t, "75.0", run.SuccessRate())

	assert.True(t, run.ProbePassed("port"))
	assert.False(t, run.ProbePassed("files"))
	assert.False(t, run.ProbePassed("health"), "a probe with no results has not passed")

	assert.Equal(t, "NaN", (&Run{}).SuccessRate())
}
