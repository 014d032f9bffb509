package types

import (
	"strconv"
	"time"
)

// ProbeResult is the outcome of one check performed by the probe runner.
// Probe is the name of the probe that produced it; a single probe may
// produce several results (one per missing file, for example).
type ProbeResult struct {
	Name    string    `json:"name"`
	Probe   string    `json:"probe"`
	Success bool      `json:"success"`
	Details string    `json:"details"`
	At      time.Time `json:"at"`
}

// Run is one complete pass of the probe runner.
type Run struct {
	ID         string        `json:"id"` // UUID v7.
	BaseURL    string        `json:"base_url"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Results    []ProbeResult `json:"results"`
}

// Passed returns the number of successful results.
func (r *Run) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// Failed returns the number of failed results.
func (r *Run) Failed() int {
	return len(r.Results) - r.Passed()
}

// SuccessRate returns passed / total * 100 with one decimal.
func (r *Run) SuccessRate() string {
	rate := float64(r.Passed()) / float64(len(r.Results)) * 100
	return strconv.FormatFloat(rate, 'f', 1, 64)
}

// ProbePassed reports whether probe produced at least one result and every
// result it produced succeeded.
func (r *Run) ProbePassed(probe string) bool {
	seen := false
	for _, res := range r.Results {
		if res.Probe != probe {
			continue
		}
		if !res.Success {
			return false
		}
		seen = true
	}
	return seen
}
