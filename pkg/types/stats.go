package types

import "strconv"

// Stats holds the derived status counts of a ledger. It has no identity of
// its own and is recomputed from the task rows on every call.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
	Verified   int `json:"verified"`
	Failed     int `json:"failed"`
}

// Add counts one row with status s.
func (s *Stats) Add(status Status) {
	switch status {
	case StatusCompleted:
		s.Completed++
	case StatusInProgress:
		s.InProgress++
	case StatusPending:
		s.Pending++
	case StatusVerified:
		s.Verified++
	case StatusFailed:
		s.Failed++
	}
}

// CompletionRate returns completed / total * 100 formatted with one decimal.
// A ledger without rows yields "NaN".
func (s Stats) CompletionRate() string {
	rate := float64(s.Completed) / float64(s.Total) * 100
	return strconv.FormatFloat(rate, 'f', 1, 64)
}
