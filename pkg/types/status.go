package types

import (
	"errors"
	"strings"
)

// Status is the lifecycle state of a task row.
type Status string

// Task statuses. A row moves through these as work starts, completes and is
// verified by the probe runner.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusVerified   Status = "verified"
	StatusFailed     Status = "failed"
)

// Status labels as they appear in the ledger's status column. Each label is
// a symbol followed by the ledger-language name of the status.
const (
	LabelPending    = "⏳ 待开始"
	LabelInProgress = "🔄 进行中"
	LabelCompleted  = "✅ 已完成"
	LabelVerified   = "✅ 已验证"
	LabelFailed     = "❌ 验证失败"
)

// ErrInvalidStatus is returned when a status name is not recognized.
var ErrInvalidStatus = errors.New("invalid status")

// statusLabels maps each status to its rendered label.
var statusLabels = map[Status]string{
	StatusPending:    LabelPending,
	StatusInProgress: LabelInProgress,
	StatusCompleted:  LabelCompleted,
	StatusVerified:   LabelVerified,
	StatusFailed:     LabelFailed,
}

// AllStatuses lists every status in ledger order.
var AllStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusVerified,
	StatusFailed,
}

// Label returns the ledger label for s, or an empty string for an unknown
// status.
func (s Status) Label() string {
	return statusLabels[s]
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a status name to a Status. Names are matched
// case-insensitively and "-" is accepted in place of "_".
// Returns ErrInvalidStatus for anything else.
func ParseStatus(name string) (Status, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	s := Status(normalized)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// StatusFromLabel returns the status whose label appears in cell.
// The most specific label wins, so "✅ 已验证" is never read as completed.
func StatusFromLabel(cell string) (Status, bool) {
	for _, s := range AllStatuses {
		if strings.Contains(cell, statusLabels[s]) {
			return s, true
		}
	}
	return "", false
}
