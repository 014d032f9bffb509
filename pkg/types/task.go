package types

import (
	"errors"
	"fmt"
	"time"
)

// TaskRow is one record of the ledger table, identified by a dotted numeric
// id such as "1.1". Cells hold the trimmed text between the table pipes.
type TaskRow struct {
	ID          string // Dotted numeric id, unique per ledger.
	Description string // Second cell.
	Label       string // Status cell as written in the ledger.
	Notes       string // Notes cell; empty when the row has no notes column.
	Line        int    // Zero-based line number in the ledger.
}

// Status returns the status encoded in the row's label.
func (r TaskRow) Status() (Status, bool) {
	return StatusFromLabel(r.Label)
}

// HistoryEntry is one append-only line of the ledger's update history.
type HistoryEntry struct {
	At     string // Timestamp as rendered into the ledger.
	Action string
}

// String renders the entry as a ledger bullet line.
func (h HistoryEntry) String() string {
	return fmt.Sprintf("- **%s**: %s", h.At, h.Action)
}

// Ledger errors.
var (
	ErrLedgerNotLoaded = errors.New("ledger is not loaded")
	ErrEmptyTaskID     = errors.New("task id must not be empty")
)

// Clock returns the current time. Ledger and probe code take a Clock so
// timestamps are deterministic under test.
type Clock func() time.Time
