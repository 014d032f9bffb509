package ledger

import (
	"fmt"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// UpdateStatus sets the status of the row identified by taskID and, when
// notes is non-empty, appends "<notes> (<timestamp>)" to its notes cell.
// The document is persisted before returning true.
//
// An unknown taskID returns false with a nil error and leaves the document
// untouched. Rows without a notes column cannot be updated and are treated
// the same way.
func (l *Ledger) UpdateStatus(taskID string, status types.Status, notes string) (bool, error) {
	if taskID == "" {
		return false, types.ErrEmptyTaskID
	}
	if !status.Valid() {
		return false, types.ErrInvalidStatus
	}

	ln := l.findRow(taskID)
	if ln == nil {
		l.logger.Debug("task not found", "task", taskID)
		return false, nil
	}

	r := ln.row
	r.setCell(colStatus, status.Label())
	if notes != "" {
		appended := fmt.Sprintf("%s (%s)", escapeCell(notes), l.timestamp())
		if old := r.cell(colNotes); old != "" {
			appended = old + " " + appended
		}
		r.setCell(colNotes, appended)
	}
	ln.text = r.render()

	if err := l.Save(); err != nil {
		return false, err
	}
	l.logger.Info("task updated", "task", taskID, "status", status)
	return true, nil
}

// CompleteTask marks a task completed with a dated completion note.
func (l *Ledger) CompleteTask(taskID, notes string) (bool, error) {
	note := fmt.Sprintf("✅ 完成 (%s)", l.date())
	if notes != "" {
		note += ": " + notes
	}
	return l.UpdateStatus(taskID, types.StatusCompleted, note)
}

// StartTask marks a task in progress.
func (l *Ledger) StartTask(taskID, notes string) (bool, error) {
	note := "🔄 开始开发"
	if notes != "" {
		note = "🔄 开始: " + notes
	}
	return l.UpdateStatus(taskID, types.StatusInProgress, note)
}

// VerifyTask marks a task verified when success is true and failed
// otherwise.
func (l *Ledger) VerifyTask(taskID string, success bool, notes string) (bool, error) {
	status, note := types.StatusVerified, "✅ 验证通过"
	if !success {
		status, note = types.StatusFailed, "❌ 验证失败"
	}
	if notes != "" {
		note += ": " + notes
	}
	return l.UpdateStatus(taskID, status, note)
}

func (l *Ledger) findRow(taskID string) *line {
	for _, ln := range l.lines {
		if ln.row != nil && ln.row.id() == taskID {
			if !ln.row.updatable() {
				return nil
			}
			return ln
		}
	}
	return nil
}
