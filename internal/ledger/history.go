package ledger

import (
	"regexp"
	"strings"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// History block markers.
const (
	historyHeading = "### **更新历史**"
	historyMarker  = "- ***更新历史***"
	sectionHeading = "## 🔄 **自动更新记录**"
	historyEnd     = "- **最后更新**"
)

// historyEntryPattern matches a history bullet: "- **<when>**: <action>".
// The bold text is taken as written, whatever its date format.
var historyEntryPattern = regexp.MustCompile(`^- \*\*([^*]+)\*\*: (.*)$`)

// Record appends "- **<timestamp>**: <action>" to the update history and
// persists the document.
//
// The entry goes after the last entry of the existing history block. Without
// a block, one is created under the auto-update section heading; without
// that heading, the section and block are appended to the document.
func (l *Ledger) Record(action string) error {
	entry := l.newLine(types.HistoryEntry{
		At:     l.timestamp(),
		Action: strings.NewReplacer("\r", " ", "\n", " ").Replace(action),
	}.String())

	if at, ok := l.historyInsertPoint(); ok {
		l.insertLines(at, entry)
	} else if section := l.indexOf(isSectionHeading); section >= 0 {
		l.insertLines(section+1,
			l.newLine(""),
			l.newLine(historyHeading),
			entry)
	} else {
		end := len(l.lines)
		if end > 0 && l.lines[end-1].text == "" {
			end--
		}
		l.insertLines(end,
			l.newLine(""),
			l.newLine(sectionHeading),
			l.newLine(""),
			l.newLine(historyHeading),
			entry)
	}

	if err := l.Save(); err != nil {
		return err
	}
	l.logger.Debug("history recorded", "action", action)
	return nil
}

// History returns the entries of the history block in document order.
func (l *Ledger) History() []types.HistoryEntry {
	start := l.indexOf(isHistoryHeading)
	if start < 0 {
		return nil
	}
	var entries []types.HistoryEntry
	for i := start + 1; i < len(l.lines); i++ {
		text := l.lines[i].text
		if endsHistoryBlock(text) {
			break
		}
		if !isHistoryEntry(text) {
			continue
		}
		m := historyEntryPattern.FindStringSubmatch(strings.TrimRight(text, "\r"))
		entries = append(entries, types.HistoryEntry{At: m[1], Action: m[2]})
	}
	return entries
}

// historyInsertPoint returns the index right after the last entry of the
// history block, or right after its heading when it has no entries yet.
func (l *Ledger) historyInsertPoint() (int, bool) {
	start := l.indexOf(isHistoryHeading)
	if start < 0 {
		return 0, false
	}
	at := start + 1
	for i := start + 1; i < len(l.lines); i++ {
		text := l.lines[i].text
		if endsHistoryBlock(text) {
			break
		}
		if isHistoryEntry(text) {
			at = i + 1
		}
	}
	return at, true
}

func (l *Ledger) indexOf(match func(string) bool) int {
	for i, ln := range l.lines {
		if match(ln.text) {
			return i
		}
	}
	return -1
}

func isHistoryHeading(text string) bool {
	t := strings.TrimSpace(text)
	return t == historyHeading || t == historyMarker
}

func isSectionHeading(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), sectionHeading)
}

// isHistoryEntry reports whether text is a history bullet. The
// "- **最后更新**:" line has the same shape but closes the block.
func isHistoryEntry(text string) bool {
	t := strings.TrimSpace(text)
	return historyEntryPattern.MatchString(t) && !strings.HasPrefix(t, historyEnd)
}

// endsHistoryBlock reports whether text closes the history block: a new
// heading, the last-updated line or any other non-blank line that is not a
// history bullet.
func endsHistoryBlock(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if strings.HasPrefix(t, "#") {
		return true
	}
	return !isHistoryEntry(t)
}
