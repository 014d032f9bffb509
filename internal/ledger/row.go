package ledger

import (
	"regexp"
	"strings"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// Column positions within a task row.
const (
	colID          = 0
	colDescription = 1
	colStatus      = 2
	colNotes       = 4
)

// rowPattern matches the start of a task row: "| N.N |".
var rowPattern = regexp.MustCompile(`^\| \d+\.\d+ \|`)

// row is a parsed task row. cells hold the raw text between pipes, padding
// included, so untouched cells render exactly as read. suffix is whatever
// follows the closing pipe (usually nothing, or "\r").
type row struct {
	cells  []string
	suffix string
}

// parseRow splits a task row into cells. Escaped pipes ("\|") stay inside
// their cell.
func parseRow(text string) (*row, bool) {
	if !rowPattern.MatchString(text) {
		return nil, false
	}

	r := &row{}
	var cell strings.Builder
	body := text[1:]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) && body[i+1] == '|' {
			cell.WriteString(`\|`)
			i++
			continue
		}
		if c == '|' {
			r.cells = append(r.cells, cell.String())
			cell.Reset()
			continue
		}
		cell.WriteByte(c)
	}
	r.suffix = cell.String()
	return r, true
}

func (r *row) render() string {
	return "|" + strings.Join(r.cells, "|") + "|" + r.suffix
}

func (r *row) cell(i int) string {
	if i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r *row) setCell(i int, value string) {
	if value == "" {
		r.cells[i] = " "
		return
	}
	r.cells[i] = " " + value + " "
}

func (r *row) id() string {
	return r.cell(colID)
}

// updatable reports whether the row has both a status and a notes column.
func (r *row) updatable() bool {
	return len(r.cells) > colNotes
}

func (r *row) taskRow(lineNo int) types.TaskRow {
	return types.TaskRow{
		ID:          r.id(),
		Description: r.cell(colDescription),
		Label:       r.cell(colStatus),
		Notes:       r.cell(colNotes),
		Line:        lineNo,
	}
}

// escapeCell makes free text safe to place inside a table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
