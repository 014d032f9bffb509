// Package ledger reads, updates and writes the Markdown task ledger.
//
// The ledger is parsed once into an ordered list of lines. Task rows,
// summary fields and the update history are recognized during the parse and
// carry structured state; every other line is kept verbatim. Mutations edit
// the structured state and re-render only the affected lines, then the whole
// document is flushed to disk atomically.
//
// Concurrent invocations against the same file are not coordinated: the last
// writer wins.
package ledger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/natefinch/atomic"

	"github.com/mesh-intelligence/taskledger/internal/logging"
	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// Timestamp layouts used when writing into the ledger.
const (
	TimestampLayout = "2006/1/2 15:04:05"
	DateLayout      = "2006/1/2"
)

// Options configures a Ledger. Zero values select time.Now, the local zone
// and a discarding logger.
type Options struct {
	Clock    types.Clock
	Location *time.Location
	Logger   *log.Logger
}

// Ledger is an in-memory task ledger bound to a file path.
type Ledger struct {
	path   string
	lines  []*line
	fields map[fieldKind]*line
	eol    string // "\r" for CRLF documents, kept on inserted lines

	clock  types.Clock
	loc    *time.Location
	logger *log.Logger
}

// line is one line of the ledger. row is set for task rows; text is the
// current rendering and is what Save writes.
type line struct {
	text string
	row  *row
}

// Open reads the ledger at path and parses it.
func Open(path string, opts Options) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	l := Parse(string(data), opts)
	l.path = path
	l.logger.Debug("ledger loaded", "path", path, "lines", len(l.lines), "rows", len(l.Rows()))
	return l, nil
}

// Parse builds a Ledger from content without binding it to a file. Save on
// such a ledger returns ErrLedgerNotLoaded.
func Parse(content string, opts Options) *Ledger {
	l := &Ledger{
		fields: make(map[fieldKind]*line),
		clock:  opts.Clock,
		loc:    opts.Location,
		logger: opts.Logger,
	}
	if l.clock == nil {
		l.clock = time.Now
	}
	if l.loc == nil {
		l.loc = time.Local
	}
	if l.logger == nil {
		l.logger = logging.Discard()
	}

	if strings.Contains(content, "\r\n") {
		l.eol = "\r"
	}
	for _, text := range strings.Split(content, "\n") {
		ln := &line{text: text}
		if r, ok := parseRow(text); ok {
			ln.row = r
		} else {
			l.locateFields(ln)
		}
		l.lines = append(l.lines, ln)
	}
	return l
}

// Path returns the file the ledger was opened from.
func (l *Ledger) Path() string {
	return l.path
}

// String renders the full document.
func (l *Ledger) String() string {
	texts := make([]string, len(l.lines))
	for i, ln := range l.lines {
		texts[i] = ln.text
	}
	return strings.Join(texts, "\n")
}

// Save writes the whole document back to its file.
func (l *Ledger) Save() error {
	if l.path == "" {
		return types.ErrLedgerNotLoaded
	}
	if err := atomic.WriteFile(l.path, strings.NewReader(l.String())); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	l.logger.Debug("ledger saved", "path", l.path)
	return nil
}

// Rows returns the task rows in document order.
func (l *Ledger) Rows() []types.TaskRow {
	var rows []types.TaskRow
	for i, ln := range l.lines {
		if ln.row != nil {
			rows = append(rows, ln.row.taskRow(i))
		}
	}
	return rows
}

// Task returns the first row with the given id.
func (l *Ledger) Task(id string) (types.TaskRow, bool) {
	for i, ln := range l.lines {
		if ln.row != nil && ln.row.id() == id {
			return ln.row.taskRow(i), true
		}
	}
	return types.TaskRow{}, false
}

func (l *Ledger) now() time.Time {
	return l.clock().In(l.loc)
}

func (l *Ledger) timestamp() string {
	return l.now().Format(TimestampLayout)
}

func (l *Ledger) date() string {
	return l.now().Format(DateLayout)
}

// newLine builds a line to insert, ending like the rest of the document.
func (l *Ledger) newLine(text string) *line {
	return &line{text: text + l.eol}
}

// insertLines inserts lns before index at.
func (l *Ledger) insertLines(at int, lns ...*line) {
	l.lines = append(l.lines[:at], append(lns, l.lines[at:]...)...)
}
