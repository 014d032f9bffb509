package ledger

import (
	"regexp"
	"strconv"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// fieldKind names a summary field that UpdateStatistics rewrites.
type fieldKind int

const (
	fieldTotals fieldKind = iota
	fieldCompleted
	fieldPercent
	fieldUpdated
)

// Summary field patterns. Each is matched against non-row lines; the first
// line that matches owns the field. Capture groups alternate between kept
// text and the value being replaced.
var fieldPatterns = map[fieldKind]*regexp.Regexp{
	fieldTotals: regexp.MustCompile(
		`(\| \*\*总任务数\*\*: )(.*?)(\s*\|\s*\*\*已完成\*\*: )(.*?)(\s*\|\s*\*\*进行中\*\*: )(.*?)(\s*\|\s*\*\*待开始\*\*: )(.*?)(\s*\|)`),
	fieldCompleted: regexp.MustCompile(`(- \*\*已完成\*\*: )(.*?)( \()`),
	fieldPercent:   regexp.MustCompile(`(\(.*?\) \()(.*?)(%\))`),
	fieldUpdated:   regexp.MustCompile(`(\*此文档会随着项目进度自动更新，最后更新时间：)(.*?)(\*)`),
}

// fieldOrder fixes the order fields are located and rewritten in.
var fieldOrder = []fieldKind{fieldTotals, fieldCompleted, fieldPercent, fieldUpdated}

func (l *Ledger) locateFields(ln *line) {
	for _, kind := range fieldOrder {
		if _, taken := l.fields[kind]; taken {
			continue
		}
		if fieldPatterns[kind].MatchString(ln.text) {
			l.fields[kind] = ln
		}
	}
}

// Statistics counts task rows by status. Total is the number of rows whose
// id cell is a dotted number, whatever their status.
func (l *Ledger) Statistics() types.Stats {
	var stats types.Stats
	for _, ln := range l.lines {
		if ln.row == nil {
			continue
		}
		stats.Total++
		if s, ok := types.StatusFromLabel(ln.row.cell(colStatus)); ok {
			stats.Add(s)
		}
	}
	return stats
}

// UpdateStatistics recomputes the statistics and rewrites the summary
// fields: the totals line, the completed count, the completion percentage
// and the last-updated sentence. A field missing from the document is
// skipped. The document is persisted afterwards.
func (l *Ledger) UpdateStatistics() (types.Stats, error) {
	stats := l.Statistics()

	values := map[fieldKind]map[int]string{
		fieldTotals: {
			2: strconv.Itoa(stats.Total),
			4: strconv.Itoa(stats.Completed),
			6: strconv.Itoa(stats.InProgress),
			8: strconv.Itoa(stats.Pending),
		},
		fieldCompleted: {2: strconv.Itoa(stats.Completed)},
		fieldPercent:   {2: stats.CompletionRate()},
		fieldUpdated:   {2: l.timestamp()},
	}

	for _, kind := range fieldOrder {
		ln, ok := l.fields[kind]
		if !ok {
			l.logger.Debug("summary field missing", "field", kind)
			continue
		}
		ln.text = replaceGroups(fieldPatterns[kind], ln.text, values[kind])
	}

	if err := l.Save(); err != nil {
		return stats, err
	}
	l.logger.Info("statistics updated",
		"total", stats.Total,
		"completed", stats.Completed,
		"in_progress", stats.InProgress,
		"pending", stats.Pending,
		"verified", stats.Verified,
		"failed", stats.Failed)
	return stats, nil
}

// replaceGroups rewrites the given capture groups of the first match of re
// in text. Groups not listed keep their matched text.
func replaceGroups(re *regexp.Regexp, text string, groups map[int]string) string {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}

	out := text[:loc[0]]
	for g := 1; g < len(loc)/2; g++ {
		start, end := loc[2*g], loc[2*g+1]
		if start < 0 {
			continue
		}
		if v, ok := groups[g]; ok {
			out += v
		} else {
			out += text[start:end]
		}
	}
	return out + text[loc[1]:]
}

func (k fieldKind) String() string {
	switch k {
	case fieldTotals:
		return "totals"
	case fieldCompleted:
		return "completed"
	case fieldPercent:
		return "percent"
	case fieldUpdated:
		return "last_updated"
	default:
		return "unknown"
	}
}
