package ledger

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

func TestStatistics(t *testing.T) {
	l, _ := openFixture(t)

	assert.Equal(t, types.Stats{
		Total:      6,
		Completed:  1,
		InProgress: 1,
		Pending:    3,
		Failed:     1,
	}, l.Statistics())
}

func TestUpdateStatisticsRewritesSummaryFields(t *testing.T) {
	l, path := openFixture(t)

	_, err := l.CompleteTask("1.1", "")
	require.NoError(t, err)

	stats, err := l.UpdateStatistics()
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Completed)

	lines := readLines(t, path)
	assert.Contains(t, lines, "| **总任务数**: 6 | **已完成**: 2 | **进行中**: 1 | **待开始**: 2 |")
	assert.Contains(t, lines, "- **已完成**: 2 (共 6 项) (33.3%)")
	assert.Contains(t, lines, "*此文档会随着项目进度自动更新，最后更新时间：2026/10/15 09:30:00*")
}

func TestUpdateStatisticsIsIdempotent(t *testing.T) {
	l, path := openFixture(t)

	_, err := l.UpdateStatistics()
	require.NoError(t, err)
	first := readLines(t, path)

	_, err = l.UpdateStatistics()
	require.NoError(t, err)
	assert.Equal(t, first, readLines(t, path))
}

func TestUpdateStatisticsEmptyLedger(t *testing.T) {
	path := writeLedger(t, "# 空清单\n\n- **已完成**: 0 (共 0 项) (0.0%)\n")
	l, err := Open(path, testOptions())
	require.NoError(t, err)

	var stats types.Stats
	require.NotPanics(t, func() {
		stats, err = l.UpdateStatistics()
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Contains(t, readLines(t, path), "- **已完成**: 0 (共 0 项) (NaN%)")
}

func TestUpdateStatisticsMissingFieldsAreSkipped(t *testing.T) {
	content := "| 1.1 | a | ✅ 已完成 | | |\n| 1.2 | b | ⏳ 待开始 | | |\n"
	path := writeLedger(t, content)
	l, err := Open(path, testOptions())
	require.NoError(t, err)

	stats, err := l.UpdateStatistics()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, content, l.String())
}

func TestStatisticsRoundTrip(t *testing.T) {
	l, path := openFixture(t)

	_, err := l.VerifyTask("2.3", true, "")
	require.NoError(t, err)
	_, err = l.UpdateStatistics()
	require.NoError(t, err)

	reopened, err := Open(path, testOptions())
	require.NoError(t, err)

	rowPattern := regexp.MustCompile(`^\| \d+\.\d+ \|`)
	matched := 0
	for _, ln := range readLines(t, path) {
		if rowPattern.MatchString(ln) {
			matched++
		}
	}
	stats := reopened.Statistics()
	assert.Equal(t, matched, stats.Total)
	assert.Equal(t, 1, stats.Verified)
	assert.Contains(t, readLines(t, path), "| **总任务数**: 6 | **已完成**: 1 | **进行中**: 1 | **待开始**: 3 |")
}

func TestReplaceGroups(t *testing.T) {
	re := regexp.MustCompile(`(a=)(\d+)(;)`)
	assert.Equal(t, "x a=42; a=2;", replaceGroups(re, "x a=1; a=2;", map[int]string{2: "42"}))
	assert.Equal(t, "no match", replaceGroups(re, "no match", map[int]string{2: "42"}))
}

// Only the status cell of a task row is counted. Labels in legends, prose or
// notes cells do not move the counters.
func TestStatisticsReadsStatusCellOnly(t *testing.T) {
	content := "图例: ⏳ 待开始 / ✅ 已完成 / ❌ 验证失败\n" +
		"- ✅ 已验证 的任务不再修改\n" +
		"| 任务ID | 任务描述 | 状态 | 验证方法 | 备注 |\n" +
		"| 3.1 | 回归测试 | ⏳ 待开始 | 手动 | 上次 ❌ 验证失败 |\n" +
		"| 3.2 | 上传 | ✅ 已完成 | 浏览器 | 之前 🔄 进行中 |\n" +
		"| 3.3 | 短行 |\n"
	l := Parse(content, testOptions())

	assert.Equal(t, types.Stats{
		Total:     3,
		Pending:   1,
		Completed: 1,
	}, l.Statistics())
}
