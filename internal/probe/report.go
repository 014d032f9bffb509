package probe

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

const reportTimeLayout = "2006/1/2 15:04:05"

// Report writes the summary of a run: totals, success rate and one line per
// result in local time, with details for failures.
func Report(w io.Writer, run *types.Run, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	rule := strings.Repeat("=", 50)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "📊 Validation report")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total checks: %d\n", len(run.Results))
	fmt.Fprintf(w, "Passed: %s\n", color.GreenString("%d", run.Passed()))
	fmt.Fprintf(w, "Failed: %s\n", color.RedString("%d", run.Failed()))
	fmt.Fprintf(w, "Success rate: %s%%\n", run.SuccessRate())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Details:")
	for _, res := range run.Results {
		fmt.Fprintf(w, "%s [%s] %s\n", icon(res.Success), res.At.In(loc).Format(reportTimeLayout), res.Name)
		if !res.Success {
			fmt.Fprintf(w, "    -> %s\n", res.Details)
		}
	}
}
