package probe

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

//go:embed plan.toml
var defaultPlanTOML string

// Plan maps probe outcomes onto ledger tasks.
type Plan struct {
	Verify []Step `toml:"verify"`
}

// Step verifies Task when every probe in Probes passed.
type Step struct {
	Task   string   `toml:"task"`
	Probes []string `toml:"probes"`
	Note   string   `toml:"note"`
}

// Plan errors.
var (
	ErrPlanEmptyTask    = errors.New("plan step has no task")
	ErrPlanNoProbes     = errors.New("plan step has no probes")
	ErrPlanUnknownProbe = errors.New("plan step names an unknown probe")
)

// DefaultPlan returns the built-in verification plan.
func DefaultPlan() (*Plan, error) {
	return parsePlan(defaultPlanTOML)
}

// LoadPlan reads a plan from a TOML file. An empty path loads DefaultPlan.
func LoadPlan(path string) (*Plan, error) {
	if path == "" {
		return DefaultPlan()
	}
	var p Plan
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return &p, nil
}

func parsePlan(data string) (*Plan, error) {
	var p Plan
	if _, err := toml.Decode(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every step names a task and only known probes.
func (p *Plan) Validate() error {
	for i, s := range p.Verify {
		if s.Task == "" {
			return fmt.Errorf("step %d: %w", i+1, ErrPlanEmptyTask)
		}
		if len(s.Probes) == 0 {
			return fmt.Errorf("task %s: %w", s.Task, ErrPlanNoProbes)
		}
		for _, name := range s.Probes {
			if !slices.Contains(Names, name) {
				return fmt.Errorf("task %s: %w: %q", s.Task, ErrPlanUnknownProbe, name)
			}
		}
	}
	return nil
}

// Updater is the part of the ledger a plan writes to.
type Updater interface {
	VerifyTask(taskID string, success bool, notes string) (bool, error)
	Record(action string) error
	UpdateStatistics() (types.Stats, error)
}

// Outcome describes what a plan step did.
type Outcome struct {
	Task    string
	Passed  bool
	Applied bool // false when the step was skipped
	Found   bool // false when the ledger has no updatable row for Task
}

// Apply verifies every task whose probes all passed in run. When markFailed
// is set, tasks with a failing probe are marked failed; otherwise they are
// left untouched. If any task changed, a history entry is recorded and the
// summary statistics are refreshed.
func (p *Plan) Apply(run *types.Run, u Updater, markFailed bool) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(p.Verify))
	changed := 0

	for _, s := range p.Verify {
		passed := true
		for _, name := range s.Probes {
			if !run.ProbePassed(name) {
				passed = false
				break
			}
		}

		out := Outcome{Task: s.Task, Passed: passed}
		if passed || markFailed {
			found, err := u.VerifyTask(s.Task, passed, s.Note)
			if err != nil {
				return outcomes, fmt.Errorf("verify task %s: %w", s.Task, err)
			}
			out.Applied = true
			out.Found = found
			if found {
				changed++
			}
		}
		outcomes = append(outcomes, out)
	}

	if changed == 0 {
		return outcomes, nil
	}

	action := "完成所有功能验证"
	if run.Failed() > 0 {
		action = fmt.Sprintf("功能验证: %d/%d 通过", run.Passed(), len(run.Results))
	}
	if err := u.Record(action); err != nil {
		return outcomes, fmt.Errorf("record verification: %w", err)
	}
	if _, err := u.UpdateStatistics(); err != nil {
		return outcomes, fmt.Errorf("update statistics: %w", err)
	}
	return outcomes, nil
}
