package probe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// fakeLedger records the calls a plan makes.
type fakeLedger struct {
	known    map[string]bool
	verified map[string]bool
	notes    map[string]string
	actions  []string
	updates  int
	err      error
}

func newFakeLedger(ids ...string) *fakeLedger {
	f := &fakeLedger{known: map[string]bool{}, verified: map[string]bool{}, notes: map[string]string{}}
	for _, id := range ids {
		f.known[id] = true
	}
	return f
}

func (f *fakeLedger) VerifyTask(id string, success bool, notes string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if !f.known[id] {
		return false, nil
	}
	f.verified[id] = success
	f.notes[id] = notes
	return true, nil
}

func (f *fakeLedger) Record(action string) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeLedger) UpdateStatistics() (types.Stats, error) {
	f.updates++
	return types.Stats{}, nil
}

func runWith(passed map[string]bool) *types.Run {
	run := &types.Run{}
	for _, name := range Names {
		ok, listed := passed[name]
		if !listed {
			ok = true
		}
		run.Results = append(run.Results, types.ProbeResult{Name: name, Probe: name, Success: ok})
	}
	return run
}

func TestDefaultPlan(t *testing.T) {
	p, err := DefaultPlan()
	require.NoError(t, err)
	require.Len(t, p.Verify, 10)
	assert.Equal(t, Step{Task: "1.1", Probes: []string{ProbePort}, Note: "应用端口访问正常"}, p.Verify[0])
	assert.Equal(t, Step{Task: "2.5", Probes: []string{ProbeGenerate, ProbePage, ProbeFiles}, Note: "前后端集成正常"}, p.Verify[9])
}

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path loads default", func(t *testing.T) {
		p, err := LoadPlan("")
		require.NoError(t, err)
		assert.Len(t, p.Verify, 10)
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(dir, "plan.toml")
		require.NoError(t, os.WriteFile(path, []byte("[[verify]]\ntask = \"3.1\"\nprobes = [\"deps\"]\nnote = \"ok\"\n"), 0o644))
		p, err := LoadPlan(path)
		require.NoError(t, err)
		assert.Equal(t, []Step{{Task: "3.1", Probes: []string{"deps"}, Note: "ok"}}, p.Verify)
	})

	t.Run("unknown probe", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[[verify]]\ntask = \"3.1\"\nprobes = [\"ping\"]\n"), 0o644))
		_, err := LoadPlan(path)
		assert.ErrorIs(t, err, ErrPlanUnknownProbe)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPlan(filepath.Join(dir, "missing.toml"))
		assert.Error(t, err)
	})
}

func TestPlanValidate(t *testing.T) {
	assert.ErrorIs(t, (&Plan{Verify: []Step{{Probes: []string{"port"}}}}).Validate(), ErrPlanEmptyTask)
	assert.ErrorIs(t, (&Plan{Verify: []Step{{Task: "1.1"}}}).Validate(), ErrPlanNoProbes)
	assert.NoError(t, (&Plan{}).Validate())
}

func TestApplyAllPassed(t *testing.T) {
	p, err := DefaultPlan()
	require.NoError(t, err)
	l := newFakeLedger("1.1", "1.2", "2.4")

	outcomes, err := p.Apply(runWith(nil), l, false)
	require.NoError(t, err)
	require.Len(t, outcomes, 10)

	assert.Equal(t, map[string]bool{"1.1": true, "1.2": true, "2.4": true}, l.verified)
	assert.Equal(t, "Mock API正常", l.notes["2.4"])
	assert.Equal(t, []string{"完成所有功能验证"}, l.actions)
	assert.Equal(t, 1, l.updates)

	for _, o := range outcomes {
		assert.True(t, o.Passed)
		assert.True(t, o.Applied)
		assert.Equal(t, l.known[o.Task], o.Found, o.Task)
	}
}

func TestApplyPartialFailure(t *testing.T) {
	p, err := DefaultPlan()
	require.NoError(t, err)
	l := newFakeLedger("1.1", "1.2", "2.1")

	run := runWith(map[string]bool{ProbePage: false})
	outcomes, err := p.Apply(run, l, false)
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"1.1": true}, l.verified, "tasks depending on page are untouched")
	assert.Equal(t, []string{"功能验证: 5/6 通过"}, l.actions)

	for _, o := range outcomes {
		if o.Task == "1.2" {
			assert.False(t, o.Passed)
			assert.False(t, o.Applied)
		}
	}
}

func TestApplyMarkFailed(t *testing.T) {
	p, err := DefaultPlan()
	require.NoError(t, err)
	l := newFakeLedger("1.1", "1.2")

	_, err = p.Apply(runWith(map[string]bool{ProbePage: false}), l, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"1.1": true, "1.2": false}, l.verified)
}

func TestApplyNothingChanged(t *testing.T) {
	p, err := DefaultPlan()
	require.NoError(t, err)
	l := newFakeLedger()

	_, err = p.Apply(runWith(nil), l, false)
	require.NoError(t, err)
	assert.Empty(t, l.actions)
	assert.Zero(t, l.updates)
}

func TestApplyPropagatesErrors(t *testing.T) {
	p, err := DefaultPlan()
	require.NoError(t, err)
	boom := errors.New("disk full")
	l := newFakeLedger("1.1")
	l.err = boom

	_, err = p.Apply(runWith(nil), l, false)
	assert.ErrorIs(t, err, boom)
}
