// Package probe checks a locally running instance of the web application.
//
// A Runner performs a fixed sequence of probes (HTTP endpoints, page
// content, project files and dependencies) strictly one after another. Each
// probe turns any failure into a failed result and never stops the
// remaining probes. A Plan then maps the probes that passed onto ledger
// tasks.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/taskledger/internal/logging"
	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// Probe names, in execution order.
const (
	ProbePort     = "port"
	ProbeHealth   = "health"
	ProbeGenerate = "generate"
	ProbePage     = "page"
	ProbeFiles    = "files"
	ProbeDeps     = "deps"
)

// DefaultBaseURL is where the development server listens.
const DefaultBaseURL = "http://localhost:12883"

// Names lists every probe in the order Run executes them.
var Names = []string{ProbePort, ProbeHealth, ProbeGenerate, ProbePage, ProbeFiles, ProbeDeps}

// Options configures a Runner.
type Options struct {
	BaseURL     string
	ProjectRoot string
	Timeout     time.Duration // zero keeps the client default
	Client      *http.Client  // overrides Timeout when set
	Clock       types.Clock
	Logger      *log.Logger
	Out         io.Writer // progress lines; nil discards them

	// Files and Dependencies override the default project checks.
	Files        []string
	Dependencies []string
}

// Runner executes the probes and collects their results.
type Runner struct {
	baseURL     string
	projectRoot string
	client      *http.Client
	clock       types.Clock
	logger      *log.Logger
	out         io.Writer
	files       []string
	deps        []string

	results []types.ProbeResult
}

// step is one entry of the probe sequence.
type step struct {
	name    string
	section string
	check   func(r *Runner, ctx context.Context) bool
}

var sequence = []step{
	{ProbePort, "📡 Checking application service...", (*Runner).CheckPort},
	{ProbeHealth, "🔌 Checking API endpoints...", (*Runner).CheckHealth},
	{ProbeGenerate, "", (*Runner).CheckGenerate},
	{ProbePage, "🌐 Checking pages...", (*Runner).CheckPage},
	{ProbeFiles, "📁 Checking project files...", (*Runner).CheckFiles},
	{ProbeDeps, "📦 Checking dependencies...", (*Runner).CheckDependencies},
}

// NewRunner creates a Runner. BaseURL defaults to DefaultBaseURL.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		projectRoot: opts.ProjectRoot,
		client:      opts.Client,
		clock:       opts.Clock,
		logger:      opts.Logger,
		out:         opts.Out,
		files:       opts.Files,
		deps:        opts.Dependencies,
	}
	if r.baseURL == "" {
		r.baseURL = DefaultBaseURL
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: opts.Timeout}
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.logger == nil {
		r.logger = logging.Discard()
	}
	if r.out == nil {
		r.out = io.Discard
	}
	if r.files == nil {
		r.files = DefaultFiles
	}
	if r.deps == nil {
		r.deps = DefaultDependencies
	}
	return r
}

// Run executes every probe in order and returns the completed run.
// Cancelling ctx makes the remaining HTTP probes fail fast; they are still
// recorded.
func (r *Runner) Run(ctx context.Context) *types.Run {
	r.results = nil

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	run := &types.Run{
		ID:        id.String(),
		BaseURL:   r.baseURL,
		StartedAt: r.clock(),
	}

	fmt.Fprintln(r.out, "🔍 Starting project validation...")
	for _, s := range sequence {
		if s.section != "" {
			fmt.Fprintln(r.out)
			fmt.Fprintln(r.out, s.section)
		}
		start := time.Now()
		ok := s.check(r, ctx)
		r.logger.Debug("probe finished", "probe", s.name, "success", ok, "elapsed", time.Since(start))
	}

	run.Results = append(run.Results, r.results...)
	run.FinishedAt = r.clock()
	return run
}

// Results returns the results collected so far.
func (r *Runner) Results() []types.ProbeResult {
	return append([]types.ProbeResult(nil), r.results...)
}

// record appends a result and prints its status line.
func (r *Runner) record(probe, name string, success bool, details string) {
	r.results = append(r.results, types.ProbeResult{
		Name:    name,
		Probe:   probe,
		Success: success,
		Details: details,
		At:      r.clock(),
	})
	fmt.Fprintf(r.out, "%s %s: %s\n", icon(success), name, details)
}

func icon(success bool) string {
	if success {
		return color.New(color.FgGreen).Sprint("✅")
	}
	return color.New(color.FgRed).Sprint("❌")
}
