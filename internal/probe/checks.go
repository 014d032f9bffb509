package probe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Endpoint paths probed on the running application.
const (
	PathRoot     = "/"
	PathHealth   = "/api/trpc/healthCheck.health?input=%7B%7D"
	PathGenerate = "/api/trpc/generate.generatePrompt"
	PathPage     = "/tools/ai-prompt"
)

// DefaultFiles are the project files that must exist, relative to the
// project root.
var DefaultFiles = []string{
	"apps/nextjs/src/app/[locale]/tools/ai-prompt/page.tsx",
	"packages/api/src/router/generate.ts",
	"packages/api/src/server/coze.ts",
	"packages/api/src/router/health_check.ts",
}

// DefaultDependencies must appear in the project's package.json.
var DefaultDependencies = []string{"@saasfly/ui", "@saasfly/api", "@saasfly/db"}

// PageMarkers must all appear in the AI prompt page.
var PageMarkers = []string{"AI Prompt 生成器", "选择AI模型"}

// GeneratePayload is posted to the generate-prompt endpoint.
var GeneratePayload = map[string]string{
	"image_url":  "https://example.com/test.jpg",
	"model_type": "midjourney",
}

var (
	//go:embed schemas/health.json
	healthSchemaJSON string
	//go:embed schemas/generate.json
	generateSchemaJSON string

	healthSchema   = jsonschema.MustCompileString("health.json", healthSchemaJSON)
	generateSchema = jsonschema.MustCompileString("generate.json", generateSchemaJSON)
)

// rpcEnvelope is the {result: {data: ...}} shape returned by remote-procedure
// endpoints.
type rpcEnvelope[T any] struct {
	Result struct {
		Data T `json:"data"`
	} `json:"result"`
}

// CheckPort expects the application root to answer 200.
func (r *Runner) CheckPort(ctx context.Context) bool {
	const name = "app port"

	resp, err := r.do(ctx, http.MethodGet, PathRoot, nil)
	if err != nil {
		r.record(ProbePort, name, false, "connection failed: "+err.Error())
		return false
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		r.record(ProbePort, name, false, fmt.Sprintf("status code: %d", resp.StatusCode))
		return false
	}
	r.record(ProbePort, name, true, "application is running")
	return true
}

// CheckHealth expects the health-check procedure to answer 200 with a
// database status.
func (r *Runner) CheckHealth(ctx context.Context) bool {
	const name = "health API"

	resp, err := r.do(ctx, http.MethodGet, PathHealth, nil)
	if err != nil {
		r.record(ProbeHealth, name, false, "request failed: "+err.Error())
		return false
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		r.record(ProbeHealth, name, false, fmt.Sprintf("status code: %d", resp.StatusCode))
		return false
	}

	var body rpcEnvelope[struct {
		Database struct {
			Status any `json:"status"`
		} `json:"database"`
	}]
	if err := decodeValidated(resp.Body, healthSchema, &body); err != nil {
		r.record(ProbeHealth, name, false, err.Error())
		return false
	}
	r.record(ProbeHealth, name, true, "database status: "+databaseStatus(body.Result.Data.Database.Status))
	return true
}

// databaseStatus renders the reported status: a non-empty string as given,
// true as "ok", anything else as "unknown".
func databaseStatus(v any) string {
	switch s := v.(type) {
	case string:
		if s != "" {
			return s
		}
	case bool:
		if s {
			return "ok"
		}
	}
	return "unknown"
}

// CheckGenerate posts GeneratePayload and expects a non-empty prompt back.
func (r *Runner) CheckGenerate(ctx context.Context) bool {
	const name = "generate API"

	payload, err := json.Marshal(GeneratePayload)
	if err != nil {
		r.record(ProbeGenerate, name, false, "request failed: "+err.Error())
		return false
	}

	resp, err := r.do(ctx, http.MethodPost, PathGenerate, payload)
	if err != nil {
		r.record(ProbeGenerate, name, false, "request failed: "+err.Error())
		return false
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		r.record(ProbeGenerate, name, false, fmt.Sprintf("status code: %d", resp.StatusCode))
		return false
	}

	var body rpcEnvelope[struct {
		Prompt string `json:"prompt"`
	}]
	if err := decodeValidated(resp.Body, generateSchema, &body); err != nil {
		r.record(ProbeGenerate, name, false, err.Error())
		return false
	}
	r.record(ProbeGenerate, name, true, "returned a valid prompt")
	return true
}

// CheckPage expects the AI prompt page to answer 200 and contain every
// PageMarkers string.
func (r *Runner) CheckPage(ctx context.Context) bool {
	const name = "AI prompt page"

	resp, err := r.do(ctx, http.MethodGet, PathPage, nil)
	if err != nil {
		r.record(ProbePage, name, false, "request failed: "+err.Error())
		return false
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		r.record(ProbePage, name, false, fmt.Sprintf("status code: %d", resp.StatusCode))
		return false
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		r.record(ProbePage, name, false, "request failed: "+err.Error())
		return false
	}
	var missing []string
	for _, marker := range PageMarkers {
		if !bytes.Contains(html, []byte(marker)) {
			missing = append(missing, marker)
		}
	}
	if len(missing) > 0 {
		r.record(ProbePage, name, false, "page content missing: "+strings.Join(missing, ", "))
		return false
	}
	r.record(ProbePage, name, true, "page content ok")
	return true
}

// CheckFiles expects every configured file to exist under the project root.
// Each missing file produces its own failed result; a single passing result
// is recorded when all files exist.
func (r *Runner) CheckFiles(ctx context.Context) bool {
	allExist := true
	for _, file := range r.files {
		_, err := os.Stat(filepath.Join(r.projectRoot, filepath.FromSlash(file)))
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			allExist = false
			r.record(ProbeFiles, "file check: "+file, false, "file does not exist")
		default:
			r.record(ProbeFiles, "file system check", false, "check failed: "+err.Error())
			return false
		}
	}
	if allExist {
		r.record(ProbeFiles, "key files", true, "all key files exist")
	}
	return allExist
}

// CheckDependencies expects every configured package in the dependencies
// of the project's package.json.
func (r *Runner) CheckDependencies(ctx context.Context) bool {
	const name = "dependencies"

	data, err := os.ReadFile(filepath.Join(r.projectRoot, "package.json"))
	if err != nil {
		r.record(ProbeDeps, name, false, "check failed: "+err.Error())
		return false
	}
	var manifest struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		r.record(ProbeDeps, name, false, "check failed: "+err.Error())
		return false
	}

	var missing []string
	for _, dep := range r.deps {
		if manifest.Dependencies[dep] == "" {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		r.record(ProbeDeps, name, false, "missing dependencies: "+strings.Join(missing, ", "))
		return false
	}
	r.record(ProbeDeps, name, true, "all required dependencies present")
	return true
}

func (r *Runner) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return r.client.Do(req)
}

// decodeValidated reads a JSON body, validates it against schema and
// decodes it into v.
func decodeValidated(body io.Reader, schema *jsonschema.Schema, v any) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("unexpected response shape: %s", schemaMessage(err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// schemaMessage reduces a validation error to its first leaf cause.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
