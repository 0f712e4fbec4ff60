// Package batch executes lists of steps against a dispatcher. The do
// command feeds it YAML from stdin and the MCP server feeds it one tool call
// at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/interact"
	"github.com/mj1618/uiloc/internal/logging"
	"github.com/mj1618/uiloc/internal/output"
	"github.com/mj1618/uiloc/internal/resolver"
)

// Result is the output of a batch run.
type Result struct {
	OK        bool         `yaml:"ok"              json:"ok"`
	Action    string       `yaml:"action"          json:"action"`
	Steps     int          `yaml:"steps"           json:"steps"`
	Completed int          `yaml:"completed"       json:"completed"`
	Error     string       `yaml:"error,omitempty" json:"error,omitempty"`
	Results   []StepResult `yaml:"results"         json:"results"`
}

// StepResult is the output for a single step within a batch.
type StepResult struct {
	Step     int                    `yaml:"step,omitempty"     json:"step,omitempty"`
	OK       bool                   `yaml:"ok"                 json:"ok"`
	Action   string                 `yaml:"action"             json:"action"`
	Error    string                 `yaml:"error,omitempty"    json:"error,omitempty"`
	Target   *output.ElementResult  `yaml:"target,omitempty"   json:"target,omitempty"`
	Dest     *output.ElementResult  `yaml:"dest,omitempty"     json:"dest,omitempty"`
	Elements []output.ElementResult `yaml:"elements,omitempty" json:"elements,omitempty"`
	Text     *string                `yaml:"text,omitempty"     json:"text,omitempty"`
	Value    *string                `yaml:"value,omitempty"    json:"value,omitempty"`
	Elapsed  string                 `yaml:"elapsed,omitempty"  json:"elapsed,omitempty"`
	Branch   string                 `yaml:"branch,omitempty"   json:"branch,omitempty"` // if-exists: then or else
	Substeps []StepResult           `yaml:"substeps,omitempty" json:"substeps,omitempty"`
}

// Step is one action with its parameters. if-exists steps carry Then and
// Else branches and try steps carry Substeps.
type Step struct {
	Action   string
	Params   Params
	Then     []Step
	Else     []Step
	Substeps []Step
}

// ParseSteps decodes a YAML list of single-action maps:
//
//	- find: { locator: "name:Save", as: save }
//	- if-exists: { locator: "name:Replace?" }
//	  then:
//	    - click: { locator: "name:Yes" }
//	- try:
//	    - click: { ref: save }
func ParseSteps(r io.Reader) ([]Step, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read steps: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("no steps provided, expected a YAML list of actions")
	}
	var raw []any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML steps: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("no steps provided, expected a YAML list of actions")
	}
	return parseSubsteps(raw)
}

// StepsFromList converts steps already decoded from YAML or JSON.
func StepsFromList(raw []any) ([]Step, error) {
	if len(raw) == 0 {
		return nil, errors.New("no steps provided")
	}
	return parseSubsteps(raw)
}

// parseSubsteps converts a decoded YAML list into steps. nil yields nil.
func parseSubsteps(raw any) ([]Step, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of steps, got %T", raw)
	}
	steps := make([]Step, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("step %d: expected a map, got %T", i+1, item)
		}
		step, err := parseStep(m)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(m map[string]any) (Step, error) {
	action, params, err := parseRegularStep(m)
	if err != nil {
		return Step{}, err
	}
	step := Step{Action: action, Params: params}
	switch action {
	case "try":
		if step.Substeps, err = parseSubsteps(m["try"]); err != nil {
			return Step{}, fmt.Errorf("try: %w", err)
		}
		step.Params = Params{}
	case "if-exists":
		if step.Then, err = parseSubsteps(m["then"]); err != nil {
			return Step{}, fmt.Errorf("then: %w", err)
		}
		if step.Else, err = parseSubsteps(m["else"]); err != nil {
			return Step{}, fmt.Errorf("else: %w", err)
		}
	}
	return step, nil
}

// parseRegularStep returns the single action key of a step, ignoring the
// then and else branch keys.
func parseRegularStep(m map[string]any) (string, Params, error) {
	var actions []string
	for k := range m {
		if k != "then" && k != "else" {
			actions = append(actions, k)
		}
	}
	if len(actions) != 1 {
		return "", nil, fmt.Errorf("expected exactly one action key, got %d", len(actions))
	}
	action := actions[0]
	params := Params{}
	if raw, ok := m[action].(map[string]any); ok {
		for k, v := range raw {
			params[k] = v
		}
	}
	return action, params, nil
}

// Handles stores the handles found by earlier steps so later steps can refer
// to them.
type Handles interface {
	// Get returns the handle stored under id.
	Get(id string) (*element.Handle, bool)
	// Put stores h and returns its id. name is the id requested by the step
	// and may be empty; implementations that cannot name a handle without
	// one return "".
	Put(name string, h *element.Handle) string
}

// NamedHandles is a Handles keyed by the names given with "as".
type NamedHandles map[string]*element.Handle

func (n NamedHandles) Get(id string) (*element.Handle, bool) {
	h, ok := n[id]
	return h, ok
}

func (n NamedHandles) Put(name string, h *element.Handle) string {
	if name == "" {
		return ""
	}
	n[name] = h
	return name
}

// Runner executes steps.
type Runner struct {
	Dispatcher  *interact.Dispatcher
	Handles     Handles
	StopOnError bool
	Logger      *slog.Logger
}

// New returns a runner that stops on the first error and keeps handles by
// name.
func New(d *interact.Dispatcher, logger *slog.Logger) *Runner {
	return &Runner{Dispatcher: d, Handles: NamedHandles{}, StopOnError: true, Logger: logger}
}

// Run executes steps in order.
func (r *Runner) Run(ctx context.Context, steps []Step) Result {
	results, completed, failure := r.runSteps(ctx, steps, r.StopOnError)
	res := Result{
		OK:        failure == "",
		Action:    "do",
		Steps:     len(steps),
		Completed: completed,
		Error:     failure,
		Results:   results,
	}
	return res
}

// runSteps returns the step results, the number of successful steps and the
// last failure message.
func (r *Runner) runSteps(ctx context.Context, steps []Step, stopOnError bool) ([]StepResult, int, string) {
	results := make([]StepResult, 0, len(steps))
	completed := 0
	var failure string
	for i, step := range steps {
		stepNum := i + 1
		if err := ctx.Err(); err != nil {
			failure = fmt.Sprintf("step %d: %s", stepNum, err)
			break
		}
		sr, err := r.runStep(ctx, step)
		sr.Step = stepNum
		if err != nil {
			sr.OK = false
			sr.Error = err.Error()
			results = append(results, sr)
			failure = fmt.Sprintf("step %d: %s", stepNum, err)
			logging.OrDefault(r.Logger).Warn("step failed", "step", stepNum, "action", step.Action, "error", err)
			if stopOnError {
				break
			}
			continue
		}
		sr.OK = true
		completed++
		results = append(results, sr)
	}
	return results, completed, failure
}

func (r *Runner) runStep(ctx context.Context, step Step) (StepResult, error) {
	switch step.Action {
	case "try":
		// Failures inside a try block never fail the batch.
		subs, _, _ := r.runSteps(ctx, step.Substeps, true)
		return StepResult{Action: "try", Substeps: subs}, nil
	case "if-exists":
		return r.runIfExists(ctx, step)
	default:
		return r.Exec(ctx, step.Action, step.Params)
	}
}

// runIfExists runs Then when the locator resolves and Else otherwise. The
// check is a single attempt unless the step sets a timeout.
func (r *Runner) runIfExists(ctx context.Context, step Step) (StepResult, error) {
	params := step.Params
	if _, ok := params["timeout"]; !ok {
		params = maps.Clone(params)
		params["timeout"] = 0
	}
	res := StepResult{Action: "if-exists"}
	h, err := r.Target(ctx, params, "")
	branch := step.Then
	switch {
	case err == nil:
		res.Branch = "then"
		e := output.NewElementResult(h)
		res.Target = &e
	case errors.Is(err, resolver.ErrElementNotFound):
		res.Branch = "else"
		branch = step.Else
	default:
		return res, err
	}
	subs, _, failure := r.runSteps(ctx, branch, true)
	res.Substeps = subs
	if failure != "" {
		return res, fmt.Errorf("%s branch: %s", res.Branch, failure)
	}
	return res, nil
}
