package batch

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mj1618/uiloc/internal/config"
	"github.com/mj1618/uiloc/internal/interact"
	"github.com/mj1618/uiloc/internal/platform/memtree"
)

func newRunner(t *testing.T) (*memtree.Tree, *Runner) {
	t.Helper()
	tree, err := memtree.LoadFile("../platform/memtree/testdata/notepad.yaml")
	if err != nil {
		t.Fatal(err)
	}
	store := config.New()
	for k, v := range map[string]any{"wait_time": "0s", "timeout": "30ms", "poll_interval": "5ms"} {
		if err := store.Set(k, v); err != nil {
			t.Fatal(err)
		}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tree, New(interact.New(tree.Provider(), store, logger), logger)
}

func mustParse(t *testing.T, yamlData string) []Step {
	t.Helper()
	steps, err := ParseSteps(strings.NewReader(yamlData))
	if err != nil {
		t.Fatal(err)
	}
	return steps
}

func TestParseSteps(t *testing.T) {
	steps := mustParse(t, `
- find: { locator: "name:Save", as: save }
- sleep:
- if-exists: { locator: "name:Replace?" }
  then:
    - click: { locator: "name:Yes" }
  else:
    - sleep: { ms: 1 }
- try:
    - click: { ref: save }
`)
	if len(steps) != 4 {
		t.Fatalf("got %d steps", len(steps))
	}
	if steps[0].Action != "find" || steps[0].Params["as"] != "save" {
		t.Errorf("step 1 = %+v", steps[0])
	}
	if steps[1].Params == nil {
		t.Error("nil params should become an empty map")
	}
	if len(steps[2].Then) != 1 || len(steps[2].Else) != 1 || steps[2].Then[0].Action != "click" {
		t.Errorf("if-exists branches = %+v", steps[2])
	}
	if len(steps[3].Substeps) != 1 || steps[3].Substeps[0].Params["ref"] != "save" {
		t.Errorf("try substeps = %+v", steps[3].Substeps)
	}
}

func TestParseSteps_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "  \n"},
		{"empty list", "[]"},
		{"not a list", "click: {}"},
		{"two actions", "- { click: {}, sleep: {} }"},
		{"scalar step", "- click"},
		{"bad try", "- try: not-a-list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSteps(strings.NewReader(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseSubsteps_Nil(t *testing.T) {
	steps, err := parseSubsteps(nil)
	if err != nil || steps != nil {
		t.Errorf("parseSubsteps(nil) = %v, %v", steps, err)
	}
}

func TestRun_FillForm(t *testing.T) {
	tree, r := newRunner(t)
	res := r.Run(context.Background(), mustParse(t, `
- find: { locator: "name:\"Untitled - Notepad\"", as: win }
- set-value: { root: win, locator: "id:15", value: "22" }
- select: { root: win, locator: "type:ComboBox", value: "22" }
- get-value: { root: win, locator: "id:FontSizeComboBox" }
- get-text: { locator: "name:Save" }
- click: { locator: "id:Save" }
`))
	if !res.OK || res.Completed != 6 {
		t.Fatalf("result = %+v", res)
	}
	if v, _ := tree.FindByID("15").Text(); v != "22" {
		t.Errorf("editor text = %q", v)
	}
	if got := res.Results[3].Value; got == nil || *got != "22" {
		t.Errorf("get-value = %v", got)
	}
	if got := res.Results[4].Text; got == nil || *got != "Save" {
		t.Errorf("get-text = %v", got)
	}
	if res.Results[0].Target == nil || res.Results[0].Target.Handle != "win" {
		t.Errorf("find result = %+v", res.Results[0].Target)
	}
}

func TestRun_RefsAndFindMany(t *testing.T) {
	_, r := newRunner(t)
	res := r.Run(context.Background(), mustParse(t, `
- find: { locator: "class:Edit", many: true, as: edits }
- focus: { ref: edits.2 }
`))
	if !res.OK {
		t.Fatalf("result = %+v", res)
	}
	els := res.Results[0].Elements
	if len(els) != 2 || els[0].Handle != "edits.1" || els[1].ID != "FileName" {
		t.Errorf("elements = %+v", els)
	}
	if res.Results[1].Target.ID != "FileName" {
		t.Errorf("focus target = %+v", res.Results[1].Target)
	}
}

func TestRun_StopOnError(t *testing.T) {
	tests := []struct {
		name        string
		stop        bool
		wantResults int
		completed   int
	}{
		{"stop", true, 2, 1},
		{"continue", false, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r := newRunner(t)
			r.StopOnError = tt.stop
			res := r.Run(context.Background(), mustParse(t, `
- sleep: { ms: 1 }
- click: { locator: "name:Missing" }
- sleep: { ms: 1 }
`))
			if res.OK {
				t.Error("expected ok=false")
			}
			if len(res.Results) != tt.wantResults || res.Completed != tt.completed {
				t.Errorf("results=%d completed=%d", len(res.Results), res.Completed)
			}
			if !strings.HasPrefix(res.Error, "step 2:") {
				t.Errorf("error = %q", res.Error)
			}
			if res.Results[1].OK || res.Results[1].Step != 2 {
				t.Errorf("step 2 = %+v", res.Results[1])
			}
		})
	}
}

func TestRun_TryAbsorbsErrors(t *testing.T) {
	_, r := newRunner(t)
	res := r.Run(context.Background(), mustParse(t, `
- try:
    - sleep: { ms: -1 }
- sleep: { ms: 1 }
`))
	if !res.OK || len(res.Results) != 2 {
		t.Fatalf("result = %+v", res)
	}
	try := res.Results[0]
	if try.Action != "try" || len(try.Substeps) != 1 || try.Substeps[0].OK {
		t.Errorf("try = %+v", try)
	}
}

func TestRun_IfExists(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		branch  string
	}{
		{"present", "name:Save", "then"},
		{"absent", "name:Replace", "else"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, r := newRunner(t)
			res := r.Run(context.Background(), mustParse(t, `
- if-exists: { locator: "`+tt.locator+`" }
  then:
    - click: { locator: "name:Save" }
  else:
    - send-keys: { locator: "id:15", keys: "x" }
`))
			if !res.OK {
				t.Fatalf("result = %+v", res)
			}
			if got := res.Results[0].Branch; got != tt.branch {
				t.Errorf("branch = %q", got)
			}
			if len(res.Results[0].Substeps) != 1 || !res.Results[0].Substeps[0].OK {
				t.Errorf("substeps = %+v", res.Results[0].Substeps)
			}
			if len(tree.Events()) != 1 {
				t.Errorf("events = %+v", tree.Events())
			}
		})
	}
}

func TestRun_IfExistsBadLocator(t *testing.T) {
	_, r := newRunner(t)
	res := r.Run(context.Background(), mustParse(t, `
- if-exists: { locator: "nmae:Save" }
  then:
    - sleep: { ms: 1 }
`))
	if res.OK || !strings.Contains(res.Error, "did you mean") {
		t.Errorf("a syntax error must fail the step, got %+v", res)
	}
}

func TestRun_Cancelled(t *testing.T) {
	_, r := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := r.Run(ctx, mustParse(t, "- sleep: { ms: 1 }"))
	if res.OK || res.Completed != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestExec_Actions(t *testing.T) {
	tree, r := newRunner(t)
	ctx := context.Background()
	tests := []struct {
		action string
		params Params
		event  string
	}{
		{"double-click", Params{"locator": "id:Save"}, "click"},
		{"right-click", Params{"locator": "id:Save"}, "click"},
		{"middle-click", Params{"locator": "id:Save", "wait": "1ms"}, "click"},
		{"send-keys", Params{"keys": "{Ctrl}s"}, "keys"},
		{"send-keys", Params{"locator": "id:15", "keys": "a", "enter": true, "interval": 1}, "keys"},
		{"drag", Params{"from-locator": "id:Save", "to-locator": "id:15", "speed": 2}, "drag"},
		{"focus", Params{"locator": "id:FileName"}, "focus"},
	}
	for _, tt := range tests {
		tree.ResetEvents()
		if _, err := r.Exec(ctx, tt.action, tt.params); err != nil {
			t.Errorf("%s: %v", tt.action, err)
			continue
		}
		ev := tree.Events()
		if len(ev) == 0 || ev[len(ev)-1].Kind != tt.event {
			t.Errorf("%s: events = %+v", tt.action, ev)
		}
	}
}

func TestExec_Errors(t *testing.T) {
	_, r := newRunner(t)
	ctx := context.Background()
	tests := []struct {
		name   string
		action string
		params Params
		want   string
	}{
		{"unknown action", "hover", Params{}, "unknown step type"},
		{"no target", "click", Params{}, "specify locator or ref"},
		{"unknown ref", "click", Params{"ref": "nope"}, "unknown handle"},
		{"select without value", "select", Params{"locator": "id:Save"}, "value is required"},
		{"send-keys without keys", "send-keys", Params{}, "keys is required"},
		{"bad duration", "click", Params{"locator": "id:Save", "wait": "soon"}, "wait"},
		{"bad strategy", "find", Params{"locator": "id:Save", "strategy": "bfs"}, "strategy"},
		{"drag source", "drag", Params{"to-locator": "id:Save"}, "source"},
		{"sleep", "sleep", Params{"ms": 0}, "ms must be > 0"},
		{"not possible", "get-text", Params{"locator": "id:15"}, "cannot get text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Exec(ctx, tt.action, tt.params)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestExec_ZeroTimeoutIsSingleAttempt(t *testing.T) {
	_, r := newRunner(t)
	if err := r.Dispatcher.Settings.(*config.Store).Set("timeout", "10s"); err != nil {
		t.Fatal(err)
	}
	_, err := r.Exec(context.Background(), "find", Params{"locator": "name:Missing", "timeout": 0})
	if err == nil {
		t.Fatal("expected not found")
	}
}

func TestRun_FindManyDefaultsToSiblings(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{"default", "", "11,22"},
		{"siblings", `, strategy: siblings`, "11,22"},
		{"all", `, strategy: all`, "11,22,File name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r := newRunner(t)
			res := r.Run(context.Background(), mustParse(t, `
- find: { locator: "type:Window > type:ListItem or id:FileName", many: true`+tt.extra+` }
`))
			if !res.OK {
				t.Fatalf("result = %+v", res)
			}
			var names []string
			for _, e := range res.Results[0].Elements {
				names = append(names, e.Name)
			}
			if got := strings.Join(names, ","); got != tt.want {
				t.Errorf("names = %s, want %s", got, tt.want)
			}
		})
	}
}
