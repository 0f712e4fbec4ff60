package interact

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/uiloc/internal/config"
	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/platform"
	"github.com/mj1618/uiloc/internal/platform/memtree"
	"github.com/mj1618/uiloc/internal/resolver"
)

// buildForm returns a desktop with a form window holding one control per
// capability combination exercised by the tests.
func buildForm() *memtree.Tree {
	return memtree.MustNew(memtree.Spec{
		Name: "Desktop", Control: "PaneControl", Rect: []int{0, 0, 800, 600},
		Children: []memtree.Spec{{
			Name: "Form", Control: "WindowControl", Rect: []int{50, 50, 500, 400},
			Children: []memtree.Spec{
				{Name: "OK", ID: "ok", Control: "ButtonControl", Rect: []int{100, 400, 80, 30}, Caps: []string{"invoke", "windowtext", "focus"}},
				{Name: "Hidden", ID: "hidden", Control: "ButtonControl", Rect: []int{0, 0, 0, 0}, Caps: []string{"invoke"}},
				{Name: "Label", ID: "label", Control: "TextControl", Rect: []int{100, 80, 200, 20}},
				{Name: "Amount", ID: "amount", Control: "EditControl", Rect: []int{100, 120, 200, 24}, Value: "10", Caps: []string{"value", "keys"}},
				{Name: "Legacy", ID: "legacy", Control: "EditControl", Rect: []int{100, 160, 200, 24}, Value: "old", Caps: []string{"legacy"}},
				{Name: "Notes", ID: "notes", Control: "DocumentControl", Rect: []int{100, 200, 300, 100}, Value: "draft", Caps: []string{"keys", "text"}},
				{Name: "Short", ID: "short", Control: "EditControl", Rect: []int{100, 320, 200, 24}, MaxLength: 2, Caps: []string{"value"}},
				{Name: "Blind", ID: "blind", Control: "EditControl", Rect: []int{100, 350, 200, 24}, Caps: []string{"keys"}},
				{Name: "Size", ID: "size", Control: "ComboBoxControl", Rect: []int{320, 120, 60, 24}, Caps: []string{"select"}},
			},
		}},
	})
}

func setup(t *testing.T) (*memtree.Tree, *Dispatcher, *bytes.Buffer) {
	t.Helper()
	tree := buildForm()
	store := config.New()
	for k, v := range map[string]any{"wait_time": "0s", "timeout": "30ms", "poll_interval": "5ms"} {
		if err := store.Set(k, v); err != nil {
			t.Fatal(err)
		}
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	return tree, New(tree.Provider(), store, logger), &logs
}

func find(t *testing.T, d *Dispatcher, loc string) *element.Handle {
	t.Helper()
	h, err := d.Find(context.Background(), loc, nil, resolver.Scope{})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func eventKinds(evs []memtree.Event) string {
	var out []string
	for _, e := range evs {
		out = append(out, e.Kind)
	}
	return strings.Join(out, ",")
}

func TestClick_CenterAndKinds(t *testing.T) {
	tree, d, _ := setup(t)
	h := find(t, d, "id:ok")

	tests := []struct {
		kind   ClickKind
		button string
		count  int
	}{
		{Click, "left", 1},
		{DoubleClick, "left", 2},
		{RightClick, "right", 1},
		{MiddleClick, "middle", 1},
	}
	for _, tt := range tests {
		tree.ResetEvents()
		if err := d.Click(h, tt.kind, ClickOptions{}); err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		ev := tree.Events()
		if len(ev) != 1 || ev[0].X != 140 || ev[0].Y != 415 || ev[0].Button != tt.button || ev[0].Count != tt.count {
			t.Errorf("%s: events = %+v", tt.kind, ev)
		}
	}
}

func TestClick_ZeroRectIsNotPossible(t *testing.T) {
	tree, d, _ := setup(t)
	h := find(t, d, "id:hidden")
	err := d.Click(h, Click, ClickOptions{})
	if !errors.Is(err, ErrActionNotPossible) {
		t.Fatalf("expected ErrActionNotPossible, got %v", err)
	}
	if len(tree.Events()) != 0 {
		t.Error("no input should be sent")
	}
}

func TestClick_RereadsRect(t *testing.T) {
	tree, d, _ := setup(t)
	h := find(t, d, "id:ok")
	tree.FindByID("ok").SetRect(platform.Rect{})
	if err := d.Click(h, Click, ClickOptions{}); !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("click should use the live rectangle, got %v", err)
	}
	if h.Width() != 80 {
		t.Error("click must not overwrite the cached rectangle")
	}
}

func TestClick_WithoutCapability(t *testing.T) {
	_, d, _ := setup(t)
	h := find(t, d, "id:label")
	var anp *ActionNotPossibleError
	if err := d.Click(h, Click, ClickOptions{}); !errors.As(err, &anp) {
		t.Fatalf("expected *ActionNotPossibleError, got %v", err)
	}
}

func TestClick_OffsetAndMouseMovement(t *testing.T) {
	tree, d, _ := setup(t)
	_ = d.Settings.(*config.Store).Set("simulate_mouse_movement", true)
	h := find(t, d, "id:ok offset:5,6")
	if err := d.Click(h, Click, ClickOptions{}); err != nil {
		t.Fatal(err)
	}
	ev := tree.Events()
	if eventKinds(ev) != "move,click" {
		t.Fatalf("events = %+v", ev)
	}
	if ev[1].X != 105 || ev[1].Y != 406 {
		t.Errorf("click at %d,%d, want 105,406", ev[1].X, ev[1].Y)
	}
}

func TestClick_WaitOverride(t *testing.T) {
	_, d, _ := setup(t)
	_ = d.Settings.(*config.Store).Set("wait_time", "5s")
	h := find(t, d, "id:ok")
	wait := 10 * time.Millisecond
	start := time.Now()
	if err := d.Click(h, Click, ClickOptions{WaitTime: &wait}); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("override ignored, waited %v", elapsed)
	}
}

func TestSelect(t *testing.T) {
	tree, d, _ := setup(t)
	if err := d.Select(find(t, d, "id:size"), "22", nil); err != nil {
		t.Fatal(err)
	}
	if v, _ := tree.FindByID("size").Value(); v != "22" {
		t.Errorf("value = %q", v)
	}
	err := d.Select(find(t, d, "id:amount"), "22", nil)
	if !errors.Is(err, ErrActionNotPossible) || !strings.Contains(err.Error(), "set-value") {
		t.Errorf("expected advice to use set-value, got %v", err)
	}
}

func TestSendKeys(t *testing.T) {
	tree, d, _ := setup(t)
	h := find(t, d, "id:notes")
	if err := d.SendKeys(h, "{Ctrl}a{Del}hi", SendKeysOptions{SendEnter: true}); err != nil {
		t.Fatal(err)
	}
	if v, _ := tree.FindByID("notes").Text(); v != "hi\n" {
		t.Errorf("text = %q", v)
	}
	if err := d.SendKeys(find(t, d, "id:ok"), "x", SendKeysOptions{}); !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("expected ErrActionNotPossible, got %v", err)
	}
}

func TestSendKeys_Desktop(t *testing.T) {
	tree, d, _ := setup(t)
	if err := d.SendKeys(nil, "{Ctrl}{F4}", SendKeysOptions{}); err != nil {
		t.Fatal(err)
	}
	ev := tree.Events()
	if len(ev) != 1 || ev[0].Kind != "keys" || ev[0].Target != "" || ev[0].Keys != "{Ctrl}{F4}" {
		t.Errorf("events = %+v", ev)
	}
}

func TestGetText(t *testing.T) {
	_, d, _ := setup(t)
	text, err := d.GetText(find(t, d, "id:ok"))
	if err != nil || text != "OK" {
		t.Errorf("GetText = %q, %v", text, err)
	}
	if _, err := d.GetText(find(t, d, "id:amount")); !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("expected ErrActionNotPossible, got %v", err)
	}
}

func TestGetValue(t *testing.T) {
	_, d, _ := setup(t)
	tests := []struct {
		loc  string
		want string
	}{
		{"id:amount", "10"},
		{"id:legacy", "old"},
	}
	for _, tt := range tests {
		v, err := d.GetValue(find(t, d, tt.loc))
		if err != nil || v != tt.want {
			t.Errorf("GetValue(%s) = %q, %v", tt.loc, v, err)
		}
	}
	if _, err := d.GetValue(find(t, d, "id:notes")); !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("expected ErrActionNotPossible, got %v", err)
	}
}

func TestSetValue_PatternSetAndAppend(t *testing.T) {
	_, d, _ := setup(t)
	h := find(t, d, "id:amount")
	if err := d.SetValue(h, "42", SetValueOptions{}); err != nil {
		t.Fatal(err)
	}
	if v, _ := d.GetValue(h); v != "42" {
		t.Errorf("after set: %q", v)
	}
	if err := d.SetValue(h, "7", SetValueOptions{Append: true}); err != nil {
		t.Fatal(err)
	}
	if v, _ := d.GetValue(h); v != "427" {
		t.Errorf("after append: %q", v)
	}
}

func TestSetValue_LegacyPattern(t *testing.T) {
	tree, d, _ := setup(t)
	if err := d.SetValue(find(t, d, "id:legacy"), "new", SetValueOptions{}); err != nil {
		t.Fatal(err)
	}
	if v, _ := tree.FindByID("legacy").Value(); v != "new" {
		t.Errorf("value = %q", v)
	}
}

func TestSetValue_KeysTierScenario(t *testing.T) {
	tree, d, logs := setup(t)
	h := find(t, d, "id:notes")
	if err := d.SetValue(h, "22", SetValueOptions{}); err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, e := range tree.Events() {
		if e.Kind == "keys" {
			keys = append(keys, e.Keys)
		}
	}
	if strings.Join(keys, " ") != "{Ctrl}a{Del} 22" {
		t.Errorf("keys sent = %v", keys)
	}
	if v, _ := tree.FindByID("notes").Text(); v != "22" {
		t.Errorf("text = %q", v)
	}
	if !strings.Contains(logs.String(), "method=keys") {
		t.Errorf("chosen tier not logged: %s", logs.String())
	}
}

func TestSetValue_KeysTierAppend(t *testing.T) {
	tree, d, _ := setup(t)
	if err := d.SetValue(find(t, d, "id:notes"), " v2", SetValueOptions{Append: true}); err != nil {
		t.Fatal(err)
	}
	if v, _ := tree.FindByID("notes").Text(); v != "draft v2" {
		t.Errorf("text = %q", v)
	}
}

func TestSetValue_KeysTierTypesBracesLiterally(t *testing.T) {
	tree, d, _ := setup(t)
	if err := d.SetValue(find(t, d, "id:notes"), "a{b}", SetValueOptions{}); err != nil {
		t.Fatal(err)
	}
	if v, _ := tree.FindByID("notes").Text(); v != "a{b}" {
		t.Errorf("text = %q", v)
	}
}

func TestSetValue_KeysWithoutTextSkipsValidation(t *testing.T) {
	_, d, _ := setup(t)
	if err := d.SetValue(find(t, d, "id:blind"), "abc", SetValueOptions{}); err != nil {
		t.Errorf("no text pattern means no validation, got %v", err)
	}
}

func TestSetValue_Mismatch(t *testing.T) {
	_, d, _ := setup(t)
	h := find(t, d, "id:short")
	err := d.SetValue(h, "12345", SetValueOptions{})
	var vm *ValueMismatchError
	if !errors.As(err, &vm) {
		t.Fatalf("expected *ValueMismatchError, got %v", err)
	}
	if vm.Expected != "12345" || vm.Actual != "12" {
		t.Errorf("mismatch = %+v", vm)
	}
	if errors.Is(err, ErrActionNotPossible) {
		t.Error("mismatch must be distinct from ActionNotPossible")
	}
	if err := d.SetValue(h, "12345", SetValueOptions{SkipValidation: true}); err != nil {
		t.Errorf("SkipValidation: %v", err)
	}
}

func TestSetValue_CustomValidator(t *testing.T) {
	_, d, _ := setup(t)
	prefix := func(expected, actual string) bool { return strings.HasPrefix(expected, actual) }
	if err := d.SetValue(find(t, d, "id:short"), "12345", SetValueOptions{Validator: prefix}); err != nil {
		t.Errorf("custom validator should accept truncation: %v", err)
	}
}

func TestSetValue_TrimmedValidator(t *testing.T) {
	if !TrimmedEqual("abc\r\n", "abc\n") {
		t.Error("trailing line endings should be ignored")
	}
	if TrimmedEqual("abc", "abd") {
		t.Error("different values compared equal")
	}
}

func TestSetValue_NoFallback(t *testing.T) {
	_, d, _ := setup(t)
	err := d.SetValue(find(t, d, "id:notes"), "x", SetValueOptions{NoKeysFallback: true})
	if !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("expected ErrActionNotPossible, got %v", err)
	}
	if err := d.SetValue(find(t, d, "id:ok"), "x", SetValueOptions{}); !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("control without value or keys: %v", err)
	}
}

func TestSetValue_NewlineAndEnterQuirk(t *testing.T) {
	tree, d, logs := setup(t)
	h := find(t, d, "id:amount")
	if err := d.SetValue(h, "a", SetValueOptions{Append: true, Newline: true, Enter: true}); err != nil {
		t.Fatal(err)
	}
	if v, _ := tree.FindByID("amount").Value(); v != "10a\n\n" {
		t.Errorf("value = %q, want two line breaks", v)
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Error("expected a warning for newline with enter")
	}
}

func TestSetValue_EnterNeedsKeys(t *testing.T) {
	_, d, _ := setup(t)
	err := d.SetValue(find(t, d, "id:legacy"), "x", SetValueOptions{Enter: true})
	if !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("expected ErrActionNotPossible for enter without key input, got %v", err)
	}
}

func TestSetFocus(t *testing.T) {
	tree, d, _ := setup(t)
	if err := d.SetFocus(find(t, d, "id:ok")); err != nil {
		t.Fatal(err)
	}
	if f := tree.Focused(); f == nil || f != tree.FindByID("ok") {
		t.Error("focus not moved")
	}
	if err := d.SetFocus(find(t, d, "id:label")); !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("expected ErrActionNotPossible, got %v", err)
	}
}

func TestFindMany_Dispatcher(t *testing.T) {
	_, d, _ := setup(t)
	form := find(t, d, "name:Form")
	edits, err := d.FindMany(context.Background(), "type:Edit", form, resolver.Scope{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(edits) != 4 {
		t.Errorf("got %d edits", len(edits))
	}
	if _, err := d.FindMany(context.Background(), "bogus:key", nil, resolver.Scope{}, false); err == nil {
		t.Error("expected syntax error")
	}
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))
