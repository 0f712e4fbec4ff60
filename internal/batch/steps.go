package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/interact"
	"github.com/mj1618/uiloc/internal/output"
	"github.com/mj1618/uiloc/internal/resolver"
)

// Actions lists the supported step types.
var Actions = []string{
	"find", "click", "double-click", "right-click", "middle-click", "select",
	"send-keys", "get-text", "get-value", "set-value", "drag", "focus", "sleep",
}

// Exec runs one action.
func (r *Runner) Exec(ctx context.Context, action string, params Params) (StepResult, error) {
	switch action {
	case "find":
		return r.execFind(ctx, params)
	case "click":
		return r.execClick(ctx, params, interact.Click)
	case "double-click":
		return r.execClick(ctx, params, interact.DoubleClick)
	case "right-click":
		return r.execClick(ctx, params, interact.RightClick)
	case "middle-click":
		return r.execClick(ctx, params, interact.MiddleClick)
	case "select":
		return r.execSelect(ctx, params)
	case "send-keys":
		return r.execSendKeys(ctx, params)
	case "get-text":
		return r.execGetText(ctx, params)
	case "get-value":
		return r.execGetValue(ctx, params)
	case "set-value":
		return r.execSetValue(ctx, params)
	case "drag":
		return r.execDrag(ctx, params)
	case "focus":
		return r.execFocus(ctx, params)
	case "sleep":
		return execSleep(ctx, params)
	default:
		return StepResult{Action: action}, fmt.Errorf("unknown step type %q, supported: %s", action, strings.Join(Actions, ", "))
	}
}

// scope reads the search parameters shared by every step that resolves a
// locator.
func scope(params Params) (resolver.Scope, error) {
	var s resolver.Scope
	timeout, ok, err := durationParam(params, "timeout")
	if err != nil {
		return s, err
	}
	if ok {
		// An explicit zero means a single attempt rather than the default.
		if timeout == 0 {
			timeout = -1
		}
		s.Timeout = timeout
	}
	s.MaxDepth = intParam(params, "depth", 0)
	if v := stringParam(params, "strategy", ""); v != "" {
		st, err := resolver.ParseStrategy(v)
		if err != nil {
			return s, err
		}
		s.Strategy = st
	}
	return s, nil
}

// lookup returns the stored handle id.
func (r *Runner) lookup(id string) (*element.Handle, error) {
	if r.Handles != nil {
		if h, ok := r.Handles.Get(id); ok {
			return h, nil
		}
	}
	return nil, fmt.Errorf("unknown handle %q", id)
}

// Target resolves the control a step acts on: a stored handle under
// "<prefix>ref", or the locator under "<prefix>locator" searched below the
// optional "root" handle.
func (r *Runner) Target(ctx context.Context, params Params, prefix string) (*element.Handle, error) {
	if ref := stringParam(params, prefix+"ref", ""); ref != "" {
		return r.lookup(ref)
	}
	loc, ok := params[prefix+"locator"]
	if !ok {
		return nil, fmt.Errorf("specify %slocator or %sref", prefix, prefix)
	}
	var root *element.Handle
	if id := stringParam(params, "root", ""); id != "" {
		h, err := r.lookup(id)
		if err != nil {
			return nil, err
		}
		root = h
	}
	sc, err := scope(params)
	if err != nil {
		return nil, err
	}
	return r.Dispatcher.Find(ctx, fmt.Sprint(loc), root, sc)
}

func (r *Runner) result(action string, h *element.Handle) StepResult {
	e := output.NewElementResult(h)
	return StepResult{Action: action, Target: &e}
}

func (r *Runner) execFind(ctx context.Context, params Params) (StepResult, error) {
	sc, err := scope(params)
	if err != nil {
		return StepResult{Action: "find"}, err
	}
	var root *element.Handle
	if id := stringParam(params, "root", ""); id != "" {
		if root, err = r.lookup(id); err != nil {
			return StepResult{Action: "find"}, err
		}
	}
	loc := stringParam(params, "locator", "")
	name := stringParam(params, "as", "")

	if boolParam(params, "many", false) {
		// Collections default to the first match and its siblings.
		if stringParam(params, "strategy", "") == "" {
			sc.Strategy = resolver.StrategySiblings
		}
		hs, err := r.Dispatcher.FindMany(ctx, loc, root, sc, boolParam(params, "wait", false))
		if err != nil {
			return StepResult{Action: "find"}, err
		}
		res := StepResult{Action: "find", Elements: output.NewElementResults(hs)}
		for i, h := range hs {
			itemName := ""
			if name != "" {
				itemName = fmt.Sprintf("%s.%d", name, i+1)
			}
			if r.Handles != nil {
				res.Elements[i].Handle = r.Handles.Put(itemName, h)
			}
		}
		return res, nil
	}

	h, err := r.Dispatcher.Find(ctx, loc, root, sc)
	if err != nil {
		return StepResult{Action: "find"}, err
	}
	res := r.result("find", h)
	if r.Handles != nil {
		res.Target.Handle = r.Handles.Put(name, h)
	}
	return res, nil
}

func (r *Runner) execClick(ctx context.Context, params Params, kind interact.ClickKind) (StepResult, error) {
	action := kind.String()
	wait, err := optionalDuration(params, "wait")
	if err != nil {
		return StepResult{Action: action}, err
	}
	h, err := r.Target(ctx, params, "")
	if err != nil {
		return StepResult{Action: action}, err
	}
	if err := r.Dispatcher.Click(h, kind, interact.ClickOptions{WaitTime: wait}); err != nil {
		return StepResult{Action: action}, err
	}
	return r.result(action, h), nil
}

func (r *Runner) execSelect(ctx context.Context, params Params) (StepResult, error) {
	value, ok := params["value"]
	if !ok {
		return StepResult{Action: "select"}, errors.New("value is required")
	}
	wait, err := optionalDuration(params, "wait")
	if err != nil {
		return StepResult{Action: "select"}, err
	}
	h, err := r.Target(ctx, params, "")
	if err != nil {
		return StepResult{Action: "select"}, err
	}
	if err := r.Dispatcher.Select(h, fmt.Sprint(value), wait); err != nil {
		return StepResult{Action: "select"}, err
	}
	return r.result("select", h), nil
}

func (r *Runner) execSendKeys(ctx context.Context, params Params) (StepResult, error) {
	keys := stringParam(params, "keys", "")
	enter := boolParam(params, "enter", false)
	if keys == "" && !enter {
		return StepResult{Action: "send-keys"}, errors.New("keys is required")
	}
	interval, _, err := durationParam(params, "interval")
	if err != nil {
		return StepResult{Action: "send-keys"}, err
	}
	wait, err := optionalDuration(params, "wait")
	if err != nil {
		return StepResult{Action: "send-keys"}, err
	}

	// Without a target the keys go to whatever has focus.
	var h *element.Handle
	if stringParam(params, "ref", "") != "" || params["locator"] != nil {
		if h, err = r.Target(ctx, params, ""); err != nil {
			return StepResult{Action: "send-keys"}, err
		}
	}
	opts := interact.SendKeysOptions{Interval: interval, WaitTime: wait, SendEnter: enter}
	if err := r.Dispatcher.SendKeys(h, keys, opts); err != nil {
		return StepResult{Action: "send-keys"}, err
	}
	if h == nil {
		return StepResult{Action: "send-keys"}, nil
	}
	return r.result("send-keys", h), nil
}

func (r *Runner) execGetText(ctx context.Context, params Params) (StepResult, error) {
	h, err := r.Target(ctx, params, "")
	if err != nil {
		return StepResult{Action: "get-text"}, err
	}
	text, err := r.Dispatcher.GetText(h)
	if err != nil {
		return StepResult{Action: "get-text"}, err
	}
	res := r.result("get-text", h)
	res.Text = &text
	return res, nil
}

func (r *Runner) execGetValue(ctx context.Context, params Params) (StepResult, error) {
	h, err := r.Target(ctx, params, "")
	if err != nil {
		return StepResult{Action: "get-value"}, err
	}
	value, err := r.Dispatcher.GetValue(h)
	if err != nil {
		return StepResult{Action: "get-value"}, err
	}
	res := r.result("get-value", h)
	res.Value = &value
	return res, nil
}

func (r *Runner) execSetValue(ctx context.Context, params Params) (StepResult, error) {
	value := stringParam(params, "value", "")
	h, err := r.Target(ctx, params, "")
	if err != nil {
		return StepResult{Action: "set-value"}, err
	}
	opts := interact.SetValueOptions{
		Append:         boolParam(params, "append", false),
		Enter:          boolParam(params, "enter", false),
		Newline:        boolParam(params, "newline", false),
		NoKeysFallback: !boolParam(params, "keys-fallback", true),
		SkipValidation: !boolParam(params, "validate", true),
	}
	if err := r.Dispatcher.SetValue(h, value, opts); err != nil {
		return StepResult{Action: "set-value"}, err
	}
	res := r.result("set-value", h)
	res.Value = &value
	return res, nil
}

func (r *Runner) execDrag(ctx context.Context, params Params) (StepResult, error) {
	wait, err := optionalDuration(params, "wait")
	if err != nil {
		return StepResult{Action: "drag"}, err
	}
	src, err := r.Target(ctx, params, "from-")
	if err != nil {
		return StepResult{Action: "drag"}, fmt.Errorf("source: %w", err)
	}
	dst, err := r.Target(ctx, params, "to-")
	if err != nil {
		return StepResult{Action: "drag"}, fmt.Errorf("target: %w", err)
	}
	opts := interact.DragOptions{
		Speed:    floatParam(params, "speed", 1),
		Copy:     boolParam(params, "copy", false),
		WaitTime: wait,
	}
	if err := r.Dispatcher.DragAndDrop(src, dst, opts); err != nil {
		return StepResult{Action: "drag"}, err
	}
	res := r.result("drag", src)
	d := output.NewElementResult(dst)
	res.Dest = &d
	return res, nil
}

func (r *Runner) execFocus(ctx context.Context, params Params) (StepResult, error) {
	h, err := r.Target(ctx, params, "")
	if err != nil {
		return StepResult{Action: "focus"}, err
	}
	if err := r.Dispatcher.SetFocus(h); err != nil {
		return StepResult{Action: "focus"}, err
	}
	return r.result("focus", h), nil
}

func execSleep(ctx context.Context, params Params) (StepResult, error) {
	ms := intParam(params, "ms", 0)
	if ms <= 0 {
		return StepResult{Action: "sleep"}, errors.New("ms must be > 0")
	}
	d := time.Duration(ms) * time.Millisecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return StepResult{Action: "sleep"}, ctx.Err()
	case <-t.C:
	}
	return StepResult{Action: "sleep", Elapsed: fmt.Sprintf("%dms", ms)}, nil
}
