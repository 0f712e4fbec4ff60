// Package interact performs actions on resolved controls. Each action
// probes the capability it needs and fails with ActionNotPossibleError when
// the control does not offer it.
package interact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/uiloc/internal/config"
	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/locator"
	"github.com/mj1618/uiloc/internal/logging"
	"github.com/mj1618/uiloc/internal/platform"
	"github.com/mj1618/uiloc/internal/resolver"
)

// DefaultKeyInterval is the pause between synthetic key strokes.
const DefaultKeyInterval = 10 * time.Millisecond

// Dispatcher executes actions against handles.
type Dispatcher struct {
	Resolver      *resolver.Resolver
	Inputter      platform.Inputter
	Screenshotter platform.Screenshotter
	Settings      config.Source
	Logger        *slog.Logger
}

// New returns a dispatcher for a provider.
func New(p *platform.Provider, settings config.Source, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		Resolver:      resolver.New(p.Desktop, settings, logger),
		Inputter:      p.Inputter,
		Screenshotter: p.Screenshotter,
		Settings:      settings,
		Logger:        logger,
	}
}

func (d *Dispatcher) log() *slog.Logger {
	return logging.OrDefault(d.Logger)
}

func (d *Dispatcher) settings() config.Settings {
	if d.Settings == nil {
		return config.New().Settings()
	}
	return d.Settings.Settings()
}

// Find parses text and resolves it under root, or under the desktop when
// root is nil.
func (d *Dispatcher) Find(ctx context.Context, text string, root *element.Handle, scope resolver.Scope) (*element.Handle, error) {
	loc, err := locator.Parse(text)
	if err != nil {
		return nil, err
	}
	if root != nil {
		return root.Find(ctx, loc, scope)
	}
	m, err := d.Resolver.Find(ctx, loc, scope)
	if err != nil {
		return nil, err
	}
	return element.New(m, d.Resolver), nil
}

// FindMany parses text and resolves every match under root, or under the
// desktop when root is nil.
func (d *Dispatcher) FindMany(ctx context.Context, text string, root *element.Handle, scope resolver.Scope, waitForMatch bool) ([]*element.Handle, error) {
	loc, err := locator.Parse(text)
	if err != nil {
		return nil, err
	}
	if root != nil {
		return root.FindMany(ctx, loc, scope, waitForMatch)
	}
	ms, err := d.Resolver.FindMany(ctx, loc, scope, waitForMatch)
	if err != nil {
		return nil, err
	}
	return element.Wrap(ms, d.Resolver), nil
}

// wait sleeps for the override when set, otherwise for the configured wait
// time.
func (d *Dispatcher) wait(override *time.Duration) {
	w := d.settings().WaitTime
	if override != nil {
		w = *override
	}
	if w > 0 {
		time.Sleep(w)
	}
}

// ClickKind selects the pointer gesture of a click.
type ClickKind int

const (
	Click ClickKind = iota
	DoubleClick
	RightClick
	MiddleClick
)

func (k ClickKind) String() string {
	switch k {
	case DoubleClick:
		return "double-click"
	case RightClick:
		return "right-click"
	case MiddleClick:
		return "middle-click"
	default:
		return "click"
	}
}

func (k ClickKind) gesture() (platform.Capability, platform.MouseButton, int) {
	switch k {
	case DoubleClick:
		return platform.CapDoubleClick, platform.MouseLeft, 2
	case RightClick:
		return platform.CapRightClick, platform.MouseRight, 1
	case MiddleClick:
		return platform.CapMiddleClick, platform.MouseMiddle, 1
	default:
		return platform.CapClick, platform.MouseLeft, 1
	}
}

// ClickOptions tune a click.
type ClickOptions struct {
	// WaitTime overrides the configured settle time after the click.
	WaitTime *time.Duration
}

// Click invokes the control with the pointer. The rectangle is re-read
// first; an invalid or zero-area rectangle means the control cannot be
// clicked. An offset predicate in the handle's locator moves the click point
// relative to the top-left corner, otherwise the center is clicked.
func (d *Dispatcher) Click(h *element.Handle, kind ClickKind, opts ClickOptions) error {
	if err := d.click(h, kind); err != nil {
		return err
	}
	d.wait(opts.WaitTime)
	return nil
}

func (d *Dispatcher) click(h *element.Handle, kind ClickKind) error {
	capability, button, count := kind.gesture()
	clicker, ok := platform.Probe[platform.Clicker](h.Node(), capability)
	if !ok {
		return &ActionNotPossibleError{Action: kind.String(), Element: h.String(), Reason: "the control does not support " + kind.String()}
	}
	rect, err := h.Node().Rect()
	if err != nil {
		return fmt.Errorf("failed to read rectangle of %s: %w", h.Name(), err)
	}
	if rect.Empty() {
		return &ActionNotPossibleError{Action: kind.String(), Element: h.String(), Reason: "the control is not visible for clicking"}
	}

	x, y := rect.Center()
	if loc, err := locator.Parse(h.Locator()); err == nil {
		if ox, oy, ok := loc.Offset(); ok {
			x, y = rect.X+ox, rect.Y+oy
		}
	}

	d.log().Debug("clicking", "kind", kind.String(), "element", h.Name(), "x", x, "y", y)
	if err := clicker.Click(button, count, x, y, d.settings().SimulateMouseMovement); err != nil {
		return fmt.Errorf("failed to %s %s: %w", kind, h.Name(), err)
	}
	return nil
}

// Select picks value in a selection control such as a combo box.
func (d *Dispatcher) Select(h *element.Handle, value string, waitTime *time.Duration) error {
	sel, ok := platform.Probe[platform.Selector](h.Node(), platform.CapSelect)
	if !ok {
		return &ActionNotPossibleError{Action: "select", Element: h.String(), Reason: "the control does not support selection (try set-value instead)"}
	}
	if err := sel.Select(value, d.settings().SimulateMouseMovement); err != nil {
		return fmt.Errorf("failed to select %q in %s: %w", value, h.Name(), err)
	}
	d.wait(waitTime)
	return nil
}

// SendKeysOptions tune key input.
type SendKeysOptions struct {
	// Interval between strokes; 0 means DefaultKeyInterval.
	Interval time.Duration
	WaitTime *time.Duration
	// SendEnter presses Enter after the keys.
	SendEnter bool
}

// SendKeys types keys into the control, or into the global input stream
// when h is nil.
func (d *Dispatcher) SendKeys(h *element.Handle, keys string, opts SendKeysOptions) error {
	if opts.SendEnter {
		keys += "{Enter}"
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultKeyInterval
	}

	if h == nil {
		if d.Inputter == nil {
			return errors.New("no input backend for desktop key input")
		}
		d.log().Info("sending keys to the desktop", "keys", keys)
		if err := d.Inputter.SendKeys(keys, interval); err != nil {
			return fmt.Errorf("failed to send keys: %w", err)
		}
		d.wait(opts.WaitTime)
		return nil
	}

	kr, ok := platform.Probe[platform.KeyReceiver](h.Node(), platform.CapKeys)
	if !ok {
		return &ActionNotPossibleError{Action: "send keys to", Element: h.String(), Reason: "the control does not accept key input"}
	}
	d.log().Info("sending keys", "keys", keys, "element", h.Name())
	if err := kr.SendKeys(keys, interval); err != nil {
		return fmt.Errorf("failed to send keys to %s: %w", h.Name(), err)
	}
	d.wait(opts.WaitTime)
	return nil
}

// GetText reads the window text of the control.
func (d *Dispatcher) GetText(h *element.Handle) (string, error) {
	wt, ok := platform.Probe[platform.WindowTextPattern](h.Node(), platform.CapWindowText)
	if !ok {
		return "", &ActionNotPossibleError{Action: "get text of", Element: h.String(), Reason: "the control has no window text"}
	}
	text, err := wt.WindowText()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", h.Name(), err)
	}
	return text, nil
}

// valuePattern returns the value pattern, falling back to the legacy
// accessibility pattern.
func valuePattern(n platform.Node) (platform.ValuePattern, platform.Capability, bool) {
	for _, c := range []platform.Capability{platform.CapValue, platform.CapLegacyValue} {
		if vp, ok := platform.Probe[platform.ValuePattern](n, c); ok {
			return vp, c, true
		}
	}
	return nil, "", false
}

// GetValue reads the control value through the value pattern or, failing
// that, the legacy accessibility pattern.
func (d *Dispatcher) GetValue(h *element.Handle) (string, error) {
	vp, capability, ok := valuePattern(h.Node())
	if !ok {
		return "", &ActionNotPossibleError{Action: "get value of", Element: h.String(), Reason: "the control does not support value retrieval"}
	}
	d.log().Info("retrieving value", "pattern", string(capability), "element", h.Name())
	v, err := vp.Value()
	if err != nil {
		return "", fmt.Errorf("failed to read value of %s: %w", h.Name(), err)
	}
	return v, nil
}

// SetFocus moves keyboard focus to the control.
func (d *Dispatcher) SetFocus(h *element.Handle) error {
	f, ok := platform.Probe[platform.Focuser](h.Node(), platform.CapFocus)
	if !ok {
		return &ActionNotPossibleError{Action: "focus", Element: h.String(), Reason: "the control cannot take focus"}
	}
	if err := f.SetFocus(); err != nil {
		return fmt.Errorf("failed to focus %s: %w", h.Name(), err)
	}
	return nil
}
