package platform

import (
	"image"
	"time"
)

// Node is a live reference into the accessibility tree of the desktop. The
// tree is owned by the target applications: any call may fail with
// ErrDisposed once the underlying control has been destroyed.
type Node interface {
	Name() (string, error)
	AutomationID() (string, error)
	ClassName() (string, error)
	ControlType() (string, error)
	Rect() (Rect, error)

	// Parent returns nil for the desktop root.
	Parent() (Node, error)
	// Children returns the node's children in their on-screen order.
	Children() ([]Node, error)

	// Exists reports whether the underlying control is still alive.
	Exists() (bool, error)
	// SameAs reports whether both nodes refer to the same live control.
	SameAs(other Node) bool

	// Probe returns the pattern implementing c, or false when the control
	// does not support it.
	Probe(c Capability) (any, bool)
}

// Capability names an interaction pattern a control may support.
type Capability string

const (
	CapValue       Capability = "value"
	CapLegacyValue Capability = "legacy"
	CapText        Capability = "text"
	CapWindowText  Capability = "windowtext"
	CapClick       Capability = "click"
	CapDoubleClick Capability = "doubleclick"
	CapRightClick  Capability = "rightclick"
	CapMiddleClick Capability = "middleclick"
	CapSelect      Capability = "select"
	CapKeys        Capability = "keys"
	CapFocus       Capability = "focus"
)

// Capabilities lists every known capability.
var Capabilities = []Capability{
	CapValue, CapLegacyValue, CapText, CapWindowText,
	CapClick, CapDoubleClick, CapRightClick, CapMiddleClick,
	CapSelect, CapKeys, CapFocus,
}

// ValuePattern reads and writes a control value. Both CapValue and
// CapLegacyValue probes return it.
type ValuePattern interface {
	Value() (string, error)
	SetValue(v string) error
}

// TextPattern reads the document text of a control (CapText).
type TextPattern interface {
	Text() (string, error)
}

// WindowTextPattern reads the window text of a control (CapWindowText).
type WindowTextPattern interface {
	WindowText() (string, error)
}

// Clicker invokes a control with the pointer. All four click capabilities
// return it; the button and count select the gesture.
type Clicker interface {
	Click(button MouseButton, count int, x, y int, moveFirst bool) error
}

// Selector picks an entry of a selection control such as a combo box.
type Selector interface {
	Select(value string, moveFirst bool) error
}

// KeyReceiver accepts synthetic key input routed to a control.
type KeyReceiver interface {
	SendKeys(keys string, interval time.Duration) error
}

// Focuser moves keyboard focus to a control.
type Focuser interface {
	SetFocus() error
}

// Probe is a typed wrapper around Node.Probe.
func Probe[T any](n Node, c Capability) (T, bool) {
	var zero T
	p, ok := n.Probe(c)
	if !ok {
		return zero, false
	}
	t, ok := p.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Inputter simulates global mouse and keyboard input, independent of any node.
type Inputter interface {
	Click(x, y int, button MouseButton, count int) error
	MoveMouse(x, y int) error
	// Drag moves the pointer with the left button held. Higher speed means a
	// faster gesture.
	Drag(fromX, fromY, toX, toY int, speed float64) error
	SendKeys(keys string, interval time.Duration) error
	PressKey(key string) error
	ReleaseKey(key string) error
}

// Screenshotter captures the desktop.
type Screenshotter interface {
	// CaptureDesktop returns the whole virtual screen with its origin at the
	// desktop origin.
	CaptureDesktop() (image.Image, error)
}
