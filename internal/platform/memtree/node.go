package memtree

import (
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/uiloc/internal/platform"
)

// Node is one control of a Tree. It implements platform.Node and, depending
// on its capabilities, every pattern interface.
type Node struct {
	tree     *Tree
	parent   *Node
	children []*Node

	name       string
	id         string
	class      string
	control    string
	rect       platform.Rect
	value      string
	windowText string
	maxLength  int
	caps       map[platform.Capability]bool

	selectAll   bool // a select-all is pending until the next edit
	disposed    bool
	childrenErr error
}

func (n *Node) read(f func()) error {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if n.disposed {
		return platform.ErrDisposed
	}
	f()
	return nil
}

func (n *Node) Name() (string, error) {
	var v string
	err := n.read(func() { v = n.name })
	return v, err
}

func (n *Node) AutomationID() (string, error) {
	var v string
	err := n.read(func() { v = n.id })
	return v, err
}

func (n *Node) ClassName() (string, error) {
	var v string
	err := n.read(func() { v = n.class })
	return v, err
}

func (n *Node) ControlType() (string, error) {
	var v string
	err := n.read(func() { v = n.control })
	return v, err
}

func (n *Node) Rect() (platform.Rect, error) {
	var v platform.Rect
	err := n.read(func() { v = n.rect })
	return v, err
}

func (n *Node) Parent() (platform.Node, error) {
	var p *Node
	if err := n.read(func() { p = n.parent }); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return p, nil
}

func (n *Node) Children() ([]platform.Node, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if n.disposed {
		return nil, platform.ErrDisposed
	}
	if n.childrenErr != nil {
		return nil, n.childrenErr
	}
	out := make([]platform.Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out, nil
}

func (n *Node) Exists() (bool, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	return !n.disposed, nil
}

func (n *Node) SameAs(other platform.Node) bool {
	o, ok := other.(*Node)
	return ok && o == n
}

func (n *Node) Probe(c platform.Capability) (any, bool) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if n.disposed || !n.caps[c] {
		return nil, false
	}
	return n, true
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %q", n.control, n.name)
}

// Value implements platform.ValuePattern.
func (n *Node) Value() (string, error) {
	var v string
	err := n.read(func() { v = n.value })
	return v, err
}

// SetValue implements platform.ValuePattern.
func (n *Node) SetValue(v string) error {
	return n.read(func() {
		n.value = n.clamp(v)
		n.tree.record(Event{Kind: "set-value", Target: n.name, Keys: v})
	})
}

// Text implements platform.TextPattern.
func (n *Node) Text() (string, error) {
	return n.Value()
}

// WindowText implements platform.WindowTextPattern. It falls back to the
// name when the fixture sets no window text.
func (n *Node) WindowText() (string, error) {
	var v string
	err := n.read(func() {
		v = n.windowText
		if v == "" {
			v = n.name
		}
	})
	return v, err
}

// Click implements platform.Clicker.
func (n *Node) Click(button platform.MouseButton, count int, x, y int, moveFirst bool) error {
	return n.read(func() {
		if moveFirst {
			n.tree.record(Event{Kind: "move", Target: n.name, X: x, Y: y})
		}
		n.tree.record(Event{Kind: "click", Target: n.name, X: x, Y: y, Button: button.String(), Count: count})
		n.tree.focused = n
	})
}

// Select implements platform.Selector. A control with children only
// accepts values naming one of them.
func (n *Node) Select(value string, moveFirst bool) error {
	var err error
	rerr := n.read(func() {
		if len(n.children) > 0 {
			found := false
			for _, c := range n.children {
				if !c.disposed && c.name == value {
					found = true
					break
				}
			}
			if !found {
				err = fmt.Errorf("%q has no item named %q", n.name, value)
				return
			}
		}
		if moveFirst {
			x, y := n.rect.Center()
			n.tree.record(Event{Kind: "move", Target: n.name, X: x, Y: y})
		}
		n.value = value
		n.tree.record(Event{Kind: "select", Target: n.name, Keys: value})
	})
	if rerr != nil {
		return rerr
	}
	return err
}

// SendKeys implements platform.KeyReceiver by editing the node value.
func (n *Node) SendKeys(keys string, interval time.Duration) error {
	strokes, err := platform.ParseKeys(keys)
	if err != nil {
		return err
	}
	return n.read(func() {
		n.tree.record(Event{Kind: "keys", Target: n.name, Keys: keys})
		n.tree.focused = n
		n.edit(strokes)
	})
}

// SetFocus implements platform.Focuser.
func (n *Node) SetFocus() error {
	return n.read(func() {
		n.tree.focused = n
		n.tree.record(Event{Kind: "focus", Target: n.name})
	})
}

// edit applies key strokes with the caret kept at the end of the value.
// Callers hold the tree lock.
func (n *Node) edit(strokes []platform.KeyStroke) {
	for _, s := range strokes {
		switch {
		case s.HasModifier(platform.KeyCtrl) && strings.EqualFold(s.Key, "a"):
			n.selectAll = true
		case s.Key == "Del" || s.Key == "Back":
			if n.selectAll {
				n.value = ""
			} else if s.Key == "Back" && n.value != "" {
				r := []rune(n.value)
				n.value = string(r[:len(r)-1])
			}
			n.selectAll = false
		case s.Key == "Enter" && len(s.Modifiers) == 0:
			n.insert("\n")
		default:
			if r, ok := s.Char(); ok {
				n.insert(string(r))
			} else {
				n.selectAll = false
			}
		}
	}
}

func (n *Node) insert(s string) {
	if n.selectAll {
		n.value = ""
		n.selectAll = false
	}
	n.value = n.clamp(n.value + s)
}

func (n *Node) clamp(v string) string {
	if n.maxLength > 0 {
		if r := []rune(v); len(r) > n.maxLength {
			return string(r[:n.maxLength])
		}
	}
	return v
}

// SetName changes the live name of the control.
func (n *Node) SetName(name string) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.name = name
}

// SetRect changes the live geometry of the control.
func (n *Node) SetRect(r platform.Rect) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.rect = r
}

// SetChildrenError makes Children fail with err until cleared with nil.
func (n *Node) SetChildrenError(err error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.childrenErr = err
}

// Append adds a new child built from s and returns it.
func (n *Node) Append(s Spec) (*Node, error) {
	child, err := n.tree.build(s, n)
	if err != nil {
		return nil, err
	}
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.children = append(n.children, child)
	return child, nil
}

// Dispose destroys the control and its subtree. The node stays in its
// parent's child list, as a dead handle would in a real provider.
func (n *Node) Dispose() {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	if n.tree.focused == n {
		n.tree.focused = nil
	}
	for _, c := range n.children {
		c.dispose()
	}
}

// Remove disposes the control and detaches it from its parent.
func (n *Node) Remove() {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.dispose()
	if p := n.parent; p != nil {
		for i, c := range p.children {
			if c == n {
				p.children = append(p.children[:i:i], p.children[i+1:]...)
				break
			}
		}
	}
}
