// Package memtree is an in-memory accessibility tree. It backs the test
// suites and the --tree flag, and records every synthetic input it receives.
package memtree

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/uiloc/internal/platform"
)

// Spec is the fixture form of a node.
type Spec struct {
	Name       string   `yaml:"name,omitempty"`
	ID         string   `yaml:"id,omitempty"`
	Class      string   `yaml:"class,omitempty"`
	Control    string   `yaml:"control,omitempty"`
	Rect       []int    `yaml:"rect,omitempty"` // x, y, w, h; absent means no geometry
	Value      string   `yaml:"value,omitempty"`
	WindowText string   `yaml:"window_text,omitempty"`
	MaxLength  int      `yaml:"max_length,omitempty"` // truncates writes when > 0
	Caps       []string `yaml:"caps,omitempty"`
	Children   []Spec   `yaml:"children,omitempty"`
}

// Event is one recorded input.
type Event struct {
	Kind   string `yaml:"kind" json:"kind"`
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	X      int    `yaml:"x,omitempty" json:"x,omitempty"`
	Y      int    `yaml:"y,omitempty" json:"y,omitempty"`
	ToX    int    `yaml:"to_x,omitempty" json:"to_x,omitempty"`
	ToY    int    `yaml:"to_y,omitempty" json:"to_y,omitempty"`
	Button string `yaml:"button,omitempty" json:"button,omitempty"`
	Count  int    `yaml:"count,omitempty" json:"count,omitempty"`
	Keys   string `yaml:"keys,omitempty" json:"keys,omitempty"`
}

// Tree is an in-memory desktop. It implements platform.Inputter and
// platform.Screenshotter. All node state is guarded by one mutex so tests
// can mutate the tree while a search is polling it.
type Tree struct {
	mu      sync.Mutex
	root    *Node
	focused *Node
	held    []string
	events  []Event
}

// New builds a tree from a root spec.
func New(root Spec) (*Tree, error) {
	t := &Tree{}
	n, err := t.build(root, nil)
	if err != nil {
		return nil, err
	}
	t.root = n
	return t, nil
}

// Load reads a YAML fixture.
func Load(r io.Reader) (*Tree, error) {
	var spec Spec
	if err := yaml.NewDecoder(r).Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode tree fixture: %w", err)
	}
	return New(spec)
}

// LoadFile reads a YAML fixture from disk.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree fixture: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// MustNew is like New but panics on error. Intended for tests.
func MustNew(root Spec) *Tree {
	t, err := New(root)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tree) build(s Spec, parent *Node) (*Node, error) {
	n := &Node{
		tree:       t,
		parent:     parent,
		name:       s.Name,
		id:         s.ID,
		class:      s.Class,
		control:    s.Control,
		rect:       platform.InvalidRect,
		value:      s.Value,
		windowText: s.WindowText,
		maxLength:  s.MaxLength,
		caps:       map[platform.Capability]bool{},
	}
	switch len(s.Rect) {
	case 0:
	case 4:
		n.rect = platform.Rect{X: s.Rect[0], Y: s.Rect[1], Width: s.Rect[2], Height: s.Rect[3]}
	default:
		return nil, fmt.Errorf("node %q: rect needs 4 values, got %d", s.Name, len(s.Rect))
	}
	for _, c := range s.Caps {
		if c == "invoke" {
			for _, k := range []platform.Capability{platform.CapClick, platform.CapDoubleClick, platform.CapRightClick, platform.CapMiddleClick} {
				n.caps[k] = true
			}
			continue
		}
		capability := platform.Capability(c)
		if !slices.Contains(platform.Capabilities, capability) {
			return nil, fmt.Errorf("node %q: unknown capability %q", s.Name, c)
		}
		n.caps[capability] = true
	}
	for _, cs := range s.Children {
		child, err := t.build(cs, n)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
	return n, nil
}

// Root returns the desktop node.
func (t *Tree) Root() *Node {
	return t.root
}

// Provider returns a provider backed by the tree.
func (t *Tree) Provider() *platform.Provider {
	return &platform.Provider{Desktop: t.root, Inputter: t, Screenshotter: t}
}

// Events returns a copy of the recorded input events.
func (t *Tree) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.events)
}

// ResetEvents clears the recorded input events.
func (t *Tree) ResetEvents() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// Focused returns the node holding keyboard focus, or nil.
func (t *Tree) Focused() *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.focused
}

// Held returns the keys currently pressed through PressKey.
func (t *Tree) Held() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.held)
}

// FindByID returns the first live node in pre-order with the automation id.
func (t *Tree) FindByID(id string) *Node {
	return t.find(func(n *Node) bool { return n.id == id })
}

// FindByName returns the first live node in pre-order with the name.
func (t *Tree) FindByName(name string) *Node {
	return t.find(func(n *Node) bool { return n.name == name })
}

func (t *Tree) find(match func(*Node) bool) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		if n.disposed {
			return nil
		}
		if match(n) {
			return n
		}
		for _, c := range n.children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(t.root)
}

func (t *Tree) record(e Event) {
	t.events = append(t.events, e)
}
