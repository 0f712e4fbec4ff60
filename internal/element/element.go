// Package element wraps resolved controls in handles that cache what the
// control looked like when it was found.
package element

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/mj1618/uiloc/internal/locator"
	"github.com/mj1618/uiloc/internal/model"
	"github.com/mj1618/uiloc/internal/platform"
	"github.com/mj1618/uiloc/internal/resolver"
	"github.com/mj1618/uiloc/internal/walker"
)

// Handle is a resolved control. Its name, id, class and control type are
// fixed at resolution time; only UpdateGeometry changes the cached
// rectangle. Live accessors tolerate the control being destroyed.
type Handle struct {
	node     platform.Node
	resolver *resolver.Resolver

	name        string
	id          string
	class       string
	controlType string
	rect        platform.Rect

	locator  string
	depth    int
	childPos int
	path     []int
}

// New wraps a match. The resolver is used by Find, FindMany and Parent
// lookups rooted at the handle and may be nil.
func New(m resolver.Match, r *resolver.Resolver) *Handle {
	return &Handle{
		node:        m.Node,
		resolver:    r,
		name:        m.Attrs.Name,
		id:          m.Attrs.AutomationID,
		class:       m.Attrs.ClassName,
		controlType: m.Attrs.ControlType,
		rect:        m.Rect,
		locator:     m.Locator,
		depth:       m.Depth,
		childPos:    m.ChildPos,
		path:        slices.Clone(m.Path),
	}
}

// Node returns the live control.
func (h *Handle) Node() platform.Node { return h.node }

func (h *Handle) Name() string         { return h.name }
func (h *Handle) AutomationID() string { return h.id }
func (h *Handle) ClassName() string    { return h.class }
func (h *Handle) ControlType() string  { return h.controlType }

// Rect returns the cached rectangle.
func (h *Handle) Rect() platform.Rect { return h.rect }

// Locator returns the locator text that found the handle.
func (h *Handle) Locator() string { return h.locator }

// Depth, ChildPos and Path are relative to the root of the locator step
// that found the handle.
func (h *Handle) Depth() int    { return h.depth }
func (h *Handle) ChildPos() int { return h.childPos }
func (h *Handle) Path() []int   { return slices.Clone(h.path) }

// Left, Top, Right, Bottom, Width, Height, XCenter and YCenter derive from
// the cached rectangle and are -1 when it is invalid.
func (h *Handle) Left() int   { return h.geom(func(r platform.Rect) int { return r.X }) }
func (h *Handle) Top() int    { return h.geom(func(r platform.Rect) int { return r.Y }) }
func (h *Handle) Right() int  { return h.geom(func(r platform.Rect) int { return r.X + r.Width }) }
func (h *Handle) Bottom() int { return h.geom(func(r platform.Rect) int { return r.Y + r.Height }) }
func (h *Handle) Width() int  { return h.geom(func(r platform.Rect) int { return r.Width }) }
func (h *Handle) Height() int { return h.geom(func(r platform.Rect) int { return r.Height }) }

func (h *Handle) XCenter() int {
	return h.geom(func(r platform.Rect) int { x, _ := r.Center(); return x })
}

func (h *Handle) YCenter() int {
	return h.geom(func(r platform.Rect) int { _, y := r.Center(); return y })
}

func (h *Handle) geom(f func(platform.Rect) int) int {
	if h.rect.Invalid {
		return -1
	}
	return f(h.rect)
}

// IsDisposed reports whether the control has been destroyed. A failing
// liveness check counts as disposed.
func (h *Handle) IsDisposed() bool {
	return !walker.Alive(h.node)
}

// UpdateGeometry re-reads the rectangle of the live control. Nothing else
// in the cache changes.
func (h *Handle) UpdateGeometry() error {
	r, err := h.node.Rect()
	if err != nil {
		return fmt.Errorf("failed to update geometry of %s: %w", h.name, err)
	}
	h.rect = r
	return nil
}

// Parent returns a handle for the live parent, or nil for the desktop root.
func (h *Handle) Parent() (*Handle, error) {
	p, err := h.node.Parent()
	if err != nil {
		return nil, fmt.Errorf("failed to get parent of %s: %w", h.name, err)
	}
	if p == nil {
		return nil, nil
	}
	m, err := resolver.MatchNode(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read parent of %s: %w", h.name, err)
	}
	return New(m, h.resolver), nil
}

// IsSameAs reports whether both handles refer to the same live control,
// regardless of when each was resolved.
func (h *Handle) IsSameAs(other *Handle) bool {
	if other == nil {
		return false
	}
	return h.node.SameAs(other.node)
}

var errNoResolver = errors.New("handle has no resolver")

// Find resolves loc under the handle.
func (h *Handle) Find(ctx context.Context, loc locator.Locator, scope resolver.Scope) (*Handle, error) {
	if h.resolver == nil {
		return nil, errNoResolver
	}
	scope.Root = h.node
	m, err := h.resolver.Find(ctx, loc, scope)
	if err != nil {
		return nil, err
	}
	return New(m, h.resolver), nil
}

// FindMany resolves every match of loc under the handle.
func (h *Handle) FindMany(ctx context.Context, loc locator.Locator, scope resolver.Scope, waitForMatch bool) ([]*Handle, error) {
	if h.resolver == nil {
		return nil, errNoResolver
	}
	scope.Root = h.node
	ms, err := h.resolver.FindMany(ctx, loc, scope, waitForMatch)
	if err != nil {
		return nil, err
	}
	return Wrap(ms, h.resolver), nil
}

// Wrap turns matches into handles, keeping their order.
func Wrap(ms []resolver.Match, r *resolver.Resolver) []*Handle {
	out := make([]*Handle, len(ms))
	for i, m := range ms {
		out[i] = New(m, r)
	}
	return out
}

// Children yields a handle for every live descendant down to maxDepth,
// in pre-order.
func (h *Handle) Children(maxDepth int) iter.Seq[*Handle] {
	return func(yield func(*Handle) bool) {
		for v := range walker.All(h.node, maxDepth) {
			m, err := resolver.MatchVisit(v)
			if err != nil {
				continue
			}
			if !yield(New(m, h.resolver)) {
				return
			}
		}
	}
}

// Snapshot reads the live subtree under the handle down to maxDepth.
func (h *Handle) Snapshot(maxDepth int) (model.Element, error) {
	m, err := resolver.MatchNode(h.node)
	if err != nil {
		return model.Element{}, fmt.Errorf("failed to snapshot %s: %w", h.name, err)
	}
	root := toElement(m)

	// Pre-order visits arrive parent first, so each element's parent is the
	// open ancestor one level up.
	stack := []*model.Element{&root}
	for v := range walker.All(h.node, maxDepth) {
		if len(stack) < v.Depth {
			// An ancestor was unreadable.
			continue
		}
		stack = stack[:v.Depth]
		cm, err := resolver.MatchVisit(v)
		if err != nil {
			continue
		}
		parent := stack[v.Depth-1]
		parent.Children = append(parent.Children, toElement(cm))
		stack = append(stack, &parent.Children[len(parent.Children)-1])
	}
	return root, nil
}

func toElement(m resolver.Match) model.Element {
	var bounds [4]int
	if !m.Rect.Invalid {
		bounds = m.Rect.Array()
	}
	return model.Element{
		Name:         m.Attrs.Name,
		AutomationID: m.Attrs.AutomationID,
		ClassName:    m.Attrs.ClassName,
		ControlType:  m.Attrs.ControlType,
		Bounds:       bounds,
		Depth:        m.Depth,
		ChildPos:     m.ChildPos,
		Path:         model.FormatPath(m.Path),
	}
}

// Element returns the cached snapshot of the handle without children.
func (h *Handle) Element() model.Element {
	return toElement(resolver.Match{
		Attrs: locator.Attributes{
			Name:         h.name,
			AutomationID: h.id,
			ClassName:    h.class,
			ControlType:  h.controlType,
		},
		Rect:     h.rect,
		Depth:    h.depth,
		ChildPos: h.childPos,
		Path:     h.path,
	})
}

// String prints the attributes usable in a locator followed by how the
// handle was found.
func (h *Handle) String() string {
	e := h.Element()
	s := e.Locator()
	var info []string
	if h.locator != "" {
		info = append(info, "locator:"+model.QuoteValue(h.locator))
	}
	if si := e.SearchInfo(); si != "" {
		info = append(info, si)
	}
	if len(info) > 0 {
		s += " (" + strings.Join(info, " ") + ")"
	}
	return s
}
