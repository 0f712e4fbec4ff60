// Package resolver finds the controls described by a locator, polling the
// live tree until they appear or a timeout elapses.
package resolver

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/mj1618/uiloc/internal/config"
	"github.com/mj1618/uiloc/internal/locator"
	"github.com/mj1618/uiloc/internal/logging"
	"github.com/mj1618/uiloc/internal/model"
	"github.com/mj1618/uiloc/internal/platform"
	"github.com/mj1618/uiloc/internal/walker"
)

// Strategy selects how FindMany walks the tree.
type Strategy string

const (
	// StrategyAll returns every match down to the maximum depth.
	StrategyAll Strategy = "all"
	// StrategySiblings returns the first match and its matching later
	// siblings, without descending into any of them.
	StrategySiblings Strategy = "siblings"
)

// ParseStrategy converts a flag value to a Strategy. Empty means all.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StrategyAll, nil
	case "siblings":
		return StrategySiblings, nil
	default:
		return "", fmt.Errorf("unknown search strategy: %q (expected all or siblings)", s)
	}
}

// Scope bounds one search.
type Scope struct {
	// Root is the node searched under; nil means the desktop.
	Root platform.Node
	// MaxDepth bounds the walk; 0 uses the configured search depth. A depth:
	// or path: predicate in the locator names its own depth and overrides
	// this bound for its step.
	MaxDepth int
	// Timeout is how long to keep polling; 0 uses the configured timeout and
	// a negative value allows a single attempt.
	Timeout  time.Duration
	Strategy Strategy
}

// Match is one resolved control with the attributes it had when it matched.
// Coordinates are relative to the root of the locator step that found it.
type Match struct {
	Node     platform.Node
	Attrs    locator.Attributes
	Rect     platform.Rect
	Depth    int
	ChildPos int
	Path     []int
	Locator  string
}

// Resolver runs locators against a live tree.
type Resolver struct {
	Desktop  platform.Node
	Settings config.Source
	Logger   *slog.Logger
}

// New returns a resolver searching under desktop by default.
func New(desktop platform.Node, settings config.Source, logger *slog.Logger) *Resolver {
	return &Resolver{Desktop: desktop, Settings: settings, Logger: logger}
}

// Find returns the first control matching loc. It always walks the tree at
// least once, then polls until a match appears or the timeout elapses.
func (r *Resolver) Find(ctx context.Context, loc locator.Locator, scope Scope) (Match, error) {
	matches, err := r.poll(ctx, loc, scope, false, true)
	if err != nil {
		return Match{}, err
	}
	return matches[0], nil
}

// FindMany returns every control matching loc in traversal order. With
// waitForMatch unset an empty result is returned after one attempt.
func (r *Resolver) FindMany(ctx context.Context, loc locator.Locator, scope Scope, waitForMatch bool) ([]Match, error) {
	matches, err := r.poll(ctx, loc, scope, true, waitForMatch)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *Resolver) poll(ctx context.Context, loc locator.Locator, scope Scope, many, wait bool) ([]Match, error) {
	st := r.settings()
	root := scope.Root
	if root == nil {
		root = r.Desktop
	}
	depth := scope.MaxDepth
	if depth <= 0 {
		depth = st.SearchDepth
	}
	timeout := scope.Timeout
	if timeout == 0 {
		timeout = st.Timeout
	}
	strategy := scope.Strategy
	if strategy == "" {
		strategy = StrategyAll
	}

	log := logging.OrDefault(r.Logger)
	log.Info("searching", "locator", loc.String(), "depth", depth, "timeout", timeout, "many", many)

	start := time.Now()
	for attempt := 1; ; attempt++ {
		var visited *[]walker.Visit
		if st.VerboseErrors {
			visited = new([]walker.Visit)
		}
		s := search{loc: loc, depth: depth, many: many, strategy: strategy, visited: visited}
		matches := s.run(root)
		if len(matches) > 0 {
			log.Debug("resolved", "locator", loc.String(), "matches", len(matches), "attempts", attempt)
			return matches, nil
		}
		if many && !wait {
			return nil, nil
		}

		elapsed := time.Since(start)
		if elapsed >= timeout {
			nf := &NotFoundError{Locator: loc.String(), Root: describe(root), Timeout: max(timeout, 0), Attempts: attempt}
			if visited != nil {
				nf.Dump = dump(*visited)
			}
			return nil, nf
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("search for %q cancelled: %w", loc.String(), ctx.Err())
		case <-time.After(min(st.PollInterval, timeout-elapsed)):
		}
	}
}

func (r *Resolver) settings() config.Settings {
	if r.Settings == nil {
		return config.New().Settings()
	}
	return r.Settings.Settings()
}

// search is one full traversal of a locator chain.
type search struct {
	loc      locator.Locator
	depth    int
	many     bool
	strategy Strategy
	visited  *[]walker.Visit
}

func (s *search) run(root platform.Node) []Match {
	if s.loc.Empty() {
		m, err := MatchNode(root)
		if err != nil {
			return nil
		}
		return []Match{m}
	}

	text := s.loc.String()
	cur := root
	for i, step := range s.loc.Steps {
		last := i == len(s.loc.Steps)-1
		maxDepth := step.MaxDepth(s.depth)

		if !last || !s.many {
			m, ok := s.first(cur, step, maxDepth)
			if !ok {
				return nil
			}
			if last {
				m.Locator = text
				return []Match{m}
			}
			cur = m.Node
			continue
		}

		var out []Match
		var seq iter.Seq[walker.Visit]
		if s.strategy == StrategySiblings {
			seq = walker.Siblings(cur, maxDepth, func(v walker.Visit) bool {
				s.record(v)
				_, ok := matchVisit(step, v)
				return ok
			})
		} else {
			seq = walker.All(cur, maxDepth)
		}
		for v := range seq {
			if s.strategy != StrategySiblings {
				s.record(v)
			}
			if m, ok := matchVisit(step, v); ok {
				m.Locator = text
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func (s *search) first(root platform.Node, step locator.Step, maxDepth int) (Match, bool) {
	for v := range walker.All(root, maxDepth) {
		s.record(v)
		if m, ok := matchVisit(step, v); ok {
			return m, true
		}
	}
	return Match{}, false
}

func (s *search) record(v walker.Visit) {
	if s.visited != nil {
		*s.visited = append(*s.visited, v)
	}
}

// matchVisit evaluates step against a visited node. Nodes that fail while
// being read are treated as disposed and never match.
func matchVisit(step locator.Step, v walker.Visit) (Match, bool) {
	needsRect := step.NeedsRect()
	attrs, rect, ok := snapshot(v.Node, needsRect)
	if !ok {
		return Match{}, false
	}
	pos := locator.Position{Depth: v.Depth, ChildPos: v.ChildPos, Path: v.Path}
	if !step.Match(attrs, pos) {
		return Match{}, false
	}
	if !needsRect {
		rect = readRect(v.Node)
		attrs.Rect, attrs.RectValid = rect.Array(), !rect.Invalid
	}
	return Match{
		Node:     v.Node,
		Attrs:    attrs,
		Rect:     rect,
		Depth:    v.Depth,
		ChildPos: v.ChildPos,
		Path:     v.Path,
	}, true
}

// snapshot reads the attributes locators test. The rectangle is only read
// when withRect is set.
func snapshot(n platform.Node, withRect bool) (locator.Attributes, platform.Rect, bool) {
	var (
		a   locator.Attributes
		err error
	)
	if a.Name, err = n.Name(); err != nil {
		return a, platform.InvalidRect, false
	}
	if a.AutomationID, err = n.AutomationID(); err != nil {
		return a, platform.InvalidRect, false
	}
	if a.ClassName, err = n.ClassName(); err != nil {
		return a, platform.InvalidRect, false
	}
	if a.ControlType, err = n.ControlType(); err != nil {
		return a, platform.InvalidRect, false
	}
	rect := platform.InvalidRect
	if withRect {
		rect = readRect(n)
		a.Rect, a.RectValid = rect.Array(), !rect.Invalid
	}
	return a, rect, true
}

func readRect(n platform.Node) platform.Rect {
	r, err := n.Rect()
	if err != nil {
		return platform.InvalidRect
	}
	return r
}

func describe(n platform.Node) string {
	if n == nil {
		return "<nil>"
	}
	attrs, _, ok := snapshot(n, false)
	if !ok {
		return "<disposed>"
	}
	return model.Element{
		Name:         attrs.Name,
		AutomationID: attrs.AutomationID,
		ClassName:    attrs.ClassName,
		ControlType:  attrs.ControlType,
	}.Locator()
}

// dump renders visited nodes in locator syntax, one per line.
func dump(visits []walker.Visit) string {
	flat := make([]model.FlatElement, 0, len(visits))
	for _, v := range visits {
		attrs, _, ok := snapshot(v.Node, false)
		if !ok {
			continue
		}
		flat = append(flat, model.FlatElement{
			Name:         attrs.Name,
			AutomationID: attrs.AutomationID,
			ClassName:    attrs.ClassName,
			ControlType:  attrs.ControlType,
			Depth:        v.Depth,
			ChildPos:     v.ChildPos,
			Path:         model.FormatPath(v.Path),
		})
	}
	return model.FormatTree(flat)
}

// MatchNode snapshots a node found without a locator, such as a parent or
// a child reached by walking. It fails with platform.ErrDisposed when the
// node cannot be read.
func MatchNode(n platform.Node) (Match, error) {
	attrs, rect, ok := snapshot(n, true)
	if !ok {
		return Match{}, platform.ErrDisposed
	}
	return Match{Node: n, Attrs: attrs, Rect: rect}, nil
}

// MatchVisit snapshots a node reached by a walk, keeping its coordinates.
func MatchVisit(v walker.Visit) (Match, error) {
	m, err := MatchNode(v.Node)
	if err != nil {
		return Match{}, err
	}
	m.Depth, m.ChildPos, m.Path = v.Depth, v.ChildPos, v.Path
	return m, nil
}
