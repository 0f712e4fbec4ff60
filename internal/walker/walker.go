// Package walker enumerates the live control tree depth-first.
//
// Every call returns a fresh sequence; nothing is shared between walks.
// Disposed nodes are skipped along with their subtrees, and a failure to read
// a node's children ends that subtree without aborting the walk.
package walker

import (
	"iter"
	"slices"

	"github.com/mj1618/uiloc/internal/platform"
)

// Visit is one node reached by a walk, with its coordinates relative to the
// walk root. Children of the root are at depth 1.
type Visit struct {
	Node     platform.Node
	Depth    int
	ChildPos int   // 1-based position among the parent's children
	Path     []int // 1-based child positions from the walk root
}

// All yields every live descendant of root in pre-order, down to maxDepth.
func All(root platform.Node, maxDepth int) iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		w := &walk{maxDepth: maxDepth, yield: yield}
		w.descend(root, 1, nil)
	}
}

// Siblings walks like All but yields nothing until isMatch accepts a node.
// It then yields that node followed by its later live siblings, without
// descending into any of them, and stops.
func Siblings(root platform.Node, maxDepth int, isMatch func(Visit) bool) iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		w := &walk{maxDepth: maxDepth, yield: yield, isMatch: isMatch}
		w.descend(root, 1, nil)
	}
}

type walk struct {
	maxDepth int
	yield    func(Visit) bool
	isMatch  func(Visit) bool
	stopped  bool
}

func (w *walk) descend(parent platform.Node, depth int, path []int) {
	if depth > w.maxDepth {
		return
	}
	kids, err := parent.Children()
	if err != nil {
		return
	}
	for i, c := range kids {
		if w.stopped {
			return
		}
		if !Alive(c) {
			continue
		}
		v := Visit{Node: c, Depth: depth, ChildPos: i + 1, Path: childPath(path, i+1)}
		if w.isMatch != nil {
			if w.isMatch(v) {
				w.siblingsFrom(kids, i, v)
				return
			}
		} else if !w.yield(v) {
			w.stopped = true
			return
		}
		w.descend(c, depth+1, v.Path)
	}
}

func (w *walk) siblingsFrom(kids []platform.Node, first int, v Visit) {
	w.stopped = true
	if !w.yield(v) {
		return
	}
	parentPath := v.Path[:len(v.Path)-1]
	for j := first + 1; j < len(kids); j++ {
		if !Alive(kids[j]) {
			continue
		}
		sib := Visit{Node: kids[j], Depth: v.Depth, ChildPos: j + 1, Path: childPath(parentPath, j+1)}
		if !w.yield(sib) {
			return
		}
	}
}

func childPath(parent []int, pos int) []int {
	p := slices.Clip(slices.Clone(parent))
	return append(p, pos)
}

// Alive reports whether n still exists. A failing liveness check counts as
// disposed.
func Alive(n platform.Node) bool {
	ok, err := n.Exists()
	return err == nil && ok
}
