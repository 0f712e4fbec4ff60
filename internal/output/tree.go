package output

import (
	"math"
	"time"

	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/model"
)

// TreeOptions control how a subtree is read and filtered.
type TreeOptions struct {
	Depth   int    // levels below the root; 0 means the whole subtree
	Text    string // keep elements whose name, id or class contain Text
	Control string // keep elements of this control type
	Bounds  *[4]int
	Flat    bool
}

// BuildTree snapshots the subtree under h and applies the filters. It
// returns a TreeResult, or a TreeFlatResult when opts.Flat is set.
func BuildTree(h *element.Handle, opts TreeOptions) (any, error) {
	depth := opts.Depth
	if depth <= 0 {
		depth = math.MaxInt
	}
	root, err := h.Snapshot(depth)
	if err != nil {
		return nil, err
	}
	elements := root.Children
	elements = model.FilterByText(elements, opts.Text)
	elements = model.FilterByControlType(elements, opts.Control)
	if opts.Bounds != nil {
		elements = model.FilterByBounds(elements, *opts.Bounds)
	}
	if elements == nil {
		elements = []model.Element{}
	}

	rootDesc := root.Locator()
	ts := time.Now().Unix()
	if opts.Flat {
		flat := model.FlattenElements(elements)
		if flat == nil {
			flat = []model.FlatElement{}
		}
		return TreeFlatResult{Root: rootDesc, TS: ts, Elements: flat}, nil
	}
	return TreeResult{Root: rootDesc, TS: ts, Elements: elements}, nil
}

// FormatTree renders the subtree under h as indented locator lines.
func FormatTree(h *element.Handle, opts TreeOptions) (string, error) {
	opts.Flat = true
	v, err := BuildTree(h, opts)
	if err != nil {
		return "", err
	}
	return model.FormatTree(v.(TreeFlatResult).Elements), nil
}
