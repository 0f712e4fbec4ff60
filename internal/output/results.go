package output

import (
	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/model"
)

// ElementResult describes one resolved control.
type ElementResult struct {
	Handle  string `yaml:"handle,omitempty"  json:"handle,omitempty"` // registry id, MCP only
	Name    string `yaml:"name,omitempty"    json:"name,omitempty"`
	ID      string `yaml:"id,omitempty"      json:"id,omitempty"`
	Class   string `yaml:"class,omitempty"   json:"class,omitempty"`
	Control string `yaml:"control"           json:"control"`
	Rect    [4]int `yaml:"b"                 json:"b"` // [x, y, width, height]; -1s when unknown
	Depth   int    `yaml:"depth,omitempty"   json:"depth,omitempty"`
	Index   int    `yaml:"index,omitempty"   json:"index,omitempty"`
	Path    string `yaml:"path,omitempty"    json:"path,omitempty"`
	Locator string `yaml:"locator,omitempty" json:"locator,omitempty"`
}

// NewElementResult snapshots the cached attributes of h.
func NewElementResult(h *element.Handle) ElementResult {
	return ElementResult{
		Name:    h.Name(),
		ID:      h.AutomationID(),
		Class:   h.ClassName(),
		Control: h.ControlType(),
		Rect:    [4]int{h.Left(), h.Top(), h.Width(), h.Height()},
		Depth:   h.Depth(),
		Index:   h.ChildPos(),
		Path:    model.FormatPath(h.Path()),
		Locator: h.Locator(),
	}
}

// NewElementResults converts a list of handles.
func NewElementResults(hs []*element.Handle) []ElementResult {
	out := make([]ElementResult, 0, len(hs))
	for _, h := range hs {
		out = append(out, NewElementResult(h))
	}
	return out
}

// FindResult is the output of find and find-many.
type FindResult struct {
	TS       int64           `yaml:"ts"       json:"ts"`
	Elements []ElementResult `yaml:"elements" json:"elements"`
}

// ActionResult is the output of commands that act on a control.
type ActionResult struct {
	OK      bool           `yaml:"ok"                json:"ok"`
	Action  string         `yaml:"action"            json:"action"`
	Element *ElementResult `yaml:"element,omitempty" json:"element,omitempty"`
	Target  *ElementResult `yaml:"target,omitempty"  json:"target,omitempty"` // drop target of a drag
	Text    *string        `yaml:"text,omitempty"    json:"text,omitempty"`
	Value   *string        `yaml:"value,omitempty"   json:"value,omitempty"`
}

// TreeResult is the output of tree.
type TreeResult struct {
	Root     string          `yaml:"root,omitempty" json:"root,omitempty"`
	TS       int64           `yaml:"ts"             json:"ts"`
	Elements []model.Element `yaml:"elements"       json:"elements"`
}

// TreeFlatResult is the output of tree --flat.
type TreeFlatResult struct {
	Root     string              `yaml:"root,omitempty" json:"root,omitempty"`
	TS       int64               `yaml:"ts"             json:"ts"`
	Elements []model.FlatElement `yaml:"elements"       json:"elements"`
}
