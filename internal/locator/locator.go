// Package locator parses textual and structured queries that describe how to
// find controls in a live accessibility tree.
//
// A locator is a chain of steps separated by ">". Each step is one or more
// alternatives separated by "or", and each alternative is a conjunction of
// key:value predicates:
//
//	name:Calculator > id:num7Button
//	type:Edit name:"File name:" or id:FileNameControlHost
//	path:2|3|1
//
// Parsing is pure: it never touches the live tree.
package locator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mj1618/uiloc/internal/model"
)

// Key identifies the control attribute or traversal coordinate a predicate tests.
type Key string

const (
	KeyName    Key = "name"
	KeyID      Key = "id"
	KeyClass   Key = "class"
	KeyControl Key = "control"
	KeySubName Key = "subname"
	KeyRegex   Key = "regex"
	KeyPath    Key = "path"
	KeyDepth   Key = "depth"
	KeyIndex   Key = "index"
	KeyOffset  Key = "offset"
	KeyRegion  Key = "region"
)

// keyAliases maps every accepted spelling of a key to its canonical form.
var keyAliases = map[string]Key{
	"name":         KeyName,
	"id":           KeyID,
	"automationid": KeyID,
	"class":        KeyClass,
	"classname":    KeyClass,
	"control":      KeyControl,
	"type":         KeyControl,
	"subname":      KeySubName,
	"regex":        KeyRegex,
	"path":         KeyPath,
	"depth":        KeyDepth,
	"index":        KeyIndex,
	"child_pos":    KeyIndex,
	"offset":       KeyOffset,
	"region":       KeyRegion,
}

// LookupKey returns the canonical key for an accepted spelling.
func LookupKey(s string) (Key, bool) {
	k, ok := keyAliases[strings.ToLower(s)]
	return k, ok
}

// Op is the comparison a predicate applies to its attribute.
type Op int

const (
	OpEquals Op = iota
	OpContains
	OpMatches
)

func (o Op) String() string {
	switch o {
	case OpContains:
		return "contains"
	case OpMatches:
		return "matches"
	default:
		return "equals"
	}
}

// opForKey returns the only operator a key supports.
func opForKey(k Key) Op {
	switch k {
	case KeySubName:
		return OpContains
	case KeyRegex:
		return OpMatches
	default:
		return OpEquals
	}
}

// Region is a desktop-relative rectangle.
type Region struct {
	X, Y, Width, Height int
}

// Contains reports whether the rectangle [x, y, w, h] lies inside r.
func (r Region) Contains(rect [4]int) bool {
	return rect[0] >= r.X && rect[1] >= r.Y &&
		rect[0]+rect[2] <= r.X+r.Width && rect[1]+rect[3] <= r.Y+r.Height
}

// Predicate is one (key, operator, value) triple. Positional and geometric
// values are parsed once when the predicate is compiled.
type Predicate struct {
	Key   Key
	Op    Op
	Value string

	re      *regexp.Regexp
	path    []int
	num     int
	offset  [2]int
	region  Region
	control string
}

// Attributes are the cached node properties a predicate is evaluated against.
type Attributes struct {
	Name         string
	AutomationID string
	ClassName    string
	ControlType  string
	Rect         [4]int // x, y, width, height
	RectValid    bool
}

// Position is the traversal coordinate of a node relative to the search root.
type Position struct {
	Depth    int
	ChildPos int   // 1-based position among its siblings
	Path     []int // 1-based child positions from the search root
}

// Positional reports whether the predicate tests traversal coordinates rather
// than node attributes.
func (p Predicate) Positional() bool {
	switch p.Key {
	case KeyPath, KeyDepth, KeyIndex:
		return true
	}
	return false
}

// Match reports whether the predicate holds. Offset predicates always hold;
// they modify clicks, not matching.
func (p Predicate) Match(a Attributes, pos Position) bool {
	switch p.Key {
	case KeyName:
		return a.Name == p.Value
	case KeyID:
		return a.AutomationID == p.Value
	case KeyClass:
		return a.ClassName == p.Value
	case KeyControl:
		return model.NormalizeControlType(a.ControlType) == p.control
	case KeySubName:
		return strings.Contains(a.Name, p.Value)
	case KeyRegex:
		return p.re != nil && p.re.MatchString(a.Name)
	case KeyPath:
		if len(pos.Path) != len(p.path) {
			return false
		}
		for i := range p.path {
			if pos.Path[i] != p.path[i] {
				return false
			}
		}
		return true
	case KeyDepth:
		return pos.Depth == p.num
	case KeyIndex:
		return pos.ChildPos == p.num
	case KeyRegion:
		return a.RectValid && p.region.Contains(a.Rect)
	case KeyOffset:
		return true
	}
	return false
}

// String renders the predicate in locator syntax.
func (p Predicate) String() string {
	return string(p.Key) + ":" + model.QuoteValue(p.Value)
}

// Query is a conjunction of predicates. An empty query matches everything.
type Query []Predicate

// Match reports whether every predicate holds, evaluated in order.
func (q Query) Match(a Attributes, pos Position) bool {
	for _, p := range q {
		if !p.Match(a, pos) {
			return false
		}
	}
	return true
}

// Offset returns the click offset carried by the query, if any.
func (q Query) Offset() (x, y int, ok bool) {
	for _, p := range q {
		if p.Key == KeyOffset {
			return p.offset[0], p.offset[1], true
		}
	}
	return 0, 0, false
}

// NeedsRect reports whether evaluating the query requires the node rectangle.
func (q Query) NeedsRect() bool {
	for _, p := range q {
		if p.Key == KeyRegion {
			return true
		}
	}
	return false
}

// depthBound is the deepest level at which the query can possibly match.
func (q Query) depthBound(def int) int {
	bound := -1
	for _, p := range q {
		switch p.Key {
		case KeyDepth:
			if bound < 0 || p.num < bound {
				bound = p.num
			}
		case KeyPath:
			if bound < 0 || len(p.path) < bound {
				bound = len(p.path)
			}
		}
	}
	if bound < 0 {
		return def
	}
	return bound
}

func (q Query) String() string {
	parts := make([]string, len(q))
	for i, p := range q {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

// Step is one generation of a locator chain: a node matches when any of its
// alternatives matches.
type Step struct {
	Any []Query
}

// Match reports whether any alternative matches.
func (s Step) Match(a Attributes, pos Position) bool {
	for _, q := range s.Any {
		if q.Match(a, pos) {
			return true
		}
	}
	return false
}

// NeedsRect reports whether any alternative tests geometry.
func (s Step) NeedsRect() bool {
	for _, q := range s.Any {
		if q.NeedsRect() {
			return true
		}
	}
	return false
}

// MaxDepth returns how deep the walk for this step must go. A depth or path
// predicate overrides def.
func (s Step) MaxDepth(def int) int {
	max := 0
	for _, q := range s.Any {
		if d := q.depthBound(def); d > max {
			max = d
		}
	}
	if max == 0 {
		return def
	}
	return max
}

// Offset returns the click offset of the first alternative that carries one.
func (s Step) Offset() (x, y int, ok bool) {
	for _, q := range s.Any {
		if x, y, ok := q.Offset(); ok {
			return x, y, true
		}
	}
	return 0, 0, false
}

func (s Step) String() string {
	parts := make([]string, len(s.Any))
	for i, q := range s.Any {
		parts[i] = q.String()
	}
	return strings.Join(parts, " or ")
}

// Locator is an ordered chain of steps. The zero Locator is empty and matches
// the search root itself.
type Locator struct {
	Steps []Step
}

// Empty reports whether the locator has no steps.
func (l Locator) Empty() bool {
	return len(l.Steps) == 0
}

// Last returns the final step of the chain.
func (l Locator) Last() (Step, bool) {
	if len(l.Steps) == 0 {
		return Step{}, false
	}
	return l.Steps[len(l.Steps)-1], true
}

// Offset returns the click offset carried by the final step.
func (l Locator) Offset() (x, y int, ok bool) {
	last, found := l.Last()
	if !found {
		return 0, 0, false
	}
	return last.Offset()
}

// String renders the locator in canonical form. The result parses back to an
// equivalent locator.
func (l Locator) String() string {
	parts := make([]string, len(l.Steps))
	for i, s := range l.Steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " > ")
}

// FromPredicates builds a single-step locator from a structured predicate
// list, validating keys, operators and values.
func FromPredicates(preds []Predicate) (Locator, error) {
	if len(preds) == 0 {
		return Locator{}, nil
	}
	q := make(Query, 0, len(preds))
	for _, p := range preds {
		k, ok := LookupKey(string(p.Key))
		if !ok {
			return Locator{}, unknownKeyError(string(p.Key) + ":" + p.Value)
		}
		p.Key = k
		if p.Op != opForKey(k) {
			return Locator{}, &SyntaxError{
				Token:  p.String(),
				Reason: "operator " + p.Op.String() + " is not supported for key " + string(k),
			}
		}
		compiled, err := compile(p)
		if err != nil {
			return Locator{}, err
		}
		q = append(q, compiled)
	}
	return Locator{Steps: []Step{{Any: []Query{q}}}}, nil
}

// compile parses and caches the typed form of a predicate value.
func compile(p Predicate) (Predicate, error) {
	tok := p.String()
	bad := func(reason string) (Predicate, error) {
		return Predicate{}, &SyntaxError{Token: tok, Reason: reason}
	}
	switch p.Key {
	case KeyControl:
		p.control = model.NormalizeControlType(p.Value)
		if p.control == "" {
			return bad("empty control type")
		}
	case KeyRegex:
		re, err := regexp.Compile(p.Value)
		if err != nil {
			return bad("invalid regular expression: " + err.Error())
		}
		p.re = re
	case KeyPath:
		if p.Value == "" {
			return bad("empty path")
		}
		for _, part := range strings.Split(p.Value, "|") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 1 {
				return bad("path positions must be integers >= 1")
			}
			p.path = append(p.path, n)
		}
	case KeyDepth, KeyIndex:
		n, err := strconv.Atoi(p.Value)
		if err != nil || n < 1 {
			return bad("expected an integer >= 1")
		}
		p.num = n
	case KeyOffset:
		vals, err := parseInts(p.Value, 2)
		if err != nil {
			return bad("expected x,y")
		}
		p.offset = [2]int{vals[0], vals[1]}
	case KeyRegion:
		vals, err := parseInts(p.Value, 4)
		if err != nil {
			return bad("expected x,y,w,h")
		}
		if vals[2] < 0 || vals[3] < 0 {
			return bad("region width and height must not be negative")
		}
		p.region = Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	}
	return p, nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, strconv.ErrSyntax
	}
	vals := make([]int, n)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
