package model

import (
	"fmt"
	"strings"
)

// Element is a serializable snapshot of a control and its descendants, as
// seen at the moment it was read.
type Element struct {
	Name         string    `yaml:"name,omitempty"     json:"name,omitempty"`
	AutomationID string    `yaml:"id,omitempty"       json:"id,omitempty"`
	ClassName    string    `yaml:"class,omitempty"    json:"class,omitempty"`
	ControlType  string    `yaml:"control"            json:"control"`
	Bounds       [4]int    `yaml:"b"                  json:"b"`                  // [x, y, width, height]
	Depth        int       `yaml:"depth,omitempty"    json:"depth,omitempty"`    // 0 for the search root
	ChildPos     int       `yaml:"index,omitempty"    json:"index,omitempty"`    // 1-based position among siblings
	Path         string    `yaml:"path,omitempty"     json:"path,omitempty"`     // e.g. "2|3|1"
	Children     []Element `yaml:"children,omitempty" json:"children,omitempty"` // Child elements
}

// Locator renders the attributes of the element in locator syntax, so the
// line can be pasted back as a query.
func (e Element) Locator() string {
	return fmt.Sprintf("control:%s class:%s name:%s id:%s",
		QuoteValue(e.ControlType), QuoteValue(e.ClassName), QuoteValue(e.Name), QuoteValue(e.AutomationID))
}

// SearchInfo renders the traversal coordinates of the element, omitting the
// ones that are unset.
func (e Element) SearchInfo() string {
	var parts []string
	if e.Depth > 0 {
		parts = append(parts, fmt.Sprintf("depth:%d", e.Depth))
	}
	if e.ChildPos > 0 {
		parts = append(parts, fmt.Sprintf("index:%d", e.ChildPos))
	}
	if e.Path != "" {
		parts = append(parts, "path:"+e.Path)
	}
	return strings.Join(parts, " ")
}

// QuoteValue quotes a locator value when it would not survive tokenizing
// as-is: empty values and values with whitespace, quotes or backslashes.
func QuoteValue(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\r\n\"\\") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// FormatPath renders 1-based child positions as "2|3|1".
func FormatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, "|")
}
