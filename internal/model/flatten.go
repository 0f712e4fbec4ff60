package model

import (
	"fmt"
	"strings"
)

// FlatElement is an element with a path breadcrumb instead of children.
type FlatElement struct {
	Name         string `yaml:"name,omitempty"  json:"name,omitempty"`
	AutomationID string `yaml:"id,omitempty"    json:"id,omitempty"`
	ClassName    string `yaml:"class,omitempty" json:"class,omitempty"`
	ControlType  string `yaml:"control"         json:"control"`
	Bounds       [4]int `yaml:"b"               json:"b"`
	Depth        int    `yaml:"depth"           json:"depth"`
	ChildPos     int    `yaml:"index,omitempty" json:"index,omitempty"`
	Path         string `yaml:"path,omitempty"  json:"path,omitempty"`
	Breadcrumb   string `yaml:"p,omitempty"     json:"p,omitempty"`
}

// FlattenElements converts a tree of elements into a flat list in pre-order.
// Each element gets a breadcrumb showing its location in the tree using
// normalized control types joined with " > ".
func FlattenElements(elements []Element) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", &result)
	}
	return result
}

func flattenRecursive(el Element, parentPath string, result *[]FlatElement) {
	currentPath := NormalizeControlType(el.ControlType)
	if parentPath != "" {
		currentPath = parentPath + " > " + currentPath
	}

	*result = append(*result, FlatElement{
		Name:         el.Name,
		AutomationID: el.AutomationID,
		ClassName:    el.ClassName,
		ControlType:  el.ControlType,
		Bounds:       el.Bounds,
		Depth:        el.Depth,
		ChildPos:     el.ChildPos,
		Path:         el.Path,
		Breadcrumb:   currentPath,
	})

	for _, child := range el.Children {
		flattenRecursive(child, currentPath, result)
	}
}

// FormatTree renders elements one per line, indented four spaces per depth
// level, in locator syntax followed by their search info.
func FormatTree(elements []FlatElement) string {
	var b strings.Builder
	for _, el := range elements {
		e := Element{
			Name:         el.Name,
			AutomationID: el.AutomationID,
			ClassName:    el.ClassName,
			ControlType:  el.ControlType,
			Depth:        el.Depth,
			ChildPos:     el.ChildPos,
			Path:         el.Path,
		}
		fmt.Fprintf(&b, "%s%s", strings.Repeat("    ", el.Depth), e.Locator())
		if info := e.SearchInfo(); info != "" {
			fmt.Fprintf(&b, " %s", info)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
