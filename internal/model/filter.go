package model

import "strings"

// FilterByText filters elements to those whose name, automation id or class
// name contains the given text (case-insensitive). Parent elements are kept
// when any descendant matches, so the ancestry stays visible.
func FilterByText(elements []Element, text string) []Element {
	if text == "" {
		return elements
	}
	textLower := strings.ToLower(text)
	var result []Element
	for _, el := range elements {
		matched := textMatchesElement(el, textLower)
		childMatches := FilterByText(el.Children, text)

		if matched || len(childMatches) > 0 {
			filtered := el
			filtered.Children = childMatches
			result = append(result, filtered)
		}
	}
	return result
}

func textMatchesElement(el Element, textLower string) bool {
	return strings.Contains(strings.ToLower(el.Name), textLower) ||
		strings.Contains(strings.ToLower(el.AutomationID), textLower) ||
		strings.Contains(strings.ToLower(el.ClassName), textLower)
}

// FilterByControlType keeps elements of the given control type, promoting
// matching descendants of non-matching elements.
func FilterByControlType(elements []Element, controlType string) []Element {
	if controlType == "" {
		return elements
	}
	want := NormalizeControlType(controlType)
	var result []Element
	for _, el := range elements {
		filteredChildren := FilterByControlType(el.Children, controlType)
		if NormalizeControlType(el.ControlType) == want {
			filtered := el
			filtered.Children = filteredChildren
			result = append(result, filtered)
		} else if len(filteredChildren) > 0 {
			result = append(result, filteredChildren...)
		}
	}
	return result
}

// FilterByBounds keeps elements whose bounds intersect bbox, promoting
// intersecting descendants of non-intersecting elements.
func FilterByBounds(elements []Element, bbox [4]int) []Element {
	var result []Element
	for _, el := range elements {
		filteredChildren := FilterByBounds(el.Children, bbox)
		if boundsIntersect(el.Bounds, bbox) {
			filtered := el
			filtered.Children = filteredChildren
			result = append(result, filtered)
		} else if len(filteredChildren) > 0 {
			result = append(result, filteredChildren...)
		}
	}
	return result
}

// boundsIntersect checks if two [x, y, width, height] rectangles overlap.
func boundsIntersect(a, b [4]int) bool {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}
