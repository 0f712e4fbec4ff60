//go:build darwin

package darwin

import "strings"

// controlTypes maps macOS AXRole values to control type names.
var controlTypes = map[string]string{
	"AXApplication":        "WindowControl",
	"AXWindow":             "WindowControl",
	"AXSheet":              "WindowControl",
	"AXDrawer":             "PaneControl",
	"AXButton":             "ButtonControl",
	"AXMenuButton":         "ButtonControl",
	"AXPopUpButton":        "ComboBoxControl",
	"AXComboBox":           "ComboBoxControl",
	"AXStaticText":         "TextControl",
	"AXLink":               "HyperlinkControl",
	"AXImage":              "ImageControl",
	"AXTextField":          "EditControl",
	"AXSearchField":        "EditControl",
	"AXTextArea":           "DocumentControl",
	"AXCheckBox":           "CheckBoxControl",
	"AXSwitch":             "CheckBoxControl",
	"AXRadioButton":        "RadioButtonControl",
	"AXMenuBar":            "MenuBarControl",
	"AXMenuBarItem":        "MenuItemControl",
	"AXMenu":               "MenuControl",
	"AXMenuItem":           "MenuItemControl",
	"AXTabGroup":           "TabControl",
	"AXList":               "ListControl",
	"AXOutline":            "TreeControl",
	"AXBrowser":            "TreeControl",
	"AXTable":              "TableControl",
	"AXRow":                "ListItemControl",
	"AXCell":               "DataItemControl",
	"AXColumn":             "HeaderItemControl",
	"AXGroup":              "GroupControl",
	"AXRadioGroup":         "GroupControl",
	"AXSplitGroup":         "PaneControl",
	"AXSplitter":           "ThumbControl",
	"AXScrollArea":         "PaneControl",
	"AXScrollBar":          "ScrollBarControl",
	"AXSlider":             "SliderControl",
	"AXIncrementor":        "SpinnerControl",
	"AXProgressIndicator":  "ProgressBarControl",
	"AXBusyIndicator":      "ProgressBarControl",
	"AXToolbar":            "ToolBarControl",
	"AXWebArea":            "DocumentControl",
	"AXDisclosureTriangle": "ButtonControl",
	"AXHelpTag":            "ToolTipControl",
}

// controlType converts an AX role to a control type name. Unknown roles keep
// their name without the AX prefix so they can still be matched.
func controlType(role, subrole string) string {
	switch subrole {
	case "AXTabButton":
		return "TabItemControl"
	case "AXOutlineRow":
		return "TreeItemControl"
	}
	if t, ok := controlTypes[role]; ok {
		return t
	}
	if role == "" {
		return "CustomControl"
	}
	return strings.TrimPrefix(role, "AX") + "Control"
}

// clickable reports whether the role is worth probing for pointer input.
// Containers and text are still clickable; scroll areas, splitters and
// bars of their own are not.
func clickable(role string) bool {
	switch role {
	case "AXApplication", "AXMenuBar", "AXScrollBar", "AXSplitter", "AXHelpTag":
		return false
	}
	return true
}

// selectable reports whether the role picks one item out of a popup list.
func selectable(role string) bool {
	return role == "AXPopUpButton" || role == "AXComboBox" || role == "AXMenuButton"
}

// editable reports whether the role holds user editable text.
func editable(role string) bool {
	switch role {
	case "AXTextField", "AXSearchField", "AXTextArea", "AXComboBox":
		return true
	}
	return false
}
