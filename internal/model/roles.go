package model

import "strings"

// ControlTypeAliases maps short control-type spellings to their canonical,
// lower-cased form without the "Control" suffix.
var ControlTypeAliases = map[string]string{
	"btn":      "button",
	"txt":      "text",
	"lnk":      "hyperlink",
	"link":     "hyperlink",
	"img":      "image",
	"input":    "edit",
	"textbox":  "edit",
	"chk":      "checkbox",
	"radio":    "radiobutton",
	"combo":    "combobox",
	"menuitem": "menuitem",
	"tab":      "tabitem",
	"list":     "list",
	"item":     "listitem",
	"row":      "dataitem",
	"cell":     "dataitem",
	"group":    "group",
	"scroll":   "scrollbar",
	"toolbar":  "toolbar",
	"doc":      "document",
	"window":   "window",
	"pane":     "pane",
}

// NormalizeControlType converts a control-type tag or alias to its canonical
// form so that "Button", "ButtonControl", "button" and "btn" compare equal.
func NormalizeControlType(t string) string {
	s := strings.ToLower(strings.TrimSpace(t))
	s = strings.TrimSuffix(s, "control")
	if alias, ok := ControlTypeAliases[s]; ok {
		return alias
	}
	return s
}
