package platform

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Modifier keys. A modifier in a key sequence is held down while the next
// key is pressed: "{Ctrl}a" is Ctrl+A.
const (
	KeyCtrl  = "Ctrl"
	KeyAlt   = "Alt"
	KeyShift = "Shift"
	KeyWin   = "Win"
)

var modifierKeys = map[string]string{
	"ctrl":    KeyCtrl,
	"control": KeyCtrl,
	"alt":     KeyAlt,
	"shift":   KeyShift,
	"win":     KeyWin,
}

var specialKeys = map[string]string{
	"enter":     "Enter",
	"return":    "Enter",
	"tab":       "Tab",
	"esc":       "Esc",
	"escape":    "Esc",
	"back":      "Back",
	"backspace": "Back",
	"del":       "Del",
	"delete":    "Del",
	"ins":       "Ins",
	"insert":    "Ins",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"pgup":      "PageUp",
	"pagedown":  "PageDown",
	"pgdn":      "PageDown",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"space":     "Space",
}

func init() {
	for i := 1; i <= 12; i++ {
		f := "F" + strconv.Itoa(i)
		specialKeys[strings.ToLower(f)] = f
	}
}

// KeyStroke is one key press, with the modifiers held while it is pressed.
// Key is either a special key name ("Enter", "Del") or a single character.
type KeyStroke struct {
	Key       string
	Modifiers []string
}

// Char returns the printable rune of the stroke, if it types one.
func (k KeyStroke) Char() (rune, bool) {
	if len(k.Modifiers) > 0 {
		return 0, false
	}
	if k.Key == "Space" {
		return ' ', true
	}
	if utf8.RuneCountInString(k.Key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(k.Key)
	return r, true
}

// HasModifier reports whether m is held during the stroke.
func (k KeyStroke) HasModifier(m string) bool {
	for _, held := range k.Modifiers {
		if held == m {
			return true
		}
	}
	return false
}

func (k KeyStroke) String() string {
	if len(k.Modifiers) == 0 {
		return k.Key
	}
	return strings.Join(k.Modifiers, "+") + "+" + k.Key
}

// ParseKeys parses a key sequence such as "{Ctrl}a{Del}" or "hello{Enter}".
// Braced names are special keys or modifiers, "{Enter 3}" repeats a key and
// "{{}" and "{}}" type literal braces.
func ParseKeys(s string) ([]KeyStroke, error) {
	var (
		strokes []KeyStroke
		held    []string
	)
	emit := func(key string, n int) {
		for i := 0; i < n; i++ {
			strokes = append(strokes, KeyStroke{Key: key, Modifiers: held})
		}
		held = nil
	}

	for i := 0; i < len(s); {
		if s[i] != '{' {
			r, size := utf8.DecodeRuneInString(s[i:])
			emit(string(r), 1)
			i += size
			continue
		}
		// The name is at least one character so "{}}" names "}".
		end := strings.IndexByte(s[min(i+2, len(s)):], '}')
		if end < 0 || i+1 >= len(s) {
			return nil, fmt.Errorf("unterminated key %q", s[i:])
		}
		body := s[i+1 : i+2+end]
		i += end + 3

		name, count := body, 1
		if n, c, ok := strings.Cut(body, " "); ok && body != " " {
			v, err := strconv.Atoi(c)
			if err != nil || v < 1 {
				return nil, fmt.Errorf("invalid repeat count in {%s}", body)
			}
			name, count = n, v
		}

		if utf8.RuneCountInString(name) == 1 {
			emit(name, count)
			continue
		}
		lower := strings.ToLower(name)
		if m, ok := modifierKeys[lower]; ok {
			held = append(held, m)
			continue
		}
		key, ok := specialKeys[lower]
		if !ok {
			return nil, fmt.Errorf("unknown key {%s}", name)
		}
		emit(key, count)
	}
	// Trailing modifiers are pressed on their own.
	for _, m := range held {
		strokes = append(strokes, KeyStroke{Key: m})
	}
	return strokes, nil
}
