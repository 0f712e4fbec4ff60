package interact

import (
	"fmt"
	"strings"

	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/platform"
)

// Validator compares the expected value of a write with the value read back.
type Validator func(expected, actual string) bool

// TrimmedEqual is the default validator. It ignores surrounding whitespace
// because controls normalize line endings.
func TrimmedEqual(expected, actual string) bool {
	return strings.TrimSpace(expected) == strings.TrimSpace(actual)
}

// SetValueOptions tune SetValue.
type SetValueOptions struct {
	// Append keeps the current content and adds the value after it.
	Append bool
	// Enter presses Ctrl+End then Enter after the value is set.
	Enter bool
	// Newline adds "\n" to the value. Ignored when typing through keys.
	Newline bool
	// NoKeysFallback disables typing the value when the control has no value
	// pattern.
	NoKeysFallback bool
	// Validator checks the result; nil means TrimmedEqual.
	Validator Validator
	// SkipValidation disables the read-back check.
	SkipValidation bool
}

func (o SetValueOptions) validator() Validator {
	if o.SkipValidation {
		return nil
	}
	if o.Validator == nil {
		return TrimmedEqual
	}
	return o.Validator
}

// SetValue writes value into the control. It uses the value pattern (or the
// legacy pattern) when present and otherwise types the value, clearing the
// field first unless appending. A read-back that disagrees with the expected
// value fails with ValueMismatchError.
func (d *Dispatcher) SetValue(h *element.Handle, value string, opts SetValueOptions) error {
	log := d.log()
	if opts.Newline && opts.Enter {
		log.Warn("both newline and enter are set, expect multiple new lines in the final text", "element", h.Name())
	}
	newline := ""
	if opts.Newline {
		newline = "\n"
	}
	action := "setting"
	if opts.Append {
		action = "appending"
	}

	if vp, capability, ok := valuePattern(h.Node()); ok {
		log.Info(action+" value", "method", string(capability)+" pattern", "element", h.Name())
		if err := d.setWithPattern(h, vp, value+newline, opts); err != nil {
			return err
		}
	} else if !opts.NoKeysFallback {
		log.Info(action+" value", "method", "keys", "element", h.Name())
		if opts.Newline || strings.ContainsAny(value, "\r\n") {
			log.Warn("newline and line breaks are ignored when typing a value, use enter instead", "element", h.Name())
		}
		if err := d.setWithKeys(h, value, opts); err != nil {
			return err
		}
	} else {
		return &ActionNotPossibleError{Action: "set value of", Element: h.String(), Reason: "the control does not support value setting"}
	}

	if opts.Enter {
		log.Info("inserting a new line with the enter key", "element", h.Name())
		return d.SendKeys(h, "{Ctrl}{End}{Enter}", SendKeysOptions{})
	}
	return nil
}

func (d *Dispatcher) setWithPattern(h *element.Handle, vp platform.ValuePattern, value string, opts SetValueOptions) error {
	current := ""
	if opts.Append {
		v, err := vp.Value()
		if err != nil {
			return fmt.Errorf("failed to read value of %s: %w", h.Name(), err)
		}
		current = v
	}
	expected := current + value
	if err := vp.SetValue(expected); err != nil {
		return fmt.Errorf("failed to set value of %s: %w", h.Name(), err)
	}

	validate := opts.validator()
	if validate == nil {
		return nil
	}
	actual, err := vp.Value()
	if err != nil {
		return fmt.Errorf("failed to read back value of %s: %w", h.Name(), err)
	}
	if !validate(expected, actual) {
		return &ValueMismatchError{Element: h.String(), Method: "value pattern", Expected: expected, Actual: actual}
	}
	return nil
}

func (d *Dispatcher) setWithKeys(h *element.Handle, value string, opts SetValueOptions) error {
	tp, hasText := platform.Probe[platform.TextPattern](h.Node(), platform.CapText)
	readText := func() (string, bool) {
		if !hasText {
			return "", false
		}
		t, err := tp.Text()
		if err != nil {
			return "", false
		}
		return t, true
	}

	current := ""
	if opts.Append {
		current, _ = readText()
	} else if err := d.SendKeys(h, "{Ctrl}a{Del}", SendKeysOptions{}); err != nil {
		return err
	}
	if value == "" {
		return nil
	}
	if err := d.SendKeys(h, escapeKeys(value), SendKeysOptions{}); err != nil {
		return err
	}

	validate := opts.validator()
	actual, ok := readText()
	if validate == nil || !ok {
		return nil
	}
	if expected := current + typedText(value); !validate(expected, actual) {
		return &ValueMismatchError{Element: h.String(), Method: "keys", Expected: expected, Actual: actual}
	}
	return nil
}

var keyEscaper = strings.NewReplacer("{", "{{}", "}", "{}}", "\r", "", "\n", "")

// escapeKeys makes value type literally, dropping line breaks.
func escapeKeys(value string) string {
	return keyEscaper.Replace(value)
}

// typedText is what escapeKeys(value) produces in the control.
func typedText(value string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(value)
}
