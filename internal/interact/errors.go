package interact

import (
	"errors"
	"fmt"
)

var (
	// ErrActionNotPossible is matched by every ActionNotPossibleError.
	ErrActionNotPossible = errors.New("action not possible")
	// ErrValueMismatch is matched by every ValueMismatchError.
	ErrValueMismatch = errors.New("value mismatch")
)

// ActionNotPossibleError reports a control that lacks the capability an
// action needs, or is in a state that forbids it. It is never retried.
type ActionNotPossibleError struct {
	Action  string
	Element string
	Reason  string
}

func (e *ActionNotPossibleError) Error() string {
	return fmt.Sprintf("cannot %s %s: %s", e.Action, e.Element, e.Reason)
}

func (e *ActionNotPossibleError) Is(target error) bool {
	return target == ErrActionNotPossible
}

// ValueMismatchError reports a write whose read-back disagreed with the
// expected value.
type ValueMismatchError struct {
	Element  string
	Method   string // "value pattern" or "keys"
	Expected string
	Actual   string
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("failed to set value of %s through %s: expected %q, got %q", e.Element, e.Method, e.Expected, e.Actual)
}

func (e *ValueMismatchError) Is(target error) bool {
	return target == ErrValueMismatch
}
