package resolver

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrElementNotFound is matched by every NotFoundError through errors.Is.
var ErrElementNotFound = errors.New("element not found")

// NotFoundError reports a locator that matched nothing before the timeout.
type NotFoundError struct {
	Locator  string
	Root     string
	Timeout  time.Duration
	Attempts int
	// Dump lists the nodes visited by the last attempt when verbose errors
	// are enabled.
	Dump string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "element not found with locator %q under %s (timeout %s, %d attempts)",
		e.Locator, e.Root, e.Timeout, e.Attempts)
	if e.Dump != "" {
		b.WriteString("\nvisited:\n")
		b.WriteString(strings.TrimRight(e.Dump, "\n"))
	}
	return b.String()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrElementNotFound
}
