//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation
#include <ApplicationServices/ApplicationServices.h>

static int is_trusted() {
    return AXIsProcessTrusted();
}
*/
import "C"
import "errors"

// ErrNotTrusted is returned when the process may not use the accessibility API.
var ErrNotTrusted = errors.New(
	"accessibility permission required\n\n" +
		"Grant permission at: System Settings > Privacy & Security > Accessibility\n" +
		"Add your terminal app (e.g. Terminal.app, iTerm2, or the IDE running uiloc).\n" +
		"Then restart the terminal and try again.")

// CheckAccessibilityPermission returns ErrNotTrusted unless the process has
// macOS accessibility permission.
func CheckAccessibilityPermission() error {
	if C.is_trusted() == 0 {
		return ErrNotTrusted
	}
	return nil
}
