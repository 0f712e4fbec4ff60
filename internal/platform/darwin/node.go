//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreGraphics -framework CoreFoundation -framework Foundation
#include <ApplicationServices/ApplicationServices.h>
#include <stdint.h>
#include <stdio.h>
#include <stdlib.h>

// References cross into Go as integers so cgo never sees the CF typedefs.
#define AX(ref) ((AXUIElementRef)(ref))

enum { AX_OK = 0, AX_DISPOSED = 1, AX_MISSING = 2, AX_FAILED = 3 };

static int ax_status(AXError err) {
    switch (err) {
    case kAXErrorSuccess:
        return AX_OK;
    case kAXErrorInvalidUIElement:
        return AX_DISPOSED;
    case kAXErrorNoValue:
    case kAXErrorAttributeUnsupported:
    case kAXErrorActionUnsupported:
    case kAXErrorNotImplemented:
        return AX_MISSING;
    default:
        return AX_FAILED;
    }
}

static CFStringRef cf_string(const char *s) {
    return CFStringCreateWithCString(NULL, s, kCFStringEncodingUTF8);
}

static char *cf_to_utf8(CFStringRef s) {
    CFIndex len = CFStringGetLength(s);
    CFIndex max = CFStringGetMaximumSizeForEncoding(len, kCFStringEncodingUTF8) + 1;
    char *buf = malloc(max);
    if (!CFStringGetCString(s, buf, max, kCFStringEncodingUTF8)) {
        buf[0] = 0;
    }
    return buf;
}

static AXError ax_copy(uintptr_t ref, const char *name, CFTypeRef *value) {
    CFStringRef attr = cf_string(name);
    AXError err = AXUIElementCopyAttributeValue(AX(ref), attr, value);
    CFRelease(attr);
    return err;
}

// ax_string copies a string, number or boolean attribute as UTF-8. The
// caller frees the result. Other value types read as NULL.
static char *ax_string(uintptr_t ref, const char *name, int *status) {
    CFTypeRef value = NULL;
    AXError err = ax_copy(ref, name, &value);
    *status = ax_status(err);
    if (err != kAXErrorSuccess || value == NULL) {
        if (value) CFRelease(value);
        return NULL;
    }
    char *out = NULL;
    CFTypeID type = CFGetTypeID(value);
    if (type == CFStringGetTypeID()) {
        out = cf_to_utf8((CFStringRef)value);
    } else if (type == CFBooleanGetTypeID()) {
        out = malloc(2);
        snprintf(out, 2, "%d", CFBooleanGetValue((CFBooleanRef)value) ? 1 : 0);
    } else if (type == CFNumberGetTypeID()) {
        double d = 0;
        CFNumberGetValue((CFNumberRef)value, kCFNumberDoubleType, &d);
        out = malloc(32);
        snprintf(out, 32, "%g", d);
    }
    CFRelease(value);
    return out;
}

static int ax_rect(uintptr_t ref, double *x, double *y, double *w, double *h) {
    CFTypeRef pos = NULL, size = NULL;
    AXError err = ax_copy(ref, "AXPosition", &pos);
    if (err != kAXErrorSuccess) return ax_status(err);
    err = ax_copy(ref, "AXSize", &size);
    if (err != kAXErrorSuccess) {
        CFRelease(pos);
        return ax_status(err);
    }
    CGPoint p;
    CGSize s;
    int ok = AXValueGetValue((AXValueRef)pos, kAXValueCGPointType, &p) &&
             AXValueGetValue((AXValueRef)size, kAXValueCGSizeType, &s);
    CFRelease(pos);
    CFRelease(size);
    if (!ok) return AX_MISSING;
    *x = p.x;
    *y = p.y;
    *w = s.width;
    *h = s.height;
    return AX_OK;
}

// ax_elements copies an element array attribute. Every returned reference
// is retained and the array itself is freed by the caller.
static uintptr_t *ax_elements(uintptr_t ref, const char *name, int *count, int *status) {
    CFTypeRef value = NULL;
    AXError err = ax_copy(ref, name, &value);
    *count = 0;
    *status = ax_status(err);
    if (err != kAXErrorSuccess || value == NULL) {
        if (value) CFRelease(value);
        return NULL;
    }
    if (CFGetTypeID(value) != CFArrayGetTypeID()) {
        CFRelease(value);
        *status = AX_MISSING;
        return NULL;
    }
    CFIndex n = CFArrayGetCount((CFArrayRef)value);
    uintptr_t *out = calloc(n > 0 ? n : 1, sizeof(uintptr_t));
    int kept = 0;
    for (CFIndex i = 0; i < n; i++) {
        CFTypeRef el = CFArrayGetValueAtIndex((CFArrayRef)value, i);
        if (CFGetTypeID(el) != AXUIElementGetTypeID()) continue;
        CFRetain(el);
        out[kept++] = (uintptr_t)el;
    }
    *count = kept;
    CFRelease(value);
    return out;
}

// ax_element copies a single element attribute such as AXParent.
static uintptr_t ax_element(uintptr_t ref, const char *name, int *status) {
    CFTypeRef value = NULL;
    AXError err = ax_copy(ref, name, &value);
    *status = ax_status(err);
    if (err != kAXErrorSuccess || value == NULL) {
        if (value) CFRelease(value);
        return 0;
    }
    if (CFGetTypeID(value) != AXUIElementGetTypeID()) {
        CFRelease(value);
        *status = AX_MISSING;
        return 0;
    }
    return (uintptr_t)value;
}

static int ax_settable(uintptr_t ref, const char *name) {
    CFStringRef attr = cf_string(name);
    Boolean settable = false;
    AXError err = AXUIElementIsAttributeSettable(AX(ref), attr, &settable);
    CFRelease(attr);
    return err == kAXErrorSuccess && settable;
}

static int ax_set_string(uintptr_t ref, const char *name, const char *value) {
    CFStringRef attr = cf_string(name);
    CFStringRef v = cf_string(value);
    AXError err = AXUIElementSetAttributeValue(AX(ref), attr, v);
    CFRelease(attr);
    CFRelease(v);
    return ax_status(err);
}

static int ax_set_true(uintptr_t ref, const char *name) {
    CFStringRef attr = cf_string(name);
    AXError err = AXUIElementSetAttributeValue(AX(ref), attr, kCFBooleanTrue);
    CFRelease(attr);
    return ax_status(err);
}

static int ax_perform(uintptr_t ref, const char *action) {
    CFStringRef a = cf_string(action);
    AXError err = AXUIElementPerformAction(AX(ref), a);
    CFRelease(a);
    return ax_status(err);
}

static int ax_equal(uintptr_t a, uintptr_t b) {
    return CFEqual((CFTypeRef)a, (CFTypeRef)b);
}

static void ax_release(uintptr_t ref) {
    if (ref) CFRelease((CFTypeRef)ref);
}

static uintptr_t ax_application(int pid) {
    AXUIElementRef app = AXUIElementCreateApplication(pid);
    if (app) AXUIElementSetMessagingTimeout(app, 2.0);
    return (uintptr_t)app;
}

// ax_app_pids lists the owners of normal on-screen windows, front to back,
// without duplicates.
static int ax_app_pids(int *out, int max) {
    CFArrayRef list = CGWindowListCopyWindowInfo(
        kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements, kCGNullWindowID);
    if (!list) return -1;
    int n = 0;
    CFIndex count = CFArrayGetCount(list);
    for (CFIndex i = 0; i < count && n < max; i++) {
        CFDictionaryRef info = CFArrayGetValueAtIndex(list, i);
        int layer = 0, pid = 0;
        CFNumberRef l = CFDictionaryGetValue(info, kCGWindowLayer);
        if (l) CFNumberGetValue(l, kCFNumberIntType, &layer);
        if (layer != 0) continue;
        CFNumberRef owner = CFDictionaryGetValue(info, kCGWindowOwnerPID);
        if (!owner || !CFNumberGetValue(owner, kCFNumberIntType, &pid)) continue;
        int seen = 0;
        for (int j = 0; j < n; j++) {
            if (out[j] == pid) {
                seen = 1;
                break;
            }
        }
        if (!seen) out[n++] = pid;
    }
    CFRelease(list);
    return n;
}

static void cg_main_display(double *x, double *y, double *w, double *h) {
    CGRect r = CGDisplayBounds(CGMainDisplayID());
    *x = r.origin.x;
    *y = r.origin.y;
    *w = r.size.width;
    *h = r.size.height;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"
	"unsafe"

	"github.com/mj1618/uiloc/internal/platform"
)

// Attribute and action names, allocated once for the life of the process.
var (
	attrRole        = C.CString("AXRole")
	attrSubrole     = C.CString("AXSubrole")
	attrTitle       = C.CString("AXTitle")
	attrDescription = C.CString("AXDescription")
	attrIdentifier  = C.CString("AXIdentifier")
	attrValue       = C.CString("AXValue")
	attrChildren    = C.CString("AXChildren")
	attrParent      = C.CString("AXParent")
	attrFocused     = C.CString("AXFocused")
	attrMain        = C.CString("AXMain")
	actionPress     = C.CString("AXPress")
	actionRaise     = C.CString("AXRaise")
	actionCancel    = C.CString("AXCancel")
)

const maxApps = 256

// axError converts an AX status to an error. Missing attributes are not
// errors: they read as empty values.
func axError(status C.int, what string) error {
	switch status {
	case C.AX_OK, C.AX_MISSING:
		return nil
	case C.AX_DISPOSED:
		return platform.ErrDisposed
	default:
		return fmt.Errorf("failed to read %s", what)
	}
}

// desktop is the root of the tree. Its children are the applications that
// own on-screen windows.
type desktop struct {
	inputter *DarwinInputter
}

func newDesktop(inputter *DarwinInputter) *desktop {
	return &desktop{inputter: inputter}
}

func (d *desktop) Name() (string, error)         { return "Desktop", nil }
func (d *desktop) AutomationID() (string, error) { return "", nil }
func (d *desktop) ClassName() (string, error)    { return "AXSystemWide", nil }
func (d *desktop) ControlType() (string, error)  { return "PaneControl", nil }
func (d *desktop) Parent() (platform.Node, error) { return nil, nil }
func (d *desktop) Exists() (bool, error)          { return true, nil }

func (d *desktop) Rect() (platform.Rect, error) {
	var x, y, w, h C.double
	C.cg_main_display(&x, &y, &w, &h)
	return toRect(x, y, w, h), nil
}

func (d *desktop) Children() ([]platform.Node, error) {
	pids := make([]C.int, maxApps)
	n := C.ax_app_pids(&pids[0], C.int(maxApps))
	if n < 0 {
		return nil, errors.New("failed to list on-screen windows")
	}
	children := make([]platform.Node, 0, int(n))
	for _, pid := range pids[:n] {
		ref := C.ax_application(pid)
		if ref == 0 {
			continue
		}
		children = append(children, d.wrap(ref))
	}
	return children, nil
}

func (d *desktop) SameAs(other platform.Node) bool {
	_, ok := other.(*desktop)
	return ok
}

func (d *desktop) Probe(platform.Capability) (any, bool) { return nil, false }

// wrap takes ownership of a retained reference.
func (d *desktop) wrap(ref C.uintptr_t) *node {
	n := &node{ref: ref, desk: d}
	runtime.AddCleanup(n, func(ref C.uintptr_t) { C.ax_release(ref) }, ref)
	return n
}

// node is an AXUIElement in some application's tree.
type node struct {
	ref  C.uintptr_t
	desk *desktop
}

func (n *node) str(attr *C.char, what string) (string, error) {
	var status C.int
	s := C.ax_string(n.ref, attr, &status)
	if s == nil {
		return "", axError(status, what)
	}
	defer C.free(unsafe.Pointer(s))
	return C.GoString(s), nil
}

func (n *node) role() (string, error) {
	return n.str(attrRole, "role")
}

// Name is the title, falling back to the description for controls that
// only carry an accessibility label.
func (n *node) Name() (string, error) {
	title, err := n.str(attrTitle, "title")
	if err != nil || title != "" {
		return title, err
	}
	return n.str(attrDescription, "description")
}

func (n *node) AutomationID() (string, error) {
	return n.str(attrIdentifier, "identifier")
}

// ClassName is the subrole when there is one, otherwise the role.
func (n *node) ClassName() (string, error) {
	sub, err := n.str(attrSubrole, "subrole")
	if err != nil || sub != "" {
		return sub, err
	}
	return n.role()
}

func (n *node) ControlType() (string, error) {
	role, err := n.role()
	if err != nil {
		return "", err
	}
	sub, err := n.str(attrSubrole, "subrole")
	if err != nil {
		return "", err
	}
	return controlType(role, sub), nil
}

func (n *node) Rect() (platform.Rect, error) {
	var x, y, w, h C.double
	switch status := C.ax_rect(n.ref, &x, &y, &w, &h); status {
	case C.AX_OK:
		return toRect(x, y, w, h), nil
	case C.AX_MISSING:
		return platform.InvalidRect, nil
	default:
		return platform.InvalidRect, axError(status, "rectangle")
	}
}

// Parent returns the desktop for applications, which have no AXParent.
func (n *node) Parent() (platform.Node, error) {
	var status C.int
	ref := C.ax_element(n.ref, attrParent, &status)
	if ref == 0 {
		if err := axError(status, "parent"); err != nil {
			return nil, err
		}
		return n.desk, nil
	}
	return n.desk.wrap(ref), nil
}

func (n *node) Children() ([]platform.Node, error) {
	var count, status C.int
	refs := C.ax_elements(n.ref, attrChildren, &count, &status)
	if refs == nil {
		return nil, axError(status, "children")
	}
	defer C.free(unsafe.Pointer(refs))
	children := make([]platform.Node, 0, int(count))
	for _, ref := range unsafe.Slice(refs, int(count)) {
		children = append(children, n.desk.wrap(ref))
	}
	return children, nil
}

func (n *node) Exists() (bool, error) {
	_, err := n.role()
	if errors.Is(err, platform.ErrDisposed) {
		return false, nil
	}
	return err == nil, err
}

func (n *node) SameAs(other platform.Node) bool {
	o, ok := other.(*node)
	return ok && C.ax_equal(n.ref, o.ref) != 0
}

func (n *node) Probe(c platform.Capability) (any, bool) {
	role, err := n.role()
	if err != nil {
		return nil, false
	}
	switch c {
	case platform.CapValue:
		return n, C.ax_settable(n.ref, attrValue) != 0
	case platform.CapText:
		return n, editable(role)
	case platform.CapWindowText:
		return n, true
	case platform.CapClick, platform.CapDoubleClick, platform.CapRightClick, platform.CapMiddleClick:
		return n, clickable(role)
	case platform.CapSelect:
		return n, selectable(role)
	case platform.CapKeys:
		return n, C.ax_settable(n.ref, attrFocused) != 0 || editable(role)
	case platform.CapFocus:
		return n, role == "AXWindow" || C.ax_settable(n.ref, attrFocused) != 0
	}
	return nil, false
}

// Value implements platform.ValuePattern.
func (n *node) Value() (string, error) {
	return n.str(attrValue, "value")
}

// SetValue implements platform.ValuePattern.
func (n *node) SetValue(v string) error {
	cv := C.CString(v)
	defer C.free(unsafe.Pointer(cv))
	return statusError(C.ax_set_string(n.ref, attrValue, cv), "set value")
}

// Text implements platform.TextPattern.
func (n *node) Text() (string, error) {
	return n.Value()
}

// WindowText implements platform.WindowTextPattern. Static text carries its
// content in the value rather than the title.
func (n *node) WindowText() (string, error) {
	role, err := n.role()
	if err != nil {
		return "", err
	}
	if role == "AXStaticText" {
		if v, err := n.Value(); err != nil || v != "" {
			return v, err
		}
	}
	return n.Name()
}

// Click implements platform.Clicker.
func (n *node) Click(button platform.MouseButton, count int, x, y int, moveFirst bool) error {
	if moveFirst {
		if err := n.desk.inputter.MoveMouse(x, y); err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
	}
	return n.desk.inputter.Click(x, y, button, count)
}

// Select implements platform.Selector. Combo boxes take the value directly;
// popup buttons are opened and the matching menu item is pressed.
func (n *node) Select(value string, moveFirst bool) error {
	if C.ax_settable(n.ref, attrValue) != 0 {
		return n.SetValue(value)
	}
	if moveFirst {
		rect, err := n.Rect()
		if err == nil && !rect.Empty() {
			x, y := rect.Center()
			_ = n.desk.inputter.MoveMouse(x, y)
		}
	}
	if err := statusError(C.ax_perform(n.ref, actionPress), "open"); err != nil {
		return err
	}
	// The menu appears asynchronously below the button.
	var item *node
	for range 10 {
		time.Sleep(50 * time.Millisecond)
		if item = n.menuItem(value); item != nil {
			break
		}
	}
	if item == nil {
		_ = C.ax_perform(n.ref, actionCancel)
		return fmt.Errorf("no item named %q", value)
	}
	return statusError(C.ax_perform(item.ref, actionPress), "select "+value)
}

// menuItem finds an item titled value in the menus below n.
func (n *node) menuItem(value string) *node {
	children, err := n.Children()
	if err != nil {
		return nil
	}
	for _, c := range children {
		child := c.(*node)
		role, _ := child.role()
		switch role {
		case "AXMenu":
			if item := child.menuItem(value); item != nil {
				return item
			}
		case "AXMenuItem":
			if title, _ := child.Name(); title == value {
				return child
			}
		}
	}
	return nil
}

// SendKeys implements platform.KeyReceiver.
func (n *node) SendKeys(keys string, interval time.Duration) error {
	if err := n.SetFocus(); err != nil {
		return err
	}
	return n.desk.inputter.SendKeys(keys, interval)
}

// SetFocus implements platform.Focuser. Windows are raised and made main;
// other controls take keyboard focus.
func (n *node) SetFocus() error {
	role, err := n.role()
	if err != nil {
		return err
	}
	if role == "AXWindow" {
		if err := statusError(C.ax_perform(n.ref, actionRaise), "raise window"); err != nil {
			return err
		}
		return statusError(C.ax_set_true(n.ref, attrMain), "activate window")
	}
	return statusError(C.ax_set_true(n.ref, attrFocused), "focus")
}

func statusError(status C.int, what string) error {
	switch status {
	case C.AX_OK:
		return nil
	case C.AX_DISPOSED:
		return platform.ErrDisposed
	case C.AX_MISSING:
		return fmt.Errorf("failed to %s: not supported by the control", what)
	default:
		return fmt.Errorf("failed to %s", what)
	}
}

func toRect(x, y, w, h C.double) platform.Rect {
	return platform.Rect{
		X:      int(math.Round(float64(x))),
		Y:      int(math.Round(float64(y))),
		Width:  int(math.Round(float64(w))),
		Height: int(math.Round(float64(h))),
	}
}
