//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices -framework Foundation -framework Carbon
#include <CoreGraphics/CoreGraphics.h>
#include <Carbon/Carbon.h>
#include <unistd.h>

// Click at screen coordinates with specified button and click count.
// button: 0=left, 1=right, 2=middle (maps to kCGMouseButton*)
// count: 1=single, 2=double, 3=triple
static int cg_click(float x, float y, int button, int count) {
    CGPoint point = CGPointMake(x, y);

    CGEventType downType, upType;
    CGMouseButton cgButton;

    switch (button) {
        case 1:  // right
            cgButton = kCGMouseButtonRight;
            downType = kCGEventRightMouseDown;
            upType = kCGEventRightMouseUp;
            break;
        case 2:  // middle
            cgButton = kCGMouseButtonCenter;
            downType = kCGEventOtherMouseDown;
            upType = kCGEventOtherMouseUp;
            break;
        default:  // left (0)
            cgButton = kCGMouseButtonLeft;
            downType = kCGEventLeftMouseDown;
            upType = kCGEventLeftMouseUp;
            break;
    }

    for (int i = 0; i < count; i++) {
        CGEventRef down = CGEventCreateMouseEvent(NULL, downType, point, cgButton);
        CGEventRef up = CGEventCreateMouseEvent(NULL, upType, point, cgButton);
        if (!down || !up) {
            if (down) CFRelease(down);
            if (up) CFRelease(up);
            return -1;
        }
        // Set click count for multi-click events
        CGEventSetIntegerValueField(down, kCGMouseEventClickState, i + 1);
        CGEventSetIntegerValueField(up, kCGMouseEventClickState, i + 1);
        CGEventPost(kCGHIDEventTap, down);
        CGEventPost(kCGHIDEventTap, up);
        CFRelease(down);
        CFRelease(up);
    }
    return 0;
}

static int cg_move_mouse(float x, float y) {
    CGPoint point = CGPointMake(x, y);
    CGEventRef move = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, point, kCGMouseButtonLeft);
    if (!move) return -1;
    CGEventPost(kCGHIDEventTap, move);
    CFRelease(move);
    return 0;
}

// Type one character, given as UTF-16 code units, using CGEvent key simulation.
static void cg_type_char(UniChar *chars, int n) {
    CGEventRef keyDown = CGEventCreateKeyboardEvent(NULL, 0, true);
    CGEventRef keyUp = CGEventCreateKeyboardEvent(NULL, 0, false);
    CGEventKeyboardSetUnicodeString(keyDown, n, chars);
    CGEventKeyboardSetUnicodeString(keyUp, n, chars);
    CGEventPost(kCGHIDEventTap, keyDown);
    CGEventPost(kCGHIDEventTap, keyUp);
    CFRelease(keyDown);
    CFRelease(keyUp);
}

// Press a key combo with modifiers.
static void cg_key_combo(CGKeyCode keyCode, CGEventFlags modifiers) {
    CGEventRef keyDown = CGEventCreateKeyboardEvent(NULL, keyCode, true);
    CGEventRef keyUp = CGEventCreateKeyboardEvent(NULL, keyCode, false);
    CGEventSetFlags(keyDown, modifiers);
    CGEventSetFlags(keyUp, modifiers);
    CGEventPost(kCGHIDEventTap, keyDown);
    CGEventPost(kCGHIDEventTap, keyUp);
    CFRelease(keyDown);
    CFRelease(keyUp);
}

// Press or release a modifier key on its own. flags is the modifier state
// after the event.
static void cg_modifier(CGKeyCode keyCode, int down, CGEventFlags flags) {
    CGEventRef ev = CGEventCreateKeyboardEvent(NULL, keyCode, down ? true : false);
    CGEventSetType(ev, kCGEventFlagsChanged);
    CGEventSetFlags(ev, flags);
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
}

// Drag from (fromX,fromY) to (toX,toY) using left mouse button.
// duration_ms: time for the drag animation in milliseconds.
// flags: modifiers held during the gesture.
// Steps are interpolated linearly between start and end points.
static int cg_drag(float fromX, float fromY, float toX, float toY, int duration_ms, CGEventFlags flags) {
    CGPoint startPoint = CGPointMake(fromX, fromY);
    CGPoint endPoint = CGPointMake(toX, toY);

    // 1. Move mouse to start position
    CGEventRef move = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, startPoint, kCGMouseButtonLeft);
    if (!move) return -1;
    CGEventPost(kCGHIDEventTap, move);
    CFRelease(move);

    // Small delay to ensure move registers
    usleep(10000); // 10ms

    // 2. Mouse down at start position
    CGEventRef down = CGEventCreateMouseEvent(NULL, kCGEventLeftMouseDown, startPoint, kCGMouseButtonLeft);
    if (!down) return -1;
    CGEventSetFlags(down, flags);
    CGEventPost(kCGHIDEventTap, down);
    CFRelease(down);

    // 3. Interpolate drag path with multiple dragged events
    int steps = 20;
    int delay_per_step = (duration_ms * 1000) / steps; // microseconds

    for (int i = 1; i <= steps; i++) {
        float t = (float)i / (float)steps;
        float x = fromX + (toX - fromX) * t;
        float y = fromY + (toY - fromY) * t;
        CGPoint pt = CGPointMake(x, y);

        CGEventRef drag = CGEventCreateMouseEvent(NULL, kCGEventLeftMouseDragged, pt, kCGMouseButtonLeft);
        if (!drag) {
            // Release mouse to avoid stuck mouse-down state
            CGEventRef upErr = CGEventCreateMouseEvent(NULL, kCGEventLeftMouseUp, pt, kCGMouseButtonLeft);
            if (upErr) {
                CGEventPost(kCGHIDEventTap, upErr);
                CFRelease(upErr);
            }
            return -1;
        }
        CGEventSetFlags(drag, flags);
        CGEventPost(kCGHIDEventTap, drag);
        CFRelease(drag);

        usleep(delay_per_step);
    }

    // 4. Mouse up at end position
    CGEventRef up = CGEventCreateMouseEvent(NULL, kCGEventLeftMouseUp, endPoint, kCGMouseButtonLeft);
    if (!up) return -1;
    CGEventSetFlags(up, flags);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(up);

    return 0;
}
*/
import "C"

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/mj1618/uiloc/internal/platform"
)

// DarwinInputter implements the platform.Inputter interface for macOS.
type DarwinInputter struct {
	mu sync.Mutex
	// held is the modifier state set by PressKey.
	held C.CGEventFlags
}

// NewInputter creates a new macOS inputter.
func NewInputter() *DarwinInputter {
	return &DarwinInputter{}
}

func (inp *DarwinInputter) Click(x, y int, button platform.MouseButton, count int) error {
	if count < 1 {
		count = 1
	}
	cButton := C.int(0)
	switch button {
	case platform.MouseRight:
		cButton = 1
	case platform.MouseMiddle:
		cButton = 2
	}
	if C.cg_click(C.float(x), C.float(y), cButton, C.int(count)) != 0 {
		return fmt.Errorf("failed to click at (%d, %d)", x, y)
	}
	return nil
}

func (inp *DarwinInputter) MoveMouse(x, y int) error {
	if C.cg_move_mouse(C.float(x), C.float(y)) != 0 {
		return fmt.Errorf("failed to move mouse to (%d, %d)", x, y)
	}
	return nil
}

// Drag takes 100ms at speed 1.
func (inp *DarwinInputter) Drag(fromX, fromY, toX, toY int, speed float64) error {
	if speed <= 0 {
		speed = 1
	}
	duration := max(int(100/speed), 1)
	inp.mu.Lock()
	held := inp.held
	inp.mu.Unlock()
	rc := C.cg_drag(C.float(fromX), C.float(fromY), C.float(toX), C.float(toY), C.int(duration), held)
	if rc != 0 {
		return fmt.Errorf("failed to drag from (%d,%d) to (%d,%d)", fromX, fromY, toX, toY)
	}
	return nil
}

// SendKeys types a key sequence. Printable characters are typed as Unicode
// so they do not depend on the keyboard layout; special keys and modified
// strokes are sent as virtual key codes.
func (inp *DarwinInputter) SendKeys(keys string, interval time.Duration) error {
	strokes, err := platform.ParseKeys(keys)
	if err != nil {
		return err
	}
	inp.mu.Lock()
	held := inp.held
	inp.mu.Unlock()

	for i, k := range strokes {
		if i > 0 && interval > 0 {
			time.Sleep(interval)
		}
		if r, ok := k.Char(); ok && held == 0 {
			units := utf16.Encode([]rune{r})
			C.cg_type_char((*C.UniChar)(&units[0]), C.int(len(units)))
			continue
		}
		if m, ok := modifierKeys[k.Key]; ok {
			// A trailing modifier is pressed on its own.
			C.cg_modifier(C.CGKeyCode(m.code), 1, held|m.stroke)
			C.cg_modifier(C.CGKeyCode(m.code), 0, held)
			continue
		}
		code, flags, err := strokeCode(k)
		if err != nil {
			return err
		}
		C.cg_key_combo(C.CGKeyCode(code), flags|held)
	}
	return nil
}

// PressKey holds a modifier for the following pointer gestures.
func (inp *DarwinInputter) PressKey(key string) error {
	m, ok := modifierKeys[key]
	if !ok {
		return fmt.Errorf("cannot hold key %q", key)
	}
	inp.mu.Lock()
	defer inp.mu.Unlock()
	inp.held |= m.hold
	C.cg_modifier(C.CGKeyCode(m.holdCode), 1, inp.held)
	return nil
}

func (inp *DarwinInputter) ReleaseKey(key string) error {
	m, ok := modifierKeys[key]
	if !ok {
		return fmt.Errorf("cannot release key %q", key)
	}
	inp.mu.Lock()
	defer inp.mu.Unlock()
	inp.held &^= m.hold
	C.cg_modifier(C.CGKeyCode(m.holdCode), 0, inp.held)
	return nil
}

const (
	flagCommand = C.CGEventFlags(C.kCGEventFlagMaskCommand)
	flagOption  = C.CGEventFlags(C.kCGEventFlagMaskAlternate)
	flagShift   = C.CGEventFlags(C.kCGEventFlagMaskShift)
	flagControl = C.CGEventFlags(C.kCGEventFlagMaskControl)
)

// macOS virtual key codes from Carbon Events.h.
const (
	keyCommand = 0x37
	keyShift   = 0x38
	keyOption  = 0x3A
	keyControl = 0x3B
)

// modifier maps a portable modifier to macOS. In key strokes Ctrl becomes
// Command, so "{Ctrl}a" selects all. Held for a drag, Ctrl becomes Option,
// the copy modifier of the Finder and most document apps.
type modifier struct {
	code     uint16
	stroke   C.CGEventFlags
	holdCode uint16
	hold     C.CGEventFlags
}

var modifierKeys = map[string]modifier{
	platform.KeyCtrl:  {keyCommand, flagCommand, keyOption, flagOption},
	platform.KeyAlt:   {keyOption, flagOption, keyOption, flagOption},
	platform.KeyShift: {keyShift, flagShift, keyShift, flagShift},
	platform.KeyWin:   {keyControl, flagControl, keyControl, flagControl},
}

var keyCodeMap = map[string]uint16{
	"a": 0x00, "b": 0x0B, "c": 0x08, "d": 0x02, "e": 0x0E, "f": 0x03,
	"g": 0x05, "h": 0x04, "i": 0x22, "j": 0x26, "k": 0x28, "l": 0x25,
	"m": 0x2E, "n": 0x2D, "o": 0x1F, "p": 0x23, "q": 0x0C, "r": 0x0F,
	"s": 0x01, "t": 0x11, "u": 0x20, "v": 0x09, "w": 0x0D, "x": 0x07,
	"y": 0x10, "z": 0x06,
	"0": 0x1D, "1": 0x12, "2": 0x13, "3": 0x14, "4": 0x15,
	"5": 0x17, "6": 0x16, "7": 0x1A, "8": 0x1C, "9": 0x19,
	"-": 0x1B, "=": 0x18, "[": 0x21, "]": 0x1E, ";": 0x29, "'": 0x27,
	",": 0x2B, ".": 0x2F, "/": 0x2C, "\\": 0x2A, "`": 0x32,
	"enter": 0x24, "tab": 0x30, "space": 0x31, "back": 0x33, "esc": 0x35,
	"del": 0x75, "ins": 0x72,
	"up": 0x7E, "down": 0x7D, "left": 0x7B, "right": 0x7C,
	"home": 0x73, "end": 0x77, "pageup": 0x74, "pagedown": 0x79,
	"f1": 0x7A, "f2": 0x78, "f3": 0x63, "f4": 0x76, "f5": 0x60,
	"f6": 0x61, "f7": 0x62, "f8": 0x64, "f9": 0x65, "f10": 0x6D,
	"f11": 0x67, "f12": 0x6F,
}

// documentMoves rewrites the Ctrl+Home and Ctrl+End document jumps, which
// macOS spells as Command with the arrow keys.
var documentMoves = map[string]string{"home": "up", "end": "down"}

func strokeCode(k platform.KeyStroke) (uint16, C.CGEventFlags, error) {
	var flags C.CGEventFlags
	for _, m := range k.Modifiers {
		flags |= modifierKeys[m].stroke
	}
	key := strings.ToLower(k.Key)
	if k.HasModifier(platform.KeyCtrl) {
		if moved, ok := documentMoves[key]; ok {
			key = moved
		}
	}
	if r := []rune(k.Key); len(r) == 1 && unicode.IsUpper(r[0]) {
		flags |= flagShift
	}
	code, ok := keyCodeMap[key]
	if !ok {
		return 0, 0, fmt.Errorf("no macOS key code for %s", k)
	}
	return code, flags, nil
}
