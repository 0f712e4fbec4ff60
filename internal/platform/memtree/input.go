package memtree

import (
	"image"
	"image/color"
	"slices"
	"time"

	"golang.org/x/image/draw"

	"github.com/mj1618/uiloc/internal/platform"
)

// Click implements platform.Inputter.
func (t *Tree) Click(x, y int, button platform.MouseButton, count int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(Event{Kind: "click", X: x, Y: y, Button: button.String(), Count: count})
	return nil
}

// MoveMouse implements platform.Inputter.
func (t *Tree) MoveMouse(x, y int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(Event{Kind: "move", X: x, Y: y})
	return nil
}

// Drag implements platform.Inputter.
func (t *Tree) Drag(fromX, fromY, toX, toY int, speed float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(Event{Kind: "drag", X: fromX, Y: fromY, ToX: toX, ToY: toY})
	return nil
}

// SendKeys implements platform.Inputter. Keys go to the focused node when it
// accepts key input.
func (t *Tree) SendKeys(keys string, interval time.Duration) error {
	strokes, err := platform.ParseKeys(keys)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(Event{Kind: "keys", Keys: keys})
	if f := t.focused; f != nil && !f.disposed && f.caps[platform.CapKeys] {
		f.edit(strokes)
	}
	return nil
}

// PressKey implements platform.Inputter.
func (t *Tree) PressKey(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.held = append(t.held, key)
	t.record(Event{Kind: "press", Keys: key})
	return nil
}

// ReleaseKey implements platform.Inputter.
func (t *Tree) ReleaseKey(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := slices.Index(t.held, key); i >= 0 {
		t.held = slices.Delete(t.held, i, i+1)
	}
	t.record(Event{Kind: "release", Keys: key})
	return nil
}

// CaptureDesktop implements platform.Screenshotter by painting every control
// rectangle, darker with depth, on a white desktop.
func (t *Tree) CaptureDesktop() (image.Image, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bounds := image.Rect(0, 0, 1, 1)
	if r := t.root.rect; !r.Empty() {
		bounds = image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	}
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, image.White, image.Point{}, draw.Src)

	var paint func(n *Node, depth int)
	paint = func(n *Node, depth int) {
		if n.disposed {
			return
		}
		if r := n.rect; !r.Empty() && depth > 0 {
			shade := uint8(max(255-depth*24, 40))
			rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Intersect(bounds)
			draw.Draw(img, rect, image.NewUniform(color.Gray{Y: shade}), image.Point{}, draw.Src)
		}
		for _, c := range n.children {
			paint(c, depth+1)
		}
	}
	paint(t.root, 0)
	return img, nil
}
