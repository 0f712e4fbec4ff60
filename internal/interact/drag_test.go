package interact

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/mj1618/uiloc/internal/platform/memtree"
)

type failingDrag struct {
	*memtree.Tree
}

func (failingDrag) Drag(fromX, fromY, toX, toY int, speed float64) error {
	return errors.New("pointer grabbed by another window")
}

func TestDragAndDrop(t *testing.T) {
	tree, d, _ := setup(t)
	src, dst := find(t, d, "id:ok"), find(t, d, "id:amount")
	if err := d.DragAndDrop(src, dst, DragOptions{}); err != nil {
		t.Fatal(err)
	}
	ev := tree.Events()
	if len(ev) != 1 || ev[0].Kind != "drag" {
		t.Fatalf("events = %+v", ev)
	}
	if ev[0].X != 140 || ev[0].Y != 415 || ev[0].ToX != 200 || ev[0].ToY != 132 {
		t.Errorf("drag = %+v", ev[0])
	}
}

func TestDragAndDrop_CopyCleanupOrder(t *testing.T) {
	tree, d, _ := setup(t)
	src, dst := find(t, d, "id:ok"), find(t, d, "id:amount")
	if err := d.DragAndDrop(src, dst, DragOptions{Copy: true}); err != nil {
		t.Fatal(err)
	}
	if got := eventKinds(tree.Events()); got != "press,drag,click,release" {
		t.Errorf("events = %s", got)
	}
	if len(tree.Held()) != 0 {
		t.Errorf("keys still held: %v", tree.Held())
	}
}

func TestDragAndDrop_CopyReleasesOnFailure(t *testing.T) {
	tree, d, _ := setup(t)
	d.Inputter = failingDrag{tree}
	d.Logger = quiet
	src, dst := find(t, d, "id:ok"), find(t, d, "id:amount")

	err := d.DragAndDrop(src, dst, DragOptions{Copy: true})
	if err == nil || !strings.Contains(err.Error(), "pointer grabbed") {
		t.Fatalf("expected drag error, got %v", err)
	}
	if got := eventKinds(tree.Events()); got != "press,click,release" {
		t.Errorf("events = %s", got)
	}
	if len(tree.Held()) != 0 {
		t.Errorf("ctrl left pressed: %v", tree.Held())
	}
}

func TestDragAndDrop_NoGeometry(t *testing.T) {
	tree, d, _ := setup(t)
	if _, err := tree.FindByName("Form").Append(memtree.Spec{Name: "Ghost", Control: "ImageControl"}); err != nil {
		t.Fatal(err)
	}
	ghost := find(t, d, "name:Ghost")
	err := d.DragAndDrop(ghost, find(t, d, "id:ok"), DragOptions{Copy: true})
	if !errors.Is(err, ErrActionNotPossible) {
		t.Fatalf("expected ErrActionNotPossible, got %v", err)
	}
	if len(tree.Events()) != 0 {
		t.Error("no input should be sent")
	}
}

func TestScreenshot(t *testing.T) {
	_, d, _ := setup(t)
	ok := find(t, d, "id:ok")
	gray := color.RGBA{R: 207, G: 207, B: 207, A: 255}

	tests := []struct {
		name  string
		opts  ScreenshotOptions
		w, h  int
		plain bool
	}{
		{"crop", ScreenshotOptions{}, 80, 30, true},
		{"label", ScreenshotOptions{Label: true}, 80, 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := d.Screenshot(ok, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			b := img.Bounds()
			if b.Dx() != tt.w || b.Dy() != tt.h {
				t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
			center := color.RGBAModel.Convert(img.At(b.Dx()/2, b.Dy()-2))
			if center != gray {
				t.Errorf("pixel = %v, want the control shade %v", center, gray)
			}
			changed := false
			for x := 0; x < b.Dx() && !changed; x++ {
				for y := 0; y < 15 && y < b.Dy(); y++ {
					if color.RGBAModel.Convert(img.At(x, y)) != gray {
						changed = true
						break
					}
				}
			}
			if changed == tt.plain {
				t.Errorf("label drawn = %v, want %v", changed, !tt.plain)
			}
		})
	}
}

func TestScreenshot_Scale(t *testing.T) {
	_, d, _ := setup(t)
	ok := find(t, d, "id:ok")
	for _, tt := range []struct {
		factor float64
		w, h   int
	}{{2, 160, 60}, {0.5, 40, 15}, {1, 80, 30}} {
		img, err := d.Screenshot(ok, ScreenshotOptions{Scale: tt.factor})
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("scale %v: size = %dx%d", tt.factor, b.Dx(), b.Dy())
		}
	}
}

func TestScreenshot_Desktop(t *testing.T) {
	_, d, _ := setup(t)
	img, err := d.Screenshot(nil, ScreenshotOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("size = %v", b)
	}
}

func TestScreenshot_Errors(t *testing.T) {
	_, d, _ := setup(t)
	if _, err := d.Screenshot(find(t, d, "id:hidden"), ScreenshotOptions{}); !errors.Is(err, ErrActionNotPossible) {
		t.Errorf("hidden control: %v", err)
	}
	if _, err := d.Screenshot(nil, ScreenshotOptions{Scale: 5}); err == nil {
		t.Error("expected an error for scale 5")
	}
}
