package memtree

import (
	"errors"
	"strings"
	"testing"

	"github.com/mj1618/uiloc/internal/platform"
)

func loadNotepad(t *testing.T) *Tree {
	t.Helper()
	tree, err := LoadFile("testdata/notepad.yaml")
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func TestLoadFile(t *testing.T) {
	tree := loadNotepad(t)
	root := tree.Root()
	if name, _ := root.Name(); name != "Desktop" {
		t.Errorf("root name = %q", name)
	}
	kids, err := root.Children()
	if err != nil || len(kids) != 1 {
		t.Fatalf("root children = %d, %v", len(kids), err)
	}
	save := tree.FindByID("Save")
	if save == nil {
		t.Fatal("Save button not found")
	}
	r, _ := save.Rect()
	if r != (platform.Rect{X: 400, Y: 130, Width: 80, Height: 24}) {
		t.Errorf("Save rect = %+v", r)
	}
	if _, ok := platform.Probe[platform.Clicker](save, platform.CapRightClick); !ok {
		t.Error("invoke should grant every click capability")
	}
	if _, ok := platform.Probe[platform.ValuePattern](save, platform.CapValue); ok {
		t.Error("Save should not expose a value pattern")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []string{
		"name: x\nrect: [1, 2]\n",
		"name: x\ncaps: [teleport]\n",
		"name: [\n",
	}
	for _, in := range tests {
		if _, err := Load(strings.NewReader(in)); err == nil {
			t.Errorf("Load(%q) should fail", in)
		}
	}
}

func TestNode_NoGeometryIsInvalid(t *testing.T) {
	tree := MustNew(Spec{Name: "root"})
	r, err := tree.Root().Rect()
	if err != nil {
		t.Fatal(err)
	}
	if !r.Invalid {
		t.Errorf("rect without geometry should be invalid, got %+v", r)
	}
}

func TestNode_Dispose(t *testing.T) {
	tree := loadNotepad(t)
	win := tree.FindByName("Untitled - Notepad")
	editor := tree.FindByName("Text Editor")
	win.Dispose()

	if _, err := editor.Name(); !errors.Is(err, platform.ErrDisposed) {
		t.Errorf("child of disposed window: err = %v, want ErrDisposed", err)
	}
	if ok, err := editor.Exists(); ok || err != nil {
		t.Errorf("Exists() = %v, %v", ok, err)
	}
	if _, ok := editor.Probe(platform.CapKeys); ok {
		t.Error("disposed node should expose no capabilities")
	}
	if tree.FindByName("Text Editor") != nil {
		t.Error("FindByName should skip disposed nodes")
	}
}

func TestNode_Remove(t *testing.T) {
	tree := loadNotepad(t)
	tree.FindByID("Save").Remove()
	kids, _ := tree.FindByName("Untitled - Notepad").Children()
	if len(kids) != 3 {
		t.Errorf("expected 3 children after removal, got %d", len(kids))
	}
}

func TestNode_SendKeysEditsValue(t *testing.T) {
	tree := loadNotepad(t)
	ed := tree.FindByName("Text Editor")
	steps := []struct {
		keys string
		want string
	}{
		{"hello", "hello"},
		{"{Enter}x", "hello\nx"},
		{"{Back}", "hello\n"},
		{"{Ctrl}a{Del}", ""},
		{"abc{Ctrl}a22", "22"},
		{"{Ctrl}{End}{Enter}", "22\n"},
	}
	for _, s := range steps {
		if err := ed.SendKeys(s.keys, 0); err != nil {
			t.Fatal(err)
		}
		if got, _ := ed.Text(); got != s.want {
			t.Errorf("after %q: text = %q, want %q", s.keys, got, s.want)
		}
	}
}

func TestNode_MaxLengthTruncates(t *testing.T) {
	tree := MustNew(Spec{Name: "f", MaxLength: 3, Caps: []string{"value"}})
	n := tree.Root()
	if err := n.SetValue("abcdef"); err != nil {
		t.Fatal(err)
	}
	if v, _ := n.Value(); v != "abc" {
		t.Errorf("value = %q, want abc", v)
	}
}

func TestNode_Select(t *testing.T) {
	tree := loadNotepad(t)
	combo := tree.FindByID("FontSizeComboBox")
	if err := combo.Select("22", false); err != nil {
		t.Fatal(err)
	}
	if v, _ := combo.Value(); v != "22" {
		t.Errorf("value = %q, want 22", v)
	}
	if err := combo.Select("99", false); err == nil {
		t.Error("selecting a missing item should fail")
	}
}

func TestTree_GlobalKeysGoToFocused(t *testing.T) {
	tree := loadNotepad(t)
	ed := tree.FindByName("Text Editor")
	if err := ed.SetFocus(); err != nil {
		t.Fatal(err)
	}
	if err := tree.SendKeys("typed", 0); err != nil {
		t.Fatal(err)
	}
	if v, _ := ed.Text(); v != "typed" {
		t.Errorf("focused editor text = %q", v)
	}
}

func TestTree_PressRelease(t *testing.T) {
	tree := loadNotepad(t)
	_ = tree.PressKey(platform.KeyCtrl)
	if h := tree.Held(); len(h) != 1 || h[0] != platform.KeyCtrl {
		t.Errorf("held = %v", h)
	}
	_ = tree.ReleaseKey(platform.KeyCtrl)
	if h := tree.Held(); len(h) != 0 {
		t.Errorf("held after release = %v", h)
	}
	if ev := tree.Events(); len(ev) != 2 || ev[0].Kind != "press" || ev[1].Kind != "release" {
		t.Errorf("events = %+v", ev)
	}
}

func TestTree_CaptureDesktop(t *testing.T) {
	tree := loadNotepad(t)
	img, err := tree.CaptureDesktop()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1280 || b.Dy() != 800 {
		t.Errorf("bounds = %v", b)
	}
	r, _, _, _ := img.At(5, 5).RGBA()
	if r != 0xffff {
		t.Error("desktop background should be white")
	}
	r, _, _, _ = img.At(420, 140).RGBA()
	if r == 0xffff {
		t.Error("Save button should be painted")
	}
}
