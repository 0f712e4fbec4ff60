package output

import (
	"context"
	"strings"
	"testing"

	"github.com/mj1618/uiloc/internal/config"
	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/interact"
	"github.com/mj1618/uiloc/internal/platform/memtree"
	"github.com/mj1618/uiloc/internal/resolver"
)

func notepadWindow(t *testing.T) *element.Handle {
	t.Helper()
	tree, err := memtree.LoadFile("../platform/memtree/testdata/notepad.yaml")
	if err != nil {
		t.Fatal(err)
	}
	d := interact.New(tree.Provider(), config.New(), nil)
	h, err := d.Find(context.Background(), "type:Window", nil, resolver.Scope{})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestBuildTree(t *testing.T) {
	h := notepadWindow(t)
	tests := []struct {
		name  string
		opts  TreeOptions
		names []string
	}{
		{"whole subtree", TreeOptions{}, []string{"Text Editor", "Font Size", "11", "22", "File name", "Save"}},
		{"depth one", TreeOptions{Depth: 1}, []string{"Text Editor", "Font Size", "File name", "Save"}},
		{"control filter", TreeOptions{Control: "ListItem"}, []string{"11", "22"}},
		{"text filter", TreeOptions{Text: "edit"}, []string{"Text Editor", "File name"}},
		{"bounds filter", TreeOptions{Bounds: &[4]int{390, 120, 20, 20}}, []string{"Save"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Flat = true
			v, err := BuildTree(h, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			res := v.(TreeFlatResult)
			var got []string
			for _, el := range res.Elements {
				got = append(got, el.Name)
			}
			if strings.Join(got, ",") != strings.Join(tt.names, ",") {
				t.Errorf("names = %v, want %v", got, tt.names)
			}
			if !strings.Contains(res.Root, `name:"Untitled - Notepad"`) {
				t.Errorf("root = %q", res.Root)
			}
		})
	}
}

func TestBuildTree_ControlFilterDropsOtherTypes(t *testing.T) {
	v, err := BuildTree(notepadWindow(t), TreeOptions{Control: "combo"})
	if err != nil {
		t.Fatal(err)
	}
	res := v.(TreeResult)
	// The combo box stays; its list items are not combo boxes.
	if len(res.Elements) != 1 || res.Elements[0].Name != "Font Size" || len(res.Elements[0].Children) != 0 {
		t.Fatalf("elements = %+v", res.Elements)
	}

	v, err = BuildTree(notepadWindow(t), TreeOptions{Control: "item"})
	if err != nil {
		t.Fatal(err)
	}
	res = v.(TreeResult)
	// Matching descendants are promoted and keep their own paths.
	if len(res.Elements) != 2 || res.Elements[1].Path != "2|2" {
		t.Fatalf("elements = %+v", res.Elements)
	}
}

func TestFormatTree(t *testing.T) {
	text, err := FormatTree(notepadWindow(t), TreeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := "        control:ListItemControl class:\"\" name:22 id:\"\" depth:2 index:2 path:2|2\n"
	if !strings.Contains(text, want) {
		t.Errorf("missing %q in\n%s", want, text)
	}
	if n := strings.Count(text, "\n"); n != 6 {
		t.Errorf("got %d lines", n)
	}
}
