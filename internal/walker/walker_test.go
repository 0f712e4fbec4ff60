package walker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mj1618/uiloc/internal/platform/memtree"
)

// buildList returns a window holding a three-item list whose items each
// contain a nested text element with the same name as the item.
func buildList() *memtree.Tree {
	item := func(n int) memtree.Spec {
		name := fmt.Sprintf("item%d", n)
		return memtree.Spec{
			Name: name, Control: "ListItemControl",
			Children: []memtree.Spec{{Name: name, Control: "TextControl"}},
		}
	}
	return memtree.MustNew(memtree.Spec{
		Name: "Desktop",
		Children: []memtree.Spec{{
			Name: "App", Control: "WindowControl",
			Children: []memtree.Spec{
				{Name: "Toolbar", Control: "ToolBarControl"},
				{Name: "List", Control: "ListControl", Children: []memtree.Spec{item(1), item(2), item(3)}},
			},
		}},
	})
}

func names(t *testing.T, seq func(func(Visit) bool)) string {
	t.Helper()
	var out []string
	for v := range seq {
		n, err := v.Node.Name()
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, fmt.Sprintf("%s@%d", n, v.Depth))
	}
	return strings.Join(out, " ")
}

func TestAll_PreOrder(t *testing.T) {
	tree := buildList()
	got := names(t, All(tree.Root(), 8))
	want := "App@1 Toolbar@2 List@2 item1@3 item1@4 item2@3 item2@4 item3@3 item3@4"
	if got != want {
		t.Errorf("All =\n  %s\nwant\n  %s", got, want)
	}
}

func TestAll_MaxDepth(t *testing.T) {
	tree := buildList()
	if got := names(t, All(tree.Root(), 2)); got != "App@1 Toolbar@2 List@2" {
		t.Errorf("All(depth 2) = %s", got)
	}
	if got := names(t, All(tree.Root(), 0)); got != "" {
		t.Errorf("All(depth 0) = %s", got)
	}
}

func TestAll_Coordinates(t *testing.T) {
	tree := buildList()
	for v := range All(tree.Root(), 8) {
		if n, _ := v.Node.Name(); n == "item3" && v.Depth == 3 {
			if v.ChildPos != 3 || fmt.Sprint(v.Path) != "[1 2 3]" {
				t.Errorf("item3 visit = pos %d path %v", v.ChildPos, v.Path)
			}
			return
		}
	}
	t.Fatal("item3 not visited")
}

func TestAll_Restartable(t *testing.T) {
	tree := buildList()
	seq := All(tree.Root(), 8)
	first := names(t, seq)
	second := names(t, seq)
	if first != second {
		t.Errorf("second iteration differs:\n  %s\n  %s", first, second)
	}
}

func TestAll_EarlyStop(t *testing.T) {
	tree := buildList()
	count := 0
	for range All(tree.Root(), 8) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("count = %d", count)
	}
}

func TestAll_SkipsDisposed(t *testing.T) {
	tree := buildList()
	tree.FindByName("item2").Dispose()
	got := names(t, All(tree.Root(), 8))
	want := "App@1 Toolbar@2 List@2 item1@3 item1@4 item3@3 item3@4"
	if got != want {
		t.Errorf("All = %s, want %s", got, want)
	}
}

func TestAll_ChildrenErrorEndsSubtree(t *testing.T) {
	tree := buildList()
	tree.FindByName("List").SetChildrenError(errors.New("COM error"))
	got := names(t, All(tree.Root(), 8))
	if got != "App@1 Toolbar@2 List@2" {
		t.Errorf("All = %s", got)
	}
}

func TestSiblings_StopsAtMatchGeneration(t *testing.T) {
	tree := buildList()
	isItem := func(v Visit) bool {
		n, _ := v.Node.Name()
		return strings.HasPrefix(n, "item")
	}
	got := names(t, Siblings(tree.Root(), 8, isItem))
	if got != "item1@3 item2@3 item3@3" {
		t.Errorf("Siblings = %s", got)
	}
}

func TestSiblings_FromLaterMatch(t *testing.T) {
	tree := buildList()
	isItem2 := func(v Visit) bool {
		n, _ := v.Node.Name()
		return n == "item2"
	}
	got := names(t, Siblings(tree.Root(), 8, isItem2))
	if got != "item2@3 item3@3" {
		t.Errorf("Siblings = %s", got)
	}
}

func TestSiblings_NoMatch(t *testing.T) {
	tree := buildList()
	got := names(t, Siblings(tree.Root(), 8, func(Visit) bool { return false }))
	if got != "" {
		t.Errorf("Siblings = %s", got)
	}
}

func TestAlive(t *testing.T) {
	tree := buildList()
	n := tree.FindByName("Toolbar")
	if !Alive(n) {
		t.Error("live node reported dead")
	}
	n.Dispose()
	if Alive(n) {
		t.Error("disposed node reported alive")
	}
}
