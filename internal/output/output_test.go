package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mj1618/uiloc/internal/model"
	"gopkg.in/yaml.v3"
)

func sampleTree() TreeResult {
	return TreeResult{
		Root: "Untitled - Notepad",
		TS:   1707500000,
		Elements: []model.Element{
			{Name: "Save", AutomationID: "save", ControlType: "ButtonControl", Bounds: [4]int{10, 20, 100, 30}, Depth: 1, ChildPos: 1, Path: "1"},
		},
	}
}

func TestFprintYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := FprintYAML(&buf, sampleTree()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}

	var decoded TreeResult
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Root != "Untitled - Notepad" {
		t.Errorf("root: got %q", decoded.Root)
	}
	if len(decoded.Elements) != 1 || decoded.Elements[0].AutomationID != "save" {
		t.Errorf("elements: got %+v", decoded.Elements)
	}
}

func TestFprintJSON(t *testing.T) {
	tests := []struct {
		name      string
		pretty    bool
		multiLine bool
	}{
		{"compact", false, false},
		{"pretty", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := FprintJSON(&buf, sampleTree(), tt.pretty); err != nil {
				t.Fatal(err)
			}
			if got := strings.Count(buf.String(), "\n") > 1; got != tt.multiLine {
				t.Errorf("multi-line = %v, output:\n%s", got, buf.String())
			}
			var decoded TreeResult
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
		})
	}
}

func TestFprintJSON_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	if err := FprintJSON(&buf, map[string]string{"locator": "name:<b>&"}, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "name:<b>&") {
		t.Errorf("HTML characters were escaped: %s", buf.String())
	}
}

func TestActionResult_OmitEmpty(t *testing.T) {
	empty := ""
	data, err := yaml.Marshal(ActionResult{OK: true, Action: "get-value", Value: &empty})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["element"]; ok {
		t.Error("nil element should be omitted")
	}
	if _, ok := m["text"]; ok {
		t.Error("nil text should be omitted")
	}
	if v, ok := m["value"]; !ok || v != "" {
		t.Errorf("an empty value must still be printed, got %v", m)
	}
}

func TestSprint(t *testing.T) {
	s, err := Sprint(FormatJSON, ActionResult{OK: true, Action: "click"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(s) != `{"ok":true,"action":"click"}` {
		t.Errorf("Sprint = %q", s)
	}
	if _, err := Sprint(Format("xml"), nil); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"yaml", "json"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("expected an error for toml")
	}
}
