package platform

import "testing"

func TestParseRect_Valid(t *testing.T) {
	r, err := ParseRect("10, 20, 300, 400")
	if err != nil {
		t.Fatal(err)
	}
	if r.X != 10 || r.Y != 20 || r.Width != 300 || r.Height != 400 || r.Invalid {
		t.Errorf("got %+v, want {10 20 300 400}", r)
	}
}

func TestParseRect_Invalid(t *testing.T) {
	tests := []string{
		"",
		"10,20,300",
		"10,20,300,400,500",
		"a,b,c,d",
	}
	for _, s := range tests {
		if _, err := ParseRect(s); err == nil {
			t.Errorf("ParseRect(%q) should fail", s)
		}
	}
}

func TestRect_Empty(t *testing.T) {
	tests := []struct {
		rect Rect
		want bool
	}{
		{Rect{}, true},
		{InvalidRect, true},
		{Rect{X: 5, Y: 5, Width: 10, Height: 0}, true},
		{Rect{X: 5, Y: 5, Width: 10, Height: 10}, false},
	}
	for _, tt := range tests {
		if got := tt.rect.Empty(); got != tt.want {
			t.Errorf("%+v.Empty() = %v, want %v", tt.rect, got, tt.want)
		}
	}
}

func TestRect_Center(t *testing.T) {
	x, y := Rect{X: 10, Y: 20, Width: 100, Height: 50}.Center()
	if x != 60 || y != 45 {
		t.Errorf("Center() = %d,%d, want 60,45", x, y)
	}
}

func TestParseMouseButton_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  MouseButton
	}{
		{"left", MouseLeft},
		{"LEFT", MouseLeft},
		{"Right", MouseRight},
		{"middle", MouseMiddle},
	}
	for _, tt := range tests {
		got, err := ParseMouseButton(tt.input)
		if err != nil {
			t.Errorf("ParseMouseButton(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseMouseButton(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseMouseButton_Invalid(t *testing.T) {
	if _, err := ParseMouseButton("invalid"); err == nil {
		t.Error("ParseMouseButton(\"invalid\") should fail")
	}
}
