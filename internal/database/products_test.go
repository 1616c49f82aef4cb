package database

import "testing"

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"laptop", "laptop"},
		{"100%", `100\%`},
		{"usb_c", `usb\_c`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeLike(tt.input); got != tt.want {
				t.Errorf("escapeLike(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProductFilterArgsEscapesSearch(t *testing.T) {
	search := "50%_off"
	args := ProductFilter{Search: &search}.args()

	got, ok := args[1].(*string)
	if !ok || got == nil {
		t.Fatalf("search argument = %#v, want a *string", args[1])
	}
	if *got != `50\%\_off` {
		t.Errorf("search argument = %q, want %q", *got, `50\%\_off`)
	}
	if search != "50%_off" {
		t.Error("the caller's search string was modified")
	}

	if args := (ProductFilter{}).args(); args[1].(*string) != nil {
		t.Error("expected a nil search argument when no search is set")
	}
}
