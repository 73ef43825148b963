package imaging

import "testing"

func TestOptions_Getters(t *testing.T) {
	opts := Options{
		"int":    3,
		"float":  2.7,
		"string": "5",
		"bad":    "five",
		"nil":    nil,
		"name":   "cubic",
	}

	if got := opts.Int("int", 0); got != 3 {
		t.Errorf("Int(int): got %d, want 3", got)
	}
	if got := opts.Int("float", 0); got != 2 {
		t.Errorf("Int(float): got %d, want 2", got)
	}
	if got := opts.Int("string", 0); got != 5 {
		t.Errorf("Int(string): got %d, want 5", got)
	}
	if got := opts.Int("bad", 9); got != 9 {
		t.Errorf("Int(bad): got %d, want default 9", got)
	}
	if got := opts.Int("nil", 9); got != 9 {
		t.Errorf("Int(nil): got %d, want default 9", got)
	}
	if got := opts.Float("string", 0); got != 5 {
		t.Errorf("Float(string): got %v, want 5", got)
	}
	if got := opts.Float("missing", 1.5); got != 1.5 {
		t.Errorf("Float(missing): got %v, want 1.5", got)
	}
	if got := opts.String("name", ""); got != "cubic" {
		t.Errorf("String(name): got %q, want cubic", got)
	}
	if got := opts.String("int", ""); got != "3" {
		t.Errorf("String(int): got %q, want 3", got)
	}
	if !opts.Has("nil") || opts.Has("missing") {
		t.Error("Has reported the wrong presence")
	}
}

func TestOptions_NilMap(t *testing.T) {
	var opts Options
	if opts.Int("x", 4) != 4 || opts.Float("x", 4) != 4 || opts.String("x", "d") != "d" || opts.Flag("x") {
		t.Error("nil Options should return defaults")
	}
}

func TestOptions_Flag(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{"True", true},
		{true, true},
		{"true", false},
		{"TRUE", false},
		{"t", false},
		{"1", false},
		{" True ", false},
		{1, false},
		{"False", false},
		{false, false},
		{0, false},
		{"yes please", false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := (Options{"k": tt.value}).Flag("k"); got != tt.want {
			t.Errorf("Flag(%#v): got %v, want %v", tt.value, got, tt.want)
		}
	}
}
