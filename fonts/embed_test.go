package fonts

import "testing"

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"builtin:goregular", "gobold", "builtin:GoItalic"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q) error: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("Load(%q) returned no data", name)
		}
	}
	if _, err := Load("builtin:comic-sans"); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}

func TestVariant(t *testing.T) {
	for _, tc := range []struct{ src, style, want string }{
		{"builtin:goregular", "", "builtin:goregular"},
		{"builtin:goregular", "B", "builtin:gobold"},
		{"goregular", "I", "builtin:goitalic"},
		{"builtin:GoBold", "BI", "builtin:gobolditalic"},
		{"builtin:gomono", "B", "builtin:gomono"},
		{"fonts/a.ttf", "B", "fonts/a.ttf"},
	} {
		if got := Variant(tc.src, tc.style); got != tc.want {
			t.Fatalf("Variant(%q, %q) = %q, want %q", tc.src, tc.style, got, tc.want)
		}
	}
}

func TestIsBuiltin(t *testing.T) {
	if !IsBuiltin("builtin:gomono") || IsBuiltin("fonts/a.ttf") {
		t.Fatalf("IsBuiltin misclassified sources")
	}
}
