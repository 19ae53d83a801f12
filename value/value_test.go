package value

import (
	"testing"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/cbro/nix-manipulator/docmodel"
)

func TestCoerceScalars(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"hi", `"hi"`},
		{true, "true"},
		{false, "false"},
		{1, "1"},
		{int64(2), "2"},
		{1.5, "1.5"},
		{Null{}, "null"},
		{nil, "null"},
	}
	for _, c := range cases {
		e, err := Coerce(c.in)
		if err != nil {
			t.Fatalf("Coerce(%#v) error: %v", c.in, err)
		}
		if got := e.Rebuild(); got != c.want {
			t.Errorf("Coerce(%#v).Rebuild() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCoercePassesThroughExpr(t *testing.T) {
	id := docmodel.NewIdentifier("pkgs")
	e, err := Coerce(id)
	if err != nil {
		t.Fatalf("Coerce(Identifier) error: %v", err)
	}
	if e != docmodel.Expr(id) {
		t.Errorf("Coerce did not pass the Expr through unchanged")
	}
}

func TestCoerceMapping(t *testing.T) {
	m := orderedmap.New[string, any]()
	m.Set("a", 1)
	m.Set("b", "two")

	e, err := Coerce(m)
	if err != nil {
		t.Fatalf("Coerce(mapping) error: %v", err)
	}
	set, ok := e.(*docmodel.AttributeSet)
	if !ok {
		t.Fatalf("Coerce(mapping) = %T, want *docmodel.AttributeSet", e)
	}
	if got := set.Rebuild(); got != "{\n  a = 1;\n  b = \"two\";\n}" {
		t.Errorf("Rebuild() = %q", got)
	}
}

func TestCoerceRejectsUnsupportedType(t *testing.T) {
	_, err := Coerce(struct{ X int }{X: 1})
	if err == nil {
		t.Fatal("Coerce(unsupported struct) returned nil error")
	}
}

func TestCoerceBareStringIsNeverAnIdentifier(t *testing.T) {
	e, err := Coerce("pkgs")
	if err != nil {
		t.Fatalf("Coerce error: %v", err)
	}
	if _, ok := e.(*docmodel.Identifier); ok {
		t.Fatal("bare string coerced to an Identifier; must require an explicit *docmodel.Identifier")
	}
	if got := e.Rebuild(); got != `"pkgs"` {
		t.Errorf("Rebuild() = %q, want %q", got, `"pkgs"`)
	}
}
