package mapping

import (
	"errors"
	"testing"

	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

func TestGetSetRemove(t *testing.T) {
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, docmodel.NewBinding("a", docmodel.NewInt(1)))

	v, err := Get(set, "a")
	if err != nil {
		t.Fatalf("Get(a) error: %v", err)
	}
	if got := v.(*docmodel.Primitive).Int; got != 1 {
		t.Errorf("Get(a) = %d, want 1", got)
	}

	if _, err := Get(set, "missing"); err == nil {
		t.Fatal("Get(missing) returned nil error")
	} else {
		var km *nmerr.KeyMissing
		if !errors.As(err, &km) {
			t.Errorf("Get(missing) error type = %T, want *nmerr.KeyMissing", err)
		}
	}

	Set(set, "a", docmodel.NewInt(2))
	v, _ = Get(set, "a")
	if got := v.(*docmodel.Primitive).Int; got != 2 {
		t.Errorf("after Set(a, 2), Get(a) = %d, want 2", got)
	}

	Set(set, "c", docmodel.NewInt(3))
	if len(set.Values) != 2 {
		t.Fatalf("len(Values) = %d, want 2 after appending a new key", len(set.Values))
	}

	if err := Remove(set, "a"); err != nil {
		t.Fatalf("Remove(a) error: %v", err)
	}
	if _, err := Get(set, "a"); err == nil {
		t.Fatal("Get(a) after Remove(a) returned nil error")
	}
	if err := Remove(set, "a"); err == nil {
		t.Fatal("Remove(a) a second time returned nil error")
	}
}

func TestBindingsPreservesSourceOrder(t *testing.T) {
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values,
		docmodel.NewBinding("z", docmodel.NewInt(1)),
		docmodel.NewBinding("a", docmodel.NewInt(2)),
	)
	members := Bindings(set)
	if len(members) != 2 {
		t.Fatalf("len(Bindings) = %d, want 2", len(members))
	}
	if got := members[0].(*docmodel.Binding).Name(); got != "z" {
		t.Errorf("Bindings()[0].Name() = %q, want %q", got, "z")
	}
}

func TestScopeProjectionIsReadThrough(t *testing.T) {
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, docmodel.NewBinding("a", docmodel.NewInt(1)))
	set.Values = append(set.Values, docmodel.NewInherit("b", "c"))

	m := Scope(set)
	if m.Len() != 3 {
		t.Fatalf("Scope().Len() = %d, want 3", m.Len())
	}
	v, ok := m.Get("a")
	if !ok || v.(*docmodel.Primitive).Int != 1 {
		t.Errorf("Scope()[a] = %v, ok=%v, want Primitive(1)", v, ok)
	}
	if v, ok := m.Get("b"); !ok || v != nil {
		t.Errorf("Scope()[b] = %v, ok=%v, want nil, true", v, ok)
	}

	// Mutating the projection must not affect the underlying document.
	m.Set("a", docmodel.NewInt(99))
	doc, _ := Get(set, "a")
	if doc.(*docmodel.Primitive).Int != 1 {
		t.Errorf("mutating Scope() projection leaked into the document: Get(a) = %v", doc)
	}
}
