package mapping

import (
	"errors"
	"testing"

	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

func segs(names ...string) []docmodel.PathSegment {
	var out []docmodel.PathSegment
	for _, n := range names {
		out = append(out, docmodel.BareSegment(n))
	}
	return out
}

func TestSetPathCreatesAttrpathForm(t *testing.T) {
	set := docmodel.NewAttributeSet()
	if err := SetPath(set, segs("foo", "bar"), docmodel.NewInt(1)); err != nil {
		t.Fatalf("SetPath error: %v", err)
	}
	if got := set.Rebuild(); got != "{ foo.bar = 1; }" {
		t.Errorf("Rebuild() = %q", got)
	}
}

func TestSetPathOverwritesExactNestedMatch(t *testing.T) {
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, &docmodel.Binding{
		Segments: segs("foo", "bar"), Nested: true, Value: docmodel.NewInt(1),
	})
	if err := SetPath(set, segs("foo", "bar"), docmodel.NewInt(2)); err != nil {
		t.Fatalf("SetPath error: %v", err)
	}
	if len(set.Values) != 1 {
		t.Fatalf("len(Values) = %d, want 1 (overwrite, not append)", len(set.Values))
	}
}

func TestSetPathDivergingAttrpathAppendsSibling(t *testing.T) {
	// { foo.bar = 1; } + set("foo.baz", 2) -> two sibling bindings, never a
	// structural merge (spec.md §8 scenario 6).
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, &docmodel.Binding{
		Segments: segs("foo", "bar"), Nested: true, Value: docmodel.NewInt(1),
	})
	if err := SetPath(set, segs("foo", "baz"), docmodel.NewInt(2)); err != nil {
		t.Fatalf("SetPath error: %v", err)
	}
	if len(set.Values) != 2 {
		t.Fatalf("len(Values) = %d, want 2 (sibling append)", len(set.Values))
	}
}

func TestSetPathIntoBraceNestedAttrSet(t *testing.T) {
	inner := docmodel.NewAttributeSet()
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, docmodel.NewBinding("foo", inner))
	if err := SetPath(set, segs("foo", "bar"), docmodel.NewInt(1)); err != nil {
		t.Fatalf("SetPath error: %v", err)
	}
	if len(inner.Values) != 1 {
		t.Fatalf("inner.Values len = %d, want 1", len(inner.Values))
	}
}

func TestSetPathConflictOnNonAttrSetValue(t *testing.T) {
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, docmodel.NewBinding("foo", docmodel.NewInt(1)))
	err := SetPath(set, segs("foo", "bar"), docmodel.NewInt(2))
	var conflict *nmerr.AttrPathConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("error = %v (%T), want *nmerr.AttrPathConflict", err, err)
	}
}

func TestRemovePathPrunesEmptyParent(t *testing.T) {
	inner := docmodel.NewAttributeSet()
	inner.Values = append(inner.Values, docmodel.NewBinding("bar", docmodel.NewInt(1)))
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, docmodel.NewBinding("foo", inner))

	if err := RemovePath(set, segs("foo", "bar")); err != nil {
		t.Fatalf("RemovePath error: %v", err)
	}
	if len(set.Values) != 0 {
		t.Errorf("len(Values) = %d, want 0 (empty parent pruned)", len(set.Values))
	}
}

func TestRemovePathPartialOnAttrpathFormFails(t *testing.T) {
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, &docmodel.Binding{
		Segments: segs("foo", "bar", "baz"), Nested: true, Value: docmodel.NewInt(1),
	})
	err := RemovePath(set, segs("foo", "bar"))
	var km *nmerr.KeyMissing
	if !errors.As(err, &km) {
		t.Fatalf("error = %v (%T), want *nmerr.KeyMissing", err, err)
	}
}
