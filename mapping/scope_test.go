package mapping

import (
	"errors"
	"testing"

	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

func TestSetInScopeAutoCreatesInnermost(t *testing.T) {
	set := docmodel.NewAttributeSet()
	if err := SetInScope(set, 1, "x", docmodel.NewInt(1)); err != nil {
		t.Fatalf("SetInScope error: %v", err)
	}
	if len(set.ScopeStack) != 1 {
		t.Fatalf("len(ScopeStack) = %d, want 1", len(set.ScopeStack))
	}
	if got := set.Rebuild(); got != "let\n  x = 1;\nin\n{ }" {
		t.Errorf("Rebuild() = %q", got)
	}
}

func TestSetInScopeOuterMustExist(t *testing.T) {
	set := docmodel.NewAttributeSet()
	err := SetInScope(set, 2, "x", docmodel.NewInt(1))
	var sm *nmerr.ScopeMissing
	if !errors.As(err, &sm) {
		t.Fatalf("error = %v (%T), want *nmerr.ScopeMissing", err, err)
	}
}

func TestRemoveFromScopePrunesEmptyLayer(t *testing.T) {
	set := docmodel.NewAttributeSet()
	set.ScopeStack = [][]*docmodel.Binding{{docmodel.NewBinding("x", docmodel.NewInt(1))}}
	if err := RemoveFromScope(set, 1, "x"); err != nil {
		t.Fatalf("RemoveFromScope error: %v", err)
	}
	if len(set.ScopeStack) != 0 {
		t.Errorf("len(ScopeStack) = %d, want 0 after pruning", len(set.ScopeStack))
	}
}

func TestOuterScopeDepthOrdering(t *testing.T) {
	// ScopeStack is outermost-first; depth 1 is innermost.
	outer := []*docmodel.Binding{docmodel.NewBinding("outer", docmodel.NewInt(1))}
	inner := []*docmodel.Binding{docmodel.NewBinding("inner", docmodel.NewInt(2))}
	set := docmodel.NewAttributeSet()
	set.ScopeStack = [][]*docmodel.Binding{outer, inner}

	layer, err := OuterScope(set, 1)
	if err != nil {
		t.Fatalf("OuterScope(1) error: %v", err)
	}
	if (*layer)[0].Name() != "inner" {
		t.Errorf("OuterScope(1) = %q, want innermost layer", (*layer)[0].Name())
	}

	layer, err = OuterScope(set, 2)
	if err != nil {
		t.Fatalf("OuterScope(2) error: %v", err)
	}
	if (*layer)[0].Name() != "outer" {
		t.Errorf("OuterScope(2) = %q, want outermost layer", (*layer)[0].Name())
	}
}
