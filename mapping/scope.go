package mapping

import (
	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

// ScopeStack is stored outermost-first (spec.md §3.3); depth counts `@`
// characters, where 1 means innermost. scopeIndex converts that into a
// slice index counting from the end.
func scopeIndex(set *docmodel.AttributeSet, depth int) int {
	return len(set.ScopeStack) - depth
}

// EnsureInnermostScope returns the innermost let-scope's bindings slice,
// creating an empty layer first if none exists yet (spec.md §4.3:
// "Innermost scope is auto-created on assignment").
func EnsureInnermostScope(set *docmodel.AttributeSet) *[]*docmodel.Binding {
	if len(set.ScopeStack) == 0 {
		set.ScopeStack = append(set.ScopeStack, nil)
	}
	return &set.ScopeStack[len(set.ScopeStack)-1]
}

// OuterScope returns the bindings slice for the scope `depth` layers out
// (1 = innermost, 2 = next-outer, ...). Outer scopes are never
// auto-created: it fails with *nmerr.ScopeMissing if that layer doesn't
// already exist (spec.md §4.3).
func OuterScope(set *docmodel.AttributeSet, depth int) (*[]*docmodel.Binding, error) {
	idx := scopeIndex(set, depth)
	if depth <= 0 || idx < 0 || idx >= len(set.ScopeStack) {
		return nil, &nmerr.ScopeMissing{Depth: depth}
	}
	return &set.ScopeStack[idx], nil
}

// SetInScope assigns name=value within the scope `depth` layers out. For
// depth==1 the innermost layer is created on demand; any other depth must
// already exist.
func SetInScope(set *docmodel.AttributeSet, depth int, name string, value docmodel.Expr) error {
	var layer *[]*docmodel.Binding
	if depth == 1 {
		layer = EnsureInnermostScope(set)
	} else {
		l, err := OuterScope(set, depth)
		if err != nil {
			return err
		}
		layer = l
	}
	for _, b := range *layer {
		if b.Name() == name {
			b.Value = value
			return nil
		}
	}
	*layer = append(*layer, docmodel.NewBinding(name, value))
	return nil
}

// RemoveFromScope removes name from the scope `depth` layers out. When
// that layer becomes empty its `let ... in` wrapper is pruned from
// ScopeStack entirely (spec.md §4.3).
func RemoveFromScope(set *docmodel.AttributeSet, depth int, name string) error {
	layer, err := OuterScope(set, depth)
	if err != nil {
		return err
	}
	for i, b := range *layer {
		if b.Name() == name {
			*layer = append((*layer)[:i], (*layer)[i+1:]...)
			pruneEmptyScopes(set)
			return nil
		}
	}
	return &nmerr.KeyMissing{Key: name}
}

func pruneEmptyScopes(set *docmodel.AttributeSet) {
	kept := set.ScopeStack[:0]
	for _, layer := range set.ScopeStack {
		if len(layer) > 0 {
			kept = append(kept, layer)
		}
	}
	set.ScopeStack = kept
}
