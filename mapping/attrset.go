// Package mapping implements the key→binding semantics spec.md §4.3
// layers on top of docmodel.AttributeSet and docmodel.SourceFile: get/set/
// remove by attrpath, attrpath splitting and merging, and scope selectors
// for `let` layers.
package mapping

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

// Get returns the value bound to key's first attrpath segment, or
// *nmerr.KeyMissing if no such binding exists (spec.md §4.3).
func Get(set *docmodel.AttributeSet, key string) (docmodel.Expr, error) {
	if b := findBinding(set, key); b != nil {
		return b.Value, nil
	}
	return nil, &nmerr.KeyMissing{Key: key}
}

// Set replaces the value of an existing binding matching key's first
// segment, or appends a new single-segment binding when none exists. The
// old value's trivia is discarded; the binding's own trivia (and its
// position in source order) is preserved (spec.md §4.3).
func Set(set *docmodel.AttributeSet, key string, value docmodel.Expr) {
	if b := findBinding(set, key); b != nil {
		b.Value = value
		return
	}
	b := docmodel.NewBinding(key, value)
	if resolveMultiline(set) {
		detachClosingBreak(set)
		b.SetBefore([]docmodel.Trivia{docmodel.NewLineBreak()})
	}
	set.Values = append(set.Values, b)
}

// Remove detaches the binding matching key's first segment. It reports
// *nmerr.KeyMissing if key is absent. Removal from a `let` scope layer, and
// pruning of a layer left empty, is done by RemoveFromScope instead.
func Remove(set *docmodel.AttributeSet, key string) error {
	for i, m := range set.Values {
		b, ok := m.(*docmodel.Binding)
		if !ok || b.Name() != key {
			continue
		}
		set.Values = append(set.Values[:i], set.Values[i+1:]...)
		return nil
	}
	return &nmerr.KeyMissing{Key: key}
}

// Bindings returns the attribute set's members in source order, matching
// spec.md §4.3's `__iter__`.
func Bindings(set *docmodel.AttributeSet) []docmodel.AttrMember {
	return append([]docmodel.AttrMember(nil), set.Values...)
}

// Scope returns an ordered-map projection of the attribute set's own direct
// members (Values), keyed by first segment, read-through only: mutating the
// returned map does not affect the document. The `let` layers in ScopeStack
// are not part of the projection; they are reached through EnsureInnermostScope
// and OuterScope. Inherited names are included with a nil value, since their bound
// expression isn't known without following the inherit (or its `from`)
// through the resolver.
func Scope(set *docmodel.AttributeSet) *orderedmap.OrderedMap[string, docmodel.Expr] {
	m := orderedmap.New[string, docmodel.Expr]()
	for _, member := range set.Values {
		switch v := member.(type) {
		case *docmodel.Binding:
			m.Set(v.Name(), v.Value)
		case *docmodel.Inherit:
			for _, id := range v.Names {
				m.Set(id.Name, nil)
			}
		}
	}
	return m
}

func findBinding(set *docmodel.AttributeSet, key string) *docmodel.Binding {
	for _, m := range set.Values {
		if b, ok := m.(*docmodel.Binding); ok && b.Name() == key {
			return b
		}
	}
	return nil
}

// detachClosingBreak strips a trailing LineBreak/BlankLine from set's
// current last member, if any. That trivia represents the gap between the
// member and the closing brace; once a new member is appended after it, the
// new member's own leading break takes over that job and the stale one
// would otherwise render as an extra blank line.
func detachClosingBreak(set *docmodel.AttributeSet) {
	if len(set.Values) == 0 {
		return
	}
	last := set.Values[len(set.Values)-1]
	after := last.After()
	for len(after) > 0 {
		kind := after[len(after)-1].Kind
		if kind != docmodel.LineBreak && kind != docmodel.BlankLine {
			break
		}
		after = after[:len(after)-1]
	}
	last.SetAfter(after)
}

func resolveMultiline(set *docmodel.AttributeSet) bool {
	switch set.Multiline {
	case docmodel.On:
		return true
	case docmodel.Off:
		return false
	default:
		return len(set.Values) > 0
	}
}
