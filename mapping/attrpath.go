package mapping

import (
	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

// SetPath walks an attrpath's segments from set, creating attrpath-form
// intermediate bindings as needed, without ever converting an existing
// brace-nested attribute set into attrpath form or vice versa — pre-
// existing layout always wins (spec.md §4.3).
func SetPath(set *docmodel.AttributeSet, segments []docmodel.PathSegment, value docmodel.Expr) error {
	if len(segments) == 0 {
		return &nmerr.InvalidSegment{Reason: "empty attrpath"}
	}
	head := segments[0]
	rest := segments[1:]

	b := findBindingSeg(set, head.Text)
	if b == nil {
		appendNewBinding(set, append([]docmodel.PathSegment{head}, rest...), value)
		return nil
	}

	if !b.Nested {
		if len(rest) == 0 {
			b.Value = value
			return nil
		}
		inner, ok := b.Value.(*docmodel.AttributeSet)
		if !ok {
			return &nmerr.AttrPathConflict{Path: head.Text}
		}
		return SetPath(inner, rest, value)
	}

	// Existing attrpath-form binding: overwrite only on an exact remainder
	// match; anything else becomes a new sibling binding rather than a
	// structural merge (spec.md §8 scenario 6).
	if pathEqual(b.Segments[1:], rest) {
		b.Value = value
		return nil
	}
	appendNewBinding(set, append([]docmodel.PathSegment{head}, rest...), value)
	return nil
}

// RemovePath removes the leaf named by segments. When the leaf's immediate
// parent is a brace-nested attribute set that becomes empty, the parent
// binding is pruned too, recursively (spec.md §4.3).
func RemovePath(set *docmodel.AttributeSet, segments []docmodel.PathSegment) error {
	if len(segments) == 0 {
		return &nmerr.InvalidSegment{Reason: "empty attrpath"}
	}
	head := segments[0]
	rest := segments[1:]

	b := findBindingSeg(set, head.Text)
	if b == nil {
		return &nmerr.KeyMissing{Key: head.Text}
	}

	if !b.Nested {
		if len(rest) == 0 {
			return removeBindingByPointer(set, b)
		}
		inner, ok := b.Value.(*docmodel.AttributeSet)
		if !ok {
			return &nmerr.AttrPathConflict{Path: head.Text}
		}
		if err := RemovePath(inner, rest); err != nil {
			return err
		}
		if len(inner.Values) == 0 {
			return removeBindingByPointer(set, b)
		}
		return nil
	}

	if pathEqual(b.Segments[1:], rest) {
		return removeBindingByPointer(set, b)
	}
	return &nmerr.KeyMissing{Key: head.Text}
}

func findBindingSeg(set *docmodel.AttributeSet, head string) *docmodel.Binding {
	for _, m := range set.Values {
		if b, ok := m.(*docmodel.Binding); ok && b.Name() == head {
			return b
		}
	}
	return nil
}

func appendNewBinding(set *docmodel.AttributeSet, segs []docmodel.PathSegment, value docmodel.Expr) {
	nb := &docmodel.Binding{Segments: segs, Nested: len(segs) > 1, Value: value}
	if resolveMultiline(set) {
		detachClosingBreak(set)
		nb.SetBefore([]docmodel.Trivia{docmodel.NewLineBreak()})
	}
	set.Values = append(set.Values, nb)
}

func removeBindingByPointer(set *docmodel.AttributeSet, target *docmodel.Binding) error {
	for i, m := range set.Values {
		if b, ok := m.(*docmodel.Binding); ok && b == target {
			set.Values = append(set.Values[:i], set.Values[i+1:]...)
			return nil
		}
	}
	return &nmerr.KeyMissing{Key: target.Name()}
}

func pathEqual(a, b []docmodel.PathSegment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text {
			return false
		}
	}
	return true
}
