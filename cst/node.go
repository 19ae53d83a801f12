package cst

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Point is a zero-based line/column source position.
type Point struct {
	Line, Column int
}

// Node is a typed facade over a tree-sitter node plus the source bytes it
// was parsed from, so callers can ask for text and spans without reaching
// into the underlying binding.
type Node struct {
	raw    *sitter.Node
	source []byte
}

func wrap(raw *sitter.Node, source []byte) *Node {
	if raw == nil {
		return nil
	}
	return &Node{raw: raw, source: source}
}

// Kind returns the translated node kind.
func (n *Node) Kind() Kind { return KindFromGrammar(n.raw.Kind()) }

// GrammarType returns the raw tree-sitter node-type string, for diagnostics
// involving a kind the translation table doesn't yet recognize.
func (n *Node) GrammarType() string { return n.raw.Kind() }

// Text returns the node's source slice.
func (n *Node) Text() string {
	return string(n.source[n.raw.StartByte():n.raw.EndByte()])
}

// StartByte and EndByte give the half-open byte range of the node in source.
func (n *Node) StartByte() uint { return n.raw.StartByte() }
func (n *Node) EndByte() uint   { return n.raw.EndByte() }

// StartPoint and EndPoint give line/column positions, used for ParseError.
func (n *Node) StartPoint() Point {
	p := n.raw.StartPosition()
	return Point{Line: int(p.Row), Column: int(p.Column)}
}

func (n *Node) EndPoint() Point {
	p := n.raw.EndPosition()
	return Point{Line: int(p.Row), Column: int(p.Column)}
}

// IsNamed reports whether this is a named grammar node, as opposed to an
// anonymous token like `;` or `(`.
func (n *Node) IsNamed() bool { return n.raw.IsNamed() }

// IsError reports whether this node itself is a grammar ERROR node.
func (n *Node) IsError() bool { return n.raw.IsError() }

// HasError reports whether this node or any descendant is erroneous.
func (n *Node) HasError() bool { return n.raw.HasError() }

// IsMissing reports whether the parser synthesized this node to recover
// from a syntax error (e.g. an elided closing brace).
func (n *Node) IsMissing() bool { return n.raw.IsMissing() }

// ChildCount returns the number of children, named and anonymous.
func (n *Node) ChildCount() int { return int(n.raw.ChildCount()) }

// Child returns the i'th child, named or anonymous, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= n.ChildCount() {
		return nil
	}
	return wrap(n.raw.Child(uint(i)), n.source)
}

// NamedChildCount returns the number of named children.
func (n *Node) NamedChildCount() int { return int(n.raw.NamedChildCount()) }

// NamedChild returns the i'th named child, or nil if out of range.
func (n *Node) NamedChild(i int) *Node {
	if i < 0 || i >= n.NamedChildCount() {
		return nil
	}
	return wrap(n.raw.NamedChild(uint(i)), n.source)
}

// NamedChildren returns all named children in order.
func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, n.NamedChildCount())
	for i := 0; i < n.NamedChildCount(); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// Children returns every child, named and anonymous, in source order. The
// trivia extractor needs the anonymous tokens too (commas, semicolons,
// braces) to know exactly where whitespace and comments sit relative to
// them.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, n.ChildCount())
	for i := 0; i < n.ChildCount(); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// ChildByFieldName returns the child tree-sitter associated with a grammar
// field name (e.g. "name", "value", "body"), or nil if absent.
func (n *Node) ChildByFieldName(field string) *Node {
	return wrap(n.raw.ChildByFieldName(field), n.source)
}
