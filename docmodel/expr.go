// Package docmodel is the round-trip fidelity layer: a typed, mutable
// document model sitting on top of the tree-sitter concrete syntax tree.
// Expr is a closed tagged union (spec.md §3.2); every variant owns its
// trivia and its semantic children, and knows how to Rebuild itself.
package docmodel

// TriState models a layout choice that can be left to the renderer, or
// pinned by a caller/test. Auto lets Rebuild decide from the structural
// heuristics in spec.md §4.2; On and Off override it unconditionally.
type TriState uint8

const (
	Auto TriState = iota
	On
	Off
)

// Expr is implemented by every node in the document model.
type Expr interface {
	// Rebuild serializes this node, its trivia, and its children back to
	// Nix source text.
	Rebuild() string
	// Before and After expose the node's leading/trailing trivia.
	Before() []Trivia
	After() []Trivia
	SetBefore([]Trivia)
	SetAfter([]Trivia)

	render(w *renderer)
	isExpr()
}

// AttrMember is implemented by the two kinds of attribute-set members:
// Binding and Inherit (spec.md §3.2, AttributeSet.values).
type AttrMember interface {
	Expr
	isAttrMember()
}

// ---------------------------------------------------------------------
// Primitive
// ---------------------------------------------------------------------

// PrimitiveKind discriminates the scalar Primitive carries.
type PrimitiveKind uint8

const (
	PrimNull PrimitiveKind = iota
	PrimBool
	PrimInt
	PrimFloat
	PrimString
)

// Primitive is a literal scalar: null, a bool, an int, a float, or a
// string. The rendered form is derived from the typed value, except for
// string literals parsed from source, whose text is kept in
// RawRepresentation.
type Primitive struct {
	triviaBase
	Kind    PrimitiveKind
	Bool    bool
	Int     int64
	Float   float64
	Str     string
	// RawRepresentation, when non-empty, is used verbatim instead of
	// re-escaping Str. The builder sets it for every parsed string literal,
	// double-quoted or multi-line (two single quotes).
	RawRepresentation string
}

func (*Primitive) isExpr() {}

// NewNull constructs the `null` literal.
func NewNull() *Primitive { return &Primitive{Kind: PrimNull} }

// NewBool constructs a boolean literal.
func NewBool(v bool) *Primitive { return &Primitive{Kind: PrimBool, Bool: v} }

// NewInt constructs an integer literal.
func NewInt(v int64) *Primitive { return &Primitive{Kind: PrimInt, Int: v} }

// NewFloat constructs a float literal.
func NewFloat(v float64) *Primitive { return &Primitive{Kind: PrimFloat, Float: v} }

// NewString constructs a double-quoted string literal; Rebuild escapes it.
func NewString(v string) *Primitive { return &Primitive{Kind: PrimString, Str: v} }

// ---------------------------------------------------------------------
// Identifier
// ---------------------------------------------------------------------

// ResolutionContext is the minimal view the document model needs of a
// lexical scope in order to give an Identifier a working Resolve/assign
// contract without docmodel importing the resolve package (spec.md §9:
// the back-reference is non-owning and resolvable by lookup, not a
// pointer that keeps the container alive). Package resolve implements it.
type ResolutionContext interface {
	Lookup(name string) (Expr, *Binding, bool)
}

// Identifier is a bare name: a reference (`foo`), or the name half of a
// Binding/Inherit/formal.
type Identifier struct {
	triviaBase
	Name string
	// ctx is attached by resolve.AttachContexts, which walks the whole
	// document; it is nil until then.
	ctx ResolutionContext
}

func (*Identifier) isExpr() {}

// NewIdentifier constructs a bare identifier reference.
func NewIdentifier(name string) *Identifier { return &Identifier{Name: name} }

// AttachContext binds the identifier's resolution context. Called by
// package resolve, never by user code directly.
func (id *Identifier) AttachContext(ctx ResolutionContext) { id.ctx = ctx }

// Context returns the identifier's resolution context, or nil if unattached.
func (id *Identifier) Context() ResolutionContext { return id.ctx }

// ---------------------------------------------------------------------
// NixPath
// ---------------------------------------------------------------------

// NixPath is a Nix path literal (`./foo`, `<nixpkgs>`), rendered verbatim.
type NixPath struct {
	triviaBase
	Raw string
}

func (*NixPath) isExpr() {}

// NewNixPath constructs a path literal from its raw source text.
func NewNixPath(raw string) *NixPath { return &NixPath{Raw: raw} }

// ---------------------------------------------------------------------
// NixList
// ---------------------------------------------------------------------

// NixList is a `[ ... ]` list literal.
type NixList struct {
	triviaBase
	Elements  []Expr
	Multiline TriState
	// Trailing holds trivia that sits inside the brackets but belongs to no
	// element — only possible when Elements is empty, e.g. `[ # a comment
	// ]` (spec.md §4.1: every trivia unit has exactly one owner, and an
	// empty container's own closing position is that owner of last resort).
	Trailing []Trivia
}

func (*NixList) isExpr() {}

// NewNixList constructs a list from elements, defaulting to automatic
// layout selection.
func NewNixList(elements ...Expr) *NixList {
	return &NixList{Elements: elements, Multiline: Auto}
}

// ---------------------------------------------------------------------
// AttributeSet
// ---------------------------------------------------------------------

// AttributeSet is a `{ ... }` or `rec { ... }` attribute set, and also
// stands in for the top-level document body when wrapped by one or more
// `let ... in` layers (spec.md §3.2/§3.3): ScopeStack then holds those
// layers, outermost first, rather than representing them as nested
// LetExpression values.
type AttributeSet struct {
	triviaBase
	Values     []AttrMember
	Recursive  bool
	Multiline  TriState
	ScopeStack [][]*Binding
	// Trailing holds trivia that sits inside the braces but belongs to no
	// member — only possible when Values is empty, e.g. `{ # a comment }`
	// (spec.md §4.1: every trivia unit has exactly one owner, and an empty
	// container's own closing position is that owner of last resort).
	Trailing []Trivia
}

func (*AttributeSet) isExpr() {}

// NewAttributeSet constructs an empty, non-recursive attribute set with
// automatic layout selection.
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{Multiline: Auto}
}

// ---------------------------------------------------------------------
// Binding
// ---------------------------------------------------------------------

// Binding is `name = value;` or, when Nested is true, the attrpath form
// `a.b.c = value;` (spec.md §3.3/§9: the two shapes are never normalized
// into one another on rebuild).
type Binding struct {
	triviaBase
	// Segments holds one entry for `name = value;`, more than one for an
	// attrpath binding. Bare segments are plain identifier text; quoted
	// segments retain their original (unescaped) string content and are
	// re-quoted on rebuild.
	Segments []PathSegment
	Nested   bool
	Value    Expr
}

func (*Binding) isExpr()       {}
func (*Binding) isAttrMember() {}

// Name returns the first attrpath segment, used for key lookup by
// spec.md §3.3 ("key lookup is by first-segment equality").
func (b *Binding) Name() string {
	if len(b.Segments) == 0 {
		return ""
	}
	return b.Segments[0].Text
}

// NewBinding constructs a single-segment (non-attrpath) binding.
func NewBinding(name string, value Expr) *Binding {
	return &Binding{Segments: []PathSegment{BareSegment(name)}, Value: value}
}

// PathSegment is one component of an attrpath: either a bare identifier or
// a quoted string (spec.md §4.3 "Attrpath semantics").
type PathSegment struct {
	Text   string
	Quoted bool
}

// BareSegment constructs an unquoted identifier segment.
func BareSegment(name string) PathSegment { return PathSegment{Text: name} }

// QuotedSegment constructs a quoted segment, used when the text doesn't
// match the bare-identifier grammar.
func QuotedSegment(name string) PathSegment { return PathSegment{Text: name, Quoted: true} }

// ---------------------------------------------------------------------
// Inherit
// ---------------------------------------------------------------------

// Inherit is `inherit a b;` or `inherit (expr) a b;`.
type Inherit struct {
	triviaBase
	Names          []*Identifier
	FromExpression Expr
}

func (*Inherit) isExpr()       {}
func (*Inherit) isAttrMember() {}

// NewInherit constructs an inherit clause for the given names.
func NewInherit(names ...string) *Inherit {
	ids := make([]*Identifier, len(names))
	for i, n := range names {
		ids[i] = NewIdentifier(n)
	}
	return &Inherit{Names: ids}
}

// ---------------------------------------------------------------------
// LetExpression
// ---------------------------------------------------------------------

// LetExpression is a `let ... in value` that is not folded into
// AttributeSet.ScopeStack: any `let` below the document root, or a top-level
// `let` chain whose innermost body is not an attribute set.
type LetExpression struct {
	triviaBase
	LocalVariables []*Binding
	Value          Expr
}

func (*LetExpression) isExpr() {}

// ---------------------------------------------------------------------
// WithStatement
// ---------------------------------------------------------------------

// WithStatement is `with environment; body`.
type WithStatement struct {
	triviaBase
	Environment Expr
	Body        Expr
}

func (*WithStatement) isExpr() {}

// ---------------------------------------------------------------------
// IfExpression
// ---------------------------------------------------------------------

// IfExpression is `if condition then consequence else alternative`.
type IfExpression struct {
	triviaBase
	Condition   Expr
	Consequence Expr
	Alternative Expr
}

func (*IfExpression) isExpr() {}

// ---------------------------------------------------------------------
// Select
// ---------------------------------------------------------------------

// Select is `expression.attribute` with an optional `or default`.
type Select struct {
	triviaBase
	Expression Expr
	Attribute  []PathSegment
	Default    Expr
}

func (*Select) isExpr() {}

// ---------------------------------------------------------------------
// FunctionDefinition
// ---------------------------------------------------------------------

// Formal is one parameter of a set-pattern function argument
// (`{ a, b ? 1, ... }:`).
type Formal struct {
	Name    string
	Default Expr
}

// FunctionDefinition is a lambda: `x: output` or `{ a, b }: output`,
// optionally with an `@`-bound name and/or an ellipsis.
type FunctionDefinition struct {
	triviaBase
	// SimpleArg is set for the `x:` form; nil for the set-pattern form.
	SimpleArg *Identifier
	// Formals is set for the `{ a, b }:` form; nil for the simple form.
	Formals     []Formal
	HasEllipses bool
	// BoundName is the optional `@name` binding alongside a set pattern.
	BoundName *Identifier
	Output    Expr
}

func (*FunctionDefinition) isExpr() {}

// ---------------------------------------------------------------------
// FunctionCall
// ---------------------------------------------------------------------

// FunctionCall is `name argument`. Nix application is left-associative and
// single-argument; curried calls are represented as nested FunctionCalls.
type FunctionCall struct {
	triviaBase
	Name      Expr
	Argument  Expr
	Recursive bool
}

func (*FunctionCall) isExpr() {}

// ---------------------------------------------------------------------
// BinaryExpression / UnaryExpression
// ---------------------------------------------------------------------

// BinaryExpression is `left operator right`.
type BinaryExpression struct {
	triviaBase
	Left     Expr
	Right    Expr
	Operator string
}

func (*BinaryExpression) isExpr() {}

// UnaryExpression is `operator expression` (`-x`, `!x`).
type UnaryExpression struct {
	triviaBase
	Operator   string
	Expression Expr
}

func (*UnaryExpression) isExpr() {}

// ---------------------------------------------------------------------
// Assertion
// ---------------------------------------------------------------------

// Assertion is `assert condition; body`.
type Assertion struct {
	triviaBase
	Condition Expr
	Body      Expr
}

func (*Assertion) isExpr() {}

// ---------------------------------------------------------------------
// Parenthesized
// ---------------------------------------------------------------------

// Parenthesized is `( inner )`.
type Parenthesized struct {
	triviaBase
	Inner Expr
}

func (*Parenthesized) isExpr() {}

// ---------------------------------------------------------------------
// SourceFile
// ---------------------------------------------------------------------

// SourceFile is the document root: exactly one top-level expression plus
// file-level leading/trailing trivia (spec.md §3.2/§3.3).
type SourceFile struct {
	triviaBase
	Expr Expr
}

func (*SourceFile) isExpr() {}

// NewSourceFile wraps a top-level expression as a document.
func NewSourceFile(expr Expr) *SourceFile { return &SourceFile{Expr: expr} }
