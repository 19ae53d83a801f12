package docmodel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbro/nix-manipulator/cst"
	"github.com/cbro/nix-manipulator/nmerr"
)

// BuildFromCST walks a parsed concrete syntax tree and produces the
// corresponding typed, mutable SourceFile. This is the trivia extractor and
// the expression-model builder (spec.md §2 components 2 and 3) rolled into
// one pass: every semantic node is classified into its Expr variant and
// immediately gets its Before/After trivia attached, so there is never a
// point where a node exists without a trivia owner decided for it.
func BuildFromCST(tree *cst.Tree) (*SourceFile, error) {
	b := &builder{source: tree.Source()}
	root := tree.Root()

	owners, befores, afters, _ := b.triviaSplit(root, isSemanticNode)
	if len(owners) != 1 {
		return nil, &nmerr.ParseError{Message: fmt.Sprintf("expected exactly one top-level expression, found %d", len(owners))}
	}

	expr, err := b.buildExpr(owners[0])
	if err != nil {
		return nil, err
	}

	sf := &SourceFile{Expr: expr}
	sf.SetBefore(befores[0])
	sf.SetAfter(afters[0])
	foldScopeStack(sf)
	return sf, nil
}

// Parse is the library's top-level convenience entry point: parse Nix
// source text straight into a mutable document (spec.md §6.1).
func Parse(source []byte) (*SourceFile, error) {
	tree, err := cst.Parse(source)
	if err != nil {
		return nil, err
	}
	return BuildFromCST(tree)
}

// ParseFile reads, parses, and builds a document from a file on disk.
func ParseFile(path string) (*SourceFile, error) {
	tree, err := cst.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return BuildFromCST(tree)
}

type builder struct {
	source []byte
}

func isSemanticNode(n *cst.Node) bool {
	return n.IsNamed() && n.Kind() != cst.KindComment
}

// triviaSplit partitions a CST node's children into the semantic owners in
// source order, plus that owner's Before and After trivia lists. Anonymous
// tokens (`;`, `{`, `=`, keywords, ...) never own trivia themselves and are
// transparent to it: a comment trivia unit survives a run of anonymous
// tokens and attaches to whichever real owner comes next; an inline
// comment immediately following a node attaches as that node's After,
// everything else attaches as the following node's Before (spec.md §4.1).
// Trivia after the last owner is appended to that owner's After. If the
// parent has no owner at all, the accumulated trivia is returned as orphaned
// rather than silently discarded — the caller decides how a container with
// no semantic children (e.g. `[ # only a comment\n]`) attributes it.
func (b *builder) triviaSplit(parent *cst.Node, isSemantic func(*cst.Node) bool) (owners []*cst.Node, befores, afters [][]Trivia, orphaned []Trivia) {
	var pending []Trivia
	var lastEnd uint
	haveLast := false
	lastOwnerIdx := -1

	flush := func(upTo uint) {
		if haveLast {
			pending = append(pending, b.gapTrivia(lastEnd, upTo)...)
		}
	}

	for _, c := range parent.Children() {
		if c == nil {
			continue
		}
		switch {
		case c.Kind() == cst.KindComment:
			flush(c.StartByte())
			inline := haveLast && !b.hasNewline(lastEnd, c.StartByte())
			pending = append(pending, b.commentTrivia(c, inline))
			lastEnd, haveLast = c.EndByte(), true
		case isSemantic(c):
			flush(c.StartByte())
			before, after := splitPendingAtBoundary(pending)
			if lastOwnerIdx >= 0 {
				afters[lastOwnerIdx] = append(afters[lastOwnerIdx], after...)
			}
			owners = append(owners, c)
			befores = append(befores, before)
			afters = append(afters, nil)
			lastOwnerIdx = len(owners) - 1
			pending = nil
			lastEnd, haveLast = c.EndByte(), true
		default:
			flush(c.StartByte())
			// A pure whitespace gap around an anonymous token carries no
			// information worth keeping, but a comment must survive to
			// attach to whatever owner (or orphaned-trivia slot) follows.
			if !hasCommentTrivia(pending) {
				pending = nil
			}
			lastEnd, haveLast = c.EndByte(), true
		}
	}
	flush(parent.EndByte())
	if lastOwnerIdx >= 0 {
		afters[lastOwnerIdx] = append(afters[lastOwnerIdx], pending...)
		return owners, befores, afters, nil
	}
	return owners, befores, afters, pending
}

// hasCommentTrivia reports whether ts contains an actual comment, as
// opposed to only layout trivia (LineBreak/BlankLine).
func hasCommentTrivia(ts []Trivia) bool {
	for _, t := range ts {
		if t.Kind == Comment || t.Kind == MultilineComment {
			return true
		}
	}
	return false
}

// splitPendingAtBoundary decides which pending trivia units trail the
// previous owner versus lead the next one: a single inline comment found
// first in the run belongs to the previous owner (spec.md §3.1); anything
// else — including the blank line or line break that follows it — leads
// the next owner.
func splitPendingAtBoundary(pending []Trivia) (before, after []Trivia) {
	if len(pending) > 0 && pending[0].Kind == Comment && pending[0].Inline {
		return pending[1:], pending[:1]
	}
	return pending, nil
}

// gapTrivia converts the raw byte gap between two tokens into LineBreak or
// BlankLine units. Alignment-only spaces are discarded; runs of two or more
// line breaks collapse to a single BlankLine (spec.md §4.1).
func (b *builder) gapTrivia(from, to uint) []Trivia {
	n := strings.Count(string(b.source[from:to]), "\n")
	switch {
	case n == 0:
		return nil
	case n == 1:
		return []Trivia{NewLineBreak()}
	default:
		return []Trivia{NewBlankLine()}
	}
}

func (b *builder) hasNewline(from, to uint) bool {
	return strings.ContainsRune(string(b.source[from:to]), '\n')
}

func (b *builder) commentTrivia(c *cst.Node, inline bool) Trivia {
	raw := c.Text()
	if strings.HasPrefix(raw, "/*") {
		body := strings.TrimSuffix(strings.TrimPrefix(raw, "/*"), "*/")
		return BlockComment(strings.TrimSpace(body))
	}
	body := strings.TrimPrefix(raw, "#")
	body = strings.TrimPrefix(body, " ")
	return LineComment(body, inline)
}

// buildExpr classifies a semantic CST node into its Expr variant and
// recurses into its children.
func (b *builder) buildExpr(n *cst.Node) (Expr, error) {
	switch n.Kind() {
	case cst.KindInteger:
		v, err := strconv.ParseInt(strings.TrimSpace(n.Text()), 10, 64)
		if err != nil {
			return nil, &nmerr.ParseError{Message: fmt.Sprintf("invalid integer literal %q", n.Text())}
		}
		return &Primitive{Kind: PrimInt, Int: v}, nil

	case cst.KindFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(n.Text()), 64)
		if err != nil {
			return nil, &nmerr.ParseError{Message: fmt.Sprintf("invalid float literal %q", n.Text())}
		}
		return &Primitive{Kind: PrimFloat, Float: v}, nil

	case cst.KindString, cst.KindIndentedString:
		// Preserve the literal text verbatim in RawRepresentation; Str is
		// left empty for parsed strings.
		return &Primitive{Kind: PrimString, RawRepresentation: n.Text()}, nil

	case cst.KindIdentifier:
		name := strings.TrimSpace(n.Text())
		switch name {
		case "null":
			return &Primitive{Kind: PrimNull}, nil
		case "true":
			return &Primitive{Kind: PrimBool, Bool: true}, nil
		case "false":
			return &Primitive{Kind: PrimBool, Bool: false}, nil
		}
		return NewIdentifier(name), nil

	case cst.KindPath, cst.KindHPath, cst.KindSPath, cst.KindURI:
		return NewNixPath(n.Text()), nil

	case cst.KindList:
		return b.buildList(n)

	case cst.KindAttrSet:
		return b.buildAttrSet(n)

	case cst.KindLet:
		return b.buildLet(n)

	case cst.KindWith:
		return b.buildWith(n)

	case cst.KindIf:
		return b.buildIf(n)

	case cst.KindAssert:
		return b.buildAssert(n)

	case cst.KindSelect:
		return b.buildSelect(n)

	case cst.KindApply:
		return b.buildApply(n)

	case cst.KindFunction:
		return b.buildFunction(n)

	case cst.KindBinaryExpr, cst.KindHasAttr:
		return b.buildBinary(n)

	case cst.KindUnaryExpr:
		return b.buildUnary(n)

	case cst.KindParenthesized:
		return b.buildParenthesized(n)

	default:
		return nil, &nmerr.ParseError{
			Line:    n.StartPoint().Line + 1,
			Column:  n.StartPoint().Column + 1,
			Message: fmt.Sprintf("unsupported node kind %s (%s)", n.Kind(), n.GrammarType()),
		}
	}
}

func (b *builder) buildChildExpr(n *cst.Node) (Expr, []Trivia, []Trivia, error) {
	// Used when a single child needs its own trivia recombined onto the
	// parent-relative position; most callers instead go through
	// triviaSplit so this only handles leaf recursion bookkeeping.
	e, err := b.buildExpr(n)
	if err != nil {
		return nil, nil, nil, err
	}
	return e, e.Before(), e.After(), nil
}

func (b *builder) buildList(n *cst.Node) (Expr, error) {
	owners, befores, afters, orphaned := b.triviaSplit(n, isSemanticNode)
	list := &NixList{Multiline: Auto}
	for i, o := range owners {
		el, err := b.buildExpr(o)
		if err != nil {
			return nil, err
		}
		el.SetBefore(befores[i])
		el.SetAfter(afters[i])
		list.Elements = append(list.Elements, el)
	}
	list.Trailing = orphaned
	return list, nil
}

// bindingContainer returns the node whose direct children are binding/
// inherit nodes: either n itself, or its binding_set child if the grammar
// nests one (tree-sitter-nix has done both across versions).
func bindingContainer(n *cst.Node) *cst.Node {
	for _, c := range n.NamedChildren() {
		if c.Kind() == cst.KindBindingSet {
			return c
		}
	}
	return n
}

func isBindingMember(n *cst.Node) bool {
	return n.Kind() == cst.KindBinding || n.Kind() == cst.KindInherit
}

func (b *builder) buildAttrSet(n *cst.Node) (Expr, error) {
	// A parsed set keeps the layout it was written in: On when its source
	// spans several lines, Off when it sits on one line.
	set := &AttributeSet{Multiline: Off}
	if strings.Contains(n.Text(), "\n") {
		set.Multiline = On
	}
	for _, c := range n.Children() {
		if !c.IsNamed() && c.GrammarType() == "rec" {
			set.Recursive = true
		}
	}

	container := bindingContainer(n)
	owners, befores, afters, orphaned := b.triviaSplit(container, isBindingMember)
	for i, o := range owners {
		member, err := b.buildAttrMember(o)
		if err != nil {
			return nil, err
		}
		member.SetBefore(befores[i])
		member.SetAfter(afters[i])
		set.Values = append(set.Values, member)
	}
	set.Trailing = orphaned
	return set, nil
}

func (b *builder) buildAttrMember(n *cst.Node) (AttrMember, error) {
	switch n.Kind() {
	case cst.KindBinding:
		return b.buildBinding(n)
	case cst.KindInherit:
		return b.buildInherit(n)
	default:
		return nil, &nmerr.ParseError{Message: fmt.Sprintf("expected binding or inherit, got %s", n.Kind())}
	}
}

func (b *builder) buildBinding(n *cst.Node) (*Binding, error) {
	named := n.NamedChildren()
	if len(named) < 2 {
		return nil, &nmerr.ParseError{Message: "malformed binding"}
	}
	segs, err := b.buildAttrPath(named[0])
	if err != nil {
		return nil, err
	}
	value, err := b.buildExpr(named[len(named)-1])
	if err != nil {
		return nil, err
	}
	return &Binding{Segments: segs, Nested: len(segs) > 1, Value: value}, nil
}

func (b *builder) buildAttrPath(n *cst.Node) ([]PathSegment, error) {
	if n.Kind() != cst.KindAttrPath {
		// A bare attr/identifier used directly as a one-segment path.
		return []PathSegment{segmentFromAttrNode(n)}, nil
	}
	var segs []PathSegment
	for _, c := range n.NamedChildren() {
		segs = append(segs, segmentFromAttrNode(c))
	}
	return segs, nil
}

func segmentFromAttrNode(n *cst.Node) PathSegment {
	text := n.Text()
	if strings.HasPrefix(text, "\"") {
		return QuotedSegment(unquoteSegment(text))
	}
	return BareSegment(text)
}

func unquoteSegment(raw string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "\""), "\"")
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			b.WriteByte(inner[i])
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

func (b *builder) buildInherit(n *cst.Node) (*Inherit, error) {
	inh := &Inherit{}
	for _, c := range n.NamedChildren() {
		if c.Kind() == cst.KindInheritFrom {
			inner := c.NamedChildren()
			if len(inner) != 1 {
				return nil, &nmerr.ParseError{Message: "malformed inherit-from clause"}
			}
			from, err := b.buildExpr(inner[0])
			if err != nil {
				return nil, err
			}
			inh.FromExpression = from
			continue
		}
		inh.Names = append(inh.Names, NewIdentifier(c.Text()))
	}
	return inh, nil
}

func (b *builder) buildLet(n *cst.Node) (Expr, error) {
	container := bindingContainer(n)
	owners, befores, afters, orphaned := b.triviaSplit(container, func(c *cst.Node) bool { return c.Kind() == cst.KindBinding })
	if len(owners) == 0 && hasCommentTrivia(orphaned) {
		return nil, &nmerr.TriviaUnownedError{Detail: "comment in an empty let-binding list"}
	}
	var bodyNode *cst.Node
	for _, c := range n.NamedChildren() {
		if c.Kind() != cst.KindBinding && c.Kind() != cst.KindBindingSet {
			bodyNode = c
		}
	}
	if bodyNode == nil {
		return nil, &nmerr.ParseError{Message: "let-expression missing body"}
	}

	let := &LetExpression{}
	for i, o := range owners {
		bind, err := b.buildBinding(o)
		if err != nil {
			return nil, err
		}
		bind.SetBefore(befores[i])
		bind.SetAfter(afters[i])
		let.LocalVariables = append(let.LocalVariables, bind)
	}
	value, err := b.buildExpr(bodyNode)
	if err != nil {
		return nil, err
	}
	let.Value = value
	return let, nil
}

func (b *builder) buildWith(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) != 2 {
		return nil, &nmerr.ParseError{Message: "malformed with-expression"}
	}
	env, err := b.buildExpr(named[0])
	if err != nil {
		return nil, err
	}
	body, err := b.buildExpr(named[1])
	if err != nil {
		return nil, err
	}
	return &WithStatement{Environment: env, Body: body}, nil
}

func (b *builder) buildIf(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) != 3 {
		return nil, &nmerr.ParseError{Message: "malformed if-expression"}
	}
	cond, err := b.buildExpr(named[0])
	if err != nil {
		return nil, err
	}
	cons, err := b.buildExpr(named[1])
	if err != nil {
		return nil, err
	}
	alt, err := b.buildExpr(named[2])
	if err != nil {
		return nil, err
	}
	return &IfExpression{Condition: cond, Consequence: cons, Alternative: alt}, nil
}

func (b *builder) buildAssert(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) != 2 {
		return nil, &nmerr.ParseError{Message: "malformed assert-expression"}
	}
	cond, err := b.buildExpr(named[0])
	if err != nil {
		return nil, err
	}
	body, err := b.buildExpr(named[1])
	if err != nil {
		return nil, err
	}
	return &Assertion{Condition: cond, Body: body}, nil
}

func (b *builder) buildSelect(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) < 2 {
		return nil, &nmerr.ParseError{Message: "malformed select-expression"}
	}
	expr, err := b.buildExpr(named[0])
	if err != nil {
		return nil, err
	}
	segs, err := b.buildAttrPath(named[1])
	if err != nil {
		return nil, err
	}
	sel := &Select{Expression: expr, Attribute: segs}
	if len(named) >= 3 {
		def, err := b.buildExpr(named[2])
		if err != nil {
			return nil, err
		}
		sel.Default = def
	}
	return sel, nil
}

func (b *builder) buildApply(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) != 2 {
		return nil, &nmerr.ParseError{Message: "malformed function application"}
	}
	fn, err := b.buildExpr(named[0])
	if err != nil {
		return nil, err
	}
	arg, err := b.buildExpr(named[1])
	if err != nil {
		return nil, err
	}
	return &FunctionCall{Name: fn, Argument: arg}, nil
}

func (b *builder) buildFunction(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) != 2 && len(named) != 3 {
		return nil, &nmerr.ParseError{Message: "malformed function-definition"}
	}
	fn := &FunctionDefinition{}
	if len(named) == 3 {
		// `{ ... }@name: body` or `name@{ ... }: body`: the identifier beside
		// the formals is the bound name.
		switch {
		case named[0].Kind() == cst.KindFormals && named[1].Kind() == cst.KindIdentifier:
			fn.BoundName = NewIdentifier(named[1].Text())
			named = []*cst.Node{named[0], named[2]}
		case named[0].Kind() == cst.KindIdentifier && named[1].Kind() == cst.KindFormals:
			fn.BoundName = NewIdentifier(named[0].Text())
			named = named[1:]
		default:
			return nil, &nmerr.ParseError{Message: "malformed function-definition"}
		}
	}
	switch named[0].Kind() {
	case cst.KindIdentifier:
		fn.SimpleArg = NewIdentifier(named[0].Text())
	case cst.KindFormals:
		for _, f := range named[0].NamedChildren() {
			if f.Kind() == cst.KindEllipses {
				fn.HasEllipses = true
				continue
			}
			formal := Formal{}
			fc := f.NamedChildren()
			if len(fc) == 0 {
				formal.Name = f.Text()
			} else {
				formal.Name = fc[0].Text()
				if len(fc) > 1 {
					def, err := b.buildExpr(fc[1])
					if err != nil {
						return nil, err
					}
					formal.Default = def
				}
			}
			fn.Formals = append(fn.Formals, formal)
		}
	default:
		return nil, &nmerr.ParseError{Message: "malformed function argument"}
	}
	output, err := b.buildExpr(named[1])
	if err != nil {
		return nil, err
	}
	fn.Output = output
	return fn, nil
}

func (b *builder) buildBinary(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) != 2 {
		return nil, &nmerr.ParseError{Message: "malformed binary expression"}
	}
	left, err := b.buildExpr(named[0])
	if err != nil {
		return nil, err
	}
	right, err := b.buildExpr(named[1])
	if err != nil {
		return nil, err
	}
	op := findOperatorToken(n)
	return &BinaryExpression{Left: left, Right: right, Operator: op}, nil
}

func (b *builder) buildUnary(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) != 1 {
		return nil, &nmerr.ParseError{Message: "malformed unary expression"}
	}
	operand, err := b.buildExpr(named[0])
	if err != nil {
		return nil, err
	}
	op := findOperatorToken(n)
	return &UnaryExpression{Operator: op, Expression: operand}, nil
}

func (b *builder) buildParenthesized(n *cst.Node) (Expr, error) {
	named := n.NamedChildren()
	if len(named) != 1 {
		return nil, &nmerr.ParseError{Message: "malformed parenthesized expression"}
	}
	inner, err := b.buildExpr(named[0])
	if err != nil {
		return nil, err
	}
	return &Parenthesized{Inner: inner}, nil
}

// findOperatorToken returns the text of the single anonymous, non-comment
// token in a binary/unary production — the operator itself, since Nix's
// grammar represents `+`, `-`, `==`, `!`, `++`, `//`, ... as punctuation
// rather than named nodes.
func findOperatorToken(n *cst.Node) string {
	for _, c := range n.Children() {
		if !c.IsNamed() && c.Kind() != cst.KindComment {
			return c.GrammarType()
		}
	}
	return ""
}

// foldScopeStack collapses a chain of top-level `let ... in let ... in {
// ... }` wrappers into the innermost AttributeSet's ScopeStack, outermost
// first, per spec.md §3.3/§4.2. Anything else (a let whose ultimate body
// isn't an attribute set) is left as an ordinary LetExpression value.
func foldScopeStack(sf *SourceFile) {
	var layers [][]*Binding
	expr := sf.Expr
	for {
		let, ok := expr.(*LetExpression)
		if !ok {
			break
		}
		layers = append(layers, let.LocalVariables)
		expr = let.Value
	}
	set, ok := expr.(*AttributeSet)
	if !ok || len(layers) == 0 {
		return
	}
	set.ScopeStack = layers
	sf.Expr = set
}
