package docmodel

import (
	"regexp"
	"strconv"
	"strings"
)

// indentUnit is the amount of indentation added per nesting level. RFC-0166
// uses two spaces.
const indentUnit = "  "

// listMultilineThreshold is the element count at or above which an auto-layout
// NixList switches to one-element-per-line (spec.md §4.2).
const listMultilineThreshold = 4

// renderer accumulates rebuilt Nix source text, tracking the current
// indentation level and whether the cursor is at the start of a line so
// trivia and container rendering can share one notion of "start a new
// line" without passing a column around by hand.
type renderer struct {
	sb       strings.Builder
	indent   string
	atStart  bool
}

func newRenderer() *renderer {
	return &renderer{atStart: true}
}

func (w *renderer) String() string { return w.sb.String() }

func (w *renderer) writeString(s string) {
	if s == "" {
		return
	}
	w.sb.WriteString(s)
	w.atStart = strings.HasSuffix(s, "\n")
}

func (w *renderer) writeIndent() {
	if w.atStart {
		w.sb.WriteString(w.indent)
		w.atStart = false
	}
}

func (w *renderer) newline() {
	w.sb.WriteByte('\n')
	w.atStart = true
}

func (w *renderer) blankLine() {
	w.sb.WriteString("\n\n")
	w.atStart = true
}

func (w *renderer) pushIndent() { w.indent += indentUnit }
func (w *renderer) popIndent()  { w.indent = strings.TrimSuffix(w.indent, indentUnit) }

// renderExpr emits a node's Before trivia, its own content, then its After
// trivia — the one place the before/self/after contract from spec.md §9 is
// implemented, shared by every variant's Rebuild().
func renderExpr(w *renderer, e Expr) {
	renderBefore(w, e.Before())
	w.writeIndent()
	e.render(w)
	renderAfter(w, e.After())
}

// Rebuild renders any Expr to Nix source text, including its own trivia.
// Every variant's Rebuild() method forwards here.
func Rebuild(e Expr) string {
	w := newRenderer()
	renderExpr(w, e)
	return w.String()
}

func (x *Primitive) Rebuild() string             { return Rebuild(x) }
func (x *Identifier) Rebuild() string            { return Rebuild(x) }
func (x *NixPath) Rebuild() string                { return Rebuild(x) }
func (x *NixList) Rebuild() string                { return Rebuild(x) }
func (x *AttributeSet) Rebuild() string           { return Rebuild(x) }
func (x *Binding) Rebuild() string                { return Rebuild(x) }
func (x *Inherit) Rebuild() string                { return Rebuild(x) }
func (x *LetExpression) Rebuild() string          { return Rebuild(x) }
func (x *WithStatement) Rebuild() string          { return Rebuild(x) }
func (x *IfExpression) Rebuild() string           { return Rebuild(x) }
func (x *Select) Rebuild() string                 { return Rebuild(x) }
func (x *FunctionDefinition) Rebuild() string     { return Rebuild(x) }
func (x *FunctionCall) Rebuild() string           { return Rebuild(x) }
func (x *BinaryExpression) Rebuild() string       { return Rebuild(x) }
func (x *UnaryExpression) Rebuild() string        { return Rebuild(x) }
func (x *Assertion) Rebuild() string              { return Rebuild(x) }
func (x *Parenthesized) Rebuild() string          { return Rebuild(x) }
func (x *SourceFile) Rebuild() string             { return Rebuild(x) }

// ---------------------------------------------------------------------
// Primitive
// ---------------------------------------------------------------------

func (x *Primitive) render(w *renderer) {
	switch x.Kind {
	case PrimNull:
		w.writeString("null")
	case PrimBool:
		if x.Bool {
			w.writeString("true")
		} else {
			w.writeString("false")
		}
	case PrimInt:
		w.writeString(strconv.FormatInt(x.Int, 10))
	case PrimFloat:
		w.writeString(strconv.FormatFloat(x.Float, 'g', -1, 64))
	case PrimString:
		if x.RawRepresentation != "" {
			w.writeString(x.RawRepresentation)
		} else {
			w.writeString(escapeString(x.Str))
		}
	}
}

func escapeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			b.WriteString(`\${`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ---------------------------------------------------------------------
// Identifier / NixPath
// ---------------------------------------------------------------------

func (x *Identifier) render(w *renderer) { w.writeString(x.Name) }

func (x *NixPath) render(w *renderer) { w.writeString(x.Raw) }

// ---------------------------------------------------------------------
// NixList
// ---------------------------------------------------------------------

func (x *NixList) render(w *renderer) {
	if len(x.Elements) == 0 {
		if len(x.Trailing) == 0 {
			w.writeString("[ ]")
			return
		}
		w.writeString("[")
		renderOrphanedTrivia(w, x.Trailing)
		w.writeIndent()
		w.writeString("]")
		return
	}

	multiline := resolveTri(x.Multiline, x.effectiveMultiline)

	w.writeString("[")
	if multiline {
		w.pushIndent()
		for _, el := range x.Elements {
			separateContainerMember(w, el.Before())
			renderExpr(w, el)
		}
		w.popIndent()
		closeContainer(w, x.Elements[len(x.Elements)-1].After())
		w.writeIndent()
		w.writeString("]")
		return
	}

	w.writeString(" ")
	for i, el := range x.Elements {
		if i > 0 {
			w.writeString(" ")
		}
		renderExpr(w, el)
	}
	w.writeString(" ]")
}

func (x *NixList) effectiveMultiline() bool {
	if len(x.Elements) >= listMultilineThreshold {
		return true
	}
	for _, el := range x.Elements {
		if exprIsMultiline(el) || hasBlockyComment(el) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------
// AttributeSet
// ---------------------------------------------------------------------

func (x *AttributeSet) render(w *renderer) {
	// ScopeStack is outermost-first; render in that order so nested `let`
	// layers come out in the same nesting as the source (spec.md §3.3).
	for _, layer := range x.ScopeStack {
		renderLetLayer(w, layer)
	}
	x.renderBraces(w)
}

func renderLetLayer(w *renderer, locals []*Binding) {
	w.writeString("let")
	w.pushIndent()
	for _, b := range locals {
		separateContainerMember(w, b.Before())
		renderExpr(w, b)
	}
	w.popIndent()
	closeContainer(w, locals[len(locals)-1].After())
	w.writeIndent()
	w.writeString("in")
	w.newline()
}

func (x *AttributeSet) renderBraces(w *renderer) {
	if x.Recursive {
		w.writeString("rec ")
	}
	if len(x.Values) == 0 {
		if len(x.Trailing) == 0 {
			w.writeString("{ }")
			return
		}
		w.writeString("{")
		renderOrphanedTrivia(w, x.Trailing)
		w.writeIndent()
		w.writeString("}")
		return
	}

	multiline := resolveTri(x.Multiline, x.effectiveMultiline)

	w.writeString("{")
	if multiline {
		w.pushIndent()
		for _, m := range x.Values {
			separateContainerMember(w, m.Before())
			renderExpr(w, m)
		}
		w.popIndent()
		closeContainer(w, x.Values[len(x.Values)-1].After())
		w.writeIndent()
		w.writeString("}")
		return
	}

	w.writeString(" ")
	for _, m := range x.Values {
		renderExpr(w, m)
		w.writeString(" ")
	}
	w.writeString("}")
}

func (x *AttributeSet) effectiveMultiline() bool {
	if len(x.Values) > 1 {
		return true
	}
	for _, m := range x.Values {
		if hasBlockyComment(m) {
			return true
		}
		if b, ok := m.(*Binding); ok && exprIsMultiline(b.Value) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------
// Binding
// ---------------------------------------------------------------------

func (x *Binding) render(w *renderer) {
	for i, seg := range x.Segments {
		if i > 0 {
			w.writeString(".")
		}
		w.writeString(formatSegment(seg))
	}
	w.writeString(" = ")
	renderExpr(w, x.Value)
	if hasTrailingInline(x.Value.After()) {
		w.newline()
		w.writeIndent()
	}
	w.writeString(";")
}

var bareSegmentRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_'\-]*$`)

func formatSegment(seg PathSegment) string {
	if !seg.Quoted && bareSegmentRE.MatchString(seg.Text) {
		return seg.Text
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(seg.Text); i++ {
		c := seg.Text[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func isBareSegment(s string) bool { return bareSegmentRE.MatchString(s) }

// ---------------------------------------------------------------------
// Inherit
// ---------------------------------------------------------------------

func (x *Inherit) render(w *renderer) {
	w.writeString("inherit")
	if x.FromExpression != nil {
		w.writeString(" (")
		renderExpr(w, x.FromExpression)
		w.writeString(")")
	}
	for _, n := range x.Names {
		w.writeString(" ")
		w.writeString(n.Name)
	}
	w.writeString(";")
}

// ---------------------------------------------------------------------
// LetExpression
// ---------------------------------------------------------------------

func (x *LetExpression) render(w *renderer) {
	w.writeString("let")
	w.pushIndent()
	for _, b := range x.LocalVariables {
		separateContainerMember(w, b.Before())
		renderExpr(w, b)
	}
	w.popIndent()
	closeContainer(w, x.LocalVariables[len(x.LocalVariables)-1].After())
	w.writeIndent()
	w.writeString("in ")
	renderExpr(w, x.Value)
}

// ---------------------------------------------------------------------
// WithStatement
// ---------------------------------------------------------------------

func (x *WithStatement) render(w *renderer) {
	w.writeString("with ")
	renderExpr(w, x.Environment)
	w.writeString("; ")
	renderExpr(w, x.Body)
}

// ---------------------------------------------------------------------
// IfExpression
// ---------------------------------------------------------------------

func (x *IfExpression) render(w *renderer) {
	w.writeString("if ")
	renderExpr(w, x.Condition)
	w.writeString(" then ")
	renderExpr(w, x.Consequence)
	w.writeString(" else ")
	renderExpr(w, x.Alternative)
}

// ---------------------------------------------------------------------
// Select
// ---------------------------------------------------------------------

func (x *Select) render(w *renderer) {
	renderExpr(w, x.Expression)
	for _, seg := range x.Attribute {
		w.writeString(".")
		w.writeString(formatSegment(seg))
	}
	if x.Default != nil {
		w.writeString(" or ")
		renderExpr(w, x.Default)
	}
}

// ---------------------------------------------------------------------
// FunctionDefinition
// ---------------------------------------------------------------------

func (x *FunctionDefinition) render(w *renderer) {
	switch {
	case x.SimpleArg != nil:
		w.writeString(x.SimpleArg.Name)
		w.writeString(":")
	default:
		w.writeString("{ ")
		for i, f := range x.Formals {
			if i > 0 {
				w.writeString(", ")
			}
			w.writeString(f.Name)
			if f.Default != nil {
				w.writeString(" ? ")
				renderExpr(w, f.Default)
			}
		}
		if x.HasEllipses {
			if len(x.Formals) > 0 {
				w.writeString(", ")
			}
			w.writeString("...")
		}
		w.writeString(" }")
		if x.BoundName != nil {
			w.writeString("@")
			w.writeString(x.BoundName.Name)
		}
		w.writeString(":")
	}
	w.writeString(" ")
	renderExpr(w, x.Output)
}

// ---------------------------------------------------------------------
// FunctionCall
// ---------------------------------------------------------------------

func (x *FunctionCall) render(w *renderer) {
	renderExpr(w, x.Name)
	w.writeString(" ")
	renderExpr(w, x.Argument)
}

// ---------------------------------------------------------------------
// BinaryExpression / UnaryExpression
// ---------------------------------------------------------------------

func (x *BinaryExpression) render(w *renderer) {
	renderExpr(w, x.Left)
	w.writeString(" ")
	w.writeString(x.Operator)
	w.writeString(" ")
	renderExpr(w, x.Right)
}

func (x *UnaryExpression) render(w *renderer) {
	w.writeString(x.Operator)
	renderExpr(w, x.Expression)
}

// ---------------------------------------------------------------------
// Assertion
// ---------------------------------------------------------------------

func (x *Assertion) render(w *renderer) {
	w.writeString("assert ")
	renderExpr(w, x.Condition)
	w.writeString("; ")
	renderExpr(w, x.Body)
}

// ---------------------------------------------------------------------
// Parenthesized
// ---------------------------------------------------------------------

func (x *Parenthesized) render(w *renderer) {
	w.writeString("(")
	renderExpr(w, x.Inner)
	w.writeString(")")
}

// ---------------------------------------------------------------------
// SourceFile
// ---------------------------------------------------------------------

func (x *SourceFile) render(w *renderer) {
	renderExpr(w, x.Expr)
}

// ---------------------------------------------------------------------
// Layout helpers shared across variants
// ---------------------------------------------------------------------

// separateContainerMember emits the line break that separates one container
// member from the previous one. If before already starts with a LineBreak or
// BlankLine trivia unit, renderBefore (called right after, by renderExpr)
// will emit that break itself, so this is a no-op; otherwise this supplies
// the break a freshly constructed member has no trivia to carry.
func separateContainerMember(w *renderer, before []Trivia) {
	if len(before) > 0 {
		switch before[0].Kind {
		case LineBreak, BlankLine:
			return
		}
	}
	w.newline()
}

// closeContainer emits the line break that separates a container's last
// member from its closing delimiter ("]", "}", or "in"). If after already
// ends with a LineBreak or BlankLine trivia unit, renderAfter already wrote
// that break while rendering the member itself, so this is a no-op;
// otherwise this supplies the break a freshly constructed member has no
// trivia to carry.
func closeContainer(w *renderer, after []Trivia) {
	if len(after) > 0 {
		switch after[len(after)-1].Kind {
		case LineBreak, BlankLine:
			return
		}
	}
	w.newline()
}

// renderOrphanedTrivia writes a container's Trailing trivia — comment-only
// content with no semantic owner, e.g. `[ # note\n]` — between the opening
// delimiter (already written) and the indent/closing delimiter the caller
// writes next. A leading inline comment sits on the same line as the
// delimiter and needs the separating space renderAfter would normally
// supply; anything after that renders like any other standalone comment run.
func renderOrphanedTrivia(w *renderer, trivia []Trivia) {
	if len(trivia) == 0 {
		return
	}
	if trivia[0].Kind == Comment && trivia[0].Inline {
		w.writeString(" # ")
		w.writeString(trivia[0].Text)
		trivia = trivia[1:]
	}
	w.pushIndent()
	renderBefore(w, trivia)
	w.popIndent()
}

func resolveTri(t TriState, auto func() bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return auto()
	}
}

// exprIsMultiline reports whether e would render as a multiline container,
// used by the threshold-based heuristics in effectiveMultiline above.
func exprIsMultiline(e Expr) bool {
	switch v := e.(type) {
	case *NixList:
		return resolveTri(v.Multiline, v.effectiveMultiline)
	case *AttributeSet:
		return resolveTri(v.Multiline, v.effectiveMultiline) || len(v.ScopeStack) > 0
	case *LetExpression:
		return true
	}
	return false
}

// hasBlockyComment reports whether e carries a block comment, or a
// non-inline `#` comment, in its own trivia (spec.md §4.2).
func hasBlockyComment(e Expr) bool {
	check := func(ts []Trivia) bool {
		for _, t := range ts {
			if t.Kind == MultilineComment {
				return true
			}
			if t.Kind == Comment && !t.Inline {
				return true
			}
		}
		return false
	}
	return check(e.Before()) || check(e.After())
}
