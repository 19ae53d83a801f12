package docmodel

import "testing"

func TestRebuildPrimitives(t *testing.T) {
	cases := []struct {
		expr Expr
		want string
	}{
		{NewNull(), "null"},
		{NewBool(true), "true"},
		{NewBool(false), "false"},
		{NewInt(42), "42"},
		{NewFloat(1.5), "1.5"},
		{NewString(`hi`), `"hi"`},
		{NewString("a\"b"), `"a\"b"`},
	}
	for _, c := range cases {
		if got := c.expr.Rebuild(); got != c.want {
			t.Errorf("Rebuild() = %q, want %q", got, c.want)
		}
	}
}

func TestRebuildEmptyContainers(t *testing.T) {
	if got := NewNixList().Rebuild(); got != "[ ]" {
		t.Errorf("empty list Rebuild() = %q, want %q", got, "[ ]")
	}
	if got := NewAttributeSet().Rebuild(); got != "{ }" {
		t.Errorf("empty attrset Rebuild() = %q, want %q", got, "{ }")
	}
}

func TestRebuildEmptyListWithTrailingComment(t *testing.T) {
	l := NewNixList()
	l.Trailing = []Trivia{LineComment("only a comment", true), NewLineBreak()}
	if got, want := l.Rebuild(), "[ # only a comment\n]"; got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildEmptyAttrSetWithTrailingComment(t *testing.T) {
	set := NewAttributeSet()
	set.Trailing = []Trivia{LineComment("only a comment", true), NewLineBreak()}
	if got, want := set.Rebuild(), "{ # only a comment\n}"; got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildEmptyListWithOwnLineTrailingComment(t *testing.T) {
	l := NewNixList()
	l.Trailing = []Trivia{NewLineBreak(), LineComment("note", false), NewLineBreak()}
	if got, want := l.Rebuild(), "[\n  # note\n]"; got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildNestedLetExpressionIndentsInKeyword(t *testing.T) {
	let := &LetExpression{
		LocalVariables: []*Binding{NewBinding("x", NewInt(1))},
		Value:          NewIdentifier("a"),
	}
	binding := NewBinding("a", let)
	set := NewAttributeSet()
	set.Multiline = On
	set.Values = append(set.Values, binding)

	got := set.Rebuild()
	want := "{\n  a = let\n    x = 1;\n  in a;\n}"
	if got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildShortListInline(t *testing.T) {
	l := NewNixList(NewInt(1), NewInt(2), NewInt(3))
	if got, want := l.Rebuild(), "[ 1 2 3 ]"; got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildLongListMultiline(t *testing.T) {
	l := NewNixList(NewInt(1), NewInt(2), NewInt(3), NewInt(4))
	want := "[\n  1\n  2\n  3\n  4\n]"
	if got := l.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildAttrSetSingleBindingInline(t *testing.T) {
	set := NewAttributeSet()
	set.Values = append(set.Values, NewBinding("a", NewInt(1)))
	want := "{ a = 1; }"
	if got := set.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildAttrSetMultiBindingMultiline(t *testing.T) {
	set := NewAttributeSet()
	set.Values = append(set.Values, NewBinding("a", NewInt(1)), NewBinding("b", NewInt(2)))
	want := "{\n  a = 1;\n  b = 2;\n}"
	if got := set.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildRecursiveAttrSet(t *testing.T) {
	set := NewAttributeSet()
	set.Recursive = true
	set.Values = append(set.Values, NewBinding("a", NewInt(1)))
	want := "rec { a = 1; }"
	if got := set.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildNestedAttrpathBindingNeverNormalized(t *testing.T) {
	nested := &Binding{Segments: []PathSegment{BareSegment("foo"), BareSegment("bar")}, Nested: true, Value: NewInt(1)}
	set := NewAttributeSet()
	set.Values = append(set.Values, nested)
	want := "{ foo.bar = 1; }"
	if got := set.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildQuotedSegment(t *testing.T) {
	b := &Binding{Segments: []PathSegment{QuotedSegment("has space")}, Value: NewInt(1)}
	want := `"has space" = 1;`
	if got := b.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildTrailingInlineCommentForcesSemicolonOntoNextLine(t *testing.T) {
	val := NewInt(1)
	val.SetAfter([]Trivia{LineComment("note", true)})
	b := NewBinding("a", val)
	want := "a = 1 # note\n;"
	if got := b.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildLetScopeStack(t *testing.T) {
	set := NewAttributeSet()
	set.Values = append(set.Values, NewBinding("a", NewIdentifier("x")))
	set.ScopeStack = [][]*Binding{{NewBinding("x", NewInt(1))}}
	want := "let\n  x = 1;\nin\n{ a = x; }"
	if got := set.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildFunctionDefinitionSimpleArg(t *testing.T) {
	fn := &FunctionDefinition{SimpleArg: NewIdentifier("x"), Output: NewIdentifier("x")}
	want := "x: x"
	if got := fn.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildFunctionDefinitionFormals(t *testing.T) {
	fn := &FunctionDefinition{
		Formals:     []Formal{{Name: "a"}, {Name: "b", Default: NewInt(1)}},
		HasEllipses: true,
		BoundName:   NewIdentifier("args"),
		Output:      NewIdentifier("a"),
	}
	want := "{ a, b ? 1, ... }@args: a"
	if got := fn.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildIfExpression(t *testing.T) {
	ifExpr := &IfExpression{Condition: NewBool(true), Consequence: NewInt(1), Alternative: NewInt(2)}
	want := "if true then 1 else 2"
	if got := ifExpr.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildBinaryAndUnary(t *testing.T) {
	bin := &BinaryExpression{Left: NewInt(1), Right: NewInt(2), Operator: "+"}
	if got, want := bin.Rebuild(), "1 + 2"; got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
	un := &UnaryExpression{Operator: "-", Expression: NewInt(1)}
	if got, want := un.Rebuild(), "-1"; got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildSelectWithDefault(t *testing.T) {
	sel := &Select{
		Expression: NewIdentifier("a"),
		Attribute:  []PathSegment{BareSegment("b")},
		Default:    NewInt(0),
	}
	want := "a.b or 0"
	if got := sel.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}

func TestRebuildInheritWithSource(t *testing.T) {
	inh := NewInherit("a", "b")
	inh.FromExpression = NewIdentifier("pkgs")
	want := "inherit (pkgs) a b;"
	if got := inh.Rebuild(); got != want {
		t.Errorf("Rebuild() = %q, want %q", got, want)
	}
}
