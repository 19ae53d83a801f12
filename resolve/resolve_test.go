package resolve

import (
	"errors"
	"testing"

	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

func TestResolveLetBinding(t *testing.T) {
	id := docmodel.NewIdentifier("x")
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, docmodel.NewBinding("a", id))
	set.ScopeStack = [][]*docmodel.Binding{{docmodel.NewBinding("x", docmodel.NewInt(1))}}
	sf := docmodel.NewSourceFile(set)

	AttachContexts(sf)

	v, err := Resolve(id)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got := v.(*docmodel.Primitive).Int; got != 1 {
		t.Errorf("Resolve(x) = %d, want 1", got)
	}
}

func TestResolveRecAttrSetSelfReference(t *testing.T) {
	idRef := docmodel.NewIdentifier("a")
	set := &docmodel.AttributeSet{Recursive: true}
	set.Values = append(set.Values,
		docmodel.NewBinding("a", docmodel.NewInt(1)),
		docmodel.NewBinding("b", &docmodel.BinaryExpression{Left: idRef, Right: docmodel.NewInt(1), Operator: "+"}),
	)
	sf := docmodel.NewSourceFile(set)
	AttachContexts(sf)

	v, err := Resolve(idRef)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got := v.(*docmodel.Primitive).Int; got != 1 {
		t.Errorf("Resolve(a) = %d, want 1", got)
	}
}

func TestResolveUnbound(t *testing.T) {
	id := docmodel.NewIdentifier("missing")
	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values, docmodel.NewBinding("a", id))
	sf := docmodel.NewSourceFile(set)
	AttachContexts(sf)

	_, err := Resolve(id)
	var unbound *nmerr.UnboundIdentifierError
	if !errors.As(err, &unbound) {
		t.Fatalf("error = %v (%T), want *nmerr.UnboundIdentifierError", err, err)
	}
}

func TestResolveCycle(t *testing.T) {
	idA := docmodel.NewIdentifier("b")
	idB := docmodel.NewIdentifier("a")
	set := docmodel.NewAttributeSet()
	set.ScopeStack = [][]*docmodel.Binding{{
		docmodel.NewBinding("a", idA),
		docmodel.NewBinding("b", idB),
	}}
	sf := docmodel.NewSourceFile(set)
	AttachContexts(sf)

	_, err := Resolve(idA)
	var cycle *nmerr.ResolutionCycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("error = %v (%T), want *nmerr.ResolutionCycleError", err, err)
	}
}

func TestSetIdentifierValue(t *testing.T) {
	id := docmodel.NewIdentifier("x")
	set := docmodel.NewAttributeSet()
	set.ScopeStack = [][]*docmodel.Binding{{docmodel.NewBinding("x", docmodel.NewInt(1))}}
	set.Values = append(set.Values, docmodel.NewBinding("a", id))
	sf := docmodel.NewSourceFile(set)
	AttachContexts(sf)

	if err := SetIdentifierValue(id, docmodel.NewInt(99)); err != nil {
		t.Fatalf("SetIdentifierValue error: %v", err)
	}
	v, err := Resolve(id)
	if err != nil {
		t.Fatalf("Resolve after assignment error: %v", err)
	}
	if got := v.(*docmodel.Primitive).Int; got != 99 {
		t.Errorf("Resolve(x) after assignment = %d, want 99", got)
	}
}

func TestResolveImmediatelyAppliedLambdaSeesArgumentSetBindings(t *testing.T) {
	// ({ a }: a) { a = 1; } -- the lambda body's `a` resolves to the
	// argument set's binding, not the formal's (absent) default.
	bodyRef := docmodel.NewIdentifier("a")
	fn := &docmodel.FunctionDefinition{
		Formals: []docmodel.Formal{{Name: "a"}},
		Output:  bodyRef,
	}
	argSet := docmodel.NewAttributeSet()
	argSet.Values = append(argSet.Values, docmodel.NewBinding("a", docmodel.NewInt(1)))
	call := &docmodel.FunctionCall{Name: fn, Argument: argSet}

	sf := docmodel.NewSourceFile(call)
	AttachContexts(sf)

	v, err := Resolve(bodyRef)
	if err != nil {
		t.Fatalf("Resolve(a) error: %v", err)
	}
	if got := v.(*docmodel.Primitive).Int; got != 1 {
		t.Errorf("Resolve(a) = %d, want 1", got)
	}
}

func TestResolveCallThroughIdentifierDoesNotExtendScope(t *testing.T) {
	// f { a = 1; } where f is a let-bound identifier: the argument set's
	// bindings are not statically attributable to f's body, so a bare `a`
	// reference outside the call stays unbound.
	danglingRef := docmodel.NewIdentifier("a")
	argSet := docmodel.NewAttributeSet()
	argSet.Values = append(argSet.Values, docmodel.NewBinding("a", docmodel.NewInt(1)))
	call := &docmodel.FunctionCall{Name: docmodel.NewIdentifier("f"), Argument: argSet}

	set := docmodel.NewAttributeSet()
	set.Values = append(set.Values,
		docmodel.NewBinding("result", call),
		docmodel.NewBinding("other", danglingRef),
	)
	sf := docmodel.NewSourceFile(set)
	AttachContexts(sf)

	_, err := Resolve(danglingRef)
	var unbound *nmerr.UnboundIdentifierError
	if !errors.As(err, &unbound) {
		t.Fatalf("error = %v (%T), want *nmerr.UnboundIdentifierError", err, err)
	}
}

func TestWithEnvironmentConservativeResolution(t *testing.T) {
	// with pkgs; a   where pkgs = { a = 1; } is bound in an enclosing let.
	envRef := docmodel.NewIdentifier("pkgs")
	bodyRef := docmodel.NewIdentifier("a")
	withStmt := &docmodel.WithStatement{Environment: envRef, Body: bodyRef}

	set := docmodel.NewAttributeSet()
	pkgsSet := docmodel.NewAttributeSet()
	pkgsSet.Values = append(pkgsSet.Values, docmodel.NewBinding("a", docmodel.NewInt(1)))
	set.ScopeStack = [][]*docmodel.Binding{{docmodel.NewBinding("pkgs", pkgsSet)}}
	set.Values = append(set.Values, docmodel.NewBinding("result", withStmt))

	sf := docmodel.NewSourceFile(set)
	AttachContexts(sf)

	v, err := Resolve(bodyRef)
	if err != nil {
		t.Fatalf("Resolve(a) through with failed: %v", err)
	}
	if got := v.(*docmodel.Primitive).Int; got != 1 {
		t.Errorf("Resolve(a) = %d, want 1", got)
	}
}
