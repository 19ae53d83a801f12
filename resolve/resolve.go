// Package resolve implements identifier resolution across lexical scopes:
// let, rec attribute sets, inherit, with, and function-call-with-attrset
// arguments (spec.md §4.4). It is kept separate from package docmodel so
// Expr stays free of resolver state beyond the non-owning back-reference
// described in spec.md §9.
package resolve

import (
	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

type scopeKind uint8

const (
	scopeLet scopeKind = iota
	scopeRec
	scopeWith
	scopeFormals
)

// Scope is one lexical layer in the resolution chain; it implements
// docmodel.ResolutionContext so an Identifier's back-reference can be a
// plain interface value rather than a pointer that keeps the whole
// document alive (spec.md §9).
type Scope struct {
	parent   *Scope
	kind     scopeKind
	bindings map[string]*docmodel.Binding
	inherits []*docmodel.Inherit
	// withEnv/withEnvScope are only set for scopeWith layers: the `with`
	// environment expression and the scope it should be looked up in.
	withEnv      docmodel.Expr
	withEnvScope *Scope
}

func newScope(parent *Scope, kind scopeKind) *Scope {
	return &Scope{parent: parent, kind: kind, bindings: map[string]*docmodel.Binding{}}
}

func (s *Scope) index(b *docmodel.Binding) {
	if len(b.Segments) == 0 {
		return
	}
	s.bindings[b.Name()] = b
}

// Lookup implements docmodel.ResolutionContext. It walks from this scope
// outward, checking let/rec bindings, inherit clauses, and (conservatively)
// `with` environments, per spec.md §4.4 step 1.
func (s *Scope) Lookup(name string) (docmodel.Expr, *docmodel.Binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b.Value, b, true
		}
		for _, inh := range cur.inherits {
			for _, id := range inh.Names {
				if id.Name != name {
					continue
				}
				if inh.FromExpression != nil {
					sel := &docmodel.Select{
						Expression: inh.FromExpression,
						Attribute:  []docmodel.PathSegment{docmodel.BareSegment(name)},
					}
					return sel, nil, true
				}
				// A plain `inherit name;` pulls from the surrounding
				// environment. Without evaluation we can't follow that
				// further than "this scope claims the name exists";
				// continue the outward walk in case an enclosing layer
				// actually defines it.
			}
		}
		if cur.kind == scopeWith && cur.withEnv != nil {
			if target, ok := resolveWithEnvironment(cur); ok {
				if v, _, found := target.Lookup(name); found {
					return v, nil, true
				}
			}
		}
	}
	return nil, nil, false
}

// resolveWithEnvironment implements the conservative rule from spec.md
// §4.4: a `with` environment only extends the lookup chain when it is an
// Identifier pointing (without evaluation) at an AttributeSet that is
// itself reachable through the resolver.
func resolveWithEnvironment(s *Scope) (*Scope, bool) {
	id, ok := s.withEnv.(*docmodel.Identifier)
	if !ok {
		return nil, false
	}
	ctx := id.Context()
	if ctx == nil {
		return nil, false
	}
	asScope, ok := ctx.(*Scope)
	if !ok {
		return nil, false
	}
	value, _, found := asScope.Lookup(id.Name)
	if !found {
		return nil, false
	}
	set, ok := value.(*docmodel.AttributeSet)
	if !ok {
		return nil, false
	}
	return attrSetScope(set, asScope), true
}

// attrSetScope builds (or would build) the scope an attribute set's own
// bindings see of each other and of whatever encloses them. Used both for
// `rec` sets and, conservatively, for `with` targets.
func attrSetScope(set *docmodel.AttributeSet, parent *Scope) *Scope {
	sc := newScope(parent, scopeRec)
	for _, m := range set.Values {
		switch v := m.(type) {
		case *docmodel.Binding:
			sc.index(v)
		case *docmodel.Inherit:
			sc.inherits = append(sc.inherits, v)
		}
	}
	return sc
}

// lookupMember finds a direct (non-attrpath-only) binding of name among a
// literal attribute set's members.
func lookupMember(set *docmodel.AttributeSet, name string) (*docmodel.Binding, bool) {
	for _, m := range set.Values {
		if b, ok := m.(*docmodel.Binding); ok && b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// formalsScope builds the scope an immediately-applied set-pattern lambda's
// body sees: each formal bound to the matching field of the literal
// argument set when present, falling back to the formal's own default
// otherwise (spec.md §4.4 step 1). This only runs for a statically known
// argument; an argument reached through an identifier or another call
// would need evaluation to read, so it never reaches here.
func formalsScope(fn *docmodel.FunctionDefinition, argSet *docmodel.AttributeSet, ctx *Scope) *Scope {
	sc := newScope(ctx, scopeFormals)
	for _, f := range fn.Formals {
		value := f.Default
		if argSet != nil {
			if b, ok := lookupMember(argSet, f.Name); ok {
				value = b.Value
			}
		}
		sc.bindings[f.Name] = &docmodel.Binding{
			Segments: []docmodel.PathSegment{docmodel.BareSegment(f.Name)},
			Value:    value,
		}
	}
	return sc
}

// AttachContexts walks the whole document and attaches the enclosing
// Scope to every Identifier found in a read position (spec.md §4.4: "every
// Identifier holds a weak back-reference ... attached at the moment the
// identifier is read through a container"). Call this once after parsing
// (or after structural edits) before resolving or assigning through
// Identifier.Value.
func AttachContexts(sf *docmodel.SourceFile) {
	walk(sf.Expr, nil)
}

func walk(e docmodel.Expr, ctx *Scope) {
	switch v := e.(type) {
	case nil:
		return
	case *docmodel.Identifier:
		v.AttachContext(ctx)

	case *docmodel.AttributeSet:
		// ScopeStack is outermost-first; chain scopes in that order so the
		// innermost layer (and the set's own bindings) sees every outer
		// layer, matching nested `let ... in let ... in { ... }` (spec.md
		// §3.3).
		inner := ctx
		for _, locals := range v.ScopeStack {
			layer := newScope(inner, scopeLet)
			for _, b := range locals {
				layer.index(b)
			}
			for _, b := range locals {
				walk(b.Value, layer)
			}
			inner = layer
		}
		sc := inner
		if v.Recursive {
			sc = newScope(inner, scopeRec)
		}
		for _, m := range v.Values {
			switch mv := m.(type) {
			case *docmodel.Binding:
				if sc != inner || v.Recursive {
					sc.index(mv)
				}
				walk(mv.Value, sc)
			case *docmodel.Inherit:
				if v.Recursive {
					sc.inherits = append(sc.inherits, mv)
				}
				walk(mv.FromExpression, sc)
			}
		}

	case *docmodel.NixList:
		for _, el := range v.Elements {
			walk(el, ctx)
		}

	case *docmodel.Binding:
		walk(v.Value, ctx)

	case *docmodel.Inherit:
		walk(v.FromExpression, ctx)

	case *docmodel.LetExpression:
		sc := newScope(ctx, scopeLet)
		for _, b := range v.LocalVariables {
			sc.index(b)
		}
		for _, b := range v.LocalVariables {
			walk(b.Value, sc)
		}
		walk(v.Value, sc)

	case *docmodel.WithStatement:
		walk(v.Environment, ctx)
		withScope := newScope(ctx, scopeWith)
		withScope.withEnv = v.Environment
		walk(v.Body, withScope)

	case *docmodel.IfExpression:
		walk(v.Condition, ctx)
		walk(v.Consequence, ctx)
		walk(v.Alternative, ctx)

	case *docmodel.Select:
		walk(v.Expression, ctx)
		walk(v.Default, ctx)

	case *docmodel.FunctionDefinition:
		sc := ctx
		if len(v.Formals) > 0 || v.HasEllipses {
			sc = newScope(ctx, scopeFormals)
			for _, f := range v.Formals {
				sc.bindings[f.Name] = &docmodel.Binding{
					Segments: []docmodel.PathSegment{docmodel.BareSegment(f.Name)},
					Value:    f.Default,
				}
			}
		}
		for _, f := range v.Formals {
			walk(f.Default, sc)
		}
		walk(v.Output, sc)

	case *docmodel.FunctionCall:
		walk(v.Argument, ctx)
		if fn, ok := v.Name.(*docmodel.FunctionDefinition); ok && len(fn.Formals) > 0 {
			// An immediately-applied set-pattern lambda is the one case
			// where the callee's body is statically known: walk it under a
			// scope where each formal is bound to the matching field of the
			// literal argument set (spec.md §4.4 step 1) instead of the
			// formal's bare default. A callee reached only through an
			// identifier would need evaluation to find, so it stays out of
			// scope here, the same conservative line drawn for `with` above.
			argSet, _ := v.Argument.(*docmodel.AttributeSet)
			sc := formalsScope(fn, argSet, ctx)
			for _, f := range fn.Formals {
				walk(f.Default, sc)
			}
			walk(fn.Output, sc)
		} else {
			walk(v.Name, ctx)
		}

	case *docmodel.BinaryExpression:
		walk(v.Left, ctx)
		walk(v.Right, ctx)

	case *docmodel.UnaryExpression:
		walk(v.Expression, ctx)

	case *docmodel.Assertion:
		walk(v.Condition, ctx)
		walk(v.Body, ctx)

	case *docmodel.Parenthesized:
		walk(v.Inner, ctx)
	}
}

// Resolve follows an identifier's reference chain to its defining
// expression, per spec.md §4.4. A chain through other identifiers is
// followed with cycle detection; an identifier with no attached context,
// or no binding anywhere in the chain, fails with
// *nmerr.UnboundIdentifierError.
func Resolve(id *docmodel.Identifier) (docmodel.Expr, error) {
	visited := map[string]bool{}
	cur := id
	for {
		ctx := cur.Context()
		if ctx == nil {
			return nil, &nmerr.UnboundIdentifierError{Name: cur.Name}
		}
		if visited[cur.Name] {
			return nil, &nmerr.ResolutionCycleError{Name: cur.Name}
		}
		visited[cur.Name] = true

		value, _, ok := ctx.Lookup(cur.Name)
		if !ok {
			return nil, &nmerr.UnboundIdentifierError{Name: cur.Name}
		}
		if next, ok := value.(*docmodel.Identifier); ok {
			cur = next
			continue
		}
		return value, nil
	}
}

// SetIdentifierValue walks to the Binding that defines id and replaces its
// value. It fails if id is unbound, or if the binding was reached through
// an inherit (which has no single Binding to mutate) rather than a direct
// let/rec binding.
func SetIdentifierValue(id *docmodel.Identifier, value docmodel.Expr) error {
	ctx := id.Context()
	if ctx == nil {
		return &nmerr.UnboundIdentifierError{Name: id.Name}
	}
	_, binding, ok := ctx.Lookup(id.Name)
	if !ok {
		return &nmerr.UnboundIdentifierError{Name: id.Name}
	}
	if binding == nil {
		return &nmerr.UnboundIdentifierError{Name: id.Name}
	}
	binding.Value = value
	return nil
}
