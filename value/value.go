// Package value implements the host-scalar coercion rules of spec.md §4.5:
// what `set(key, v)` and assignment through Binding.Value accept besides a
// ready-made docmodel.Expr.
package value

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/cbro/nix-manipulator/docmodel"
)

// Null is the sentinel passed to Coerce to request a `null` literal; Go has
// no native null scalar to dispatch on by type.
type Null struct{}

// Coerce converts a host value into an Expr, per spec.md §4.5:
//
//	string            -> Primitive (string)
//	bool              -> Primitive (bool)
//	int, int64        -> Primitive (int)
//	float32, float64  -> Primitive (float)
//	Null{}            -> Primitive (null)
//	*orderedmap.OrderedMap[string, any] -> AttributeSet, recursively
//	docmodel.Expr     -> returned unchanged
//
// A bare string is always coerced to a string literal, never an Identifier:
// callers who mean a reference must pass *docmodel.Identifier directly.
func Coerce(v any) (docmodel.Expr, error) {
	switch x := v.(type) {
	case docmodel.Expr:
		return x, nil
	case Null:
		return docmodel.NewNull(), nil
	case nil:
		return docmodel.NewNull(), nil
	case string:
		return docmodel.NewString(x), nil
	case bool:
		return docmodel.NewBool(x), nil
	case int:
		return docmodel.NewInt(int64(x)), nil
	case int32:
		return docmodel.NewInt(int64(x)), nil
	case int64:
		return docmodel.NewInt(x), nil
	case float32:
		return docmodel.NewFloat(float64(x)), nil
	case float64:
		return docmodel.NewFloat(x), nil
	case *orderedmap.OrderedMap[string, any]:
		return coerceMapping(x)
	default:
		return nil, &coercionError{goType: goTypeName(v)}
	}
}

// MustCoerce panics on failure; useful for building literal documents from
// trusted Go values rather than parsed input.
func MustCoerce(v any) docmodel.Expr {
	e, err := Coerce(v)
	if err != nil {
		panic(err)
	}
	return e
}

func coerceMapping(m *orderedmap.OrderedMap[string, any]) (docmodel.Expr, error) {
	set := docmodel.NewAttributeSet()
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		child, err := Coerce(pair.Value)
		if err != nil {
			return nil, err
		}
		set.Values = append(set.Values, docmodel.NewBinding(pair.Key, child))
	}
	return set, nil
}

type coercionError struct {
	goType string
}

func (e *coercionError) Error() string {
	return "value: cannot coerce Go value of type " + e.goType + " to an Expr; pass a docmodel.Expr directly"
}

func goTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	if _, ok := v.([]any); ok {
		return "[]any (use NixList constructor, not Coerce)"
	}
	return fmt.Sprintf("%T", v)
}
