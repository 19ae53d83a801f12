package edit

import (
	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/mapping"
	"github.com/cbro/nix-manipulator/nmerr"
)

// rootAttrSet returns the attribute set that set_value/remove_value operate
// on: the document's top-level attribute set, or the one a top-level
// function definition or assertion returns, looking through any number of
// such wrappers.
func rootAttrSet(sf *docmodel.SourceFile) (*docmodel.AttributeSet, error) {
	expr := sf.Expr
	for {
		switch v := expr.(type) {
		case *docmodel.AttributeSet:
			return v, nil
		case *docmodel.FunctionDefinition:
			expr = v.Output
		case *docmodel.Assertion:
			expr = v.Body
		default:
			return nil, &nmerr.ShapeError{Found: "non-attrset document root"}
		}
	}
}

// Set applies a parsed Path and value to sf in place.
func Set(sf *docmodel.SourceFile, path Path, value docmodel.Expr) error {
	set, err := rootAttrSet(sf)
	if err != nil {
		return err
	}
	if path.Depth == 0 {
		return mapping.SetPath(set, path.Segments, value)
	}
	return setInScope(set, path, value)
}

// Remove deletes whatever Path addresses from sf in place.
func Remove(sf *docmodel.SourceFile, path Path) error {
	set, err := rootAttrSet(sf)
	if err != nil {
		return err
	}
	if path.Depth == 0 {
		return mapping.RemovePath(set, path.Segments)
	}
	return removeFromScope(set, path)
}

func setInScope(set *docmodel.AttributeSet, path Path, value docmodel.Expr) error {
	if len(path.Segments) == 1 {
		return mapping.SetInScope(set, path.Depth, path.Segments[0].Text, value)
	}
	layer, err := scopeLayer(set, path.Depth)
	if err != nil {
		return err
	}
	head := path.Segments[0].Text
	for _, b := range *layer {
		if b.Name() == head {
			inner, ok := b.Value.(*docmodel.AttributeSet)
			if !ok {
				return &nmerr.AttrPathConflict{Path: head}
			}
			return mapping.SetPath(inner, path.Segments[1:], value)
		}
	}
	return &nmerr.KeyMissing{Key: head}
}

func removeFromScope(set *docmodel.AttributeSet, path Path) error {
	if len(path.Segments) == 1 {
		return mapping.RemoveFromScope(set, path.Depth, path.Segments[0].Text)
	}
	layer, err := scopeLayer(set, path.Depth)
	if err != nil {
		return err
	}
	head := path.Segments[0].Text
	for _, b := range *layer {
		if b.Name() == head {
			inner, ok := b.Value.(*docmodel.AttributeSet)
			if !ok {
				return &nmerr.AttrPathConflict{Path: head}
			}
			return mapping.RemovePath(inner, path.Segments[1:])
		}
	}
	return &nmerr.KeyMissing{Key: head}
}

func scopeLayer(set *docmodel.AttributeSet, depth int) (*[]*docmodel.Binding, error) {
	if depth == 1 {
		return mapping.EnsureInnermostScope(set), nil
	}
	return mapping.OuterScope(set, depth)
}

// SetValue is the top-level operation named in spec.md §4.6:
// set_value(source, path_spec, value_source). valueSource must parse as
// exactly one Nix expression.
func SetValue(source []byte, pathSpec, valueSource string) (*docmodel.SourceFile, error) {
	sf, err := docmodel.Parse(source)
	if err != nil {
		return nil, err
	}
	path, err := ParsePath(pathSpec)
	if err != nil {
		return nil, err
	}
	valueDoc, err := docmodel.Parse([]byte(valueSource))
	if err != nil {
		return nil, err
	}
	if err := Set(sf, path, valueDoc.Expr); err != nil {
		return nil, err
	}
	return sf, nil
}

// RemoveValue is remove_value(source, path_spec) from spec.md §4.6.
func RemoveValue(source []byte, pathSpec string) (*docmodel.SourceFile, error) {
	sf, err := docmodel.Parse(source)
	if err != nil {
		return nil, err
	}
	path, err := ParsePath(pathSpec)
	if err != nil {
		return nil, err
	}
	if err := Remove(sf, path); err != nil {
		return nil, err
	}
	return sf, nil
}
