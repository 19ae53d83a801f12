// Package nmerr defines the error sum type shared by every layer of
// nix-manipulator: the parser adapter, the document model, the mapping
// layer, the resolver, and the edit API all return one of these kinds so
// callers can errors.As a specific failure instead of string-matching.
package nmerr

import "fmt"

// ParseError reports invalid Nix syntax in a parsed document or in a value
// expression passed to the edit API.
type ParseError struct {
	Line, Column int
	Message      string
}

func (e *ParseError) Error() string {
	if e.Line == 0 && e.Column == 0 {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// ShapeError reports that the top-level expression of a source file is not
// an attribute set, nor a function/assertion that transitively returns one.
type ShapeError struct {
	Found string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape error: top-level expression is %s, want an attribute set (or a function/assertion returning one)", e.Found)
}

// KeyMissing reports that a binding was not found during get/remove.
type KeyMissing struct {
	Key string
}

func (e *KeyMissing) Error() string {
	return fmt.Sprintf("key missing: %q", e.Key)
}

// AttrPathConflict reports an attempt to overwrite an attrpath root with a
// non-attrset value, or to assign into a non-attrset value.
type AttrPathConflict struct {
	Path string
}

func (e *AttrPathConflict) Error() string {
	return fmt.Sprintf("attrpath conflict: %q is not an attribute set", e.Path)
}

// InvalidSegment reports an empty or malformed identifier segment in an
// attrpath or NPATH spec.
type InvalidSegment struct {
	Segment string
	Reason  string
}

func (e *InvalidSegment) Error() string {
	return fmt.Sprintf("invalid segment %q: %s", e.Segment, e.Reason)
}

// ScopeMissing reports that an outer scope referenced with `@@`-or-deeper
// does not exist.
type ScopeMissing struct {
	Depth int
}

func (e *ScopeMissing) Error() string {
	return fmt.Sprintf("scope missing: no enclosing let-scope at depth %d", e.Depth)
}

// UnboundIdentifierError reports that an identifier resolves to nothing in
// any enclosing scope.
type UnboundIdentifierError struct {
	Name string
}

func (e *UnboundIdentifierError) Error() string {
	return fmt.Sprintf("unbound identifier: %q", e.Name)
}

// ResolutionCycleError reports a cycle found while following identifier
// chains (a = b; b = a;).
type ResolutionCycleError struct {
	Name string
}

func (e *ResolutionCycleError) Error() string {
	return fmt.Sprintf("resolution cycle detected while resolving %q", e.Name)
}

// TriviaUnownedError is a fatal internal-invariant violation: a trivia unit
// produced by the extractor could not be attributed to any owner. This
// indicates a parser/extractor mismatch, not a problem with user input.
type TriviaUnownedError struct {
	Detail string
}

func (e *TriviaUnownedError) Error() string {
	return fmt.Sprintf("trivia unowned: %s (this is a bug in the trivia extractor)", e.Detail)
}
