// Package cst wraps the tree-sitter concrete syntax tree produced by the Nix
// grammar in a small typed facade, so the rest of nix-manipulator never
// imports the tree-sitter bindings directly.
package cst

// Kind is the type of a concrete syntax node, translated once at the parser
// adapter boundary from the grammar's string node-type names (as reported by
// tree-sitter-nix) into a dense enum.
type Kind uint8

// Node kinds, grouped the way the Nix grammar groups its node-types.json.
const (
	KindUnknown Kind = iota
	KindError

	// Trivia-adjacent tokens (never produce semantic nodes on their own).
	KindComment

	// Literals.
	KindInteger
	KindFloat
	KindString
	KindStringFragment
	KindEscapeSequence
	KindInterpolation
	KindIndentedString
	KindPath
	KindHPath
	KindSPath
	KindURI
	KindIdentifier
	KindEllipses

	// Collections.
	KindList
	KindAttrSet
	KindBindingSet
	KindBinding
	KindInherit
	KindInheritFrom
	KindAttrPath
	KindAttr

	// Control expressions.
	KindLet
	KindWith
	KindIf
	KindAssert
	KindSelect
	KindApply
	KindFunction
	KindFormals
	KindFormal
	KindBinaryExpr
	KindUnaryExpr
	KindHasAttr
	KindParenthesized

	// Top level.
	KindSourceCode
)

// kindNames mirrors the node-type strings tree-sitter-nix reports; it is the
// single place that knows the grammar's vocabulary.
var kindNames = map[string]Kind{
	"ERROR":                       KindError,
	"comment":                     KindComment,
	"integer_expression":          KindInteger,
	"float_expression":            KindFloat,
	"string_expression":           KindString,
	"string_fragment":             KindStringFragment,
	"escape_sequence":             KindEscapeSequence,
	"interpolation":               KindInterpolation,
	"indented_string_expression":  KindIndentedString,
	"path_expression":             KindPath,
	"hpath":                       KindHPath,
	"spath":                       KindSPath,
	"uri_expression":              KindURI,
	"identifier":                  KindIdentifier,
	"variable_expression":         KindIdentifier,
	"ellipses":                    KindEllipses,
	"list_expression":             KindList,
	"attrset_expression":          KindAttrSet,
	"rec_attrset_expression":      KindAttrSet,
	"binding_set":                 KindBindingSet,
	"binding":                     KindBinding,
	"inherit":                     KindInherit,
	"inherit_from":                KindInheritFrom,
	"attrpath":                    KindAttrPath,
	"attr":                        KindAttr,
	"let_expression":              KindLet,
	"let_in_expression":           KindLet,
	"with_expression":             KindWith,
	"if_expression":               KindIf,
	"assert_expression":           KindAssert,
	"select_expression":           KindSelect,
	"apply_expression":            KindApply,
	"function_expression":         KindFunction,
	"formals":                     KindFormals,
	"formal":                      KindFormal,
	"binary_expression":           KindBinaryExpr,
	"unary_expression":            KindUnaryExpr,
	"has_attr_expression":         KindHasAttr,
	"parenthesized_expression":    KindParenthesized,
	"source_code":                 KindSourceCode,
}

// kindStrings is the reverse of kindNames, built once at package init for
// Kind.String().
var kindStrings map[Kind]string

func init() {
	kindStrings = make(map[Kind]string, len(kindNames))
	for s, k := range kindNames {
		if _, ok := kindStrings[k]; !ok {
			kindStrings[k] = s
		}
	}
}

// KindFromGrammar translates a raw tree-sitter node-type string into a Kind.
// Unknown grammar node types (new grammar versions, internal supertypes)
// come back as KindUnknown rather than failing, since the extractor only
// needs to recognize the node types it acts on.
func KindFromGrammar(nodeType string) Kind {
	if k, ok := kindNames[nodeType]; ok {
		return k
	}
	return KindUnknown
}

// String returns a human-readable name for the kind, used in error messages.
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return "unknown"
}
