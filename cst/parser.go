package cst

import (
	"fmt"
	"os"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tsnix "github.com/tree-sitter-grammars/tree-sitter-nix/bindings/go"

	"github.com/cbro/nix-manipulator/nmerr"
)

// Tree is a parsed concrete syntax tree plus the source bytes it was built
// from. The source is retained for the lifetime of the Tree because every
// Node's Text() slices into it; once the Tree (and any Node derived from it)
// is no longer reachable, the bytes can be collected normally (spec.md §5).
type Tree struct {
	raw    *sitter.Tree
	source []byte
}

// Root returns the tree's root node, always kind KindSourceCode.
func (t *Tree) Root() *Node { return wrap(t.raw.RootNode(), t.source) }

// Source returns the original source bytes the tree was parsed from.
func (t *Tree) Source() []byte { return t.source }

func nixLanguage() (*sitter.Language, error) {
	lang := sitter.NewLanguage(tsnix.Language())
	if lang == nil {
		return nil, fmt.Errorf("cst: failed to load tree-sitter-nix grammar")
	}
	return lang, nil
}

// Parse parses Nix source text into a concrete syntax tree. It fails with
// *nmerr.ParseError if the grammar could not make sense of the input at all
// (spec.md treats "best-effort" editing of malformed input as unsupported:
// any ERROR node or missing-token recovery in the tree is rejected here).
func Parse(source []byte) (*Tree, error) {
	lang, err := nixLanguage()
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("cst: setting language: %w", err)
	}

	raw := parser.Parse(source, nil)
	if raw == nil {
		return nil, &nmerr.ParseError{Message: "tree-sitter returned no tree"}
	}

	tree := &Tree{raw: raw, source: source}
	if root := tree.Root(); root.HasError() {
		bad := firstErrorNode(root)
		p := bad.StartPoint()
		return nil, &nmerr.ParseError{
			Line:    p.Line + 1,
			Column:  p.Column + 1,
			Message: fmt.Sprintf("unexpected %s near %q", bad.GrammarType(), truncate(bad.Text(), 32)),
		}
	}

	return tree, nil
}

// ParseFile opens, fully reads, and closes path before parsing it; no file
// handle is retained beyond the call (spec.md §5).
func ParseFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cst: reading %s: %w", path, err)
	}
	return Parse(data)
}

func firstErrorNode(n *Node) *Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.HasError() {
			return firstErrorNode(c)
		}
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
