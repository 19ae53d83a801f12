package docmodel

// TriviaKind classifies a unit of non-semantic source text.
type TriviaKind uint8

const (
	// Comment is a single-line `# ...` comment.
	Comment TriviaKind = iota
	// MultilineComment is a `/* ... */` block comment.
	MultilineComment
	// LineBreak is a single `\n` that does not start a BlankLine run.
	LineBreak
	// BlankLine is a run of two or more consecutive line breaks, collapsed
	// to one unit (spec.md §4.1).
	BlankLine
)

// Trivia is one unit of whitespace or comment text attached to a semantic
// node's Before or After list. Every Trivia unit belongs to exactly one
// owner (spec.md §3.3); the extractor in build.go is the only place that
// decides ownership.
type Trivia struct {
	Kind TriviaKind
	// Text holds the comment body (without its leading `#` or surrounding
	// `/* */`) for Comment and MultilineComment; empty otherwise.
	Text string
	// Inline is true for a Comment that shares a source line with a
	// preceding non-whitespace token, as opposed to one on its own line.
	Inline bool
}

// LineComment constructs an inline or block single-line comment trivia.
func LineComment(text string, inline bool) Trivia {
	return Trivia{Kind: Comment, Text: text, Inline: inline}
}

// BlockComment constructs a `/* ... */` comment trivia.
func BlockComment(text string) Trivia {
	return Trivia{Kind: MultilineComment, Text: text}
}

// NewLineBreak constructs a single line-break trivia unit.
func NewLineBreak() Trivia { return Trivia{Kind: LineBreak} }

// NewBlankLine constructs a blank-line trivia unit.
func NewBlankLine() Trivia { return Trivia{Kind: BlankLine} }

// triviaBase is embedded by every Expr variant to provide the `before` and
// `after` trivia sequences plus their accessors, so rebuild rules never have
// to special-case trivia per variant (spec.md §9: "define the owner rule
// once in the extractor; every variant's rebuild simply emits before, the
// variant's own text, then after").
type triviaBase struct {
	before []Trivia
	after  []Trivia
}

func (b *triviaBase) Before() []Trivia { return b.before }
func (b *triviaBase) After() []Trivia  { return b.after }

func (b *triviaBase) SetBefore(t []Trivia) { b.before = t }
func (b *triviaBase) SetAfter(t []Trivia)  { b.after = t }

// hasTrailingInline reports whether a trivia sequence starts with an inline
// comment, which per spec.md §3.1 forces the rebuilder to place a binding's
// trailing `;` on a fresh line rather than let it run into the comment.
func hasTrailingInline(ts []Trivia) bool {
	return len(ts) > 0 && ts[0].Kind == Comment && ts[0].Inline
}

// renderBefore writes the Before trivia; renderExpr writes the indent prefix
// that precedes the node's own text afterwards. A standalone comment never supplies
// its own line terminator: the gap it occupied always carried a real
// LineBreak/BlankLine trivia unit of its own (a standalone comment runs to
// the end of its source line, so at least one newline always separates it
// from whatever follows), and that following unit supplies the break.
func renderBefore(w *renderer, before []Trivia) {
	for _, t := range before {
		switch t.Kind {
		case LineBreak:
			w.newline()
		case BlankLine:
			w.blankLine()
		case Comment:
			w.writeIndent()
			w.writeString("# ")
			w.writeString(t.Text)
		case MultilineComment:
			w.writeIndent()
			w.writeString("/* ")
			w.writeString(t.Text)
			w.writeString(" */")
		}
	}
}

// renderAfter writes trivia that trails a node on the same (or following)
// line: an inline comment first, then any line breaks/blank lines.
func renderAfter(w *renderer, after []Trivia) {
	for _, t := range after {
		switch t.Kind {
		case Comment:
			if t.Inline {
				w.writeString(" # ")
				w.writeString(t.Text)
			} else {
				w.newline()
				w.writeIndent()
				w.writeString("# ")
				w.writeString(t.Text)
			}
		case MultilineComment:
			w.writeString(" /* ")
			w.writeString(t.Text)
			w.writeString(" */")
		case LineBreak:
			w.newline()
		case BlankLine:
			w.blankLine()
		}
	}
}
