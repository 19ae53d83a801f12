// Package edit implements the two public mutation entry points, set_value
// and remove_value (spec.md §4.6), including the NPATH path grammar they
// share with the CLI.
package edit

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/runenames"

	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/nmerr"
)

// Path is a parsed NPATH: an optional `@`-depth scope selector followed by
// one or more dotted segments (spec.md §6.2: `(@+)? segment ("." segment)*`).
type Path struct {
	Depth    int // 0 means "no scope selector", plain attrpath on the set itself
	Segments []docmodel.PathSegment
}

var bareSegmentRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_'\-]*$`)

// ParsePath parses an NPATH string such as "foo.bar", `@name`, or
// `@@"quoted segment".rest`.
func ParsePath(s string) (Path, error) {
	depth := 0
	for len(s) > 0 && s[0] == '@' {
		depth++
		s = s[1:]
	}
	if s == "" {
		return Path{}, &nmerr.InvalidSegment{Reason: "empty path"}
	}

	segs, err := splitSegments(s)
	if err != nil {
		return Path{}, err
	}
	return Path{Depth: depth, Segments: segs}, nil
}

func splitSegments(s string) ([]docmodel.PathSegment, error) {
	var segs []docmodel.PathSegment
	for len(s) > 0 {
		var raw string
		if s[0] == '"' {
			end, unescaped, err := scanQuoted(s)
			if err != nil {
				return nil, err
			}
			segs = append(segs, docmodel.QuotedSegment(unescaped))
			s = s[end:]
			raw = ""
		} else {
			i := strings.IndexByte(s, '.')
			if i < 0 {
				raw = s
				s = ""
			} else {
				raw = s[:i]
				s = s[i+1:]
			}
			if !bareSegmentRE.MatchString(raw) {
				return nil, &nmerr.InvalidSegment{Segment: raw, Reason: "not a valid bare identifier: " + describeOffender(raw)}
			}
			segs = append(segs, docmodel.BareSegment(raw))
		}
		if raw == "" && len(s) > 0 {
			if s[0] != '.' {
				return nil, &nmerr.InvalidSegment{Reason: "expected '.' after quoted segment"}
			}
			s = s[1:]
		}
	}
	return segs, nil
}

var segmentCharRE = regexp.MustCompile(`[A-Za-z0-9_'\-]`)

// describeOffender names the first rune of raw that isn't legal anywhere in
// a bare NPATH segment, using golang.org/x/text/unicode/runenames so the
// error is readable for non-ASCII input rather than a bare code point.
func describeOffender(raw string) string {
	for i, r := range raw {
		if i == 0 && (r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			continue
		}
		if segmentCharRE.MatchString(string(r)) {
			continue
		}
		return "unexpected " + runenames.Name(r)
	}
	return "must start with a letter or underscore"
}

// scanQuoted reads a `"..."` segment starting at s[0] == '"', honoring \"
// and \\ escapes. It returns the byte offset just past the closing quote
// and the unescaped segment text.
func scanQuoted(s string) (end int, unescaped string, err error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			return i + 1, b.String(), nil
		}
		b.WriteByte(c)
		i++
	}
	return 0, "", &nmerr.InvalidSegment{Reason: "unterminated quoted segment"}
}
