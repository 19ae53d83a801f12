package edit

import "testing"

func TestParsePathBare(t *testing.T) {
	p, err := ParsePath("foo.bar")
	if err != nil {
		t.Fatalf("ParsePath error: %v", err)
	}
	if p.Depth != 0 {
		t.Errorf("Depth = %d, want 0", p.Depth)
	}
	if len(p.Segments) != 2 || p.Segments[0].Text != "foo" || p.Segments[1].Text != "bar" {
		t.Errorf("Segments = %+v", p.Segments)
	}
}

func TestParsePathScopeSelector(t *testing.T) {
	p, err := ParsePath("@@server.port")
	if err != nil {
		t.Fatalf("ParsePath error: %v", err)
	}
	if p.Depth != 2 {
		t.Errorf("Depth = %d, want 2", p.Depth)
	}
	if len(p.Segments) != 2 || p.Segments[0].Text != "server" || p.Segments[1].Text != "port" {
		t.Errorf("Segments = %+v", p.Segments)
	}
}

func TestParsePathQuotedSegment(t *testing.T) {
	p, err := ParsePath(`foo."has space".bar`)
	if err != nil {
		t.Fatalf("ParsePath error: %v", err)
	}
	want := []string{"foo", "has space", "bar"}
	if len(p.Segments) != len(want) {
		t.Fatalf("Segments = %+v, want %d entries", p.Segments, len(want))
	}
	for i, w := range want {
		if p.Segments[i].Text != w {
			t.Errorf("Segments[%d] = %q, want %q", i, p.Segments[i].Text, w)
		}
	}
	if !p.Segments[1].Quoted {
		t.Error("middle segment should be marked Quoted")
	}
}

func TestParsePathQuotedEscapes(t *testing.T) {
	p, err := ParsePath(`"a\"b"`)
	if err != nil {
		t.Fatalf("ParsePath error: %v", err)
	}
	if len(p.Segments) != 1 || p.Segments[0].Text != `a"b` {
		t.Errorf("Segments = %+v", p.Segments)
	}
}

func TestParsePathRejectsEmpty(t *testing.T) {
	if _, err := ParsePath(""); err == nil {
		t.Fatal("ParsePath(\"\") returned nil error")
	}
	if _, err := ParsePath("@"); err == nil {
		t.Fatal("ParsePath(\"@\") returned nil error")
	}
}

func TestParsePathRejectsInvalidBareSegment(t *testing.T) {
	if _, err := ParsePath("-bad"); err == nil {
		t.Fatal("ParsePath(\"-bad\") returned nil error")
	}
}
