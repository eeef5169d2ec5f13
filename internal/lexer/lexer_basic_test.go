package lexer

import "testing"

func TestPeekIdempotent(t *testing.T) {
	l := New("foo + bar")
	a, err := l.Peek()
	if err != nil {
		t.Fatal(err)
	}
	b, err := l.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("peek not idempotent: %+v vs %+v", a, b)
	}
	c, err := l.Dequeue()
	if err != nil {
		t.Fatal(err)
	}
	if c != a {
		t.Fatalf("dequeue mismatch: %+v vs %+v", c, a)
	}
}

func TestLineNumAdvancesOnNewlines(t *testing.T) {
	l := New("a\nb\nc\n")
	count := 0
	for {
		tok, err := l.Dequeue()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind == EOF {
			break
		}
		if tok.Kind == EOL {
			count++
		}
	}
	if l.LineNum() != 1+count {
		t.Fatalf("line_num = %d, want %d", l.LineNum(), 1+count)
	}
}

func TestCRLFIsSingleEOLToken(t *testing.T) {
	l := New("a\r\nb")
	_, _ = l.Dequeue() // a
	tok, err := l.Dequeue()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != EOL {
		t.Fatalf("expected EOL, got %+v", tok)
	}
	if l.LineNum() != 2 {
		t.Fatalf("LineNum = %d, want 2", l.LineNum())
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	for _, text := range []string{"x", "myVar", "_hidden", "abc123"} {
		l := New(text)
		tok, err := l.Dequeue()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind != Identifier || tok.Text != text {
			t.Fatalf("got %+v want Identifier %q", tok, text)
		}
		if !l.AtEnd() {
			t.Fatalf("expected at_end after %q", text)
		}
	}
}

func TestNumericLiteralRoundTrip(t *testing.T) {
	for _, text := range []string{"0", "42", "3.14", "1e10", "1E-5", ".5"} {
		l := New(text)
		tok, err := l.Dequeue()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind != Number || tok.Text != text {
			t.Fatalf("got %+v want Number %q", tok, text)
		}
	}
}
