package lexer

import "testing"

func TestDoubledQuoteEscape(t *testing.T) {
	l := New(`"Hi""There"`)
	tok, err := l.Dequeue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Kind != String || tok.Text != `Hi"There` {
		t.Fatalf("got %+v", tok)
	}
	if !l.AtEnd() {
		t.Fatalf("expected end of input")
	}
}

func TestUnclosedStringIsLexerError(t *testing.T) {
	l := New(`"unterminated`)
	_, err := l.Dequeue()
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestUnclosedStringAtEOLIsLexerError(t *testing.T) {
	l := New("\"oops\nmore")
	_, err := l.Dequeue()
	if err == nil {
		t.Fatalf("expected error")
	}
}
