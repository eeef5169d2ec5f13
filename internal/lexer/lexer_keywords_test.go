package lexer

import "testing"

func TestCompoundEndKeywords(t *testing.T) {
	cases := map[string]string{
		"end if":       "end if",
		"end while":    "end while",
		"end for":      "end for",
		"end function": "end function",
	}
	for src, want := range cases {
		l := New(src)
		tok, err := l.Dequeue()
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if tok.Kind != Keyword || tok.Text != want {
			t.Fatalf("%q: got %+v want Keyword %q", src, tok, want)
		}
	}
}

func TestEndWithoutFollowerIsError(t *testing.T) {
	l := New("end")
	_, err := l.Dequeue()
	if err == nil {
		t.Fatalf("expected error for bare 'end'")
	}
}

func TestElseIfIsSingleKeyword(t *testing.T) {
	l := New("else if x")
	tok, err := l.Dequeue()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != Keyword || tok.Text != "else if" {
		t.Fatalf("got %+v", tok)
	}
}

func TestBareElseIsNotCombined(t *testing.T) {
	l := New("else\nprint 1")
	tok, err := l.Dequeue()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != Keyword || tok.Text != "else" {
		t.Fatalf("got %+v", tok)
	}
}

func TestTwoCharOperatorsPrecedeOneChar(t *testing.T) {
	cases := map[string]Kind{
		"==": OpEqual, "!=": OpNotEqual, "<=": OpLessEqual, ">=": OpGreaterEqual,
		"+=": OpPlusAssign, "-=": OpMinusAssign, "*=": OpTimesAssign,
		"/=": OpDivideAssign, "%=": OpModAssign, "^=": OpPowerAssign,
	}
	for src, want := range cases {
		l := New(src)
		tok, err := l.Dequeue()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind != want {
			t.Fatalf("%q: got kind %v want %v", src, tok.Kind, want)
		}
	}
}
