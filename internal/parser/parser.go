// Package parser turns MiniScript source text directly into three-address
// code: a single-pass, recursive-descent parser/compiler with no
// intermediate AST (spec §4.2). Forward references (if/else, while/for
// exits, break/continue) are resolved with a per-function-body backpatch
// table and jump-point stack (state.go); expression precedence climbing
// lives in expressions.go; statement dispatch, assignment, and the
// command-call form live in statements.go.
package parser

import (
	"github.com/miniscript-lang/miniscript/internal/lexer"
	"github.com/miniscript-lang/miniscript/internal/value"
)

// Parser compiles MiniScript source to TAC. A single instance is reused
// across REPL turns so that `func` literal and prototype plumbing stays
// consistent; each call to Compile re-lexes its argument from scratch
// (spec §4.2 "REPL/line-continuation": the host buffers raw source text
// across lines and re-submits the whole buffer, rather than the parser
// keeping token-level state between turns).
type Parser struct {
	lex    *lexer.Lexer
	states []*funcState
}

// New creates a Parser. The same instance may be reused for multiple
// Compile calls; each call starts from a fresh lexer and function-state
// stack.
func New() *Parser {
	return &Parser{}
}

// Compile parses source as a complete program and returns its top-level
// TAC. It fails with an *IncompleteInputError (see IsIncomplete) if source
// ends in the middle of an open block (unterminated if/while/for/function)
// — the signal a REPL host uses to keep buffering input rather than
// reporting a real syntax error (spec §6 "need_more_input"). A source that
// ends in a line-continuation token fails here with a CompilerError;
// NeedsMoreInput is the check that reports that case.
func (p *Parser) Compile(source string) ([]value.Instruction, error) {
	p.lex = lexer.New(source)
	p.states = []*funcState{newFuncState()}

	if err := p.parseBlock(); err != nil {
		return nil, err
	}

	if len(p.states) != 1 {
		return nil, errIncomplete("function")
	}
	top := p.states[0]
	if len(top.backpatches) != 0 {
		return nil, errIncomplete("if/while/for")
	}
	if len(top.jumpPoints) != 0 {
		return nil, errIncomplete("while/for")
	}
	return top.code, nil
}

// parseBlock parses statements until end of input, used only for the
// top-level program (nested blocks use parseStatementsUntil with explicit
// stop keywords, see statements.go).
func (p *Parser) parseBlock() error {
	for {
		p.skipStatementSeparators()
		if p.atEOF() {
			return nil
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
}

func (p *Parser) top() *funcState { return p.states[len(p.states)-1] }

func (p *Parser) pushFuncState() { p.states = append(p.states, newFuncState()) }

func (p *Parser) popFuncState() *funcState {
	n := len(p.states)
	fs := p.states[n-1]
	p.states = p.states[:n-1]
	return fs
}

// --- token helpers ---

func (p *Parser) peek() lexer.Token {
	tok, err := p.lex.Peek()
	if err != nil {
		return lexer.Token{Kind: lexer.EOF}
	}
	return tok
}

func (p *Parser) advance() (lexer.Token, error) { return p.lex.Dequeue() }

func (p *Parser) line() int { return p.peek().Line }

func (p *Parser) atEOF() bool { return p.peek().Kind == lexer.EOF }

func (p *Parser) atEOL() bool {
	k := p.peek().Kind
	return k == lexer.EOL || k == lexer.EOF
}

// isKeyword reports whether the current token is the keyword text.
func (p *Parser) isKeyword(text string) bool {
	t := p.peek()
	return t.Kind == lexer.Keyword && t.Text == text
}

// isAnyKeyword reports whether the current token is one of the keywords.
func (p *Parser) isAnyKeyword(texts ...string) bool {
	t := p.peek()
	if t.Kind != lexer.Keyword {
		return false
	}
	for _, want := range texts {
		if t.Text == want {
			return true
		}
	}
	return false
}

// consumeKeyword advances past the expected keyword or returns a
// CompilerError.
func (p *Parser) consumeKeyword(text string) error {
	if !p.isKeyword(text) {
		return p.errorf("expected %q", text)
	}
	_, err := p.advance()
	return err
}

// skipStatementSeparators consumes EOL tokens (newline/`;`) between
// statements.
func (p *Parser) skipStatementSeparators() {
	for p.peek().Kind == lexer.EOL {
		_, _ = p.advance()
	}
}

// IncompleteInputError signals that Compile ran out of tokens in the
// middle of an open construct (spec §6 "need_more_input"). A REPL host
// should buffer more source and retry rather than report this as a
// CompilerError.
type IncompleteInputError struct {
	Waiting string
}

func (e *IncompleteInputError) Error() string {
	return "incomplete input, waiting for: " + e.Waiting
}

func errIncomplete(waiting string) error { return &IncompleteInputError{Waiting: waiting} }

// IsIncomplete reports whether err is an IncompleteInputError.
func IsIncomplete(err error) bool {
	_, ok := err.(*IncompleteInputError)
	return ok
}

// NeedsMoreInput implements spec §4.2's lexical line-continuation check:
// before even attempting to parse, a REPL buffers another line if source's
// last significant token is a binary operator, an open bracket/paren,
// comma, colon, dot, `@`, or one of the keywords and/or/isa/not/new.
func NeedsMoreInput(source string) bool {
	tok, ok := lexer.LastToken(source)
	if !ok {
		return false
	}
	switch tok.Kind {
	case lexer.OpPlus, lexer.OpMinus, lexer.OpTimes, lexer.OpDivide, lexer.OpMod, lexer.OpPower,
		lexer.OpAssign, lexer.OpEqual, lexer.OpNotEqual, lexer.OpLess, lexer.OpLessEqual,
		lexer.OpGreater, lexer.OpGreaterEqual,
		lexer.OpPlusAssign, lexer.OpMinusAssign, lexer.OpTimesAssign, lexer.OpDivideAssign,
		lexer.OpModAssign, lexer.OpPowerAssign,
		lexer.LParen, lexer.LSquare, lexer.LCurly,
		lexer.Comma, lexer.Colon, lexer.Dot, lexer.AddressOf:
		return true
	case lexer.Keyword:
		switch tok.Text {
		case "and", "or", "isa", "not", "new":
			return true
		}
	}
	return false
}
