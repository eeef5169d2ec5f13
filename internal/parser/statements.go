package parser

import (
	"github.com/miniscript-lang/miniscript/internal/lexer"
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// parseStatement dispatches on the current token to one of the statement
// forms (spec §4.2 "Statements").
func (p *Parser) parseStatement() error {
	switch {
	case p.isKeyword("if"):
		return p.parseIf()
	case p.top().singleLineIf && p.isAnyKeyword("while", "for"):
		return p.errorf("loops are not allowed in a single-line if")
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("break"):
		return p.parseBreak()
	case p.isKeyword("continue"):
		return p.parseContinue()
	case p.isKeyword("return"):
		return p.parseReturn()
	default:
		return p.parseExpressionStatement()
	}
}

// parseStatementsUntil parses statements until the current token is one of
// stops (left unconsumed for the caller), returning an IncompleteInputError
// tagged waiting if input runs out first.
func (p *Parser) parseStatementsUntil(waiting string, stops ...string) error {
	for {
		p.skipStatementSeparators()
		if p.atEOF() {
			return errIncomplete(waiting)
		}
		if p.isAnyKeyword(stops...) {
			return nil
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
}

// atStatementEnd reports whether the current position ends a statement
// without a following expression.
func (p *Parser) atStatementEnd() bool {
	if p.atEOL() {
		return true
	}
	return p.isAnyKeyword("else", "else if")
}

func (p *Parser) parseBreak() error {
	line := p.line()
	if _, err := p.advance(); err != nil {
		return err
	}
	fs := p.top()
	if len(fs.jumpPoints) == 0 {
		return p.errorf("'break' outside a loop")
	}
	idx := fs.emit(value.OpGotoA, nil, nil, nil, line)
	fs.pushBackpatch(idx, "break")
	return nil
}

func (p *Parser) parseContinue() error {
	line := p.line()
	if _, err := p.advance(); err != nil {
		return err
	}
	fs := p.top()
	jp, ok := fs.topJumpPoint()
	if !ok {
		return p.errorf("'continue' outside a loop")
	}
	fs.emit(value.OpGotoA, nil, value.Number(jp.line), nil, line)
	return nil
}

func (p *Parser) parseReturn() error {
	line := p.line()
	if _, err := p.advance(); err != nil {
		return err
	}
	var expr value.Value = value.Null{}
	if !p.atStatementEnd() {
		e, err := p.parseExpr()
		if err != nil {
			return err
		}
		expr = e
	}
	p.top().emit(value.OpReturnA, nil, expr, nil, line)
	return nil
}

// parseWhile implements spec §4.2 "while": condition re-checked at the top
// of the loop, break/the exit condition share one exit target patched by
// patchLoopExit.
func (p *Parser) parseWhile() error {
	line := p.line()
	if _, err := p.advance(); err != nil {
		return err
	}
	fs := p.top()
	loopStart := fs.here()
	fs.pushJumpPoint(loopStart, "while")

	cond, err := p.parseExpr()
	if err != nil {
		fs.popJumpPoint()
		return err
	}
	condJump := fs.emit(value.OpGotoAifNotB, nil, nil, cond, line)
	fs.pushBackpatch(condJump, "end while")

	if err := p.parseStatementsUntil("end while", "end while"); err != nil {
		fs.popJumpPoint()
		return err
	}
	if err := p.consumeKeyword("end while"); err != nil {
		fs.popJumpPoint()
		return err
	}
	fs.emit(value.OpGotoA, nil, value.Number(loopStart), nil, p.line())
	if err := fs.patchLoopExit("end while"); err != nil {
		return err
	}
	fs.popJumpPoint()
	return nil
}

// parseFor implements spec §4.2 "for": a hidden `__<var>_idx` counter drives
// ElemBofIterA over the evaluated (and cached in a temp, so it is only
// evaluated once) sequence expression.
func (p *Parser) parseFor() error {
	line := p.line()
	if _, err := p.advance(); err != nil {
		return err
	}
	varTok := p.peek()
	if varTok.Kind != lexer.Identifier {
		return p.errorf("expected loop variable name")
	}
	if _, err := p.advance(); err != nil {
		return err
	}
	if err := p.consumeKeyword("in"); err != nil {
		return err
	}
	seqExpr, err := p.parseExpr()
	if err != nil {
		return err
	}

	fs := p.top()
	seqTemp := fs.newTemp()
	fs.emit(value.OpAssignA, seqTemp, seqExpr, nil, line)

	idxVar := vm.Var{Name: "__" + varTok.Text + "_idx"}
	fs.emit(value.OpAssignA, idxVar, value.Number(-1), nil, line)

	loopStart := fs.here()
	fs.pushJumpPoint(loopStart, "for")

	fs.emit(value.OpAPlusB, idxVar, idxVar, value.Number(1), line)
	lenTemp := fs.newTemp()
	fs.emit(value.OpLengthOfA, lenTemp, seqTemp, nil, line)
	condTemp := fs.newTemp()
	fs.emit(value.OpAGreatOrEqualB, condTemp, idxVar, lenTemp, line)
	exitJump := fs.emit(value.OpGotoAifB, nil, nil, condTemp, line)
	fs.pushBackpatch(exitJump, "end for")
	fs.emit(value.OpElemBofIterA, vm.Var{Name: varTok.Text}, seqTemp, idxVar, line)

	if err := p.parseStatementsUntil("end for", "end for"); err != nil {
		fs.popJumpPoint()
		return err
	}
	if err := p.consumeKeyword("end for"); err != nil {
		fs.popJumpPoint()
		return err
	}
	fs.emit(value.OpGotoA, nil, value.Number(loopStart), nil, p.line())
	if err := fs.patchLoopExit("end for"); err != nil {
		return err
	}
	fs.popJumpPoint()
	return nil
}

// parseIf implements spec §4.2's if-block backpatch algorithm: the initial
// GotoAifNotB is tagged "else", an "if:MARK" sentinel marks the bottom of
// the backpatch stack for this statement, and patchIfBlock walks down to
// that sentinel when `end if` (or, for the single-line form, end of line)
// is reached. Detecting a non-EOL token right after `then` distinguishes
// the single-line form, which forbids nested loops.
func (p *Parser) parseIf() error {
	line := p.line()
	if err := p.consumeKeyword("if"); err != nil {
		return err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.consumeKeyword("then"); err != nil {
		return err
	}

	fs := p.top()
	condJump := fs.emit(value.OpGotoAifNotB, nil, nil, cond, line)
	fs.pushBackpatch(-1, "if:MARK")
	fs.pushBackpatch(condJump, "else")

	if p.atEOL() {
		for {
			if err := p.parseStatementsUntil("end if", "else", "else if", "end if"); err != nil {
				return err
			}
			if p.isAnyKeyword("else", "else if") {
				if err := p.parseElseClause(); err != nil {
					return err
				}
				continue
			}
			break
		}
		if err := p.consumeKeyword("end if"); err != nil {
			return err
		}
		return fs.patchIfBlock()
	}

	if err := p.parseSingleLineBody(); err != nil {
		return err
	}
	for p.isAnyKeyword("else", "else if") {
		if err := p.parseElseClause(); err != nil {
			return err
		}
		if !p.atEOL() {
			if err := p.parseSingleLineBody(); err != nil {
				return err
			}
		}
	}
	return fs.patchIfBlock()
}

// parseSingleLineBody parses the single statement making up a single-line
// if/else body, with nested loops forbidden (spec §4.2 "If blocks").
func (p *Parser) parseSingleLineBody() error {
	fs := p.top()
	prev := fs.singleLineIf
	fs.singleLineIf = true
	err := p.parseStatement()
	fs.singleLineIf = prev
	return err
}

// parseElseClause consumes an `else`/`else if` keyword, emits the
// unconditional forward jump to the statement's end, and (for `else if`)
// the next conditional guard (spec §4.2 "On else/else if").
func (p *Parser) parseElseClause() error {
	text := p.peek().Text
	line := p.line()
	if _, err := p.advance(); err != nil {
		return err
	}
	fs := p.top()
	jmp := fs.emit(value.OpGotoA, nil, nil, nil, line)
	if err := fs.patchTopTagged("else", fs.here()); err != nil {
		return err
	}
	fs.pushBackpatch(jmp, "end if")

	if text == "else if" {
		cond, err := p.parseExpr()
		if err != nil {
			return err
		}
		if err := p.consumeKeyword("then"); err != nil {
			return err
		}
		condJump := fs.emit(value.OpGotoAifNotB, nil, nil, cond, p.line())
		fs.pushBackpatch(condJump, "else")
	}
	return nil
}

var compoundAssignOps = map[lexer.Kind]value.OpCode{
	lexer.OpPlusAssign:   value.OpAPlusB,
	lexer.OpMinusAssign:  value.OpAMinusB,
	lexer.OpTimesAssign:  value.OpATimesB,
	lexer.OpDivideAssign: value.OpADivideB,
	lexer.OpModAssign:    value.OpAModB,
	lexer.OpPowerAssign:  value.OpAPowB,
}

// parseExpressionStatement handles the three statement forms that start
// with a bare expression: plain assignment, compound assignment, and the
// expression-statement form, which turns into a command call (spec §4.2:
// "successive comma-or-space-separated expressions become positional
// arguments, then a CallFunctionA with AssignImplicit on the result").
func (p *Parser) parseExpressionStatement() error {
	line := p.line()
	first, err := p.parseExpr()
	if err != nil {
		return err
	}

	if p.peek().Kind == lexer.OpAssign {
		if _, err := p.advance(); err != nil {
			return err
		}
		lvalue, err := p.asLValue(first)
		if err != nil {
			return err
		}
		fs := p.top()
		if v, ok := lvalue.(vm.Var); ok {
			prevName, prevMode := fs.localOnlyName, fs.localOnlyMode
			fs.localOnlyName, fs.localOnlyMode = v.Name, vm.LocalOnlyWarn
			rhs, err := p.parseExpr()
			fs.localOnlyName, fs.localOnlyMode = prevName, prevMode
			if err != nil {
				return err
			}
			p.emitAssign(lvalue, rhs, line)
			return nil
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return err
		}
		p.emitAssign(lvalue, rhs, line)
		return nil
	}

	if op, ok := compoundAssignOps[p.peek().Kind]; ok {
		if _, err := p.advance(); err != nil {
			return err
		}
		lvalue, err := p.asLValue(first)
		if err != nil {
			return err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return err
		}
		fs := p.top()
		tmp := fs.newTemp()
		fs.emit(op, tmp, lvalue, rhs, line)
		p.emitAssign(lvalue, tmp, line)
		return nil
	}

	var args []value.Value
	for !p.atCommandArgsEnd() {
		arg, err := p.parseExpr()
		if err != nil {
			return err
		}
		args = append(args, arg)
		if p.peek().Kind == lexer.Comma {
			if _, err := p.advance(); err != nil {
				return err
			}
		}
	}
	fs := p.top()
	for _, a := range args {
		fs.emit(value.OpPushParam, nil, a, nil, line)
	}
	result := fs.newTemp()
	fs.emit(value.OpCallFunctionA, result, first, nil, line)
	fs.emit(value.OpAssignImplicit, vm.Var{Name: "_"}, result, nil, line)
	return nil
}

func (p *Parser) atCommandArgsEnd() bool {
	return p.atEOL() || p.isAnyKeyword("else", "else if")
}

// asLValue validates that node is a variable or indexed reference and
// suppresses auto-invoke on it: used both as the assignment target and,
// for compound assignment, as the operand that reads the current value
// (spec §4.2 "Auto-invoke is suppressed on assignment targets").
func (p *Parser) asLValue(node value.Value) (value.Value, error) {
	switch v := node.(type) {
	case vm.Var:
		v.NoInvoke = true
		return v, nil
	case *vm.SeqElem:
		cp := *v
		cp.NoInvoke = true
		return &cp, nil
	default:
		return nil, p.errorf("invalid assignment target")
	}
}

// emitAssign implements spec §4.2's two "MUST preserve" peephole
// optimizations: retargeting the LHS of the instruction that just produced
// rhs (whether an ordinary temp result or a function literal's
// BindAssignA) instead of emitting a separate AssignA, unless a jump lands
// on the line that AssignA would otherwise have occupied. List/map literals
// always go through CopyA so each reached occurrence is independent.
func (p *Parser) emitAssign(lvalue, rhs value.Value, line int) {
	fs := p.top()
	switch rhs.(type) {
	case *value.List, *value.Map:
		fs.emit(value.OpCopyA, lvalue, rhs, nil, line)
		return
	}
	if t, ok := rhs.(vm.Temp); ok {
		if last := fs.lastLine(); last >= 0 {
			if lhsTemp, ok := fs.code[last].LHS.(vm.Temp); ok && lhsTemp.Index == t.Index {
				if !fs.isJumpTarget(fs.here()) {
					fs.code[last].LHS = lvalue
					return
				}
			}
		}
	}
	fs.emit(value.OpAssignA, lvalue, rhs, nil, line)
}
