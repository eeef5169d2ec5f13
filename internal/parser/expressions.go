package parser

import (
	"github.com/miniscript-lang/miniscript/internal/lexer"
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// parseExpr is the entry point for expression parsing: function literal,
// then the `or` precedence level downward (spec §4.2 "Grammar", low to
// high: function -> or -> and -> not -> isa -> comparison -> additive ->
// multiplicative -> unary minus -> new -> power -> address-of ->
// call/postfix -> map/list literal -> parenthesized -> atom).
func (p *Parser) parseExpr() (value.Value, error) {
	if p.isKeyword("function") {
		return p.parseFunctionLiteral()
	}
	return p.parseOr()
}

func (p *Parser) parseOr() (value.Value, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		left, err = p.parseShortCircuitRHS(value.OpAOrB, left, line, p.parseAnd)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseAnd() (value.Value, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		left, err = p.parseShortCircuitRHS(value.OpAAndB, left, line, p.parseNot)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parseShortCircuitRHS implements spec §4.2 "Short-circuit and/or": the
// fuzzy result is always computed (clamp01(a*b) or clamp01(a+b-a*b), done
// inside the VM's AAndB/AOrB), but a short-circuit jump guarded by
// GotoAifNotB (for `and`) or GotoAifTrulyB (for `or`) skips evaluating the
// right operand when left already decides the outcome, forcing the result
// temp to exactly 0 or 1 on the short-circuit path. The guard is emitted
// against left before parseOperand runs, so a side-effecting right operand's
// TAC lands after the guard and is genuinely skipped, not just its combine.
func (p *Parser) parseShortCircuitRHS(op value.OpCode, left value.Value, line int, parseOperand func() (value.Value, error)) (value.Value, error) {
	fs := p.top()
	result := fs.newTemp()

	var guard value.OpCode
	var shortValue value.Number
	if op == value.OpAAndB {
		guard = value.OpGotoAifNotB
		shortValue = 0
	} else {
		guard = value.OpGotoAifTrulyB
		shortValue = 1
	}

	skipLine := fs.emit(guard, nil, nil, left, line)

	right, err := parseOperand()
	if err != nil {
		return nil, err
	}
	fs.emit(op, result, left, right, line)
	doneLine := fs.emit(value.OpGotoA, nil, nil, nil, line)
	fs.patchTarget(skipLine, fs.here())
	fs.emit(value.OpAssignA, result, shortValue, nil, line)
	fs.patchTarget(doneLine, fs.here())
	return result, nil
}

func (p *Parser) parseNot() (value.Value, error) {
	if p.isKeyword("not") {
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseIsa()
		if err != nil {
			return nil, err
		}
		fs := p.top()
		result := fs.newTemp()
		fs.emit(value.OpNotA, result, operand, nil, line)
		return result, nil
	}
	return p.parseIsa()
}

func (p *Parser) parseIsa() (value.Value, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("isa") {
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		fs := p.top()
		result := fs.newTemp()
		fs.emit(value.OpAIsaB, result, left, right, line)
		left = result
	}
	return left, nil
}

var compareOps = map[lexer.Kind]value.OpCode{
	lexer.OpEqual:        value.OpAEqualB,
	lexer.OpNotEqual:     value.OpANotEqualB,
	lexer.OpLess:         value.OpALessThanB,
	lexer.OpLessEqual:    value.OpALessOrEqualB,
	lexer.OpGreater:      value.OpAGreaterThanB,
	lexer.OpGreaterEqual: value.OpAGreatOrEqualB,
}

// parseComparison implements spec §4.2 "Comparison chaining": `a < b < c`
// parses as `(a<b) * (b<c)`, the chained comparisons ANDed together via
// multiplication of their 0/1 truth values.
func (p *Parser) parseComparison() (value.Value, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	var chain value.Value
	first := true
	for {
		op, ok := compareOps[p.peek().Kind]
		if !ok {
			break
		}
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		fs := p.top()
		cmp := fs.newTemp()
		fs.emit(op, cmp, left, right, line)
		if first {
			chain = cmp
			first = false
		} else {
			combined := fs.newTemp()
			fs.emit(value.OpATimesB, combined, chain, cmp, line)
			chain = combined
		}
		left = right
	}
	if first {
		return left, nil
	}
	return chain, nil
}

func (p *Parser) parseAdditive() (value.Value, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op value.OpCode
		switch p.peek().Kind {
		case lexer.OpPlus:
			op = value.OpAPlusB
		case lexer.OpMinus:
			op = value.OpAMinusB
		default:
			return left, nil
		}
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		fs := p.top()
		result := fs.newTemp()
		fs.emit(op, result, left, right, line)
		left = result
	}
}

func (p *Parser) parseMultiplicative() (value.Value, error) {
	left, err := p.parseUnaryMinus()
	if err != nil {
		return nil, err
	}
	for {
		var op value.OpCode
		switch p.peek().Kind {
		case lexer.OpTimes:
			op = value.OpATimesB
		case lexer.OpDivide:
			op = value.OpADivideB
		case lexer.OpMod:
			op = value.OpAModB
		default:
			return left, nil
		}
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnaryMinus()
		if err != nil {
			return nil, err
		}
		fs := p.top()
		result := fs.newTemp()
		fs.emit(op, result, left, right, line)
		left = result
	}
}

func (p *Parser) parseUnaryMinus() (value.Value, error) {
	if p.peek().Kind == lexer.OpMinus {
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnaryMinus()
		if err != nil {
			return nil, err
		}
		fs := p.top()
		result := fs.newTemp()
		fs.emit(value.OpAMinusB, result, value.Number(0), operand, line)
		return result, nil
	}
	return p.parseNew()
}

func (p *Parser) parseNew() (value.Value, error) {
	if p.isKeyword("new") {
		line := p.line()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		proto, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		fs := p.top()
		result := fs.newTemp()
		fs.emit(value.OpNewA, result, proto, nil, line)
		return result, nil
	}
	return p.parsePower()
}

// parsePower is right-associative; its right operand may itself start with
// unary minus (`2^-1`), which sits at a lower precedence level than power
// in the grammar table but is accepted here as a pragmatic extension
// (spec §4.2 grammar; see DESIGN.md).
func (p *Parser) parsePower() (value.Value, error) {
	left, err := p.parseAddressOf()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != lexer.OpPower {
		return left, nil
	}
	line := p.line()
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	var right value.Value
	if p.peek().Kind == lexer.OpMinus {
		right, err = p.parseUnaryMinus()
	} else {
		right, err = p.parsePower()
	}
	if err != nil {
		return nil, err
	}
	fs := p.top()
	result := fs.newTemp()
	fs.emit(value.OpAPowB, result, left, right, line)
	return result, nil
}

// parseAddressOf implements the `@` prefix (spec §4.2 "Auto-invoke"): it
// suppresses the VM's implicit zero-argument call on a function-valued
// variable/member read by setting NoInvoke on the resulting Var/SeqElem.
func (p *Parser) parseAddressOf() (value.Value, error) {
	if p.peek().Kind != lexer.AddressOf {
		return p.parseCallPostfix()
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseCallPostfix()
	if err != nil {
		return nil, err
	}
	switch v := operand.(type) {
	case vm.Var:
		v.NoInvoke = true
		return v, nil
	case *vm.SeqElem:
		v.NoInvoke = true
		return v, nil
	default:
		return nil, p.errorf("'@' must precede a variable or function reference")
	}
}
