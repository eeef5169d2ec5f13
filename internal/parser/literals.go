package parser

import (
	"github.com/miniscript-lang/miniscript/internal/lexer"
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// parseCallPostfix parses an atom followed by any chain of `.name`, `[...]`
// (index or slice), and `(...)` (call) suffixes (spec §4.2 grammar,
// "call/postfix"). `a[from:to]` desugars to a call on the `slice` intrinsic
// rather than a dedicated opcode (see DESIGN.md); the `slice` registration
// in internal/intrinsics/sequences.go already tolerates a missing/non-Number
// bound, so an omitted `from` or `to` is passed through as nil.
func (p *Parser) parseCallPostfix() (value.Value, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Kind {
		case lexer.Dot:
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			tok := p.peek()
			if tok.Kind != lexer.Identifier && tok.Kind != lexer.Keyword {
				return nil, p.errorf("expected field name after '.'")
			}
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			base = &vm.SeqElem{Base: base, Index: value.Str(tok.Text)}

		case lexer.LSquare:
			line := p.line()
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			p.skipStatementSeparators()
			var from value.Value
			if p.peek().Kind != lexer.Colon && p.peek().Kind != lexer.RSquare {
				from, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
			p.skipStatementSeparators()
			if p.peek().Kind == lexer.Colon {
				if _, err := p.advance(); err != nil {
					return nil, err
				}
				p.skipStatementSeparators()
				var to value.Value
				if p.peek().Kind != lexer.RSquare {
					to, err = p.parseExpr()
					if err != nil {
						return nil, err
					}
				}
				p.skipStatementSeparators()
				if p.peek().Kind != lexer.RSquare {
					return nil, p.errorf("expected ']'")
				}
				if _, err := p.advance(); err != nil {
					return nil, err
				}
				base = p.emitCall(vm.Var{Name: "slice"}, []value.Value{base, from, to}, line)
				continue
			}
			if p.peek().Kind != lexer.RSquare {
				return nil, p.errorf("expected ']'")
			}
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			if from == nil {
				return nil, p.errorf("empty index expression")
			}
			base = &vm.SeqElem{Base: base, Index: from}

		case lexer.LParen:
			line := p.line()
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			args, err := p.parseParenArgs()
			if err != nil {
				return nil, err
			}
			base = p.emitCall(base, args, line)

		default:
			return base, nil
		}
	}
}

// parseParenArgs parses a parenthesized, comma-separated argument list.
// Line breaks are allowed after `(` and after each `,` (spec §4.2 "call
// argument lists may span lines").
func (p *Parser) parseParenArgs() ([]value.Value, error) {
	p.skipStatementSeparators()
	var args []value.Value
	if p.peek().Kind == lexer.RParen {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipStatementSeparators()
		if p.peek().Kind == lexer.Comma {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			p.skipStatementSeparators()
			continue
		}
		break
	}
	if p.peek().Kind != lexer.RParen {
		return nil, p.errorf("expected ')'")
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return args, nil
}

// emitCall emits a PushParam per argument followed by CallFunctionA into a
// fresh temp (spec §4.3 call protocol).
func (p *Parser) emitCall(callee value.Value, args []value.Value, line int) value.Value {
	fs := p.top()
	for _, a := range args {
		fs.emit(value.OpPushParam, nil, a, nil, line)
	}
	result := fs.newTemp()
	fs.emit(value.OpCallFunctionA, result, callee, nil, line)
	return result
}

// parseAtom parses the lowest grammar level: literals, identifiers, map/list
// literals, and parenthesized expressions.
func (p *Parser) parseAtom() (value.Value, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Number:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		n, err := value.ParseNumber(tok.Text)
		if err != nil {
			return nil, p.errorf("invalid number literal %q", tok.Text)
		}
		return value.Number(n), nil

	case lexer.String:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return value.Str(tok.Text), nil

	case lexer.Identifier:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		v := vm.Var{Name: tok.Text}
		fs := p.top()
		if fs.localOnlyName != "" && fs.localOnlyName == tok.Text {
			v.LocalOnly = fs.localOnlyMode
		}
		return v, nil

	case lexer.Keyword:
		switch tok.Text {
		case "true":
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			return value.Number(1), nil
		case "false":
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			return value.Number(0), nil
		case "null":
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			return value.Null{}, nil
		case "self", "super":
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			return vm.Var{Name: tok.Text}, nil
		}
		return nil, p.errorf("unexpected keyword %q", tok.Text)

	case lexer.LCurly:
		return p.parseMapLiteral()

	case lexer.LSquare:
		return p.parseListLiteral()

	case lexer.LParen:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		p.skipStatementSeparators()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipStatementSeparators()
		if p.peek().Kind != lexer.RParen {
			return nil, p.errorf("expected ')'")
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, p.errorf("unexpected token %q", tok.Text)
	}
}

// parseMapLiteral parses `{ key: value, ... }`. Key and value operands are
// kept unevaluated (the exact operand trees used as both the Map's stored
// key and fetched back by Get/Keys at eval time, see internal/vm/eval.go
// evalMapLiteral) so the same literal re-evaluates fresh every time it is
// reached, independent of prior iterations through the same code.
func (p *Parser) parseMapLiteral() (value.Value, error) {
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	m := value.NewMap()
	p.skipStatementSeparators()
	if p.peek().Kind == lexer.RCurly {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return m, nil
	}
	for {
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipStatementSeparators()
		if p.peek().Kind != lexer.Colon {
			return nil, p.errorf("expected ':' in map literal")
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		p.skipStatementSeparators()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
		p.skipStatementSeparators()
		if p.peek().Kind == lexer.Comma {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			p.skipStatementSeparators()
			continue
		}
		break
	}
	if p.peek().Kind != lexer.RCurly {
		return nil, p.errorf("expected '}'")
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseListLiteral parses `[ expr, ... ]`.
func (p *Parser) parseListLiteral() (value.Value, error) {
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	p.skipStatementSeparators()
	if p.peek().Kind == lexer.RSquare {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return value.NewList(nil), nil
	}
	var items []value.Value
	for {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipStatementSeparators()
		if p.peek().Kind == lexer.Comma {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			p.skipStatementSeparators()
			continue
		}
		break
	}
	if p.peek().Kind != lexer.RSquare {
		return nil, p.errorf("expected ']'")
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return value.NewList(items), nil
}

// parseParams parses an optional parenthesized parameter list. A function
// literal with no `(...)` at all takes zero parameters.
func (p *Parser) parseParams() ([]value.Param, error) {
	if p.peek().Kind != lexer.LParen {
		return nil, nil
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	p.skipStatementSeparators()
	var params []value.Param
	if p.peek().Kind == lexer.RParen {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return params, nil
	}
	for {
		p.skipStatementSeparators()
		tok := p.peek()
		if tok.Kind != lexer.Identifier {
			return nil, p.errorf("expected parameter name")
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		param := value.Param{Name: tok.Text}
		if p.peek().Kind == lexer.OpAssign {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			def, err := p.parseParamDefault()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		p.skipStatementSeparators()
		if p.peek().Kind == lexer.Comma {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	p.skipStatementSeparators()
	if p.peek().Kind != lexer.RParen {
		return nil, p.errorf("expected ')'")
	}
	if _, err := p.advance(); err != nil {
		return nil, err
	}
	return params, nil
}

// parseParamDefault parses a parameter default value. Default values must
// be literal constants, never temps (spec §4.2: "the parser throws a
// CompilerError if a default value is anything other than a literal"), so
// this deliberately does not call parseExpr, which could emit TAC.
func (p *Parser) parseParamDefault() (value.Value, error) {
	neg := false
	if p.peek().Kind == lexer.OpMinus {
		neg = true
		if _, err := p.advance(); err != nil {
			return nil, err
		}
	}
	tok := p.peek()
	switch {
	case tok.Kind == lexer.Number:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		n, err := value.ParseNumber(tok.Text)
		if err != nil {
			return nil, p.errorf("invalid number literal %q", tok.Text)
		}
		if neg {
			n = -n
		}
		return value.Number(n), nil
	case neg:
		return nil, p.errorf("parameter default must be a literal constant")
	case tok.Kind == lexer.String:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return value.Str(tok.Text), nil
	case tok.Kind == lexer.Keyword && tok.Text == "true":
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return value.Number(1), nil
	case tok.Kind == lexer.Keyword && tok.Text == "false":
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return value.Number(0), nil
	case tok.Kind == lexer.Keyword && tok.Text == "null":
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return value.Null{}, nil
	default:
		return nil, p.errorf("parameter default must be a literal constant")
	}
}

// parseFunctionLiteral parses `function(...) ... end function`, pushing a
// fresh funcState for the body and emitting a BindAssignA that captures the
// current locals as the function's closure (spec §4.2 "function literal").
func (p *Parser) parseFunctionLiteral() (value.Value, error) {
	line := p.line()
	if err := p.consumeKeyword("function"); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	p.pushFuncState()
	if err := p.parseStatementsUntil("end function", "end function"); err != nil {
		return nil, err
	}
	body := p.popFuncState()
	if err := p.consumeKeyword("end function"); err != nil {
		return nil, err
	}
	fn := &value.Function{Params: params, Code: body.code}
	fs := p.top()
	result := fs.newTemp()
	fs.emit(value.OpBindAssignA, result, fn, nil, line)
	return result, nil
}
