package parser

import (
	"fmt"

	mserrors "github.com/miniscript-lang/miniscript/internal/errors"
)

func errUnmatchedBackpatch(tag string) error {
	return mserrors.NewCompilerError(mserrors.Position{}, fmt.Sprintf("internal: unmatched backpatch tag %q", tag))
}

// errorf builds a CompilerError at the parser's current line (spec §4.2
// "Errors", spec §7 "CompilerError").
func (p *Parser) errorf(format string, args ...any) error {
	return mserrors.NewCompilerError(mserrors.Position{Line: p.line()}, fmt.Sprintf(format, args...))
}
