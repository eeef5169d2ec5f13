package parser

import (
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

// backpatch is a pending edit to a TAC line's jump-target operand, to be
// filled in once a forward label is known (spec §4.2, GLOSSARY
// "Backpatch"). line is an index into funcState.code; -1 marks the
// sentinel pushed at the start of an if-block ("if:MARK") that has no
// line of its own.
type backpatch struct {
	line int
	tag  string
}

// jumpPoint is a recorded source position inside a loop, targeted by
// `continue` and by the unconditional jump at loop bottom (GLOSSARY "Jump
// point").
type jumpPoint struct {
	line int
	kind string // "while" or "for", informational only
}

// funcState is the per-function-body compiler state pushed when entering
// a `function` literal and popped on `end function` (spec §4.2 "State per
// function body"). The top-level program body is funcState index 0.
type funcState struct {
	code        []value.Instruction
	backpatches []backpatch
	jumpPoints  []jumpPoint
	nextTemp    int

	// localOnlyName/localOnlyMode implement spec §4.2's "local_only_identifier
	// and local_only_strict": set while parsing the RHS of an assignment so
	// a self-referential read of the not-yet-bound name on the LHS is
	// flagged (strict: UndefinedLocalException; warn: deprecation notice).
	localOnlyName string
	localOnlyMode vm.LocalOnlyMode

	// singleLineIf tracks nesting of single-line `if ... then ... else ...`
	// bodies, which forbid nested loop statements (spec §4.2 "If blocks").
	singleLineIf bool
}

func newFuncState() *funcState {
	return &funcState{}
}

// emit appends an instruction and returns its index.
func (fs *funcState) emit(op value.OpCode, lhs, a, b value.Value, line int) int {
	fs.code = append(fs.code, value.Instruction{LHS: lhs, Op: op, A: a, B: b, Line: line})
	return len(fs.code) - 1
}

// newTemp allocates the next per-frame temporary slot.
func (fs *funcState) newTemp() vm.Temp {
	t := vm.Temp{Index: fs.nextTemp}
	fs.nextTemp++
	return t
}

// here returns the index the next emitted instruction will occupy, i.e.
// the jump target that lands "after everything emitted so far".
func (fs *funcState) here() int { return len(fs.code) }

// patchTarget fills in the jump-target operand (operand A) of the Goto*
// instruction at idx.
func (fs *funcState) patchTarget(idx, target int) {
	fs.code[idx].A = value.Number(target)
}

// pushBackpatch records a pending forward-reference edit tagged with tag.
func (fs *funcState) pushBackpatch(line int, tag string) {
	fs.backpatches = append(fs.backpatches, backpatch{line: line, tag: tag})
}

// popBackpatch removes and returns the most recently pushed backpatch.
func (fs *funcState) popBackpatch() (backpatch, bool) {
	n := len(fs.backpatches)
	if n == 0 {
		return backpatch{}, false
	}
	bp := fs.backpatches[n-1]
	fs.backpatches = fs.backpatches[:n-1]
	return bp, true
}

// patchTopTagged pops the top backpatch, requiring it to carry tag, and
// patches its jump target to point at target (spec §4.2 "On else/else if:
// ... patch the prior else tag to the current code end").
func (fs *funcState) patchTopTagged(tag string, target int) error {
	bp, ok := fs.popBackpatch()
	if !ok || bp.tag != tag {
		return errUnmatchedBackpatch(tag)
	}
	if bp.line >= 0 {
		fs.patchTarget(bp.line, target)
	}
	return nil
}

// patchLoopExit pops and patches every backpatch down to and including the
// entry tagged endTag, stopping there (used to close while/for loops: both
// the loop's own exit condition and any `break` statements inside it share
// the loop's exit target, spec §4.2 "while"/"for"/"break").
func (fs *funcState) patchLoopExit(endTag string) error {
	exit := fs.here()
	for {
		bp, ok := fs.popBackpatch()
		if !ok {
			return errUnmatchedBackpatch(endTag)
		}
		if bp.line >= 0 {
			fs.patchTarget(bp.line, exit)
		}
		if bp.tag == endTag {
			return nil
		}
	}
}

// patchIfBlock implements spec §4.2 "On end if: patch_if_block(false) walks
// the backpatch stack from the top, patching every end if and else to the
// current end, stopping at if:MARK." A `break` backpatch found above the
// marker is kept on the stack for the enclosing loop's patchLoopExit. The
// single-line and block forms of `if` both close through this one walk.
func (fs *funcState) patchIfBlock() error {
	exit := fs.here()
	var kept []backpatch
	for {
		bp, ok := fs.popBackpatch()
		if !ok {
			return errUnmatchedBackpatch("if:MARK")
		}
		if bp.tag == "if:MARK" {
			fs.backpatches = append(fs.backpatches, kept...)
			return nil
		}
		if bp.tag == "break" {
			kept = append([]backpatch{bp}, kept...)
			continue
		}
		if bp.line >= 0 {
			fs.patchTarget(bp.line, exit)
		}
	}
}

// pushJumpPoint records a loop's continue-target.
func (fs *funcState) pushJumpPoint(line int, kind string) {
	fs.jumpPoints = append(fs.jumpPoints, jumpPoint{line: line, kind: kind})
}

// popJumpPoint removes the innermost loop's jump point.
func (fs *funcState) popJumpPoint() {
	if n := len(fs.jumpPoints); n > 0 {
		fs.jumpPoints = fs.jumpPoints[:n-1]
	}
}

// topJumpPoint returns the innermost enclosing loop's jump point, if any.
func (fs *funcState) topJumpPoint() (jumpPoint, bool) {
	n := len(fs.jumpPoints)
	if n == 0 {
		return jumpPoint{}, false
	}
	return fs.jumpPoints[n-1], true
}

// isJumpTarget reports whether line is the target of any Goto* instruction
// already emitted, or of any still-open jump point (spec §4.2 peephole
// optimization guard: a temp-retargeting optimization must not apply if a
// backward jump lands on the very next line).
func (fs *funcState) isJumpTarget(line int) bool {
	for _, instr := range fs.code {
		switch instr.Op {
		case value.OpGotoA, value.OpGotoAifB, value.OpGotoAifNotB, value.OpGotoAifTrulyB:
			if n, ok := instr.A.(value.Number); ok && int(n) == line {
				return true
			}
		}
	}
	for _, jp := range fs.jumpPoints {
		if jp.line == line {
			return true
		}
	}
	return false
}

// lastLine returns the index of the most recently emitted instruction, or
// -1 if none.
func (fs *funcState) lastLine() int {
	return len(fs.code) - 1
}
