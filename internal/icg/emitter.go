package icg

import (
	"fmt"
	"io"
)

// emitter wraps an io.Writer with helpers for emitting three-address code.
// Every instruction is written on its own line.
type emitter struct {
	w   io.Writer
	err error // first write error
}

// emit writes a formatted instruction line.
func (e *emitter) emit(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format+"\n", args...)
}

// emitLabel writes a label definition: L3:
func (e *emitter) emitLabel(l int) {
	e.emit("%s:", labelName(l))
}

// emitGoto writes an unconditional jump.
func (e *emitter) emitGoto(l int) {
	e.emit("goto %s", labelName(l))
}

// emitIf writes a jump taken when r is true.
func (e *emitter) emitIf(r, l int) {
	e.emit("if (%s) goto %s", regName(r), labelName(l))
}

// emitIfNot writes a jump taken when r is false.
func (e *emitter) emitIfNot(r, l int) {
	e.emit("if (!%s) goto %s", regName(r), labelName(l))
}

// emitCopy writes dst = src for two registers.
func (e *emitter) emitCopy(dst, src int) {
	e.emit("%s = %s", regName(dst), regName(src))
}

// regName returns the name of register r: r1, r2, ...
func regName(r int) string {
	return fmt.Sprintf("r%d", r)
}

// labelName returns the name of label l: L1, L2, ...
func labelName(l int) string {
	return fmt.Sprintf("L%d", l)
}
