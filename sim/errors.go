package sim

import (
	"errors"
	"fmt"

	"vcpusim/asm"
)

// ErrUnresolvedLabel re-exports asm's label-resolution error so
// callers of this package don't need to import asm just to compare
// against it.
var ErrUnresolvedLabel = asm.ErrUnresolvedLabel

// ErrUnknownOpcode is raised when Step's dispatch encounters an Op it
// does not implement. Fatal — the caller must stop stepping.
var ErrUnknownOpcode = errors.New("sim: unknown opcode")

// ErrSimulationStopped is the signaling condition raised by the stop
// opcode (§4.5 Termination). It is not an error in the failure sense;
// Simulator.Step returns it alongside Stopped so callers can
// distinguish "program asked to stop" from every other Step result
// with a single errors.Is check.
var ErrSimulationStopped = errors.New("sim: simulation stopped")

// FileOpenError wraps the error reset() encountered opening a
// declared input or output file.
type FileOpenError struct {
	FileName string
	Path     string
	Err      error
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("sim: open file %q (%s): %v", e.FileName, e.Path, e.Err)
}

func (e *FileOpenError) Unwrap() error { return e.Err }

// AssertionFailedError is raised by the assert opcode when a_lo == 0.
// It carries the source line/file metadata the compiler attached to
// the instruction, the way a hardware assertion failure would report
// the offending RTL line.
type AssertionFailedError struct {
	Line int32
	File string
}

func (e *AssertionFailedError) Error() string {
	return fmt.Sprintf("sim: assertion failed at %s:%d", e.File, e.Line)
}
