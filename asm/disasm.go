package asm

import "fmt"

// String renders a single resolved instruction back to a readable
// mnemonic line, e.g. "push_literal 3" or "read port 2 -> a_lo".
// Adapted from the teacher's formatInstructionStr/Bytecode.String
// pair (vm/vm.go, vm/bytecode.go), generalized to this opcode's wider
// operand shapes (literal, register triples, file names).
func (instr Instruction) String() string {
	switch instr.Op {
	case PushLiteral, New, Free, Pop, Push, Local, Global:
		return fmt.Sprintf("%s %d", instr.Op, instr.Literal)
	case Goto, JmpIfFalse, JmpIfTrue, Call:
		return fmt.Sprintf("%s %d", instr.Op, instr.Literal)
	case Not:
		return fmt.Sprintf("%s %s <- %s", instr.Op, instr.Dest, instr.Src)
	case MemoryRead:
		return fmt.Sprintf("%s %s <- [%s]", instr.Op, instr.Dest, instr.Src)
	case MemoryWrite:
		return fmt.Sprintf("%s [%s] <- %s", instr.Op, instr.Src, instr.SrcB)
	case Read, Ready:
		return fmt.Sprintf("%s port %d -> %s", instr.Op, instr.Literal, instr.Dest)
	case Write:
		return fmt.Sprintf("%s port %d <- %s", instr.Op, instr.Literal, instr.SrcB)
	case FileRead:
		return fmt.Sprintf("%s %q", instr.Op, instr.FileName)
	case FileWrite, UnsignedFileWrite, FloatFileWrite, LongFileWrite, LongFloatFileWrite:
		return fmt.Sprintf("%s %q", instr.Op, instr.FileName)
	case Report, LongReport, FloatReport, LongFloatReport, UnsignedReport, LongUnsignedReport, Assert:
		return fmt.Sprintf("%s (%s:%d)", instr.Op, instr.File, instr.Line)
	default:
		return instr.Op.String()
	}
}

// FormatProgram renders a resolved instruction list with one line per
// instruction, prefixed by its program-counter index.
func FormatProgram(program []Instruction) string {
	buf := make([]byte, 0, 32*len(program))
	for i, instr := range program {
		buf = append(buf, fmt.Sprintf("%4d: %s\n", i, instr)...)
	}
	return string(buf)
}
