// Package asm models the simulator's instruction set: a tagged
// variant per opcode (§3, §4.5 of the design) plus the label
// resolution pre-pass (§4.1) that turns symbolic control-flow targets
// into absolute program-counter indices.
//
// Mirrors the teacher's Bytecode type (vm/bytecode.go): a small integer
// tag with a string table for disassembly, rather than a
// dictionary-keyed representation, so dispatch in package sim can
// exhaustively switch over it.
package asm

// RegID addresses one of the four 32-bit operand registers (a_lo,
// a_hi, b_lo, b_hi). Per the design's Open Question on the src/dest/
// srcb register file referenced by not, not_equal, read, write, ready,
// memory_read and memory_write: this implementation resolves that
// register file to be the same A/B operand register pair used by the
// arithmetic opcodes, not a separate bank (see DESIGN.md).
type RegID int

const (
	ALo RegID = iota
	AHi
	BLo
	BHi
)

func (r RegID) String() string {
	switch r {
	case ALo:
		return "a_lo"
	case AHi:
		return "a_hi"
	case BLo:
		return "b_lo"
	case BHi:
		return "b_hi"
	default:
		return "?reg?"
	}
}

// Op is the opcode tag. Values are stable within a build but carry no
// meaning outside it (no wire format depends on the numeric value).
type Op int

const (
	// Label is a pseudo-op consumed entirely by Resolve; it never
	// appears in a resolved instruction stream.
	Label Op = iota

	// Stack / frame
	PushLiteral
	New
	Free
	Pop
	Push
	PopGlobal
	PopALo
	PopAHi
	PopBLo
	PopBHi
	PushALo
	PushAHi
	PushBLo
	PushBHi

	// Integer arithmetic (stack-based)
	Add
	Subtract
	Multiply
	And
	Or
	Xor
	ShiftLeft
	ShiftRight
	UnsignedShiftRight
	Greater
	GreaterEqual
	UnsignedGreater
	UnsignedGreaterEqual
	Equal
	NotEqual
	AddWithCarry
	SubtractWithCarry
	ShiftLeftWithCarry
	ShiftRightWithCarry

	// Register-file bitwise op (§9 Open Question)
	Not

	// Conversions
	IntToLong
	IntToFloat
	FloatToInt
	LongToDouble
	DoubleToLong
	FloatToDouble
	DoubleToFloat

	// Floating point
	FloatAdd
	FloatSubtract
	FloatMultiply
	FloatDivide
	LongFloatAdd
	LongFloatSubtract
	LongFloatMultiply
	LongFloatDivide

	// Control flow
	Goto
	JmpIfFalse
	JmpIfTrue

	// Frame management
	Prologue
	Call
	Epilogue
	Return
	Local
	Global
	LocalToGlobal

	// Memory
	MemoryRead
	MemoryWrite

	// File I/O
	FileRead
	FileWrite
	UnsignedFileWrite
	FloatFileWrite
	LongFileWrite
	LongFloatFileWrite

	// Diagnostics
	Assert
	Report
	LongReport
	FloatReport
	LongFloatReport
	UnsignedReport
	LongUnsignedReport

	// Termination
	Stop

	// Port handshake
	Read
	Write
	Ready
)

var opNames = map[Op]string{
	Label:                "label",
	PushLiteral:          "push_literal",
	New:                  "new",
	Free:                 "free",
	Pop:                  "pop",
	Push:                 "push",
	PopGlobal:            "pop_global",
	PopALo:               "pop_a_lo",
	PopAHi:               "pop_a_hi",
	PopBLo:               "pop_b_lo",
	PopBHi:               "pop_b_hi",
	PushALo:              "push_a_lo",
	PushAHi:              "push_a_hi",
	PushBLo:              "push_b_lo",
	PushBHi:              "push_b_hi",
	Add:                  "add",
	Subtract:             "subtract",
	Multiply:             "multiply",
	And:                  "and",
	Or:                   "or",
	Xor:                  "xor",
	ShiftLeft:            "shift_left",
	ShiftRight:           "shift_right",
	UnsignedShiftRight:   "unsigned_shift_right",
	Greater:              "greater",
	GreaterEqual:         "greater_equal",
	UnsignedGreater:      "unsigned_greater",
	UnsignedGreaterEqual: "unsigned_greater_equal",
	Equal:                "equal",
	NotEqual:             "not_equal",
	AddWithCarry:         "add_with_carry",
	SubtractWithCarry:    "subtract_with_carry",
	ShiftLeftWithCarry:   "shift_left_with_carry",
	ShiftRightWithCarry:  "shift_right_with_carry",
	Not:                  "not",
	IntToLong:            "int_to_long",
	IntToFloat:           "int_to_float",
	FloatToInt:           "float_to_int",
	LongToDouble:         "long_to_double",
	DoubleToLong:         "double_to_long",
	FloatToDouble:        "float_to_double",
	DoubleToFloat:        "double_to_float",
	FloatAdd:             "float_add",
	FloatSubtract:        "float_subtract",
	FloatMultiply:        "float_multiply",
	FloatDivide:          "float_divide",
	LongFloatAdd:         "long_float_add",
	LongFloatSubtract:    "long_float_subtract",
	LongFloatMultiply:    "long_float_multiply",
	LongFloatDivide:      "long_float_divide",
	Goto:                 "goto",
	JmpIfFalse:           "jmp_if_false",
	JmpIfTrue:            "jmp_if_true",
	Prologue:             "prologue",
	Call:                 "call",
	Epilogue:             "epilogue",
	Return:               "return",
	Local:                "local",
	Global:               "global",
	LocalToGlobal:        "local_to_global",
	MemoryRead:           "memory_read",
	MemoryWrite:          "memory_write",
	FileRead:             "file_read",
	FileWrite:            "file_write",
	UnsignedFileWrite:    "unsigned_file_write",
	FloatFileWrite:       "float_file_write",
	LongFileWrite:        "long_file_write",
	LongFloatFileWrite:   "long_float_file_write",
	Assert:               "assert",
	Report:               "report",
	LongReport:           "long_report",
	FloatReport:          "float_report",
	LongFloatReport:      "long_float_report",
	UnsignedReport:       "unsigned_report",
	LongUnsignedReport:   "long_unsigned_report",
	Stop:                 "stop",
	Read:                 "read",
	Write:                "write",
	Ready:                "ready",
}

// String renders the opcode's mnemonic, "?unknown?" for anything not
// in the table (mirrors Bytecode.String in the teacher).
func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "?unknown?"
}

// Instruction is the tagged record described in §3. Not every field is
// meaningful for every Op; see the per-opcode comments in package sim.
type Instruction struct {
	Op Op

	// Literal carries: push_literal's operand, new/free/pop/push's word
	// count, local's frame offset, global's absolute address, the resolved absolute
	// program-counter for goto/jmp_if_false/jmp_if_true/call, and the
	// resolved numeric port id for read/write/ready.
	Literal int32

	// Dest/Src/SrcB address the A/B operand-register file for
	// not, memory_read, memory_write, read, write and ready.
	Dest RegID
	Src  RegID
	SrcB RegID

	// FileName names the input/output file for the file_* opcodes.
	FileName string

	// File/Line are source-level metadata carried through from the
	// compiler for assert/report diagnostics; they do not affect
	// execution semantics.
	File string
	Line int32

	// Label is the pre-resolution symbolic target for Label,
	// goto/jmp_if_false/jmp_if_true and call. Resolve clears it.
	Label string
}
