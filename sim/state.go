package sim

import (
	"bufio"
	"os"

	"vcpusim/asm"
)

// readHandshake is the read_state sub-state machine (§4.6).
type readHandshake int

const (
	waitStb readHandshake = iota
	waitNstb
)

// writeHandshake is the write_state sub-state machine (§4.6).
type writeHandshake int

const (
	waitAck writeHandshake = iota
	waitNack
)

// State is the machine state of §3: registers, stack/frame pointers,
// sparse memory, open files and handshake sub-state. Created by
// Simulator.Reset, mutated only by Simulator.Step, as the spec
// requires.
type State struct {
	PC uint32

	ALo, AHi, BLo, BHi int32
	// RegisterHi holds the high half of the stack-based multiply's
	// 64-bit product. RegisterHiB is carried per the data model (§3)
	// but has no referencing opcode in this instruction set — see
	// DESIGN.md.
	RegisterHi, RegisterHiB int32

	// Carry is logically one bit; always masked to {0,1}.
	Carry uint32

	Tos, Frame, NewFrame, ReturnFrame, ReturnAddress, Pointer uint32

	// Memory is the sparse address -> word mapping of §3. Reads of an
	// absent address return 0; writes create the entry.
	Memory map[uint32]int32

	ReadState  readHandshake
	WriteState writeHandshake

	InputFiles  map[string]*bufio.Scanner
	OutputFiles map[string]*bufio.Writer

	openInputFiles  map[string]*os.File
	openOutputFiles map[string]*os.File
}

func newState(memoryImage map[uint32]int32) *State {
	mem := make(map[uint32]int32, len(memoryImage))
	for addr, v := range memoryImage {
		mem[addr] = v
	}
	return &State{
		Memory:          mem,
		InputFiles:      make(map[string]*bufio.Scanner),
		OutputFiles:     make(map[string]*bufio.Writer),
		openInputFiles:  make(map[string]*os.File),
		openOutputFiles: make(map[string]*os.File),
		ReadState:       waitStb,
		WriteState:      waitAck,
	}
}

// MemRead returns the word at addr, or 0 if nothing has been written
// there (§3 invariant: "reads of absent addresses return 0").
func (s *State) MemRead(addr uint32) int32 {
	return s.Memory[addr]
}

// MemWrite stores v at addr, creating the entry.
func (s *State) MemWrite(addr uint32, v int32) {
	s.Memory[addr] = v
}

// Reg reads one of the four A/B operand registers by id.
func (s *State) Reg(id asm.RegID) int32 {
	switch id {
	case asm.ALo:
		return s.ALo
	case asm.AHi:
		return s.AHi
	case asm.BLo:
		return s.BLo
	case asm.BHi:
		return s.BHi
	default:
		return 0
	}
}

// SetReg writes one of the four A/B operand registers by id.
func (s *State) SetReg(id asm.RegID, v int32) {
	switch id {
	case asm.ALo:
		s.ALo = v
	case asm.AHi:
		s.AHi = v
	case asm.BLo:
		s.BLo = v
	case asm.BHi:
		s.BHi = v
	}
}

// push places v at the current top-of-stack address and advances Tos.
func (s *State) push(v int32) {
	s.Memory[s.Tos] = v
	s.Tos++
}

// pop retracts Tos and returns the word that was there.
func (s *State) pop() int32 {
	s.Tos--
	return s.MemRead(s.Tos)
}

// peek returns the current top-of-stack word without moving Tos.
func (s *State) peek() int32 {
	return s.MemRead(s.Tos - 1)
}

// pokeTop overwrites the current top-of-stack word in place.
func (s *State) pokeTop(v int32) {
	s.Memory[s.Tos-1] = v
}

// setCarry masks v to one bit and stores it.
func (s *State) setCarry(v uint32) {
	s.Carry = v & 1
}
