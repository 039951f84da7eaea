package sim

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vcpusim/asm"
	"vcpusim/bits"
	"vcpusim/ports"
)

func newTestSim(t *testing.T, program []asm.Instruction) *Simulator {
	t.Helper()
	s, err := New(Config{Program: program})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	return s
}

// runUntilStopped steps the simulator until it halts (via the stop
// opcode or an error), returning the terminal error. Tests that expect
// a clean stop check errors.Is(err, ErrSimulationStopped).
func runUntilStopped(t *testing.T, s *Simulator, maxSteps int) error {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		status, err := s.Step()
		if err != nil {
			return err
		}
		if status == Stopped {
			return nil
		}
	}
	t.Fatalf("simulation did not halt within %d steps", maxSteps)
	return nil
}

// S1: push 2; push 3; add; stop -- the stack top holds 5.
func TestS1PushAdd(t *testing.T) {
	program := []asm.Instruction{
		{Op: asm.PushLiteral, Literal: 2},
		{Op: asm.PushLiteral, Literal: 3},
		{Op: asm.Add},
		{Op: asm.Stop},
	}
	s := newTestSim(t, program)
	err := runUntilStopped(t, s, 10)
	if !errors.Is(err, ErrSimulationStopped) {
		t.Fatalf("expected ErrSimulationStopped, got %v", err)
	}
	st := s.State()
	if got := st.MemRead(st.Tos - 1); got != 5 {
		t.Fatalf("top of stack = %d, want 5", got)
	}
}

// S2: unsigned overflow -- 0xFFFFFFFF + 1 wraps to 0 and raises carry.
func TestS2UnsignedOverflow(t *testing.T) {
	program := []asm.Instruction{
		{Op: asm.PushLiteral, Literal: -1}, // 0xFFFFFFFF
		{Op: asm.PushLiteral, Literal: 1},
		{Op: asm.Add},
		{Op: asm.Stop},
	}
	s := newTestSim(t, program)
	if err := runUntilStopped(t, s, 10); !errors.Is(err, ErrSimulationStopped) {
		t.Fatalf("unexpected error: %v", err)
	}
	st := s.State()
	if got := st.MemRead(st.Tos - 1); got != 0 {
		t.Fatalf("result = %d, want 0", got)
	}
	if st.Carry != 1 {
		t.Fatalf("carry = %d, want 1", st.Carry)
	}
}

// S3: add_with_carry folds a prior carry-out into the sum.
func TestS3AddWithCarryChain(t *testing.T) {
	program := []asm.Instruction{
		{Op: asm.PushLiteral, Literal: -1},
		{Op: asm.PushLiteral, Literal: 1},
		{Op: asm.Add}, // 0, carry = 1
		{Op: asm.PushLiteral, Literal: 0},
		{Op: asm.PushLiteral, Literal: 41},
		{Op: asm.AddWithCarry}, // 41 + 0 + carry(1) = 42
		{Op: asm.Stop},
	}
	s := newTestSim(t, program)
	if err := runUntilStopped(t, s, 10); !errors.Is(err, ErrSimulationStopped) {
		t.Fatalf("unexpected error: %v", err)
	}
	st := s.State()
	// The first add's result (0) is still sitting below the second.
	if got := st.MemRead(st.Tos - 1); got != 42 {
		t.Fatalf("top = %d, want 42", got)
	}
	if st.Carry != 0 {
		t.Fatalf("carry = %d, want 0", st.Carry)
	}
}

// multiply treats its operands as unsigned before widening to the
// 64-bit product: a=-1 (0xFFFFFFFF) times b=2 must produce
// register_hi=1, not the signed product's register_hi=-1.
func TestMultiplyIsUnsigned(t *testing.T) {
	s := newTestSim(t, nil)
	st := s.State()

	st.push(-1)
	st.push(2)
	if _, err := s.exec(0, asm.Instruction{Op: asm.Multiply}, 0); err != nil {
		t.Fatalf("multiply: %v", err)
	}
	lo := st.pop()
	if st.RegisterHi != 1 {
		t.Fatalf("register_hi = %d, want 1", st.RegisterHi)
	}
	if lo != -2 {
		t.Fatalf("lo = %d, want -2 (0xFFFFFFFE)", lo)
	}
}

// S4: a leaf call/return restores the caller's frame and resumes at
// the instruction after call, per §8 property 4. No prologue/epilogue
// is needed here because nothing within the callee issues a further
// nested call that would clobber return_frame/return_address.
func TestS4FunctionCall(t *testing.T) {
	// main:    call add_one   (pc 0)
	//          stop           (pc 1, resumed here)
	// add_one  (pc 2): push_literal 41; push_literal 1; add; return
	program := []asm.Instruction{
		{Op: asm.Call, Literal: 2},
		{Op: asm.Stop},
		{Op: asm.PushLiteral, Literal: 41},
		{Op: asm.PushLiteral, Literal: 1},
		{Op: asm.Add},
		{Op: asm.Return},
	}
	s := newTestSim(t, program)
	before := s.State()
	frameAtCall := before.Frame

	status, err := s.Step() // call
	if err != nil {
		t.Fatalf("call step: %v", err)
	}
	if status != Running {
		t.Fatalf("status after call = %v", status)
	}
	if s.State().PC != 2 {
		t.Fatalf("pc after call = %d, want 2 (jumped to callee)", s.State().PC)
	}

	// Run the callee body: push_literal 41; push_literal 1; add; return.
	for i := 0; i < 4; i++ {
		if _, err := s.Step(); err != nil {
			t.Fatalf("callee step %d: %v", i, err)
		}
	}

	st := s.State()
	if st.PC != 1 {
		t.Fatalf("pc after return = %d, want 1 (call_site + 1)", st.PC)
	}
	if st.Frame != frameAtCall {
		t.Fatalf("frame after return = %d, want %d", st.Frame, frameAtCall)
	}
	if st.Tos != frameAtCall {
		t.Fatalf("tos after return = %d, want %d", st.Tos, frameAtCall)
	}
}

// S5: a read handshake completes across several Step calls as the
// peer's strobe line rises then falls, per §4.6.
func TestS5HandshakeRead(t *testing.T) {
	peer := ports.NewScriptedInput([]ports.ScriptedTick{
		{Data: 0, Stb: false},
		{Data: 42, Stb: true},
		{Data: 42, Stb: true},
		{Data: 0, Stb: false},
	})
	program := []asm.Instruction{
		{Op: asm.Read, Literal: 7, Dest: asm.ALo},
		{Op: asm.Stop},
	}
	s, err := New(Config{
		Program:     program,
		Inputs:      map[string]ports.InputPort{"sensor": peer},
		PortNumbers: map[uint32]string{7: "sensor"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	for i := 0; i < 4; i++ {
		if _, err := s.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		peer.Advance()
		if s.State().PC != 0 {
			break
		}
	}

	if s.State().PC != 1 {
		t.Fatalf("pc = %d, want 1 (handshake completed, advanced past read)", s.State().PC)
	}
	if s.State().ALo != 42 {
		t.Fatalf("a_lo = %d, want 42", s.State().ALo)
	}
}

// S5b: a write handshake completes once the peer has asserted and
// then dropped ack.
func TestS5HandshakeWrite(t *testing.T) {
	peer := ports.NewScriptedOutput()
	program := []asm.Instruction{
		{Op: asm.Write, Literal: 9, SrcB: asm.BLo},
		{Op: asm.Stop},
	}
	s, err := New(Config{
		Program:     program,
		Outputs:     map[string]ports.OutputPort{"actuator": peer},
		PortNumbers: map[uint32]string{9: "actuator"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	s.State().BLo = 99

	for i := 0; i < 8 && s.State().PC == 0; i++ {
		if _, err := s.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		peer.Advance()
	}

	if s.State().PC != 1 {
		t.Fatalf("pc = %d, want 1 (write handshake completed)", s.State().PC)
	}
	if len(peer.Written) != 1 || peer.Written[0] != 99 {
		t.Fatalf("peer.Written = %v, want [99]", peer.Written)
	}
}

// S6: a value survives float_to_int(int_to_float(x)) for values exactly
// representable in a float32's mantissa, and float_add operates on the
// IEEE-754 bit patterns rather than on the raw integers.
func TestS6FloatRoundTripAndAdd(t *testing.T) {
	program := []asm.Instruction{
		{Op: asm.Stop},
	}
	s := newTestSim(t, program)
	st := s.State()

	st.ALo = 7
	if _, err := s.exec(0, asm.Instruction{Op: asm.IntToFloat}, 0); err != nil {
		t.Fatalf("int_to_float: %v", err)
	}
	sevenBits := st.ALo
	if _, err := s.exec(0, asm.Instruction{Op: asm.FloatToInt}, 0); err != nil {
		t.Fatalf("float_to_int: %v", err)
	}
	if st.ALo != 7 {
		t.Fatalf("round trip = %d, want 7", st.ALo)
	}

	st.ALo = sevenBits
	st.BLo = bits.FloatToBits(1.5)
	if _, err := s.exec(0, asm.Instruction{Op: asm.FloatAdd}, 0); err != nil {
		t.Fatalf("float_add: %v", err)
	}
	if got := bits.BitsToFloat(st.ALo); got != 8.5 {
		t.Fatalf("float_add result = %v, want 8.5", got)
	}
}

// Property 6: shift_left_with_carry folds the previous carry into bit
// 0, and shift_right_with_carry (the logical variant, §9) folds it
// into bit 31.
func TestShiftWithCarryFoldsPreviousCarry(t *testing.T) {
	s := newTestSim(t, nil)
	st := s.State()
	st.Carry = 1

	st.push(int32(0x0000_0001))
	st.push(1) // shift count
	if _, err := s.exec(0, asm.Instruction{Op: asm.ShiftLeftWithCarry}, 0); err != nil {
		t.Fatalf("shift_left_with_carry: %v", err)
	}
	got := uint32(st.pop())
	if got != 0x0000_0003 {
		t.Fatalf("shift_left_with_carry = %#x, want 0x3 (shifted value | carry-in)", got)
	}
	if st.Carry != 0 {
		t.Fatalf("carry-out = %d, want 0", st.Carry)
	}

	st.Carry = 1
	st.push(int32(0x8000_0000))
	st.push(1)
	if _, err := s.exec(0, asm.Instruction{Op: asm.ShiftRightWithCarry}, 0); err != nil {
		t.Fatalf("shift_right_with_carry: %v", err)
	}
	got = uint32(st.pop())
	if got != 0xC000_0000 {
		t.Fatalf("shift_right_with_carry = %#x, want 0xc0000000", got)
	}
}

// Subtraction's carry is the complemented borrow: a >= b (no borrow)
// sets carry, a < b (borrow) clears it.
func TestSubtractCarryIsComplementedBorrow(t *testing.T) {
	s := newTestSim(t, nil)
	st := s.State()

	st.push(10)
	st.push(3)
	if _, err := s.exec(0, asm.Instruction{Op: asm.Subtract}, 0); err != nil {
		t.Fatalf("subtract: %v", err)
	}
	if got := st.pop(); got != 7 {
		t.Fatalf("10-3 = %d, want 7", got)
	}
	if st.Carry != 1 {
		t.Fatalf("carry after no-borrow subtract = %d, want 1", st.Carry)
	}

	st.push(3)
	st.push(10)
	if _, err := s.exec(0, asm.Instruction{Op: asm.Subtract}, 0); err != nil {
		t.Fatalf("subtract: %v", err)
	}
	st.pop()
	if st.Carry != 0 {
		t.Fatalf("carry after borrowing subtract = %d, want 0", st.Carry)
	}
}

func TestAssertFailureCarriesSourceMetadata(t *testing.T) {
	program := []asm.Instruction{
		{Op: asm.PushLiteral, Literal: 0},
		{Op: asm.PopALo},
		{Op: asm.Assert, File: "check.vc", Line: 12},
	}
	s := newTestSim(t, program)
	err := runUntilStopped(t, s, 10)
	var assertErr *AssertionFailedError
	if !errors.As(err, &assertErr) {
		t.Fatalf("expected *AssertionFailedError, got %v", err)
	}
	if assertErr.Line != 12 || assertErr.File != "check.vc" {
		t.Fatalf("assertion error = %+v, want line 12 file check.vc", assertErr)
	}
}

func TestUnknownPortIsShortCircuited(t *testing.T) {
	program := []asm.Instruction{
		{Op: asm.Read, Literal: 99, Dest: asm.ALo},
		{Op: asm.Stop},
	}
	s := newTestSim(t, program)
	s.State().ALo = -1
	if _, err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.State().PC != 1 {
		t.Fatalf("pc = %d, want 1 (unknown port read completes in one step)", s.State().PC)
	}
	if s.State().ALo != 0 {
		t.Fatalf("a_lo = %d, want 0", s.State().ALo)
	}
}

func TestFileWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	program := []asm.Instruction{
		{Op: asm.PushLiteral, Literal: 123},
		{Op: asm.FileWrite, FileName: "out"},
		{Op: asm.Stop},
	}
	s, err := New(Config{
		Program:     program,
		OutputFiles: []FileBinding{{Name: "out", Path: outPath}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := runUntilStopped(t, s, 10); !errors.Is(err, ErrSimulationStopped) {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "123\n" {
		t.Fatalf("output = %q, want %q", data, "123\n")
	}
}

// long_file_write formats the joined 64-bit integer with %f, matching
// the float-family writers rather than the plain decimal writers.
func TestLongFileWriteUsesFloatFormat(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")

	program := []asm.Instruction{
		{Op: asm.PushLiteral, Literal: 0},
		{Op: asm.PopAHi},
		{Op: asm.PushLiteral, Literal: 42},
		{Op: asm.PopALo},
		{Op: asm.LongFileWrite, FileName: "out"},
		{Op: asm.Stop},
	}
	s, err := New(Config{
		Program:     program,
		OutputFiles: []FileBinding{{Name: "out", Path: outPath}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := runUntilStopped(t, s, 10); !errors.Is(err, ErrSimulationStopped) {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "42.000000\n" {
		t.Fatalf("output = %q, want %q", data, "42.000000\n")
	}
}
