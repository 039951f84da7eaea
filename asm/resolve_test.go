package asm

import "testing"

func TestResolveForwardReference(t *testing.T) {
	program := []Instruction{
		{Op: PushLiteral, Literal: 1},
		{Op: JmpIfTrue, Label: "done"},
		{Op: PushLiteral, Literal: 99},
		{Op: Label, Label: "done"},
		{Op: Stop},
	}

	resolved, err := Resolve(program)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved) != 4 {
		t.Fatalf("expected 4 real instructions, got %d", len(resolved))
	}
	// "done" follows the label pseudo-op, which is instruction index 3
	// among the real instructions (push, jmp, push, stop).
	if resolved[1].Literal != 3 {
		t.Errorf("jmp target = %d, want 3", resolved[1].Literal)
	}
	if resolved[1].Label != "" {
		t.Errorf("label should be cleared after resolution, got %q", resolved[1].Label)
	}
}

func TestResolveBackwardReference(t *testing.T) {
	program := []Instruction{
		{Op: Label, Label: "top"},
		{Op: PushLiteral, Literal: 1},
		{Op: Goto, Label: "top"},
	}
	resolved, err := Resolve(program)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved[1].Literal != 0 {
		t.Errorf("goto target = %d, want 0", resolved[1].Literal)
	}
}

func TestResolveUnresolvedLabel(t *testing.T) {
	program := []Instruction{
		{Op: Goto, Label: "nowhere"},
	}
	if _, err := Resolve(program); err != ErrUnresolvedLabel {
		t.Fatalf("expected ErrUnresolvedLabel, got %v", err)
	}
}

func TestFormatProgramRoundTripsReadably(t *testing.T) {
	program := []Instruction{
		{Op: PushLiteral, Literal: 3},
		{Op: PushLiteral, Literal: 4},
		{Op: Add},
		{Op: Stop},
	}
	out := FormatProgram(program)
	if out == "" {
		t.Fatal("expected non-empty disassembly")
	}
	want := "   0: push_literal 3\n   1: push_literal 4\n   2: add\n   3: stop\n"
	if out != want {
		t.Errorf("FormatProgram = %q, want %q", out, want)
	}
}
