package asm

import "errors"

// ErrUnresolvedLabel is returned by Resolve when an instruction
// references a label with no matching Label pseudo-op.
var ErrUnresolvedLabel = errors.New("asm: unresolved label")

// labelReferencing reports whether op carries a symbolic Label that
// Resolve must rewrite to an absolute program-counter index.
func labelReferencing(op Op) bool {
	switch op {
	case Goto, JmpIfFalse, JmpIfTrue, Call:
		return true
	default:
		return false
	}
}

// Resolve implements §4.1: a forward pass builds name -> index over
// the real (non-Label) instructions, then a second pass rewrites every
// label-referencing instruction's Literal field with the resolved
// index and clears Label. Instructions with no label pseudo-op match
// cause ErrUnresolvedLabel.
func Resolve(program []Instruction) ([]Instruction, error) {
	index := make(map[string]int32, len(program))
	out := make([]Instruction, 0, len(program))

	for _, instr := range program {
		if instr.Op == Label {
			index[instr.Label] = int32(len(out))
			continue
		}
		out = append(out, instr)
	}

	for i := range out {
		if !labelReferencing(out[i].Op) || out[i].Label == "" {
			continue
		}
		pc, ok := index[out[i].Label]
		if !ok {
			return nil, ErrUnresolvedLabel
		}
		out[i].Literal = pc
		out[i].Label = ""
	}

	return out, nil
}
