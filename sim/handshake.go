package sim

import "vcpusim/asm"

// execRead implements the read sub-state machine of §4.6. pc is the
// index of the read instruction itself; the return value is the next
// program counter (pc, to retry on the following Step, or pc+1 once
// the handshake completes).
func (s *Simulator) execRead(pc uint32, instr asm.Instruction) uint32 {
	peer, ok := s.ports.Input(uint32(instr.Literal))
	if !ok {
		// §4.3: unknown port id stores zero into the destination and
		// advances normally without touching handshake state.
		s.state.SetReg(instr.Dest, 0)
		return pc + 1
	}

	switch s.state.ReadState {
	case waitStb:
		if peer.Stb() {
			peer.SetAck(true)
			s.state.SetReg(instr.Dest, peer.Data())
			s.state.ReadState = waitNstb
		}
		return pc
	case waitNstb:
		if !peer.Stb() {
			peer.SetAck(false)
			s.state.ReadState = waitStb
			return pc + 1
		}
		return pc
	default:
		return pc + 1
	}
}

// execWrite implements the write sub-state machine of §4.6.
func (s *Simulator) execWrite(pc uint32, instr asm.Instruction) uint32 {
	peer, ok := s.ports.Output(uint32(instr.Literal))
	if !ok {
		// §4.3: unknown port id is a silent no-op for write.
		return pc + 1
	}

	switch s.state.WriteState {
	case waitAck:
		peer.SetData(s.state.Reg(instr.SrcB))
		peer.SetStb(true)
		if peer.Ack() {
			peer.SetStb(false)
			s.state.WriteState = waitNack
		}
		return pc
	case waitNack:
		if !peer.Ack() {
			s.state.WriteState = waitAck
			return pc + 1
		}
		return pc
	default:
		return pc + 1
	}
}

// execReady implements the non-blocking peek of §4.6: never stalls.
func (s *Simulator) execReady(instr asm.Instruction) {
	peer, ok := s.ports.Input(uint32(instr.Literal))
	if !ok {
		s.state.SetReg(instr.Dest, 0)
		return
	}
	s.state.SetReg(instr.Dest, boolWord(peer.Stb()))
}
