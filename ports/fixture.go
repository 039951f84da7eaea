package ports

// ScriptedInput is a cooperative input peer driven by a fixed schedule
// of (data, stb) pairs, one per driver tick (§9 "Cooperative port
// peers": peers observe CPU-driven bits only between Step calls, and
// the driver interleaves one peer Step per CPU Step). Adapted from the
// teacher's channel-driven device state machines (vm/devices.go); this
// is a synchronous stand-in since the simulator's own tests don't need
// a goroutine-backed peer.
type ScriptedInput struct {
	schedule []ScriptedTick
	cursor   int
	ack      bool
}

// ScriptedTick is one tick of a ScriptedInput's schedule.
type ScriptedTick struct {
	Data int32
	Stb  bool
}

// NewScriptedInput builds a peer that replays schedule, one tick per
// call to Advance, holding the final tick once the schedule is
// exhausted.
func NewScriptedInput(schedule []ScriptedTick) *ScriptedInput {
	return &ScriptedInput{schedule: schedule}
}

func (p *ScriptedInput) Data() int32 {
	return p.tick().Data
}

func (p *ScriptedInput) Stb() bool {
	return p.tick().Stb
}

func (p *ScriptedInput) SetAck(ack bool) {
	p.ack = ack
}

// Ack reports the last value the CPU drove via SetAck.
func (p *ScriptedInput) Ack() bool {
	return p.ack
}

// Advance moves the peer to its next scheduled tick. The driver calls
// this between Simulator.Step calls.
func (p *ScriptedInput) Advance() {
	if p.cursor < len(p.schedule)-1 {
		p.cursor++
	}
}

func (p *ScriptedInput) tick() ScriptedTick {
	if len(p.schedule) == 0 {
		return ScriptedTick{}
	}
	return p.schedule[p.cursor]
}

// ScriptedOutput is a cooperative output peer that asserts Ack exactly
// one tick after it observes Stb asserted, then drops Ack once Stb
// drops — the minimal peer behavior the write handshake (§4.6) needs
// to complete.
type ScriptedOutput struct {
	data    int32
	stb     bool
	ack     bool
	sawStb  bool
	Written []int32
}

// NewScriptedOutput returns an output peer with no pending ack.
func NewScriptedOutput() *ScriptedOutput {
	return &ScriptedOutput{}
}

func (p *ScriptedOutput) Ack() bool {
	return p.ack
}

func (p *ScriptedOutput) SetData(data int32) {
	p.data = data
}

func (p *ScriptedOutput) SetStb(stb bool) {
	p.stb = stb
}

// Advance runs the peer's own state machine for one driver tick.
func (p *ScriptedOutput) Advance() {
	if p.stb && !p.ack {
		if !p.sawStb {
			p.sawStb = true
			return
		}
		p.Written = append(p.Written, p.data)
		p.ack = true
		return
	}
	if !p.stb && p.ack {
		p.ack = false
		p.sawStb = false
	}
}
