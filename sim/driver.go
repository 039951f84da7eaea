// Package sim is the simulation driver and instruction interpreter:
// the reset/step surface of §2.6 and the opcode dispatch of §4.5-§4.6.
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"vcpusim/asm"
	"vcpusim/ports"
)

// Status is the result of one Step call.
type Status int

const (
	Running Status = iota
	Stopped
)

func (s Status) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

// FileBinding names a declared input or output file and the
// filesystem path reset() should open it against.
type FileBinding struct {
	Name string
	Path string
}

// Config bundles every constructor input named in §6: the
// (pre-resolved or raw) instruction list, the initial memory image,
// the named port peers, the port-number allocation table, and the
// declared file bindings.
type Config struct {
	Program     []asm.Instruction
	Memory      map[uint32]int32
	Inputs      map[string]ports.InputPort
	Outputs     map[string]ports.OutputPort
	PortNumbers map[uint32]string
	InputFiles  []FileBinding
	OutputFiles []FileBinding

	// Logger receives the report/diagnostics channel (§4.5). A
	// default is used if nil.
	Logger *logrus.Logger
}

// Simulator owns the machine state and drives reset/step.
type Simulator struct {
	program []asm.Instruction
	memory  map[uint32]int32
	ports   *ports.Registry
	files   Config
	log     *logrus.Logger

	state *State

	steps     uint64
	histogram map[asm.Op]uint64
}

// New resolves labels (if the program carries any); it makes no other
// check of the configuration. It does not open files or allocate machine state —
// that happens in Reset, per the lifecycle in §3.
func New(cfg Config) (*Simulator, error) {
	program := cfg.Program
	hasLabels := false
	for _, instr := range program {
		if instr.Op == asm.Label {
			hasLabels = true
			break
		}
	}
	if hasLabels {
		resolved, err := asm.Resolve(program)
		if err != nil {
			return nil, err
		}
		program = resolved
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &Simulator{
		program:   program,
		memory:    cfg.Memory,
		ports:     ports.NewRegistry(cfg.PortNumbers, cfg.Inputs, cfg.Outputs),
		files:     cfg,
		log:       logger,
		histogram: make(map[asm.Op]uint64),
	}, nil
}

// Program returns the resolved instruction list (read-only use, e.g.
// for disassembly).
func (s *Simulator) Program() []asm.Instruction {
	return s.program
}

// State exposes the live machine state for inspection between Step
// calls (e.g. by a debugger or test harness). Callers must not mutate
// it; only Step does.
func (s *Simulator) State() *State {
	return s.state
}

// Steps returns the number of Step calls that executed an instruction
// since the last Reset.
func (s *Simulator) Steps() uint64 {
	return s.steps
}

// Reset (re)initializes machine state from the configured memory
// image and opens every declared file, per §3's file-handle lifecycle
// and §6's reset() surface.
func (s *Simulator) Reset() error {
	s.state = newState(s.memory)
	s.steps = 0
	s.histogram = make(map[asm.Op]uint64)

	for _, fb := range s.files.InputFiles {
		f, scanner, err := openInputFile(fb.Path)
		if err != nil {
			return &FileOpenError{FileName: fb.Name, Path: fb.Path, Err: err}
		}
		s.state.openInputFiles[fb.Name] = f
		s.state.InputFiles[fb.Name] = scanner
	}
	for _, fb := range s.files.OutputFiles {
		f, writer, err := openOutputFile(fb.Path)
		if err != nil {
			return &FileOpenError{FileName: fb.Name, Path: fb.Path, Err: err}
		}
		s.state.openOutputFiles[fb.Name] = f
		s.state.OutputFiles[fb.Name] = writer
	}

	return nil
}

// Step executes at most one instruction (§5: "step is the only
// scheduling unit"). Port peers are NOT advanced here — the driver
// calling Step is responsible for interleaving peer steps between
// calls, per §9's cooperative-peer design note.
func (s *Simulator) Step() (Status, error) {
	if s.state == nil {
		return Stopped, fmt.Errorf("sim: Step called before Reset")
	}
	if s.state.PC >= uint32(len(s.program)) {
		return Stopped, fmt.Errorf("sim: program counter %d out of range", s.state.PC)
	}

	pc := s.state.PC
	instr := s.program[pc]
	nextPC := pc + 1

	status, nextPC, err := s.exec(pc, instr, nextPC)
	s.state.PC = nextPC
	s.steps++
	s.histogram[instr.Op]++

	return status, err
}
