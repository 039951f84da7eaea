// Command vcpusim runs, single-steps, and disassembles the stack
// machine implemented by package sim. There is no text-format
// assembler in scope (§1 Non-goals), so the demo program below is
// built directly as asm.Instruction literals, the way the simulator's
// own test suite does.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vcpusim/asm"
	"vcpusim/sim"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "vcpusim",
		Short: "Cycle-accurate simulator for the stack-oriented virtual CPU",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level report logging")

	root.AddCommand(newRunCmd(&verbose))
	root.AddCommand(newStepCmd(&verbose))
	root.AddCommand(newDisasmCmd())

	return root
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func newRunCmd(verbose *bool) *cobra.Command {
	var maxSteps int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the built-in demo program to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sim.New(sim.Config{
				Program: demoProgram(),
				Logger:  newLogger(*verbose),
			})
			if err != nil {
				return fmt.Errorf("vcpusim: %w", err)
			}
			if err := s.Reset(); err != nil {
				return fmt.Errorf("vcpusim: %w", err)
			}

			for i := 0; i < maxSteps; i++ {
				status, err := s.Step()
				if status == sim.Stopped {
					if err != nil && err != sim.ErrSimulationStopped {
						return fmt.Errorf("vcpusim: %w", err)
					}
					fmt.Printf("halted after %d steps\n", s.Steps())
					return nil
				}
				if err != nil {
					return fmt.Errorf("vcpusim: %w", err)
				}
			}
			return fmt.Errorf("vcpusim: did not halt within %d steps", maxSteps)
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max-steps", 10_000, "step budget before giving up")
	return cmd
}

func newStepCmd(verbose *bool) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Single-step the built-in demo program, printing state after each step",
		RunE: func(cmd *cobra.Command, args []string) error {
			program := demoProgram()
			s, err := sim.New(sim.Config{
				Program: program,
				Logger:  newLogger(*verbose),
			})
			if err != nil {
				return fmt.Errorf("vcpusim: %w", err)
			}
			if err := s.Reset(); err != nil {
				return fmt.Errorf("vcpusim: %w", err)
			}

			for i := 0; i < count; i++ {
				pc := s.State().PC
				if int(pc) < len(s.Program()) {
					fmt.Printf("%4d  %s\n", pc, s.Program()[pc].String())
				}
				status, err := s.Step()
				fmt.Printf("      pc=%d tos=%d a_lo=%d carry=%d\n", s.State().PC, s.State().Tos, s.State().ALo, s.State().Carry)
				if status == sim.Stopped {
					if err != nil && err != sim.ErrSimulationStopped {
						return fmt.Errorf("vcpusim: %w", err)
					}
					return nil
				}
				if err != nil {
					return fmt.Errorf("vcpusim: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 20, "number of instructions to single-step")
	return cmd
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm",
		Short: "Print a listing of the built-in demo program",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := asm.Resolve(demoProgram())
			if err != nil {
				return fmt.Errorf("vcpusim: %w", err)
			}
			fmt.Print(asm.FormatProgram(resolved))
			return nil
		},
	}
}

// demoProgram computes (2 + 3) * 7 and reports the result, exercising
// the stack arithmetic and diagnostics opcodes without requiring any
// external port peers or file bindings.
func demoProgram() []asm.Instruction {
	return []asm.Instruction{
		{Op: asm.PushLiteral, Literal: 2},
		{Op: asm.PushLiteral, Literal: 3},
		{Op: asm.Add},
		{Op: asm.PushLiteral, Literal: 7},
		{Op: asm.Multiply},
		{Op: asm.PopALo},
		{Op: asm.Report, File: "demo.vc", Line: 1},
		{Op: asm.Stop},
	}
}
