package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/asm"
	"github.com/sarchlab/hackvm/emu"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run path",
		Short: "Translate, assemble and run a program on the Hack emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			sink := &api.MemorySink{}
			driver := api.NewDriverBuilder().
				WithConfig(cfg).
				WithSink(sink).
				Build("Runner")

			if err := driver.AddPath(args[0]); err != nil {
				return err
			}
			if err := driver.Run(); err != nil {
				return err
			}

			prog, err := asm.Assemble(sink.Lines)
			if err != nil {
				return err
			}

			machine, err := emu.Run(prog.Words, cfg.MaxSteps)
			if machine != nil {
				fmt.Fprint(cmd.OutOrStdout(), emu.StateTable(machine, cfg.StackBase))
			}
			if errors.Is(err, emu.ErrStepLimit) {
				return fmt.Errorf("program did not halt within %d steps", cfg.MaxSteps)
			}
			return err
		},
	}
}
