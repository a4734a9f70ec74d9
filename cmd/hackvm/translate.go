package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/asm"
)

func newTranslateCmd(opts *options) *cobra.Command {
	var (
		outPath string
		hack    bool
	)

	cmd := &cobra.Command{
		Use:   "translate path",
		Short: "Translate a .vm file or a directory of .vm files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath, err = api.OutputPath(args[0])
				if err != nil {
					return err
				}
			}

			sink := api.NewFileSink(outPath)
			driver := api.NewDriverBuilder().
				WithConfig(cfg).
				WithSink(sink).
				Build("Translator")

			if err := driver.AddPath(args[0]); err != nil {
				return err
			}
			if err := driver.Run(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "translated %d unit(s) -> %s\n",
				len(driver.Units()), outPath)

			if hack {
				return writeHack(cmd, outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: derived from path)")
	cmd.Flags().BoolVar(&hack, "hack", false, "also assemble the output into a .hack file")

	return cmd
}

func writeHack(cmd *cobra.Command, asmPath string) error {
	src, err := os.ReadFile(asmPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", asmPath, err)
	}

	prog, err := asm.AssembleString(string(src))
	if err != nil {
		return err
	}

	hackPath := strings.TrimSuffix(asmPath, api.OutputExt) + ".hack"
	if err := os.WriteFile(hackPath, []byte(asm.Format(prog.Words)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", hackPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "assembled %d words -> %s\n", len(prog.Words), hackPath)
	return nil
}
