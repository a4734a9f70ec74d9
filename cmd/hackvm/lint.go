package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/verify"
	"github.com/sarchlab/hackvm/vm"
)

func newLintCmd(opts *options) *cobra.Command {
	var report bool

	cmd := &cobra.Command{
		Use:   "lint path",
		Short: "Check a program for label, call and stack errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			driver := api.NewDriverBuilder().WithConfig(cfg).Build("Linter")
			if err := driver.AddPath(args[0]); err != nil {
				return err
			}

			var cmds []vm.Command
			for _, u := range driver.Units() {
				parsed, err := vm.Parse(u.Name, u.Source)
				if err != nil {
					return err
				}
				cmds = append(cmds, parsed...)
			}

			out := cmd.OutOrStdout()

			if report {
				r := verify.GenerateReport(cmds, cfg)
				r.WriteReport(out)
				if !r.OK() {
					return fmt.Errorf("verification failed")
				}
				return nil
			}

			issues := verify.RunLint(cmds)
			if len(issues) == 0 {
				fmt.Fprintf(out, "%d file(s), %d command(s): no issues\n", len(driver.Units()), len(cmds))
				return nil
			}

			fmt.Fprintln(out, verify.IssueTable(issues))
			return fmt.Errorf("%d lint issue(s)", len(issues))
		},
	}

	cmd.Flags().BoolVar(&report, "report", false, "also simulate and emulate the program and compare the results")

	return cmd
}
