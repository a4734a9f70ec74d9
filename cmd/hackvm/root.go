package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/config"
)

type options struct {
	configPath  string
	noBootstrap bool
	comments    bool
	staticMode  string
	maxSteps    int
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "hackvm",
		Short: "Translate stack VM programs into Hack assembly",
		Long: `Hackvm is the backend of a two-stage compiler: it translates programs
written in the stack-based VM language into Hack assembly.

A path is either a single .vm file or a directory; every .vm file below a
directory is translated into one program, in path order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.BoolVar(&opts.noBootstrap, "no-bootstrap", false, "do not emit the call to the entry function")
	flags.BoolVar(&opts.comments, "comments", false, "emit each VM command as an assembly comment")
	flags.StringVar(&opts.staticMode, "static-mode", "", "static addressing: unit or flat")
	flags.IntVar(&opts.maxSteps, "max-steps", 0, "instruction budget for run")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "trace translation and emulation")

	root.AddCommand(
		newTranslateCmd(opts),
		newRunCmd(opts),
		newLintCmd(opts),
	)

	return root
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = codegen.LevelTrace
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the configuration file, if any, and applies the flags
// that were set on the command line.
func (o *options) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("no-bootstrap") {
		cfg.Bootstrap = !o.noBootstrap
	}
	if flags.Changed("comments") {
		cfg.Comments = o.comments
	}
	if flags.Changed("static-mode") {
		cfg.StaticMode = config.StaticMode(o.staticMode)
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = o.maxSteps
	}

	return cfg, cfg.Validate()
}
