package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"typereflect/internal/analyze"
	"typereflect/internal/config"
	"typereflect/internal/diagnostic"
	"typereflect/internal/gen"
	"typereflect/internal/logging"
)

// app carries the state shared by all commands once flags are parsed.
type app struct {
	configPath string
	dir        string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "typereflect",
		Short: "Static reflection for annotated Go types",
		Long: `typereflect scans Go packages for types annotated with //reflect: directives
and generates providers that register their attributes, methods, parents and
used types with the typereflect/reflection runtime.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (default ./"+config.FileName+".yaml)")
	f.StringVarP(&a.dir, "dir", "C", "", "run as if started in this directory")
	f.String("suffix", analyze.DefaultSuffix, "file name suffix of generated providers")
	f.String("log-level", logging.DefaultLevel, "log level: debug, info, warn or error")
	f.Bool("diagnostics", false, "report warnings and infos, not only errors")

	root.AddCommand(
		newGenerateCmd(a),
		newInspectCmd(a),
		newExportCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, a.dir, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger

	return nil
}

// scan loads the packages matched by args, or the configured patterns.
func (a *app) scan(args []string) (*analyze.TypeGraph, error) {
	patterns := a.cfg.PatternsOr(args)

	an := analyze.NewAnalyzer(
		analyze.WithLogger(a.logger),
		analyze.WithDir(a.dir),
		analyze.WithSuffix(a.cfg.Suffix),
	)

	graph, err := an.LoadPackages(patterns...)
	if err != nil {
		return nil, fmt.Errorf("scanning %v: %w", patterns, err)
	}

	return graph, nil
}

func (a *app) generator() *gen.Generator {
	return gen.NewGenerator(gen.GeneratorConfig{
		Suffix:           a.cfg.Suffix,
		ReflectionPath:   a.cfg.Output.ReflectionPath,
		DebugUnformatted: a.cfg.Output.DebugUnformatted,
	}, a.logger)
}

// report prints errors, and warnings and infos when asked to.
func (a *app) report(w io.Writer, d diagnostic.Diagnostics) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	for _, e := range d.Errors {
		red.Fprint(w, "error")
		fmt.Fprintln(w, ": "+e.String())
	}

	if !a.cfg.Diagnostics {
		return
	}

	for _, e := range d.Warnings {
		yellow.Fprint(w, "warning")
		fmt.Fprintln(w, ": "+e.String())
	}

	for _, e := range d.Infos {
		cyan.Fprint(w, "info")
		fmt.Fprintln(w, ": "+e.String())
	}
}
