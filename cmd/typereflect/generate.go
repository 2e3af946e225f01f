package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"typereflect/internal/analyze"
	"typereflect/internal/gen"
)

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Generate reflection providers",
		Long: `Scan the packages matched by the patterns (default: the configured patterns,
./... unless set) and write one provider file next to every source file that
declares annotated types. Providers left over from removed types are deleted
unless output.remove_stale is false.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.generate(cmd.OutOrStdout(), args)
			return err
		},
	}
}

// generate scans, writes providers and returns the scanned graph.
func (a *app) generate(w io.Writer, args []string) (*analyze.TypeGraph, error) {
	graph, err := a.scan(args)
	if err != nil {
		return nil, err
	}

	a.report(w, graph.Diagnostics)

	if n := len(graph.Diagnostics.Errors); n > 0 {
		return nil, fmt.Errorf("%d error(s) found, nothing generated", n)
	}

	files, err := a.generator().Generate(graph)
	if err != nil {
		return nil, err
	}

	written, err := gen.WriteFiles(files)
	if err != nil {
		return nil, err
	}

	var removed []string
	if a.cfg.Output.RemoveStale {
		removed, err = gen.RemoveStale(gen.PackageDirs(graph), a.cfg.Suffix, files)
		if err != nil {
			return nil, err
		}
	}

	green := color.New(color.FgGreen)

	for _, path := range written {
		green.Fprint(w, "wrote")
		fmt.Fprintln(w, " "+path)
	}

	for _, path := range removed {
		green.Fprint(w, "removed")
		fmt.Fprintln(w, " "+path)
	}

	fmt.Fprintf(w, "%d written, %d removed, %d unchanged\n",
		len(written), len(removed), len(files)-len(written))

	a.logger.Info("generation finished",
		zap.Int("files", len(files)),
		zap.Int("written", len(written)),
		zap.Int("removed", len(removed)),
	)

	return graph, nil
}
