package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typereflect/internal/export"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [patterns...]",
		Short: "Show what would be reflected",
		Long: `Scan the packages matched by the patterns and print every annotated type with
its class name, attributes, methods, parents and used types. Nothing is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.scan(args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			printModel(w, export.Build(graph))
			a.report(w, graph.Diagnostics)

			return nil
		},
	}
}

func printModel(w io.Writer, m *export.Model) {
	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)

	for _, pkg := range m.Packages {
		bold.Fprintln(w, pkg.Path)

		for _, t := range pkg.Types {
			fmt.Fprintf(w, "  %s %q ", t.Name, t.ClassName)
			gray.Fprintf(w, "(%s)\n", t.Mode)

			printMembers(w, gray, "attributes", t.Attributes)
			printMembers(w, gray, "methods", t.Methods)
			printRelations(w, gray, "parents", t.Parents)
			printRelations(w, gray, "used types", t.UsedTypes)
		}
	}
}

func printMembers(w io.Writer, gray *color.Color, title string, members []export.Member) {
	if len(members) == 0 {
		return
	}

	fmt.Fprintf(w, "    %s:\n", title)

	for _, m := range members {
		fmt.Fprintf(w, "      %s %s", m.Name, m.Type)

		if len(m.Qualifiers) > 0 {
			gray.Fprintf(w, " [%s]", strings.Join(m.Qualifiers, ", "))
		}

		if len(m.Metadata) > 0 {
			gray.Fprintf(w, " %s", formatMetadata(m.Metadata))
		}

		fmt.Fprintln(w)
	}
}

func printRelations(w io.Writer, gray *color.Color, title string, rels []export.Relation) {
	if len(rels) == 0 {
		return
	}

	fmt.Fprintf(w, "    %s:\n", title)

	for _, r := range rels {
		fmt.Fprintf(w, "      %s", r.Type)

		if r.Embedded {
			gray.Fprint(w, " [embedded]")
		}

		if len(r.Metadata) > 0 {
			gray.Fprintf(w, " %s", formatMetadata(r.Metadata))
		}

		fmt.Fprintln(w)
	}
}

func formatMetadata(md export.Metadata) string {
	parts := make([]string, len(md))
	for i, e := range md {
		parts[i] = e.Key + ": " + e.Value
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
