package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"typereflect/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [patterns...]",
		Short: "Export the scanned model as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.scan(args)
			if err != nil {
				return err
			}

			m := export.Build(graph)

			if output != "" {
				if err := export.WriteFile(m, output); err != nil {
					return err
				}

				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d package(s) to %s\n", len(m.Packages), output)

				return nil
			}

			data, err := export.Marshal(m)
			if err != nil {
				return fmt.Errorf("failed to marshal export: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}
