package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/gogpu/rvt/shader"
)

func newShadersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shaders",
		Short: "Compile the WGSL programs to SPIR-V and report their size.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources := shader.Sources()
			labels := make([]string, 0, len(sources))
			for label := range sources {
				labels = append(labels, label)
			}
			slices.Sort(labels)

			out := cmd.OutOrStdout()
			var failed int
			for _, label := range labels {
				code, err := shader.Compile(sources[label])
				if err != nil {
					failed++
					fmt.Fprintf(out, "%-20s error: %v\n", label, err)
					continue
				}
				fmt.Fprintf(out, "%-20s %d words\n", label, len(code))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d shaders failed to compile", failed, len(labels))
			}
			return nil
		},
	}
}
