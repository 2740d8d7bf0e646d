package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openavionics/flightcore/plan"
)

func newCompileCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compile <plan>",
		Short: "Compile a plan into the binary config form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := plan.Compile(data, args[0])
			if err != nil {
				return err
			}

			if output == "" {
				base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				output = base + ".fcfg"
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := cfg.EncodeTo(f); err != nil {
				return fmt.Errorf("encode %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d states)\n",
				output, len(cfg.States))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")

	return cmd
}
