package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/plan"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flightcore",
		Short:         "Flight computer decision core tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newCompileCommand())
	cmd.AddCommand(newDumpCommand())
	cmd.AddCommand(newRunCommand())

	return cmd
}

// loadConfig reads either a compiled binary config (.fcfg) or a plan source
// file, keyed on the extension.
func loadConfig(path string) (*config.ConfigFile, error) {
	if strings.EqualFold(filepath.Ext(path), ".fcfg") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		cfg, err := config.DecodeConfig(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return plan.Compile(data, path)
}
