package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan-or-config>",
		Short: "Check a plan or compiled config without producing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"%s: ok, %d states, default state %d\n",
				args[0], len(cfg.States), cfg.DefaultState)

			return nil
		},
	}
}
