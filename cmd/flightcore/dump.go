package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/openavionics/flightcore/config"
)

func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <plan-or-config>",
		Short: "Print the state graph in readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}

			renderConfig(cmd.OutOrStdout(), cfg)

			return nil
		},
	}
}

func renderConfig(w io.Writer, cfg *config.ConfigFile) {
	fmt.Fprintf(w, "default: state %d\n", cfg.DefaultState)

	for _, s := range cfg.States {
		fmt.Fprintf(w, "state %d:\n", s.ID)

		for _, chk := range s.Checks {
			fmt.Fprintf(w, "  check %s%s\n",
				chk.Data, renderTransition(chk.Transition))
		}

		for _, cmd := range s.Commands {
			fmt.Fprintf(w, "  command %s after %s\n", cmd.Value, cmd.Delay)
		}

		if s.Timeout != nil {
			fmt.Fprintf(w, "  timeout %s%s\n",
				s.Timeout.Duration, renderTransition(&s.Timeout.Transition))
		}
	}
}

func renderTransition(t *config.StateTransition) string {
	if t == nil {
		return ""
	}

	if t.Kind == config.TransitionAbort {
		return fmt.Sprintf(" -> abort to state %d", t.Target)
	}

	return fmt.Sprintf(" -> state %d", t.Target)
}
