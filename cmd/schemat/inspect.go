package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// newInspectCmd dispatches GET::inspect against a stored object by id and
// prints the resulting JSON, a developer-facing shortcut for the
// GET::inspect endpoint every object answers to by default.
func newInspectCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <id>",
		Short: "Print the GET::inspect view of an object by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			in, err := boot(*configDir)
			if err != nil {
				return err
			}
			defer in.Close()

			status, body := in.dispatch.Dispatch(cmd.Context(), "GET", "/"+strconv.FormatInt(id, 10)+"::inspect", nil)
			if status != 200 {
				return fmt.Errorf("inspect %d: status %d: %s", id, status, body)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
}
