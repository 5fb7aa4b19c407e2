package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLoadModuleCmd loads a single module path (local or SUN, see
// internal/modloader) through the configured installation and reports
// success, circular-dependency, or other failure — useful for a
// developer checking a module's imports resolve before deploying it.
func newLoadModuleCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load-module <path>",
		Short: "Load a single module path and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := boot(*configDir)
			if err != nil {
				return err
			}
			defer in.Close()

			if _, err := in.loader.Load(cmd.Context(), args[0], ""); err != nil {
				return fmt.Errorf("loading %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %s\n", args[0])
			return nil
		},
	}
}
