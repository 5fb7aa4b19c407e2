package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the schemat command tree: serve, load-module, inspect.
func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "schemat",
		Short:         "Run and inspect a Schemat Object Core installation",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&configDir, "config-dir", "c", ".", "directory containing schemat.yml")

	root.AddCommand(newServeCmd(&configDir))
	root.AddCommand(newLoadModuleCmd(&configDir))
	root.AddCommand(newInspectCmd(&configDir))
	return root
}
