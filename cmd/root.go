// Package cmd wires the promptboard CLI: the serve command runs the editor
// backend, key manages the stored API credential, and version reports build
// information.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "promptboard",
	Short: "Promptboard - AI image editing canvas backend",
	Long: `Promptboard serves the HTTP backend for an infinite-canvas image
editor driven by generative models: sessions, canvas objects, reference
packing, generation orchestration, and project archives.

Running promptboard with no arguments starts the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
