package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the default model",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (default model %s)\n", app, version, defaultConfig().Gemini.Model)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
