package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/machinist/internal/infrastructure/config"
	"github.com/reglet-dev/machinist/internal/version"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of machinist",
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "machinist version %s\n", info.Full())
		fmt.Fprintf(cmd.OutOrStdout(), "blueprint documents: %s\n", config.SupportedVersions)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
