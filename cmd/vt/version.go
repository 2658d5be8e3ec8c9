package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/voltable/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vt version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "vt", version.Version)
	},
}
