package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/flo"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flo",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flo version %s\n", strings.TrimSpace(flo.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
