package main

import (
	"github.com/aretw0/flo/internal/cli"
	"github.com/spf13/cobra"
)

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "List the built-in node specs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ListSpecs(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(specsCmd)
}
