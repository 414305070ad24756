package main

import (
	"github.com/aretw0/flo/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the demo graph as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Graph(cmd.OutOrStdout(), cli.RunOptions{Count: 10})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
