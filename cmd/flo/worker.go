package main

import (
	"github.com/aretw0/flo/internal/cli"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:    "worker",
	Short:  "Serve one node request from a process runner",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return cli.Worker(cmd.Context(), level)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
