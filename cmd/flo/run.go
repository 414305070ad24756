package main

import (
	"time"

	"github.com/aretw0/flo"
	"github.com/aretw0/flo/internal/cli"
	"github.com/aretw0/flo/internal/config"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the numstream demo graph",
	Long: `Runs generate -> sleep -> log on the chosen runner and prints every value.
Threads use in-memory edges unless a Redis URL is given; processes and fibers
need Redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("runner") {
			cfg.Runner, _ = flags.GetString("runner")
		}
		if flags.Changed("redis") {
			cfg.Redis.URL, _ = flags.GetString("redis")
		}
		if flags.Changed("timeout") {
			d, _ := flags.GetDuration("timeout")
			cfg.Timeout = config.Duration(d)
		}
		if flags.Changed("metrics-addr") {
			cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
		}
		count, _ := flags.GetInt("count")
		delay, _ := flags.GetDuration("delay")

		return cli.Run(cmd.Context(), cli.RunOptions{
			Config:  cfg,
			Count:   count,
			Delay:   delay,
			Version: flo.Version,
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("runner", "r", config.RunnerThread, "Runner: thread, process or fiber")
	runCmd.Flags().String("redis", "", "Redis endpoint host[:port][/db] or redis:// URL")
	runCmd.Flags().Duration("timeout", 0, "Submission deadline (0 waits forever)")
	runCmd.Flags().String("metrics-addr", "", "Serve /metrics, /health and /specs on this address")
	runCmd.Flags().IntP("count", "n", 10, "Values to generate")
	runCmd.Flags().Duration("delay", 100*time.Millisecond, "Pause of the sleep node per value")
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}
