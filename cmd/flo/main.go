package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/flo/internal/cli"
	"github.com/aretw0/flo/internal/config"
	"github.com/aretw0/flo/pkg/runner"
)

func main() {
	// A process runner re-executes this binary with no arguments.
	if runner.IsChild() {
		if err := cli.Worker(context.Background(), os.Getenv(config.EnvLogLevel)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	Execute()
}
