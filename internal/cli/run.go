package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/flo/internal/config"
	"github.com/aretw0/flo/internal/validator"
	floHTTP "github.com/aretw0/flo/pkg/adapters/http"
	"github.com/aretw0/flo/pkg/adapters/memory"
	"github.com/aretw0/flo/pkg/adapters/redis"
	"github.com/aretw0/flo/pkg/dsl"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/library"
	"github.com/aretw0/flo/pkg/observability"
	"github.com/aretw0/flo/pkg/ports"
	"github.com/aretw0/flo/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
)

// RunOptions holds the configuration for `flo run`.
type RunOptions struct {
	Config  config.Config
	Count   int           // values generated
	Delay   time.Duration // pause of the sleep node per value
	Version string
	Stdout  io.Writer
	Stderr  io.Writer
	// Registry receives the metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

func (o *RunOptions) defaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
	}
}

// Run executes the numstream demo (generate -> sleep -> log) on the
// configured runner and waits for it.
func Run(ctx context.Context, opts RunOptions) error {
	opts.defaults()
	if err := opts.Config.Validate(); err != nil {
		return err
	}
	if opts.Count < 0 {
		return errors.New("count must not be negative")
	}

	logger, err := createLogger(opts.Config.LogLevel)
	if err != nil {
		return err
	}

	sm := runner.NewSignalManager(ctx)
	defer sm.Stop()
	ctx = sm.Context()

	metrics := observability.NewMetrics(opts.Registry)
	if addr := opts.Config.MetricsAddr; addr != "" {
		stop, err := startOpsServer(addr, opts, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	r, err := createRunner(ctx, opts, logger, metrics)
	if err != nil {
		return err
	}

	g := flow.NewGraph(flow.WithRunner(r), flow.WithLogger(logger))
	if err := buildDemo(g, opts); err != nil {
		return err
	}
	if err := validator.ValidateGraph(g); err != nil {
		return err
	}

	printSystemMessage(opts.Stderr, "Running %d values on %s (graph %s)", opts.Count, r.Name(), g.ID())
	err = g.Submit(ctx, time.Duration(opts.Config.Timeout))
	if err == nil {
		printSystemMessage(opts.Stderr, "Done.")
	}
	return handleExecutionError(err, sm.Interrupted())
}

func buildDemo(g *flow.Graph, opts RunOptions) error {
	b := dsl.New(g)
	b.Add("generate", library.Generate).Set("arg", opts.Count)
	b.Add("sleep", library.Sleep).Set("duration", opts.Delay.Seconds()).From("inflow", "generate.outflow")
	b.Add("log", library.NewLog(opts.Stdout)).From("inflow", "sleep.outflow")
	_, err := b.Build()
	return err
}

// createRunner picks the runner and its edges from the configuration.
// Threads use memory edges unless a Redis URL is configured; processes and
// fibers always use Redis streams.
func createRunner(ctx context.Context, opts RunOptions, logger *slog.Logger, metrics *observability.Metrics) (flow.Runner, error) {
	cfg := opts.Config
	runnerOpts := []runner.Option{
		runner.WithName(cfg.Runner),
		runner.WithLogger(logger),
		runner.WithHooks(createHooks(logger, metrics)),
	}

	switch cfg.Runner {
	case config.RunnerThread:
		if cfg.Redis.URL == "" {
			return runner.NewThreadRunner(metrics.Instrument(memory.NewFactory(nil)), runnerOpts...), nil
		}
		f, err := createStreamFactory(ctx, cfg, false)
		if err != nil {
			return nil, err
		}
		return runner.NewThreadRunner(metrics.Instrument(f), runnerOpts...), nil
	case config.RunnerProcess:
		f, err := createStreamFactory(ctx, cfg, false)
		if err != nil {
			return nil, err
		}
		runnerOpts = append(runnerOpts,
			runner.WithOutput(opts.Stdout, opts.Stderr),
			runner.WithEnv(config.EnvLogLevel+"="+cfg.LogLevel),
		)
		return runner.NewProcessRunner(metrics.Instrument(f), runnerOpts...)
	case config.RunnerFiber:
		f, err := createStreamFactory(ctx, cfg, true)
		if err != nil {
			return nil, err
		}
		return runner.NewFiberRunner(metrics.Instrument(f), runnerOpts...)
	}
	return nil, fmt.Errorf("unknown runner %q", cfg.Runner)
}

func createStreamFactory(ctx context.Context, cfg config.Config, cooperative bool) (ports.EdgeFactory, error) {
	client, err := redis.DefaultManager().Client(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	opts := []redis.Option{redis.WithURL(cfg.Redis.URL)}
	if cfg.Redis.Block > 0 {
		opts = append(opts, redis.WithBlock(time.Duration(cfg.Redis.Block)))
	}
	if cfg.Redis.Count > 0 {
		opts = append(opts, redis.WithCount(cfg.Redis.Count))
	}
	if cooperative {
		return redis.NewCooperativeFactory(redis.NewStreams(client), opts...), nil
	}
	return redis.NewFactory(redis.NewStreams(client), opts...), nil
}

// startOpsServer serves health, spec and metrics endpoints until stop is called.
func startOpsServer(addr string, opts RunOptions, logger *slog.Logger) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("error listening on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler: floHTTP.NewHandler(&floHTTP.Server{
			Version:  opts.Version,
			Catalog:  library.Registry(),
			Gatherer: opts.Registry,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", "error", err)
		}
	}()
	logger.Info("ops server listening", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("ops server shutdown", "error", err)
		}
	}, nil
}
