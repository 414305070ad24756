package runner

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/flo/pkg/domain"
)

// DefaultWaitDelay bounds how long a child process may keep its pipes open
// after it was interrupted.
const DefaultWaitDelay = 5 * time.Second

// Option configures a runner. Options a runner has no use for are ignored.
type Option func(*options)

type options struct {
	name      string
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	command   string
	args      []string
	env       []string
	stdout    io.Writer
	stderr    io.Writer
	waitDelay time.Duration
}

func newOptions(opts []Option) options {
	o := options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithName sets the name reported in errors and logs.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHooks adds lifecycle hooks. Repeated calls accumulate.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithCommand sets the program a ProcessRunner starts per node.
// By default it re-executes the current binary, which must call Serve
// when IsChild reports true.
func WithCommand(name string, args ...string) Option {
	return func(o *options) {
		o.command = name
		o.args = args
	}
}

// WithEnv appends KEY=VALUE pairs to the environment of child processes.
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// WithOutput sets where child processes write stdout and stderr.
// Both default to the parent's.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithWaitDelay bounds the wait for an interrupted child process.
func WithWaitDelay(d time.Duration) Option {
	return func(o *options) {
		o.waitDelay = d
	}
}
