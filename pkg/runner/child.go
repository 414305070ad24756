package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/flo/pkg/adapters/redis"
	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/ports"
)

// EnvChild is set in the environment of every child a ProcessRunner starts.
const EnvChild = "FLO_PROCESS_CHILD"

// reportFD is the descriptor of the report pipe in the child: the first of
// exec.Cmd.ExtraFiles.
const reportFD = 3

// Request is what a child process reads from stdin.
type Request struct {
	Node flow.Descriptor  `json:"node"`
	Edge ports.EdgeConfig `json:"edge"`
}

// Report is what a child process writes back. An empty Message means success.
type Report struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

// IsChild reports whether the current process was started by a ProcessRunner.
func IsChild() bool {
	return os.Getenv(EnvChild) != ""
}

// Serve is the entry point of a child process: it reads a Request from
// stdin, rebuilds the node from specs, runs it and writes a Report to the
// report pipe. Programs using ProcessRunner call it early in main:
//
//	if runner.IsChild() {
//		if err := runner.Serve(ctx, reg); err != nil {
//			os.Exit(1)
//		}
//		return
//	}
func Serve(ctx context.Context, specs flow.SpecSource, opts ...Option) error {
	report, err := openReport(reportFD)
	if err != nil {
		return err
	}
	defer report.Close()
	return ServeIO(ctx, specs, os.Stdin, report, opts...)
}

// openReport opens the inherited report pipe. os.NewFile accepts any fd
// number, so a pipe the parent never passed only shows up on Stat.
func openReport(fd uintptr) (*os.File, error) {
	f := os.NewFile(fd, "flo-report")
	if f == nil {
		return nil, errors.New("report pipe missing")
	}
	if _, err := f.Stat(); err != nil {
		return nil, fmt.Errorf("report pipe missing: %w", err)
	}
	return f, nil
}

// ServeIO is Serve over explicit streams.
func ServeIO(ctx context.Context, specs flow.SpecSource, in io.Reader, report io.Writer, opts ...Option) error {
	err := serve(ctx, specs, in, opts)

	var rep Report
	if err != nil {
		rep.Message = err.Error()
		var rerr *domain.RunnerExecutionError
		if errors.As(err, &rerr) {
			for _, f := range rerr.Failures {
				rep.Message, rep.Trace = f.Message, f.Trace
			}
		}
	}
	if werr := json.NewEncoder(report).Encode(rep); werr != nil {
		return errors.Join(err, fmt.Errorf("write report: %w", werr))
	}
	return err
}

func serve(ctx context.Context, specs flow.SpecSource, in io.Reader, opts []Option) error {
	var req Request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	factory, err := redis.FromConfig(ctx, redis.DefaultManager(), req.Edge)
	if err != nil {
		return err
	}
	node, err := flow.Restore(req.Node, specs)
	if err != nil {
		return err
	}

	r := NewThreadRunner(factory, append([]Option{WithName("child:" + node.ID())}, opts...)...)
	r.Add(node)
	return r.Execute(ctx)
}
