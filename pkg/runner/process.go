package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/ports"
)

// ErrEdgeNotPortable is returned when a ProcessRunner is built over edges a
// child process cannot reach.
var ErrEdgeNotPortable = errors.New("process runner needs a portable stream edge")

// ProcessRunner runs every node in its own OS process. The child receives a
// Request on stdin and writes a Report to file descriptor 3.
type ProcessRunner struct {
	*base
	opts options
}

var _ flow.Runner = (*ProcessRunner)(nil)

// NewProcessRunner creates a runner over a portable stream factory. The
// factory must carry the broker URL (redis.WithURL): children connect with
// it, not with the parent's client.
func NewProcessRunner(factory ports.EdgeFactory, opts ...Option) (*ProcessRunner, error) {
	p, ok := factory.(ports.Portable)
	if !ok || !factory.Kind().Portable() {
		return nil, fmt.Errorf("%w: got %s", ErrEdgeNotPortable, factory.Kind())
	}
	if p.Config().URL == "" {
		return nil, fmt.Errorf("%w: %s factory has no url", ErrEdgeNotPortable, factory.Kind())
	}

	o := newOptions(opts)
	if o.command == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		o.command = exe
	}
	if o.stdout == nil {
		o.stdout = os.Stdout
	}
	if o.stderr == nil {
		o.stderr = os.Stderr
	}
	return &ProcessRunner{base: newBase("process", factory, o), opts: o}, nil
}

// Add registers nodes and assigns them to r.
func (r *ProcessRunner) Add(nodes ...*flow.Node) { r.add(r, nodes) }

// Execute starts one child per node and waits for all of them.
// Cancelling ctx interrupts the children.
func (r *ProcessRunner) Execute(ctx context.Context) error {
	cfg := r.factory.(ports.Portable).Config()
	return r.execute(ctx, func(ctx context.Context, n *flow.Node) error {
		return r.runNode(ctx, n, func(ctx context.Context) error {
			err := r.spawn(ctx, n, cfg)
			if err != nil {
				r.release(ctx, n)
			}
			return err
		})
	})
}

func (r *ProcessRunner) spawn(ctx context.Context, n *flow.Node, cfg ports.EdgeConfig) error {
	payload, err := json.Marshal(Request{Node: n.Descriptor(), Edge: cfg})
	if err != nil {
		return fmt.Errorf("encode node %s: %w", n.ID(), err)
	}

	reportR, reportW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("report pipe: %w", err)
	}
	defer reportR.Close()

	cmd := exec.CommandContext(ctx, r.opts.command, r.opts.args...)
	cmd.Env = append(os.Environ(), EnvChild+"=1")
	cmd.Env = append(cmd.Env, r.opts.env...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = r.opts.stdout
	cmd.Stderr = r.opts.stderr
	cmd.ExtraFiles = []*os.File{reportW}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.opts.waitDelay

	if err := cmd.Start(); err != nil {
		reportW.Close()
		return fmt.Errorf("start child for %s: %w", n.ID(), err)
	}
	reportW.Close()
	r.logger.Debug("child started", "node_id", n.ID(), "pid", cmd.Process.Pid)

	type readResult struct {
		data []byte
		err  error
	}
	read := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(reportR)
		read <- readResult{data, err}
	}()

	waitErr := cmd.Wait()
	res := <-read
	r.logger.Debug("child exited", "node_id", n.ID(), "exit_code", cmd.ProcessState.ExitCode())

	if len(bytes.TrimSpace(res.data)) > 0 {
		var rep Report
		if err := json.Unmarshal(res.data, &rep); err != nil {
			return fmt.Errorf("decode report of %s: %w", n.ID(), err)
		}
		if rep.Message != "" {
			return &domain.NodeFailure{NodeID: n.ID(), Message: rep.Message, Trace: rep.Trace}
		}
	}
	if waitErr != nil {
		return fmt.Errorf("child for %s: %w", n.ID(), waitErr)
	}
	return nil
}

// release emits DONE on the Out ports of a failed child so consumers do not
// wait forever. A DONE already sent by the child makes this one unreachable.
func (r *ProcessRunner) release(ctx context.Context, n *flow.Node) {
	ctx = context.WithoutCancel(ctx)
	for _, p := range n.Outputs() {
		e, err := r.Edge(p.ID)
		if err == nil {
			err = e.Stop(ctx)
		}
		if err != nil {
			r.logger.Warn("release out port", "node_id", n.ID(), "port", p.Name, "error", err)
		}
	}
}
