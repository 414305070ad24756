package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUniqueNode is returned when a node id already exists in the graph.
var ErrUniqueNode = errors.New("node id already exists")

// ErrTimeout is returned when a submission deadline elapses before every runner finished.
var ErrTimeout = errors.New("submission deadline exceeded")

// ErrNoRunner is returned when neither the node, its graph nor the process
// default names a runner.
var ErrNoRunner = errors.New("no runner assigned")

// DuplicateNodeError reports the id that collided.
type DuplicateNodeError struct {
	NodeID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("%q already exists in the graph", e.NodeID)
}

func (e *DuplicateNodeError) Is(target error) bool { return target == ErrUniqueNode }

// TypeMismatchError is returned when wiring two ports whose declared types are incompatible.
type TypeMismatchError struct {
	From     string // Out port id
	To       string // In port id
	FromType string
	ToType   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot connect %s (%s) to %s (%s)", e.From, e.FromType, e.To, e.ToType)
}

// PortNotInitializedError is returned by node validation.
type PortNotInitializedError struct {
	NodeID string
	Port   string
}

func (e *PortNotInitializedError) Error() string {
	return fmt.Sprintf("node %s: in port %q not initialized", e.NodeID, e.Port)
}

// UnsupportedInitializationError is returned when a literal is given to a port name,
// or a port is given to a literal parameter.
type UnsupportedInitializationError struct {
	NodeID string
	Name   string
	Reason string
}

func (e *UnsupportedInitializationError) Error() string {
	return fmt.Sprintf("node %s: cannot initialize %q: %s", e.NodeID, e.Name, e.Reason)
}

// RunnerCompatibilityError names the runner whose edge kind does not refine the reference kind.
type RunnerCompatibilityError struct {
	Runner    string
	EdgeKind  string
	Reference string
	Reason    string
}

func (e *RunnerCompatibilityError) Error() string {
	msg := fmt.Sprintf("runner %s edge %s is not compatible with %s", e.Runner, e.EdgeKind, e.Reference)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// NodeFailure is the failure detail of a single node run.
// Err is only set when the failure happened in this process; failures shipped
// back from a child process carry Message and Trace only.
type NodeFailure struct {
	NodeID  string
	Message string
	Trace   string
	Err     error
}

// NewNodeFailure builds a failure from a local error.
func NewNodeFailure(nodeID string, err error, trace string) *NodeFailure {
	return &NodeFailure{
		NodeID:  nodeID,
		Message: err.Error(),
		Trace:   trace,
		Err:     err,
	}
}

func (f *NodeFailure) Error() string { return f.Message }

func (f *NodeFailure) Unwrap() error { return f.Err }

// RunnerExecutionError aggregates every failing node of one runner execution.
type RunnerExecutionError struct {
	Runner   string
	Failures map[string]*NodeFailure
}

// NodeIDs returns the failing node ids in a stable order.
func (e *RunnerExecutionError) NodeIDs() []string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Error lists, per node, its id, its trace (if any) and finally its message.
func (e *RunnerExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "errors in %s execution:", e.Runner)
	for _, id := range e.NodeIDs() {
		f := e.Failures[id]
		b.WriteString("\n\n")
		b.WriteString(id)
		if trace := strings.TrimRight(f.Trace, "\n"); trace != "" {
			b.WriteString("\n")
			b.WriteString(trace)
		}
		b.WriteString("\n")
		b.WriteString(f.Message)
	}
	return b.String()
}

func (e *RunnerExecutionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, id := range e.NodeIDs() {
		errs = append(errs, e.Failures[id])
	}
	return errs
}

// GraphExecutionError aggregates runner level failures of one submission.
type GraphExecutionError struct {
	Errors []error
}

func (e *GraphExecutionError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n\n")
}

func (e *GraphExecutionError) Unwrap() []error { return e.Errors }

// TimeoutError reports the runners still executing when the deadline elapsed.
// Partial holds the failures of runners that did finish, if any.
type TimeoutError struct {
	Pending []string
	Partial *GraphExecutionError
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s: some nodes were still executing (%s)", ErrTimeout, strings.Join(e.Pending, ", "))
	if e.Partial != nil {
		msg += "\n\n" + e.Partial.Error()
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error {
	if e.Partial == nil {
		return nil
	}
	return e.Partial
}
