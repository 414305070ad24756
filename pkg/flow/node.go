package flow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime/debug"

	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/ports"
	"github.com/aretw0/flo/pkg/schema"
)

// Runner executes a set of nodes and builds the edges they talk through.
// Implementations live in package runner.
type Runner interface {
	// Name identifies the runner in errors and logs.
	Name() string
	// Add registers nodes with the runner. Adding a node twice is a no-op.
	Add(nodes ...*Node)
	// Nodes returns the registered nodes in insertion order.
	Nodes() []*Node
	// Factory returns the edge factory of the runner.
	Factory() ports.EdgeFactory
	// Edge binds a new edge to ids.
	Edge(ids ...string) (ports.Edge, error)
	// Execute runs every registered node and blocks until all of them
	// returned. It returns nil or a *domain.RunnerExecutionError.
	Execute(ctx context.Context) error
}

// Node is one computation unit of a graph, built from a Spec.
type Node struct {
	id       string
	name     string
	spec     *Spec
	inputs   []*Port
	outputs  []*Port
	ports    map[string]*Port
	conns    map[string]Connection
	literals map[string]any
	runner   Runner
}

// NewNode builds a node named id from spec. Port ids are id + "/" + port name.
func NewNode(id string, spec *Spec) (*Node, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	n := &Node{
		id:       id,
		name:     id,
		spec:     spec,
		ports:    make(map[string]*Port),
		conns:    make(map[string]Connection),
		literals: make(map[string]any),
	}
	for _, ps := range spec.Inputs {
		p := newPort(id, ps, DirIn)
		n.inputs = append(n.inputs, p)
		n.ports[p.Name] = p
	}
	for _, ps := range spec.Outputs {
		p := newPort(id, ps, DirOut)
		n.outputs = append(n.outputs, p)
		n.ports[p.Name] = p
	}
	return n, nil
}

// ID returns the graph-scoped id of the node.
func (n *Node) ID() string { return n.id }

// Name returns the short name the node was added to its graph with.
func (n *Node) Name() string { return n.name }

// Spec returns the definition the node was built from.
func (n *Node) Spec() *Spec { return n.spec }

// Inputs returns the In ports in declaration order.
func (n *Node) Inputs() []*Port { return n.inputs }

// Outputs returns the Out ports in declaration order.
func (n *Node) Outputs() []*Port { return n.outputs }

// Port returns the port called name, or nil.
func (n *Node) Port(name string) *Port { return n.ports[name] }

// Out returns the Out port called name, or nil. It reads well while wiring:
//
//	sink.Init("in", source.Out("out"))
func (n *Node) Out(name string) *Port {
	if p := n.ports[name]; p != nil && p.Direction == DirOut {
		return p
	}
	return nil
}

// Connection returns the connection of the In port name.
func (n *Node) Connection(name string) Connection { return n.conns[name] }

// Literals returns a copy of the literal initializers.
func (n *Node) Literals() map[string]any { return maps.Clone(n.literals) }

// Runner returns the runner the node is assigned to, or nil.
func (n *Node) Runner() Runner { return n.runner }

// SetRunner assigns the node to r. Runners call it from Add.
func (n *Node) SetRunner(r Runner) { n.runner = r }

// Init initializes the node from name/value pairs. See InitMap.
func (n *Node) Init(kv ...any) error {
	if len(kv)%2 != 0 {
		return fmt.Errorf("node %s: Init needs name/value pairs, got %d arguments", n.id, len(kv))
	}
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			return fmt.Errorf("node %s: argument %d: name must be a string, got %T", n.id, i, kv[i])
		}
		if err := n.initOne(name, kv[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// InitMap initializes the node. For an In port name the value must be an Out
// *Port, a []*Port or a Connection; each port is type checked and appended to
// the In port's connection. Any other name stores a literal, validated
// against the spec's Params when declared there.
func (n *Node) InitMap(values map[string]any) error {
	for name, v := range values {
		if err := n.initOne(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) initOne(name string, value any) error {
	var upstream []*Port
	switch v := value.(type) {
	case *Port:
		upstream = []*Port{v}
	case []*Port:
		upstream = v
	case Connection:
		upstream = v
	}

	p := n.ports[name]
	if p == nil {
		if upstream != nil {
			return &domain.UnsupportedInitializationError{NodeID: n.id, Name: name, Reason: "not a port of this node"}
		}
		if err := schema.ValidateField(n.spec.Params, name, value); err != nil {
			return fmt.Errorf("node %s: %w", n.id, err)
		}
		n.literals[name] = value
		return nil
	}

	if p.Direction == DirOut {
		return &domain.UnsupportedInitializationError{NodeID: n.id, Name: name, Reason: "out ports cannot be initialized"}
	}
	if upstream == nil {
		return &domain.UnsupportedInitializationError{NodeID: n.id, Name: name, Reason: fmt.Sprintf("in ports take out ports, got literal %T", value)}
	}
	for _, out := range upstream {
		if out == nil || out.Direction != DirOut {
			return &domain.UnsupportedInitializationError{NodeID: n.id, Name: name, Reason: "in ports take out ports"}
		}
		if err := Connect(out, p); err != nil {
			return err
		}
	}
	n.conns[name] = append(n.conns[name], upstream...)
	return nil
}

// Validate reports the first In port without a connection.
func (n *Node) Validate() error {
	for _, p := range n.inputs {
		if len(n.conns[p.Name]) == 0 {
			return &domain.PortNotInitializedError{NodeID: n.id, Port: p.Name}
		}
	}
	return nil
}

// Run performs one invocation: it binds edges for every port through the
// node's runner, emits INIT on every Out port, calls the spec function and
// emits DONE on every started Out port even when the function fails or panics.
func (n *Node) Run(ctx context.Context) (err error) {
	if err := n.Validate(); err != nil {
		return err
	}
	r := n.runner
	if r == nil {
		if r = NewDefaultRunner(); r == nil {
			return fmt.Errorf("node %s: %w", n.id, domain.ErrNoRunner)
		}
		r.Add(n)
	}

	args := &Args{
		nodeID:   n.id,
		ins:      make(map[string]*In, len(n.inputs)),
		outs:     make(map[string]*Out, len(n.outputs)),
		literals: maps.Clone(n.literals),
	}
	for _, p := range n.inputs {
		e, err := r.Edge(n.conns[p.Name].IDs()...)
		if err != nil {
			return fmt.Errorf("node %s: bind %s: %w", n.id, p.Name, err)
		}
		args.ins[p.Name] = &In{port: p, edge: e}
	}
	for _, p := range n.outputs {
		e, err := r.Edge(p.ID)
		if err != nil {
			return fmt.Errorf("node %s: bind %s: %w", n.id, p.Name, err)
		}
		args.outs[p.Name] = &Out{port: p, edge: e}
	}
	for _, p := range n.inputs {
		if args.ins[p.Name] == nil {
			return &domain.PortNotInitializedError{NodeID: n.id, Port: p.Name}
		}
	}

	var started []*Out
	defer func() {
		stopCtx := context.WithoutCancel(ctx)
		for _, o := range started {
			if serr := o.edge.Stop(stopCtx); serr != nil {
				err = errors.Join(err, fmt.Errorf("%s: stop: %w", o.port.ID, serr))
			}
		}
	}()
	for _, p := range n.outputs {
		o := args.outs[p.Name]
		if err := o.edge.Start(ctx); err != nil {
			return fmt.Errorf("%s: start: %w", p.ID, err)
		}
		started = append(started, o)
	}

	return n.invoke(ctx, args)
}

func (n *Node) invoke(ctx context.Context, args *Args) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return n.spec.Func(ctx, args)
}

// PanicError is returned by Run when the node function panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Trace returns the stack carried by err, if any.
func Trace(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return string(pe.Stack)
	}
	return ""
}

// Failure converts the error of a node run into its runner level detail.
func Failure(n *Node, err error) *domain.NodeFailure {
	return domain.NewNodeFailure(n.ID(), err, Trace(err))
}
