package flow

import (
	"context"
	"fmt"
	"iter"

	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/edge"
	"github.com/aretw0/flo/pkg/ports"
	"github.com/aretw0/flo/pkg/schema"
)

// Direction tells In ports from Out ports.
type Direction int

const (
	DirIn Direction = iota + 1
	DirOut
)

func (d Direction) String() string {
	if d == DirIn {
		return "in"
	}
	return "out"
}

// Port is a typed endpoint of a node. Its ID doubles as the stream id of
// the data it emits.
type Port struct {
	ID        string
	Name      string
	Type      schema.Type
	Direction Direction
}

func newPort(nodeID string, s PortSpec, dir Direction) *Port {
	typ := s.Type
	if typ == nil {
		typ = schema.Any()
	}
	return &Port{
		ID:        nodeID + "/" + s.Name,
		Name:      s.Name,
		Type:      typ,
		Direction: dir,
	}
}

func (p *Port) String() string {
	return fmt.Sprintf("%s(%s %s)", p.ID, p.Direction, p.Type.Name())
}

// Connection is the ordered list of Out ports feeding one In port.
// The same Out port may appear more than once.
type Connection []*Port

// IDs returns the stream ids of the connection, in order.
func (c Connection) IDs() []string {
	ids := make([]string, len(c))
	for i, p := range c {
		ids[i] = p.ID
	}
	return ids
}

// Connect checks that out may feed in.
func Connect(out, in *Port) error {
	if !schema.Compatible(out.Type, in.Type) {
		return &domain.TypeMismatchError{
			From:     out.ID,
			To:       in.ID,
			FromType: out.Type.Name(),
			ToType:   in.Type.Name(),
		}
	}
	return nil
}

// In is the live handle of an In port during one invocation.
type In struct {
	port *Port
	edge ports.Edge
}

// Port returns the underlying port.
func (i *In) Port() *Port { return i.port }

// All yields every value received on the port, coerced to its declared type,
// until every upstream port is done.
func (i *In) All(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for v, err := range i.edge.Pull(ctx) {
			if err != nil {
				yield(nil, fmt.Errorf("%s: %w", i.port.ID, err))
				return
			}
			coerced, err := schema.Coerce(i.port.Type, v)
			if err != nil {
				yield(nil, fmt.Errorf("%s: %w", i.port.ID, err))
				return
			}
			if !yield(coerced, nil) {
				return
			}
		}
	}
}

// Collect drains the port.
func (i *In) Collect(ctx context.Context) ([]any, error) {
	var out []any
	for v, err := range i.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Out is the live handle of an Out port during one invocation.
type Out struct {
	port *Port
	edge ports.Edge
}

// Port returns the underlying port.
func (o *Out) Port() *Port { return o.port }

// Send emits v to every consumer of the port.
func (o *Out) Send(ctx context.Context, v any) error {
	if err := o.port.Type.Validate(v); err != nil {
		return fmt.Errorf("%s: %w", o.port.ID, err)
	}
	if err := o.edge.Send(ctx, edge.KeyData, v); err != nil {
		return fmt.Errorf("%s: %w", o.port.ID, err)
	}
	return nil
}
