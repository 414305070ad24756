package flow

import (
	"errors"
	"fmt"

	"github.com/aretw0/flo/pkg/schema"
)

// ErrSpecMismatch is returned by Restore when the local spec declares other
// param types than the one the descriptor was made from.
var ErrSpecMismatch = errors.New("spec differs from the sender's")

// Descriptor is the portable form of a Node: enough for another process to
// rebuild it against a registry of specs.
type Descriptor struct {
	ID          string              `json:"id"`
	Spec        string              `json:"spec"`
	Params      map[string]string   `json:"params,omitempty"`
	Literals    map[string]any      `json:"literals,omitempty"`
	Connections map[string][]string `json:"connections,omitempty"`
}

// SpecSource resolves spec names. registry.Registry implements it.
type SpecSource interface {
	Get(name string) (*Spec, error)
}

// Descriptor returns the portable form of n.
func (n *Node) Descriptor() Descriptor {
	d := Descriptor{
		ID:       n.id,
		Spec:     n.spec.Name,
		Literals: n.Literals(),
	}
	if len(n.spec.Params) > 0 {
		d.Params = make(map[string]string, len(n.spec.Params))
		for name, typ := range n.spec.Params {
			d.Params[name] = typ.Name()
		}
	}
	if len(n.conns) > 0 {
		d.Connections = make(map[string][]string, len(n.conns))
		for name, c := range n.conns {
			d.Connections[name] = c.IDs()
		}
	}
	return d
}

// Restore rebuilds a node from its descriptor. Upstream ports become untyped
// placeholders carrying only their stream id; wiring was type checked where
// the descriptor was made. Literals are coerced back to their declared types.
func Restore(d Descriptor, specs SpecSource) (*Node, error) {
	spec, err := specs.Get(d.Spec)
	if err != nil {
		return nil, err
	}
	if err := checkParams(d, spec); err != nil {
		return nil, err
	}
	n, err := NewNode(d.ID, spec)
	if err != nil {
		return nil, err
	}

	for name, v := range d.Literals {
		if typ, ok := spec.Params[name]; ok {
			if v, err = schema.Coerce(typ, v); err != nil {
				return nil, fmt.Errorf("node %s: literal %s: %w", d.ID, name, err)
			}
		}
		if err := n.initOne(name, v); err != nil {
			return nil, err
		}
	}
	for name, ids := range d.Connections {
		c := make(Connection, len(ids))
		for i, id := range ids {
			c[i] = &Port{ID: id, Name: id, Type: schema.Any(), Direction: DirOut}
		}
		if err := n.initOne(name, c); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// checkParams compares the param types the sender declared with the local
// spec, catching a child binary built from another version of it.
func checkParams(d Descriptor, spec *Spec) error {
	sent, err := schema.ParseTypeMap(d.Params)
	if err != nil {
		return fmt.Errorf("node %s: %w", d.ID, err)
	}
	for name, typ := range sent {
		local, ok := spec.Params[name]
		if !ok {
			return fmt.Errorf("node %s: param %s: %w", d.ID, name, ErrSpecMismatch)
		}
		if local.Name() != typ.Name() {
			return fmt.Errorf("node %s: param %s is %s here, %s for the sender: %w",
				d.ID, name, local.Name(), typ.Name(), ErrSpecMismatch)
		}
	}
	return nil
}
