package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/flo/pkg/schema"
)

// Func is the body of a node. It reads its In ports, writes its Out ports and
// returns when it is done. Out ports are closed by the engine after Func
// returns, whatever the outcome.
type Func func(ctx context.Context, args *Args) error

// PortSpec declares one port of a Spec.
type PortSpec struct {
	Name string
	Type schema.Type
}

// P is shorthand for a PortSpec literal.
func P(name string, typ schema.Type) PortSpec {
	return PortSpec{Name: name, Type: typ}
}

// Spec is the definition of a node: its ports, its literal parameters and its
// function. A Spec is shared by every Node built from it.
type Spec struct {
	Name    string
	Inputs  []PortSpec
	Outputs []PortSpec
	Params  schema.Schema
	Func    Func
}

// Validate checks that the spec is usable.
func (s *Spec) Validate() error {
	if s == nil {
		return errors.New("nil spec")
	}
	if s.Name == "" {
		return errors.New("spec name is required")
	}
	if s.Func == nil {
		return fmt.Errorf("spec %s: function is required", s.Name)
	}

	seen := make(map[string]struct{})
	for _, p := range append(append([]PortSpec{}, s.Inputs...), s.Outputs...) {
		if p.Name == "" {
			return fmt.Errorf("spec %s: port name is required", s.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("spec %s: duplicate port %q", s.Name, p.Name)
		}
		if _, clash := s.Params[p.Name]; clash {
			return fmt.Errorf("spec %s: %q is both a port and a parameter", s.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}
