package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/flo/pkg/flow"
)

// ErrUnknownRef is returned when a From reference names a missing node or port.
var ErrUnknownRef = errors.New("unknown port reference")

// Builder declares the nodes of a graph and wires them by name.
type Builder struct {
	graph  *flow.Graph
	nodes  []*NodeBuilder
	byName map[string]*NodeBuilder
}

// New creates a builder adding to g.
func New(g *flow.Graph) *Builder {
	return &Builder{
		graph:  g,
		byName: make(map[string]*NodeBuilder),
	}
}

// Add declares a node called name.
// If the name was already declared, it returns the existing builder.
func (b *Builder) Add(name string, spec *flow.Spec) *NodeBuilder {
	if nb, ok := b.byName[name]; ok {
		return nb
	}
	nb := &NodeBuilder{
		name:  name,
		spec:  spec,
		links: make(map[string][]string),
	}
	b.nodes = append(b.nodes, nb)
	b.byName[name] = nb
	return nb
}

// Build adds every declared node to the graph, then initializes them.
// References may point to nodes declared later. The returned map is keyed by
// node name. Build is meant to be called once per graph.
func (b *Builder) Build() (map[string]*flow.Node, error) {
	built := make(map[string]*flow.Node, len(b.nodes))
	for _, nb := range b.nodes {
		n, err := b.graph.Add(nb.spec, flow.Named(nb.name), flow.RunOn(nb.runner))
		if err != nil {
			return nil, err
		}
		built[nb.name] = n
	}

	for _, nb := range b.nodes {
		kv := append([]any{}, nb.literals...)
		for _, port := range nb.ports {
			ups := make([]*flow.Port, 0, len(nb.links[port]))
			for _, ref := range nb.links[port] {
				p, err := resolve(built, ref)
				if err != nil {
					return nil, fmt.Errorf("node %s port %s: %w", nb.name, port, err)
				}
				ups = append(ups, p)
			}
			kv = append(kv, port, ups)
		}
		if err := built[nb.name].Init(kv...); err != nil {
			return nil, err
		}
	}
	return built, nil
}

// resolve reads "node.port".
func resolve(nodes map[string]*flow.Node, ref string) (*flow.Port, error) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return nil, fmt.Errorf("%w %q: want node.port", ErrUnknownRef, ref)
	}
	n, ok := nodes[ref[:i]]
	if !ok {
		return nil, fmt.Errorf("%w %q: no node %s", ErrUnknownRef, ref, ref[:i])
	}
	p := n.Out(ref[i+1:])
	if p == nil {
		return nil, fmt.Errorf("%w %q: %s has no output %s", ErrUnknownRef, ref, ref[:i], ref[i+1:])
	}
	return p, nil
}
