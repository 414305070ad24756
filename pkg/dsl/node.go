package dsl

import "github.com/aretw0/flo/pkg/flow"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	name     string
	spec     *flow.Spec
	runner   flow.Runner
	literals []any
	ports    []string
	links    map[string][]string
}

// Name returns the declared node name.
func (n *NodeBuilder) Name() string { return n.name }

// Set gives a literal value to a parameter.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	n.literals = append(n.literals, key, value)
	return n
}

// From connects the In port to upstream outputs written "node.port".
// Calling it again for the same port adds more upstreams.
func (n *NodeBuilder) From(port string, refs ...string) *NodeBuilder {
	if _, seen := n.links[port]; !seen {
		n.ports = append(n.ports, port)
	}
	n.links[port] = append(n.links[port], refs...)
	return n
}

// On runs the node on r instead of the graph's default runner.
func (n *NodeBuilder) On(r flow.Runner) *NodeBuilder {
	n.runner = r
	return n
}
