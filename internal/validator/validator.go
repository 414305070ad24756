package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/flo/pkg/flow"
)

// ValidateGraph checks the nodes of a graph before submission: every In port
// must be wired, every upstream must belong to a node of the graph (nothing
// else would ever close it), and the connections must not form a cycle.
func ValidateGraph(g *flow.Graph) error {
	nodes := g.Nodes()

	owner := make(map[string]*flow.Node)
	for _, n := range nodes {
		for _, p := range n.Outputs() {
			owner[p.ID] = n
		}
	}

	var errors []string
	downstream := make(map[*flow.Node][]*flow.Node)
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			errors = append(errors, err.Error())
		}
		for _, in := range n.Inputs() {
			for _, up := range n.Connection(in.Name) {
				from, ok := owner[up.ID]
				if !ok {
					errors = append(errors, fmt.Sprintf("node %s: port %s reads %s, which no node of the graph writes", n.Name(), in.Name, up.ID))
					continue
				}
				if !slices.Contains(downstream[from], n) {
					downstream[from] = append(downstream[from], n)
				}
			}
		}
	}

	if cycle := findCycle(nodes, downstream); cycle != nil {
		names := make([]string, len(cycle))
		for i, n := range cycle {
			names[i] = n.Name()
		}
		errors = append(errors, "cycle: "+strings.Join(names, " -> "))
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}

// findCycle returns the first cycle met by a depth-first walk, closed by its
// first node repeated, or nil.
func findCycle(nodes []*flow.Node, downstream map[*flow.Node][]*flow.Node) []*flow.Node {
	const (
		unseen = iota
		open
		closed
	)
	state := make(map[*flow.Node]int)
	var path []*flow.Node

	var visit func(n *flow.Node) []*flow.Node
	visit = func(n *flow.Node) []*flow.Node {
		state[n] = open
		path = append(path, n)
		for _, next := range downstream[n] {
			switch state[next] {
			case open:
				i := slices.Index(path, next)
				return append(slices.Clone(path[i:]), next)
			case unseen:
				if c := visit(next); c != nil {
					return c
				}
			}
		}
		path = path[:len(path)-1]
		state[n] = closed
		return nil
	}

	for _, n := range nodes {
		if state[n] == unseen {
			if c := visit(n); c != nil {
				return c
			}
		}
	}
	return nil
}
