package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/flo/pkg/flow"
)

// GraphOverlay contains run results to visualize on the graph, by node name.
type GraphOverlay struct {
	Done   []string
	Failed []string
}

// GenerateMermaid produces a Mermaid flowchart of the nodes and their
// connections. It applies semantic styling:
// - Source (no inputs): ((Circle))
// - Sink (no outputs): [/Parallelogram/]
// - Default: [Rectangle]
// Connections between nodes on different runners are dotted.
func GenerateMermaid(nodes []*flow.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	owner := make(map[string]*flow.Node)
	for _, n := range nodes {
		for _, p := range n.Outputs() {
			owner[p.ID] = n
		}
	}

	for _, n := range nodes {
		safeID := sanitizeMermaidID(n.Name())

		opener, closer := "[", "]"
		switch {
		case len(n.Inputs()) == 0:
			opener, closer = "((", "))"
		case len(n.Outputs()) == 0:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", safeID, opener, n.Name(), n.Spec().Name, closer)
	}

	for _, n := range nodes {
		for _, in := range n.Inputs() {
			for _, up := range n.Connection(in.Name) {
				from, ok := owner[up.ID]
				if !ok {
					continue
				}
				label := up.Name
				if up.Name != in.Name {
					label = up.Name + " → " + in.Name
				}
				arrow := fmt.Sprintf("-- \"%s\" -->", label)
				if from.Runner() != n.Runner() {
					arrow = fmt.Sprintf("-. \"%s\" .->", label)
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(from.Name()), arrow, sanitizeMermaidID(n.Name()))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef done fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:4px,color:#000;\n")
		for _, name := range overlay.Done {
			fmt.Fprintf(&sb, "    class %s done;\n", sanitizeMermaidID(name))
		}
		for _, name := range overlay.Failed {
			fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeMermaidID(name))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
