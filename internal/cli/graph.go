package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/flo/internal/presentation/graph"
	"github.com/aretw0/flo/pkg/adapters/memory"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/runner"
)

// Graph prints the demo graph of `flo run` as a Mermaid flowchart.
func Graph(w io.Writer, opts RunOptions) error {
	opts.defaults()
	g := flow.NewGraph(flow.WithID("demo"), flow.WithRunner(runner.NewThreadRunner(memory.NewFactory(nil))))
	if err := buildDemo(g, opts); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, graph.GenerateMermaid(g.Nodes(), nil))
	return err
}
