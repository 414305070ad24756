package flow

import (
	"context"
	"sync"

	"github.com/aretw0/flo/pkg/ports"
)

// stubRunner runs nodes concurrently without any bookkeeping.
type stubRunner struct {
	name    string
	factory ports.EdgeFactory
	nodes   []*Node
}

func (r *stubRunner) Name() string               { return r.name }
func (r *stubRunner) Factory() ports.EdgeFactory { return r.factory }
func (r *stubRunner) Nodes() []*Node             { return r.nodes }

func (r *stubRunner) Edge(ids ...string) (ports.Edge, error) {
	return r.factory.Edge(ids...)
}

func (r *stubRunner) Add(nodes ...*Node) {
	for _, n := range nodes {
		n.SetRunner(r)
		r.nodes = append(r.nodes, n)
	}
}

func (r *stubRunner) Execute(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, len(r.nodes))
	for i, n := range r.nodes {
		wg.Go(func() { errs[i] = n.Run(ctx) })
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
