package flo_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/flo"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/library"
	"github.com/aretw0/flo/pkg/schema"
)

// ExampleNewGraph wires the numstream pipeline and runs it in memory.
func ExampleNewGraph() {
	g := flo.NewGraph()

	gen, err := g.Add(library.Generate)
	if err != nil {
		log.Fatal(err)
	}
	if err := gen.Init("arg", 3); err != nil {
		log.Fatal(err)
	}

	printer, err := g.Add(library.NewLog(os.Stdout))
	if err != nil {
		log.Fatal(err)
	}
	if err := printer.Init("inflow", gen.Out("outflow")); err != nil {
		log.Fatal(err)
	}

	if err := g.Submit(context.Background(), 5*time.Second); err != nil {
		log.Fatal(err)
	}
	// Output:
	// 0
	// 1
	// 2
}

// ExampleNewGraph_customSpec defines a node of its own and joins two streams.
func ExampleNewGraph_customSpec() {
	sum := &flow.Spec{
		Name: "sum",
		Inputs: []flow.PortSpec{
			flow.P("values", schema.Int()),
		},
		Func: func(ctx context.Context, args *flow.Args) error {
			var total int
			for v, err := range args.In("values").All(ctx) {
				if err != nil {
					return err
				}
				total += v.(int)
			}
			fmt.Println("total:", total)
			return nil
		},
	}

	g := flo.NewGraph(flo.WithGraphID("example"))
	a, _ := g.Add(library.Generate)
	b, _ := g.Add(library.Generate)
	s, _ := g.Add(sum)
	if err := a.Init("arg", 4); err != nil {
		log.Fatal(err)
	}
	if err := b.Init("arg", 5); err != nil {
		log.Fatal(err)
	}
	if err := s.Init("values", []*flow.Port{a.Out("outflow"), b.Out("outflow")}); err != nil {
		log.Fatal(err)
	}

	if err := g.Submit(context.Background(), 5*time.Second); err != nil {
		log.Fatal(err)
	}
	fmt.Println(g.ID(), len(g.Nodes()))
	// Output:
	// total: 16
	// example 3
}
