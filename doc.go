/*
Package flo runs dataflow graphs: nodes exchange values through typed ports,
and each node executes on a runner that decides where its code lives.

# Concepts

A Spec defines a kind of node (its In and Out ports, its literal parameters
and its function). A Graph instantiates Specs as Nodes, and Node.Init wires an
In port to one or more upstream Out ports, forming a Connection. Values travel
over edges; an edge reads several upstream streams fairly and finishes once
every one of them has been closed.

Runners execute nodes:

  - runner.ThreadRunner starts one goroutine per node.
  - runner.ProcessRunner starts one child process per node (re-executing the
    current binary) and needs portable edges.
  - runner.FiberRunner interleaves nodes cooperatively, one at a time, over
    cooperative stream edges.

Edges come from factories: memory.Factory keeps streams in the process, and
redis.Factory stores them in Redis streams so that separate processes can
share them.

# Usage

	g := flo.NewGraph()
	gen, _ := g.Add(library.Generate)
	_ = gen.Init("arg", 10)
	out, _ := g.Add(library.Log)
	_ = out.Init("inflow", gen.Out("outflow"))
	if err := g.Submit(ctx, time.Minute); err != nil {
		log.Fatal(err)
	}

Programs using a ProcessRunner must let their children in first:

	if served, err := flo.ServeProcess(ctx, library.Registry()); served {
		if err != nil {
			os.Exit(1)
		}
		return
	}
*/
package flo
