/*
Package flow is the graph model: node specs, nodes with typed ports, the
connections between them and the graph that submits them to runners.

A Spec declares a node type. Ports are listed explicitly; parameters that
are not ports are literals, optionally typed through Params:

	var double = &flow.Spec{
		Name:    "double",
		Inputs:  []flow.PortSpec{flow.P("in", schema.Int())},
		Outputs: []flow.PortSpec{flow.P("out", schema.Int())},
		Func: func(ctx context.Context, args *flow.Args) error {
			for v, err := range args.In("in").All(ctx) {
				if err != nil {
					return err
				}
				if err := args.Out("out").Send(ctx, v.(int)*2); err != nil {
					return err
				}
			}
			return nil
		},
	}

Nodes are added to a Graph and wired by handing Out ports to In ports:

	g := flow.NewGraph(flow.WithRunner(r))
	src, _ := g.Add(library.Generate)
	_ = src.Init("arg", 10)
	dbl, _ := g.Add(double)
	_ = dbl.Init("in", src.Out("outflow"))
	err := g.Submit(ctx, time.Minute)

Every invocation brackets the output of a node with INIT and DONE markers;
consumers stop once every upstream port sent DONE.
*/
package flow
