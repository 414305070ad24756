/*
Package dsl provides a fluent builder for wiring flo graphs by name.

Nodes are declared first and connected with "node.port" references, so the
declaration order does not need to follow the data flow:

	b := dsl.New(g)
	b.Add("print", library.Log).From("inflow", "gen.outflow")
	b.Add("gen", library.Generate).Set("arg", 10)
	nodes, err := b.Build()
*/
package dsl
