/*
Package edge defines what every edge implementation shares: the closed set of
edge kinds with their compatibility table, the INIT/DONE framing keys, and the
cooperative yield points used by fiber runners.

# Kinds

	Memory             in-process only, visible across goroutines of one process
	Stream             durable per-id append log, visible across processes and hosts
	CooperativeStream  Stream with explicit yield points, refines Stream

Runners that exchange data must agree on a reference kind: the least specialized
kind among them. Every runner's kind must be the reference kind or refine it.
*/
package edge
