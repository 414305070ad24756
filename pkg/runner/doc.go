/*
Package runner implements the three concurrency strategies a graph can
assign nodes to.

  - ThreadRunner runs each node on its own goroutine, over any edge kind.
  - ProcessRunner runs each node in its own OS process. The child rebuilds the
    node from its descriptor, so its edges must be portable (stream kinds).
  - FiberRunner runs nodes as fibers sharing one baton; only cooperative
    stream edges hand the baton over while waiting on the broker.

Every runner reports failures as a *domain.RunnerExecutionError naming each
failing node with its message and, when one was captured, its stack.

# Child processes

A ProcessRunner re-executes the current binary unless WithCommand says
otherwise. That binary must hand control to Serve when IsChild is true:

	func main() {
		if runner.IsChild() {
			sm := runner.NewSignalManager(context.Background())
			defer sm.Stop()
			if err := runner.Serve(sm.Context(), registry); err != nil {
				os.Exit(1)
			}
			return
		}
		...
	}
*/
package runner
