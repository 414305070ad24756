/*
Package domain contains the error surface and lifecycle events shared by every
layer of the flo engine.

It is kept free of I/O so that graphs, runners and adapters can all depend on it
without creating cycles.

# Error Surface

  - ErrUniqueNode / DuplicateNodeError: a node id is already taken in a graph.
  - TypeMismatchError: an Out port cannot feed an In port.
  - PortNotInitializedError: an In port has no Connection at execution time.
  - UnsupportedInitializationError: a literal was given to a port (or a port to a literal).
  - RunnerCompatibilityError: runners that must exchange data use incompatible edges.
  - RunnerExecutionError: one runner finished with failing nodes.
  - GraphExecutionError: one or more runners failed during a submission.
  - TimeoutError / ErrTimeout: the submission deadline elapsed with work outstanding.
*/
package domain
