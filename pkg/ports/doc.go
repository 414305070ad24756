/*
Package ports defines the driven ports (interfaces) of the flo engine.

These interfaces decouple graphs and runners from the concrete message
channels, so the same node can be executed over an in-process table or a
durable broker without changes.

# Key Interfaces

  - Edge: a message channel bound to one or more stream ids, with INIT/DONE framing.
  - EdgeFactory: builds Edges of one kind; owned by a Runner.
  - StreamClient: the durable broker collaborator (append, blocking multi-stream read).
*/
package ports
