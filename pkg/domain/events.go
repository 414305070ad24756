package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeStart   EventType = "node_start"
	EventNodeFinish  EventType = "node_finish"
	EventRunnerStart EventType = "runner_start"
	EventRunnerDone  EventType = "runner_done"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents the start or the end of one node invocation.
type NodeEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Spec     string        `json:"spec"`
	Runner   string        `json:"runner"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// RunnerEvent represents the start or the end of one runner execution.
type RunnerEvent struct {
	EventBase
	Runner   string        `json:"runner"`
	Nodes    int           `json:"nodes"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every field is optional.
type LifecycleHooks struct {
	OnNodeStart   func(context.Context, *NodeEvent)
	OnNodeFinish  func(context.Context, *NodeEvent)
	OnRunnerStart func(context.Context, *RunnerEvent)
	OnRunnerDone  func(context.Context, *RunnerEvent)
}

// NodeStarted fires OnNodeStart if set.
func (h LifecycleHooks) NodeStarted(ctx context.Context, e *NodeEvent) {
	if h.OnNodeStart != nil {
		e.Type = EventNodeStart
		h.OnNodeStart(ctx, e)
	}
}

// NodeFinished fires OnNodeFinish if set.
func (h LifecycleHooks) NodeFinished(ctx context.Context, e *NodeEvent) {
	if h.OnNodeFinish != nil {
		e.Type = EventNodeFinish
		h.OnNodeFinish(ctx, e)
	}
}

// RunnerStarted fires OnRunnerStart if set.
func (h LifecycleHooks) RunnerStarted(ctx context.Context, e *RunnerEvent) {
	if h.OnRunnerStart != nil {
		e.Type = EventRunnerStart
		h.OnRunnerStart(ctx, e)
	}
}

// RunnerDone fires OnRunnerDone if set.
func (h LifecycleHooks) RunnerDone(ctx context.Context, e *RunnerEvent) {
	if h.OnRunnerDone != nil {
		e.Type = EventRunnerDone
		h.OnRunnerDone(ctx, e)
	}
}

// Merge returns hooks that call h then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeStart:   chain(h.OnNodeStart, other.OnNodeStart),
		OnNodeFinish:  chain(h.OnNodeFinish, other.OnNodeFinish),
		OnRunnerStart: chain(h.OnRunnerStart, other.OnRunnerStart),
		OnRunnerDone:  chain(h.OnRunnerDone, other.OnRunnerDone),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
