package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/flo/pkg/adapters/redis"
	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/registry"
	"github.com/aretw0/flo/pkg/schema"
)

// Generate emits the integers 0 to arg-1.
var Generate = &flow.Spec{
	Name:    "generate",
	Outputs: []flow.PortSpec{flow.P("outflow", schema.Int())},
	Params:  schema.Schema{"arg": schema.Int()},
	Func: func(ctx context.Context, args *flow.Args) error {
		var p struct{ Arg int }
		if err := args.Decode(&p); err != nil {
			return err
		}
		out := args.Out("outflow")
		for i := range p.Arg {
			if err := out.Send(ctx, i); err != nil {
				return err
			}
		}
		return nil
	},
}

// Sleep forwards every value after waiting duration seconds.
var Sleep = &flow.Spec{
	Name:    "sleep",
	Inputs:  []flow.PortSpec{flow.P("inflow", schema.Any())},
	Outputs: []flow.PortSpec{flow.P("outflow", schema.Any())},
	Params:  schema.Schema{"duration": schema.Float()},
	Func: func(ctx context.Context, args *flow.Args) error {
		var p struct{ Duration float64 }
		if err := args.Decode(&p); err != nil {
			return err
		}
		d := time.Duration(p.Duration * float64(time.Second))
		out := args.Out("outflow")
		for v, err := range args.In("inflow").All(ctx) {
			if err != nil {
				return err
			}
			if err := flow.Sleep(ctx, d); err != nil {
				return err
			}
			if err := out.Send(ctx, v); err != nil {
				return err
			}
		}
		return nil
	},
}

// Log prints every value to stdout and forwards it.
var Log = NewLog(os.Stdout)

// NewLog returns a log spec printing to w.
func NewLog(w io.Writer) *flow.Spec {
	var mu sync.Mutex
	return &flow.Spec{
		Name:    "log",
		Inputs:  []flow.PortSpec{flow.P("inflow", schema.Any())},
		Outputs: []flow.PortSpec{flow.P("outflow", schema.Any())},
		Func: func(ctx context.Context, args *flow.Args) error {
			out := args.Out("outflow")
			for v, err := range args.In("inflow").All(ctx) {
				if err != nil {
					return err
				}
				mu.Lock()
				fmt.Fprintln(w, v)
				mu.Unlock()
				if err := out.Send(ctx, v); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// Sink accumulates values received by a collect node in this process.
type Sink struct {
	mu     sync.Mutex
	values []any
}

// Values returns a copy of what was collected so far.
func (s *Sink) Values() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.values)
}

func (s *Sink) add(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, v)
}

// NewCollect returns a spec appending every value it receives to sink.
// It only works for nodes running in the process holding sink.
func NewCollect(sink *Sink) *flow.Spec {
	return &flow.Spec{
		Name:   "collect",
		Inputs: []flow.PortSpec{flow.P("inflow", schema.Any())},
		Func: func(ctx context.Context, args *flow.Args) error {
			for v, err := range args.In("inflow").All(ctx) {
				if err != nil {
					return err
				}
				sink.add(v)
			}
			return nil
		},
	}
}

// Capture pushes every value it receives, formatted with fmt, onto the Redis
// list key at url. It works from any process.
var Capture = &flow.Spec{
	Name:   "capture",
	Inputs: []flow.PortSpec{flow.P("inflow", schema.Any())},
	Params: schema.Schema{"url": schema.String(), "key": schema.String()},
	Func: func(ctx context.Context, args *flow.Args) error {
		var p struct{ URL, Key string }
		if err := args.Decode(&p); err != nil {
			return err
		}
		client, err := redis.DefaultManager().Client(ctx, p.URL)
		if err != nil {
			return err
		}
		for v, err := range args.In("inflow").All(ctx) {
			if err != nil {
				return err
			}
			if err := client.RPush(ctx, p.Key, fmt.Sprint(v)).Err(); err != nil {
				return fmt.Errorf("capture %s: %w", p.Key, err)
			}
		}
		return nil
	},
}

// Registry returns a registry of the built-in specs that can cross a process
// boundary.
func Registry() *registry.Registry {
	return registry.NewRegistry(Generate, Sleep, Log, Capture)
}
