package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/flo/pkg/adapters/memory"
	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *Args) error { return nil }

var (
	intSource = &Spec{
		Name:    "source",
		Outputs: []PortSpec{P("out", schema.Int())},
		Params:  schema.Schema{"n": schema.Int()},
		Func: func(ctx context.Context, args *Args) error {
			var p struct{ N int }
			if err := args.Decode(&p); err != nil {
				return err
			}
			for i := range p.N {
				if err := args.Out("out").Send(ctx, i); err != nil {
					return err
				}
			}
			return nil
		},
	}
	stringSink = &Spec{
		Name:   "sink",
		Inputs: []PortSpec{P("in", schema.String())},
		Func:   noop,
	}
	anySink = &Spec{
		Name:   "any",
		Inputs: []PortSpec{P("in", schema.Any())},
		Func:   noop,
	}
	paramSink = &Spec{
		Name:   "param",
		Inputs: []PortSpec{P("in", schema.Param("T"))},
		Func:   noop,
	}
)

func mustNode(t *testing.T, id string, spec *Spec) *Node {
	t.Helper()
	n, err := NewNode(id, spec)
	require.NoError(t, err)
	return n
}

func TestSpec_Validate(t *testing.T) {
	assert.NoError(t, intSource.Validate())

	tests := []struct {
		name string
		spec *Spec
	}{
		{"nil", nil},
		{"no name", &Spec{Func: noop}},
		{"no func", &Spec{Name: "x"}},
		{"duplicate port", &Spec{Name: "x", Func: noop, Inputs: []PortSpec{P("a", nil)}, Outputs: []PortSpec{P("a", nil)}}},
		{"port is param", &Spec{Name: "x", Func: noop, Inputs: []PortSpec{P("a", nil)}, Params: schema.Schema{"a": schema.Int()}}},
		{"unnamed port", &Spec{Name: "x", Func: noop, Outputs: []PortSpec{{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.spec.Validate())
		})
	}
}

func TestNewNode_Ports(t *testing.T) {
	n := mustNode(t, "g/src", intSource)
	require.Len(t, n.Outputs(), 1)
	assert.Equal(t, "g/src/out", n.Out("out").ID)
	assert.Equal(t, DirOut, n.Out("out").Direction)
	assert.Nil(t, n.Out("missing"))

	s := mustNode(t, "g/any", anySink)
	assert.Nil(t, s.Out("in"))
	assert.Equal(t, DirIn, s.Port("in").Direction)
}

func TestNode_Init(t *testing.T) {
	src := mustNode(t, "g/src", intSource)

	t.Run("Literal", func(t *testing.T) {
		n := mustNode(t, "g/a", intSource)
		require.NoError(t, n.Init("n", 3))
		assert.Equal(t, map[string]any{"n": 3}, n.Literals())
	})

	t.Run("Literal Type Checked", func(t *testing.T) {
		n := mustNode(t, "g/a", intSource)
		var verr *schema.ValidationError
		assert.ErrorAs(t, n.Init("n", "three"), &verr)
	})

	t.Run("Wildcard Accepts Any Type", func(t *testing.T) {
		n := mustNode(t, "g/a", anySink)
		require.NoError(t, n.Init("in", src.Out("out")))
		assert.Equal(t, Connection{src.Out("out")}, n.Connection("in"))
	})

	t.Run("Type Parameter Accepts Any Type", func(t *testing.T) {
		n := mustNode(t, "g/a", paramSink)
		assert.NoError(t, n.Init("in", src.Out("out")))
	})

	t.Run("Type Mismatch", func(t *testing.T) {
		n := mustNode(t, "g/a", stringSink)
		var terr *domain.TypeMismatchError
		require.ErrorAs(t, n.Init("in", src.Out("out")), &terr)
		assert.Equal(t, "int", terr.FromType)
		assert.Equal(t, "string", terr.ToType)
		assert.Empty(t, n.Connection("in"))
	})

	t.Run("Fan In Appends In Order", func(t *testing.T) {
		other := mustNode(t, "g/other", intSource)
		n := mustNode(t, "g/a", anySink)
		require.NoError(t, n.Init("in", []*Port{src.Out("out"), other.Out("out")}))
		require.NoError(t, n.InitMap(map[string]any{"in": src.Out("out")}))
		assert.Equal(t, []string{"g/src/out", "g/other/out", "g/src/out"}, n.Connection("in").IDs())
	})

	t.Run("Literal For In Port", func(t *testing.T) {
		n := mustNode(t, "g/a", anySink)
		var uerr *domain.UnsupportedInitializationError
		require.ErrorAs(t, n.Init("in", 42), &uerr)
		assert.Equal(t, "in", uerr.Name)
	})

	t.Run("Port For Literal", func(t *testing.T) {
		n := mustNode(t, "g/a", intSource)
		var uerr *domain.UnsupportedInitializationError
		assert.ErrorAs(t, n.Init("n", src.Out("out")), &uerr)
	})

	t.Run("Out Port Is Not Initializable", func(t *testing.T) {
		n := mustNode(t, "g/a", intSource)
		var uerr *domain.UnsupportedInitializationError
		assert.ErrorAs(t, n.Init("out", 1), &uerr)
	})

	t.Run("In Port Fed By In Port", func(t *testing.T) {
		a := mustNode(t, "g/a", anySink)
		b := mustNode(t, "g/b", anySink)
		var uerr *domain.UnsupportedInitializationError
		assert.ErrorAs(t, b.Init("in", a.Port("in")), &uerr)
	})

	t.Run("Odd Arguments", func(t *testing.T) {
		n := mustNode(t, "g/a", intSource)
		assert.Error(t, n.Init("n"))
		assert.Error(t, n.Init(1, 2))
	})
}

func TestNode_Validate(t *testing.T) {
	n := mustNode(t, "g/a", anySink)
	var perr *domain.PortNotInitializedError
	require.ErrorAs(t, n.Validate(), &perr)
	assert.Equal(t, "in", perr.Port)

	assert.NoError(t, mustNode(t, "g/src", intSource).Validate())
}

func TestNode_Run_UninitializedNeverExecutes(t *testing.T) {
	called := false
	spec := &Spec{
		Name:   "x",
		Inputs: []PortSpec{P("in", nil)},
		Func: func(context.Context, *Args) error {
			called = true
			return nil
		},
	}
	n := mustNode(t, "g/x", spec)
	(&stubRunner{factory: memory.NewFactory(nil)}).Add(n)

	var perr *domain.PortNotInitializedError
	assert.ErrorAs(t, n.Run(context.Background()), &perr)
	assert.False(t, called)
}

func TestNode_Run_NoRunner(t *testing.T) {
	prev := SetDefaultRunner(nil)
	t.Cleanup(func() { SetDefaultRunner(prev) })

	n := mustNode(t, "g/src", intSource)
	assert.ErrorIs(t, n.Run(context.Background()), domain.ErrNoRunner)
}

func TestNode_Run_DefaultRunner(t *testing.T) {
	f := memory.NewFactory(nil)
	prev := SetDefaultRunner(func() Runner { return &stubRunner{name: "default", factory: f} })
	t.Cleanup(func() { SetDefaultRunner(prev) })

	spec := &Spec{
		Name:    "one",
		Outputs: []PortSpec{P("out", schema.Int())},
		Func: func(ctx context.Context, args *Args) error {
			return args.Out("out").Send(ctx, 1)
		},
	}
	n := mustNode(t, "g/one", spec)
	require.NoError(t, n.Run(context.Background()))
	require.NotNil(t, n.Runner())
	assert.Equal(t, "default", n.Runner().Name())
	assert.Equal(t, []any{1}, drain(t, f, "g/one/out"))
}

func drain(t *testing.T, f *memory.Factory, id string) []any {
	t.Helper()
	e, err := f.Edge(id)
	require.NoError(t, err)
	var got []any
	for v, err := range e.Pull(context.Background()) {
		require.NoError(t, err)
		got = append(got, v)
	}
	return got
}

func TestNode_Run_DoneAfterFailure(t *testing.T) {
	f := memory.NewFactory(nil)
	spec := &Spec{
		Name:    "half",
		Outputs: []PortSpec{P("out", schema.Int())},
		Func: func(ctx context.Context, args *Args) error {
			if err := args.Out("out").Send(ctx, 1); err != nil {
				return err
			}
			return errors.New("gave up")
		},
	}
	n := mustNode(t, "g/half", spec)
	(&stubRunner{factory: f}).Add(n)

	assert.EqualError(t, n.Run(context.Background()), "gave up")
	assert.Equal(t, []any{1}, drain(t, f, "g/half/out"))
}

func TestNode_Run_Panic(t *testing.T) {
	f := memory.NewFactory(nil)
	spec := &Spec{
		Name:    "boom",
		Outputs: []PortSpec{P("out", nil)},
		Func: func(context.Context, *Args) error {
			panic("boom")
		},
	}
	n := mustNode(t, "g/boom", spec)
	(&stubRunner{factory: f}).Add(n)

	err := n.Run(context.Background())
	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "panic: boom", err.Error())
	assert.Contains(t, Trace(err), "goroutine")

	failure := Failure(n, err)
	assert.Equal(t, "g/boom", failure.NodeID)
	assert.NotEmpty(t, failure.Trace)

	assert.Empty(t, drain(t, f, "g/boom/out"))
}

func TestNode_Run_TypedSend(t *testing.T) {
	f := memory.NewFactory(nil)
	spec := &Spec{
		Name:    "liar",
		Outputs: []PortSpec{P("out", schema.Int())},
		Func: func(ctx context.Context, args *Args) error {
			return args.Out("out").Send(ctx, "not a number")
		},
	}
	n := mustNode(t, "g/liar", spec)
	(&stubRunner{factory: f}).Add(n)

	assert.ErrorContains(t, n.Run(context.Background()), "g/liar/out")
}

func TestNode_Run_PipelineCoercesInput(t *testing.T) {
	f := memory.NewFactory(nil)
	r := &stubRunner{factory: f}

	src := &Spec{
		Name:    "floats",
		Outputs: []PortSpec{P("out", nil)},
		Func: func(ctx context.Context, args *Args) error {
			for _, v := range []any{int64(1), float64(2), int32(3)} {
				if err := args.Out("out").Send(ctx, v); err != nil {
					return err
				}
			}
			return nil
		},
	}
	var got []any
	sink := &Spec{
		Name:   "ints",
		Inputs: []PortSpec{P("in", schema.Int())},
		Func: func(ctx context.Context, args *Args) error {
			var err error
			got, err = args.In("in").Collect(ctx)
			return err
		},
	}

	a := mustNode(t, "g/a", src)
	b := mustNode(t, "g/b", sink)
	require.NoError(t, b.Init("in", a.Out("out")))
	r.Add(a, b)

	require.NoError(t, r.Execute(context.Background()))
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestDescriptor_Restore(t *testing.T) {
	src := mustNode(t, "g/src", intSource)
	require.NoError(t, src.Init("n", 4))
	sink := mustNode(t, "g/sink", anySink)
	require.NoError(t, sink.Init("in", src.Out("out"), "in", src.Out("out")))

	specs := specMap{intSource.Name: intSource, anySink.Name: anySink}

	for _, n := range []*Node{src, sink} {
		data, err := json.Marshal(n.Descriptor())
		require.NoError(t, err)

		var d Descriptor
		require.NoError(t, json.Unmarshal(data, &d))
		restored, err := Restore(d, specs)
		require.NoError(t, err)

		assert.Equal(t, n.ID(), restored.ID())
		assert.Equal(t, n.Literals(), restored.Literals())
		for _, p := range n.Inputs() {
			assert.Equal(t, n.Connection(p.Name).IDs(), restored.Connection(p.Name).IDs())
		}
	}

	_, err := Restore(Descriptor{ID: "g/x", Spec: "unknown"}, specs)
	assert.Error(t, err)
}

func TestDescriptor_ParamMismatch(t *testing.T) {
	src := mustNode(t, "g/src", intSource)
	require.NoError(t, src.Init("n", 4))
	d := src.Descriptor()
	assert.Equal(t, map[string]string{"n": "int"}, d.Params)

	specs := specMap{intSource.Name: intSource}

	d.Params = map[string]string{"n": "string"}
	_, err := Restore(d, specs)
	assert.ErrorIs(t, err, ErrSpecMismatch)

	d.Params = map[string]string{"gone": "int"}
	_, err = Restore(d, specs)
	assert.ErrorIs(t, err, ErrSpecMismatch)

	d.Params = map[string]string{"n": "complex"}
	_, err = Restore(d, specs)
	assert.ErrorContains(t, err, "unsupported type: complex")
}

type specMap map[string]*Spec

func (m specMap) Get(name string) (*Spec, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no spec %s", name)
}
