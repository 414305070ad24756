package flow

import (
	"maps"

	"github.com/mitchellh/mapstructure"
)

// Args is what a node function receives: the live handles of its ports and
// the literals it was initialized with.
type Args struct {
	nodeID   string
	ins      map[string]*In
	outs     map[string]*Out
	literals map[string]any
}

// NodeID returns the id of the running node.
func (a *Args) NodeID() string { return a.nodeID }

// In returns the handle of the In port name, or nil when the spec declares no such port.
func (a *Args) In(name string) *In { return a.ins[name] }

// Out returns the handle of the Out port name, or nil when the spec declares no such port.
func (a *Args) Out(name string) *Out { return a.outs[name] }

// Literal returns the literal value given for name.
func (a *Args) Literal(name string) (any, bool) {
	v, ok := a.literals[name]
	return v, ok
}

// Literals returns a copy of every literal.
func (a *Args) Literals() map[string]any {
	return maps.Clone(a.literals)
}

// Decode copies the literals into out, a pointer to a struct or map.
// Fields are matched case-insensitively or by `mapstructure` tag.
func (a *Args) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(a.literals)
}
