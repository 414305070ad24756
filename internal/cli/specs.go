package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/flo/pkg/flow"
	"github.com/aretw0/flo/pkg/library"
)

// ListSpecs prints the built-in node specs, one per line.
func ListSpecs(w io.Writer) error {
	reg := library.Registry()
	for _, name := range reg.Names() {
		spec, err := reg.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-10s in(%s) out(%s)\n", spec.Name, portList(spec.Inputs), portList(spec.Outputs))
	}
	return nil
}

func portList(ps []flow.PortSpec) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		typ := "any"
		if p.Type != nil {
			typ = p.Type.Name()
		}
		parts = append(parts, p.Name+":"+typ)
	}
	return strings.Join(parts, ", ")
}
