package flow

import (
	"github.com/aretw0/flo/pkg/domain"
	"github.com/aretw0/flo/pkg/edge"
	"github.com/aretw0/flo/pkg/ports"
)

// Compatible checks that runners can exchange data. The reference kind is the
// least specialized edge kind among them; each runner's kind must be the
// reference or refine it. In-memory runners must also share one store.
func Compatible(runners ...Runner) error {
	if len(runners) == 0 {
		return nil
	}

	kinds := make([]edge.Kind, len(runners))
	for i, r := range runners {
		kinds[i] = r.Factory().Kind()
	}
	ref, _ := edge.Reference(kinds...)

	for i, r := range runners {
		if !kinds[i].Refines(ref) {
			return &domain.RunnerCompatibilityError{
				Runner:    r.Name(),
				EdgeKind:  kinds[i].String(),
				Reference: ref.String(),
			}
		}
	}

	if ref != edge.KindMemory {
		return nil
	}
	scope := func(r Runner) string {
		if s, ok := r.Factory().(ports.Scoped); ok {
			return s.Scope()
		}
		return ""
	}
	first := scope(runners[0])
	for _, r := range runners[1:] {
		if s := scope(r); s == "" || s != first {
			return &domain.RunnerCompatibilityError{
				Runner:    r.Name(),
				EdgeKind:  edge.KindMemory.String(),
				Reference: ref.String(),
				Reason:    "in-memory edges of different stores cannot see each other",
			}
		}
	}
	return nil
}
