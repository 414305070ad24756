package runner

import (
	"github.com/aretw0/flo/pkg/adapters/memory"
	"github.com/aretw0/flo/pkg/flow"
)

func init() {
	flow.SetDefaultRunner(func() flow.Runner {
		return NewThreadRunner(memory.NewFactory(nil))
	})
}
