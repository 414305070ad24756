package flow

import "sync"

var (
	defaultMu  sync.RWMutex
	newDefault func() Runner
)

// SetDefaultRunner registers the constructor of the process default runner,
// used by graphs and nodes that name no runner of their own. Each graph builds
// its own instance on first use. It returns the constructor it replaced; nil
// removes the default.
//
// Importing package runner registers a thread runner over in-memory edges.
func SetDefaultRunner(fn func() Runner) func() Runner {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := newDefault
	newDefault = fn
	return prev
}

// NewDefaultRunner builds an instance of the process default runner, or
// returns nil when none is registered.
func NewDefaultRunner() Runner {
	defaultMu.RLock()
	fn := newDefault
	defaultMu.RUnlock()
	if fn == nil {
		return nil
	}
	return fn()
}
