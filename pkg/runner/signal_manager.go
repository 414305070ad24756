package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalManager ties a context to SIGINT and SIGTERM. A ProcessRunner
// interrupts its children on cancellation; children use a SignalManager so
// the interrupt reaches the node through its context.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager starts listening for signals on behalf of parent.
func NewSignalManager(parent context.Context) *SignalManager {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return &SignalManager{ctx: ctx, cancel: cancel}
}

// Context returns the context cancelled by the first signal.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Interrupted reports whether a signal arrived. Only meaningful before Stop.
func (sm *SignalManager) Interrupted() bool {
	return sm.ctx.Err() != nil
}

// Stop stops listening.
func (sm *SignalManager) Stop() {
	sm.cancel()
}
