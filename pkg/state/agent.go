package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Agent lifecycle errors.
var (
	ErrAgentClosed = errors.New("agent is closed")
	ErrAgentFailed = errors.New("agent has failed")
)

// queueDepth is the send buffer size before Send blocks.
const queueDepth = 64

type agentMsg[T any] struct {
	fn      func(T) T
	barrier chan struct{} // non-nil for Await markers
}

// Agent is an asynchronous serialized cell. Actions sent to the agent are
// applied one at a time, in send order, by a dispatch goroutine. Reads
// return the value as of the most recently applied action.
type Agent[T any] struct {
	mu     sync.Mutex
	val    T
	err    error
	closed bool

	// sendMu is held (shared) across the closed check and the channel send
	// so Close cannot close the queue between them.
	sendMu sync.RWMutex
	queue  chan agentMsg[T]
	done   chan struct{}
}

// NewAgent creates an Agent holding v and starts its dispatcher.
func NewAgent[T any](v T) *Agent[T] {
	a := &Agent[T]{
		val:   v,
		queue: make(chan agentMsg[T], queueDepth),
		done:  make(chan struct{}),
	}
	go a.dispatch()
	return a
}

func (a *Agent[T]) dispatch() {
	defer close(a.done)
	for msg := range a.queue {
		if msg.barrier != nil {
			close(msg.barrier)
			continue
		}
		a.apply(msg.fn)
	}
}

// apply runs one action, converting a panic into agent failure. Actions
// sent after a failure were already rejected; actions queued before it are
// skipped until Restart.
func (a *Agent[T]) apply(fn func(T) T) {
	a.mu.Lock()
	if a.err != nil {
		a.mu.Unlock()
		return
	}
	cur := a.val
	a.mu.Unlock()

	var next T
	panicked := true
	defer func() {
		if panicked {
			r := recover()
			a.mu.Lock()
			a.err = fmt.Errorf("%w: action panic: %v", ErrAgentFailed, r)
			a.mu.Unlock()
			return
		}
		a.mu.Lock()
		a.val = next
		a.mu.Unlock()
	}()
	next = fn(cur)
	panicked = false
}

// Load returns the value as of the most recently applied action.
func (a *Agent[T]) Load() T {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.val
}

// Err returns the failure that stopped the agent, or nil.
func (a *Agent[T]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Send queues fn for application. Actions are applied in send order, one at
// a time. Blocks when the queue is full. Returns ErrAgentClosed after Close
// and ErrAgentFailed while the agent holds a failure.
func (a *Agent[T]) Send(fn func(old T) T) error {
	a.sendMu.RLock()
	defer a.sendMu.RUnlock()
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrAgentClosed
	}
	if a.err != nil {
		err := a.err
		a.mu.Unlock()
		return err
	}
	a.mu.Unlock()
	a.queue <- agentMsg[T]{fn: fn}
	return nil
}

// Await blocks until every action sent before the call has been applied, or
// until ctx is done. Returns ErrAgentClosed if the agent is closed.
func (a *Agent[T]) Await(ctx context.Context) error {
	a.sendMu.RLock()
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.sendMu.RUnlock()
		return ErrAgentClosed
	}
	a.mu.Unlock()

	barrier := make(chan struct{})
	a.queue <- agentMsg[T]{barrier: barrier}
	a.sendMu.RUnlock()
	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Restart clears a failure and resets the value, re-enabling sends.
// Actions dispatched while the failure was in place were skipped; actions
// still queued at restart time apply to the new value. Returns
// ErrAgentClosed after Close.
func (a *Agent[T]) Restart(v T) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrAgentClosed
	}
	a.err = nil
	a.val = v
	return nil
}

// Close stops the dispatcher after draining queued actions and rejects
// further sends. Idempotent.
func (a *Agent[T]) Close() {
	a.sendMu.Lock()
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.sendMu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()
	close(a.queue)
	a.sendMu.Unlock()
	<-a.done
}
