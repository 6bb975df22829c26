// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reactive

import (
	"context"
	"sync"
	"time"

	"github.com/ersinkoc/RequestKit"
	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/request"
)

// MutationOptions configures a Mutation.
type MutationOptions struct {
	// Client executes the mutation's calls. Required.
	Client requestkit.Doer

	// Request builds the call for one invocation's variables.
	// Required.
	Request func(vars any) *requestkit.Options

	// OnSuccess, if set, receives the decoded result and the
	// invocation's variables after a successful call.
	OnSuccess func(data any, vars any)

	// OnError, if set, receives the failure and the invocation's
	// variables after a failed call.
	OnError func(err *httperr.Error, vars any)

	// OnSettled, if set, runs after every call, successful or not.
	OnSettled func(data any, err *httperr.Error, vars any)
}

// A Mutation runs a write-style call on explicit invocation only.
// Unlike a Query it never fetches by itself; its state reflects the
// most recently started invocation.
type Mutation struct {
	doer requestkit.Doer
	opts MutationOptions

	mu     sync.Mutex
	state  State
	seq    int
	closed bool
}

// NewMutation constructs the mutation. It panics on a nil client or a
// nil request builder.
func NewMutation(opts MutationOptions) *Mutation {
	if opts.Client == nil {
		panic("requestkit/reactive: nil client")
	}
	if opts.Request == nil {
		panic("requestkit/reactive: nil request builder")
	}
	return &Mutation{doer: opts.Client, opts: opts}
}

// Snapshot returns the mutation's current state.
func (m *Mutation) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Mutate invokes the mutation with vars and returns without waiting
// for the result. Callbacks and state carry the outcome.
func (m *Mutation) Mutate(vars any) {
	go func() {
		_, _ = m.MutateSync(context.Background(), vars)
	}()
}

// MutateSync invokes the mutation with vars and waits for the
// outcome, which it both returns and applies to the state and
// callbacks. After Close it does nothing and returns ErrClosed.
func (m *Mutation) MutateSync(ctx context.Context, vars any) (*request.Envelope, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.seq++
	seq := m.seq
	m.state.Loading = true
	m.mu.Unlock()

	env, err := m.doer.Do(ctx, m.opts.Request(vars))
	var herr *httperr.Error
	if err != nil {
		herr = asError(err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return env, err
	}
	if seq == m.seq {
		m.state.Loading = false
		if herr != nil {
			m.state.Err = herr
		} else {
			m.state.Data = envelopeData(env)
			m.state.Err = nil
			m.state.UpdatedAt = time.Now()
		}
	}
	m.mu.Unlock()

	var data any
	if herr != nil {
		if m.opts.OnError != nil {
			m.opts.OnError(herr, vars)
		}
	} else {
		data = envelopeData(env)
		if m.opts.OnSuccess != nil {
			m.opts.OnSuccess(data, vars)
		}
	}
	if m.opts.OnSettled != nil {
		m.opts.OnSettled(data, herr, vars)
	}
	return env, err
}

// Reset clears the mutation's state back to its zero value.
func (m *Mutation) Reset() {
	m.mu.Lock()
	if !m.closed {
		m.state = State{}
	}
	m.mu.Unlock()
}

// Close tears the mutation down. Invocations already in flight still
// return to their callers but no longer touch state or callbacks.
// Close is idempotent.
func (m *Mutation) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
