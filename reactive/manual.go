// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reactive

import (
	"context"
	"sync"
	"time"

	"github.com/ersinkoc/RequestKit"
	"github.com/ersinkoc/RequestKit/request"
)

// ManualOptions configures a ManualRequest.
type ManualOptions struct {
	// Client executes the call. Required.
	Client requestkit.Doer

	// Request is the call to execute. Required.
	Request *requestkit.Options

	// AutoRun executes the call once in the background as soon as
	// the binding is constructed.
	AutoRun bool
}

// A ManualRequest is the simplest binding: one fixed call, executed
// on demand, with its latest outcome held as state. It suits
// imperative flows that still want loading and error bookkeeping.
type ManualRequest struct {
	doer requestkit.Doer
	opts ManualOptions

	mu     sync.Mutex
	state  State
	seq    int
	closed bool
}

// NewManualRequest constructs the binding. It panics on a nil client
// or a nil request.
func NewManualRequest(opts ManualOptions) *ManualRequest {
	if opts.Client == nil {
		panic("requestkit/reactive: nil client")
	}
	if opts.Request == nil {
		panic("requestkit/reactive: nil request")
	}
	r := &ManualRequest{doer: opts.Client, opts: opts}
	if opts.AutoRun {
		go func() {
			_, _ = r.Execute(context.Background())
		}()
	}
	return r
}

// Snapshot returns the binding's current state.
func (r *ManualRequest) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Execute runs the call and waits for the outcome, which it both
// returns and applies to the state. Concurrent executions are
// allowed; the state keeps the outcome of the most recently started
// one. After Close it does nothing and returns ErrClosed.
func (r *ManualRequest) Execute(ctx context.Context) (*request.Envelope, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	r.seq++
	seq := r.seq
	r.state.Loading = true
	r.mu.Unlock()

	opts := *r.opts.Request
	env, err := r.doer.Do(ctx, &opts)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || seq != r.seq {
		return env, err
	}
	r.state.Loading = false
	if err != nil {
		r.state.Err = asError(err)
	} else {
		r.state.Data = envelopeData(env)
		r.state.Err = nil
		r.state.UpdatedAt = time.Now()
	}
	return env, err
}

// Reset clears the binding's state back to its zero value.
func (r *ManualRequest) Reset() {
	r.mu.Lock()
	if !r.closed {
		r.state = State{}
	}
	r.mu.Unlock()
}

// Close tears the binding down. Executions already in flight still
// return to their callers but no longer touch state. Close is
// idempotent.
func (r *ManualRequest) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
