// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"context"

	"github.com/ersinkoc/RequestKit/request"
)

// A Call is an in-flight request started by DoAsync. It resolves
// exactly once, after which Result returns the outcome.
type Call struct {
	env    *request.Envelope
	err    error
	done   chan struct{}
	cancel context.CancelFunc
}

// DoAsync starts the call described by opts and returns immediately.
// The call runs through the same pipeline as Do on its own goroutine.
//
// Canceling the returned Call aborts the in-flight attempt and any
// pending retry wait; the call then resolves with a KindCanceled
// error through the normal failure path. DoAsync panics if ctx is
// nil.
func (c *Client) DoAsync(ctx context.Context, opts *Options) *Call {
	if ctx == nil {
		panic(nilCtxPanic)
	}
	cctx, cancel := context.WithCancel(ctx)
	call := &Call{done: make(chan struct{}), cancel: cancel}
	go func() {
		env, err := c.Do(cctx, opts)
		if env != nil && env.Stream != nil {
			// The stream reads under cctx, so its release has to wait
			// for the caller to close the stream.
			env.Stream = streamBody{ReadCloser: env.Stream, cancel: cancel}
		} else {
			cancel()
		}
		call.env, call.err = env, err
		close(call.done)
	}()
	return call
}

// Done returns a channel that is closed when the call has resolved.
func (call *Call) Done() <-chan struct{} {
	return call.done
}

// Cancel aborts the call. Canceling a resolved call does nothing.
func (call *Call) Cancel() {
	call.cancel()
}

// Result blocks until the call has resolved and returns its outcome,
// with the same contract as Client.Do.
func (call *Call) Result() (*request.Envelope, error) {
	<-call.done
	return call.env, call.err
}
