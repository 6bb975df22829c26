// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"context"
	"sync"

	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/request"
)

// RequestFulfilled rewrites the prepared Descriptor before the first
// attempt is sent. Returning a non-nil Descriptor replaces the current
// one; returning nil keeps it. Returning an error aborts the request
// phase unless the same handler's RequestRejected recovers.
type RequestFulfilled func(ctx context.Context, d *request.Descriptor) (*request.Descriptor, error)

// RequestRejected is offered the failure produced by its own
// RequestFulfilled. Returning a non-nil Descriptor resumes the request
// phase with it as if no failure had happened. Returning nil, or an
// error, propagates the failure.
type RequestRejected func(ctx context.Context, err *httperr.Error) (*request.Descriptor, error)

// ResponseFulfilled rewrites a successful response. Returning a
// non-nil Envelope replaces the current one; returning nil keeps it.
// Returning an error fails the attempt unless the same handler's
// ResponseRejected recovers.
type ResponseFulfilled func(ctx context.Context, env *request.Envelope) (*request.Envelope, error)

// ResponseRejected is offered a failure, either one produced by its
// own ResponseFulfilled or, for attempts that failed before the
// response phase could run, the attempt's failure itself. Returning a
// non-nil Envelope recovers the whole attempt into a success.
// Returning an error replaces the failure. Returning nil, nil
// acknowledges the failure without recovering it.
type ResponseRejected func(ctx context.Context, err *httperr.Error) (*request.Envelope, error)

type requestHandler struct {
	id        int
	fulfilled RequestFulfilled
	rejected  RequestRejected
}

type responseHandler struct {
	id        int
	fulfilled ResponseFulfilled
	rejected  ResponseRejected
}

// RequestInterceptors is the ordered collection of request-phase
// handlers installed on a Client. Handlers run in registration order
// before the first attempt of every call.
//
// The collection is safe for concurrent use. A call snapshots the
// collection when it dispatches, so concurrent registration or removal
// affects future calls but never a dispatch already under way.
type RequestInterceptors struct {
	mu       sync.Mutex
	nextID   int
	handlers []requestHandler
}

// Use appends a handler and returns its id for Eject. Either function
// may be nil.
func (i *RequestInterceptors) Use(fulfilled RequestFulfilled, rejected RequestRejected) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	id := i.nextID
	i.nextID++
	i.handlers = append(i.handlers, requestHandler{id: id, fulfilled: fulfilled, rejected: rejected})
	return id
}

// Eject removes the handler registered under id. Removing an unknown
// id does nothing.
func (i *RequestInterceptors) Eject(id int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for n, h := range i.handlers {
		if h.id == id {
			i.handlers = append(i.handlers[:n], i.handlers[n+1:]...)
			return
		}
	}
}

// Clear removes every handler.
func (i *RequestInterceptors) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.handlers = nil
}

// Len returns the number of installed handlers.
func (i *RequestInterceptors) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.handlers)
}

func (i *RequestInterceptors) snapshot() []requestHandler {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]requestHandler(nil), i.handlers...)
}

func (i *RequestInterceptors) cloneInto(dst *RequestInterceptors) {
	i.mu.Lock()
	defer i.mu.Unlock()
	dst.nextID = i.nextID
	dst.handlers = append([]requestHandler(nil), i.handlers...)
}

// ResponseInterceptors is the ordered collection of response-phase
// handlers installed on a Client. Handlers run in reverse registration
// order after every attempt, so the handler registered first wraps
// everything registered after it, on the way out and on the way back.
//
// The collection is safe for concurrent use and snapshots at dispatch
// time, like RequestInterceptors.
type ResponseInterceptors struct {
	mu       sync.Mutex
	nextID   int
	handlers []responseHandler
}

// Use appends a handler and returns its id for Eject. Either function
// may be nil.
func (i *ResponseInterceptors) Use(fulfilled ResponseFulfilled, rejected ResponseRejected) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	id := i.nextID
	i.nextID++
	i.handlers = append(i.handlers, responseHandler{id: id, fulfilled: fulfilled, rejected: rejected})
	return id
}

// Eject removes the handler registered under id. Removing an unknown
// id does nothing.
func (i *ResponseInterceptors) Eject(id int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for n, h := range i.handlers {
		if h.id == id {
			i.handlers = append(i.handlers[:n], i.handlers[n+1:]...)
			return
		}
	}
}

// Clear removes every handler.
func (i *ResponseInterceptors) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.handlers = nil
}

// Len returns the number of installed handlers.
func (i *ResponseInterceptors) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.handlers)
}

func (i *ResponseInterceptors) snapshot() []responseHandler {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]responseHandler(nil), i.handlers...)
}

func (i *ResponseInterceptors) cloneInto(dst *ResponseInterceptors) {
	i.mu.Lock()
	defer i.mu.Unlock()
	dst.nextID = i.nextID
	dst.handlers = append([]responseHandler(nil), i.handlers...)
}

// Interceptors groups the two interceptor collections of a Client.
type Interceptors struct {
	Request  RequestInterceptors
	Response ResponseInterceptors
}

// runRequestInterceptors dispatches the request phase in registration
// order. A handler whose fulfilled function fails gets one recovery
// chance through its own rejected function before the failure aborts
// the dispatch.
func runRequestInterceptors(ctx context.Context, chain []requestHandler, d *request.Descriptor) (*request.Descriptor, *httperr.Error) {
	for _, h := range chain {
		if h.fulfilled == nil {
			continue
		}
		next, err := h.fulfilled(ctx, d)
		if err == nil {
			if next != nil {
				d = next
			}
			continue
		}
		herr := httperr.Wrap(err, d)
		if h.rejected == nil {
			return nil, herr
		}
		patched, rerr := h.rejected(ctx, herr)
		if rerr != nil {
			return nil, httperr.Wrap(rerr, d)
		}
		if patched == nil {
			return nil, herr
		}
		d = patched
	}
	return d, nil
}

// runResponseInterceptors dispatches the response phase over a
// successful attempt in reverse registration order, mirroring the
// request phase's same-handler recovery.
func runResponseInterceptors(ctx context.Context, chain []responseHandler, env *request.Envelope) (*request.Envelope, *httperr.Error) {
	for n := len(chain) - 1; n >= 0; n-- {
		h := chain[n]
		if h.fulfilled == nil {
			continue
		}
		next, err := h.fulfilled(ctx, env)
		if err == nil {
			if next != nil {
				env = next
			}
			continue
		}
		herr := wrapResponseError(err, env)
		if h.rejected == nil {
			return nil, herr
		}
		recovered, rerr := h.rejected(ctx, herr)
		if rerr != nil {
			return nil, wrapResponseError(rerr, env)
		}
		if recovered == nil {
			return nil, herr
		}
		env = recovered
	}
	return env, nil
}

// runErrorInterceptors dispatches a failed attempt to the rejected
// side of the response chain, in reverse registration order. The first
// handler to return an Envelope recovers the whole attempt. A handler
// returning an error replaces the failure for the handlers after it,
// and a nil, nil return passes the failure along unchanged.
func runErrorInterceptors(ctx context.Context, chain []responseHandler, herr *httperr.Error) (*request.Envelope, *httperr.Error) {
	for n := len(chain) - 1; n >= 0; n-- {
		h := chain[n]
		if h.rejected == nil {
			continue
		}
		recovered, rerr := h.rejected(ctx, herr)
		if recovered != nil {
			return recovered, nil
		}
		if rerr != nil {
			next := httperr.Wrap(rerr, herr.Descriptor)
			if next.Envelope == nil {
				next.Envelope = herr.Envelope
				next.Status = herr.Status
			}
			herr = next
		}
	}
	return nil, herr
}

// wrapResponseError normalizes an interceptor failure that happened
// after a response was received, keeping the response reachable
// through the error.
func wrapResponseError(err error, env *request.Envelope) *httperr.Error {
	herr := httperr.Wrap(err, env.Descriptor)
	if herr.Envelope == nil {
		herr.Envelope = env
		herr.Status = env.Status
	}
	return herr
}
