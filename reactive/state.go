// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package reactive provides stateful bindings over the requestkit.Doer
// contract for UI-style consumers: Query for declarative reads,
// Mutation for explicit writes, InfiniteQuery for cursor pagination
// and ManualRequest for imperative one-shots.
//
// Every binding owns a small state machine guarded by a mutex. Once a
// binding is closed it never writes state or invokes callbacks again,
// and a cancellation caused by the binding's own teardown or by a
// newer fetch superseding an older one is swallowed rather than
// surfaced as an error.
//
// Each binding takes its client explicitly through its options. Apps
// that pass a client around in a context can pull it out with
// requestkit.FromContext before constructing a binding.
package reactive

import (
	"errors"
	"time"

	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/request"
)

// ErrClosed is returned by operations invoked on a binding after
// Close.
var ErrClosed = errors.New("requestkit/reactive: binding is closed")

// ErrFetchInFlight is returned when a fetch is requested in a
// direction that already has one running.
var ErrFetchInFlight = errors.New("requestkit/reactive: fetch already in flight")

// State is the observable condition of a Query, Mutation or
// ManualRequest at one point in time.
type State struct {
	// Data is the decoded payload of the last successful call.
	Data any

	// Err is the failure of the last call, nil after a success.
	Err *httperr.Error

	// Loading reports whether a call is in flight.
	Loading bool

	// Stale marks data older than the binding's freshness window.
	Stale bool

	// UpdatedAt is when Data last changed.
	UpdatedAt time.Time
}

// asError normalizes a Doer failure for storage in a State.
func asError(err error) *httperr.Error {
	if herr, ok := httperr.As(err); ok {
		return herr
	}
	return httperr.Wrap(err, nil)
}

// envelopeData returns the decoded payload of env, tolerating nil.
func envelopeData(env *request.Envelope) any {
	if env == nil {
		return nil
	}
	return env.Data
}
