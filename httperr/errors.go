// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package httperr defines the single error shape every client failure
// is normalized into before it reaches the caller, and the rules for
// classifying raw failures into kinds.
package httperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ersinkoc/RequestKit/internal/json"
	"github.com/ersinkoc/RequestKit/request"
)

// A Kind classifies a failure. The enum is closed: every Error carries
// exactly one of the five kinds below.
type Kind string

const (
	// KindNetwork covers transport-level failures where no usable
	// response was obtained: connection refused, DNS failure, broken
	// body read, and any pipeline failure with no better
	// classification.
	KindNetwork Kind = "network"

	// KindTimeout covers deadline failures, whether from a
	// per-attempt timeout or from the call deadline.
	KindTimeout Kind = "timeout"

	// KindCanceled means the caller canceled the call. Canceled calls
	// are never retried.
	KindCanceled Kind = "canceled"

	// KindBadRequest means a response was received but its status
	// failed validation with a code below 500.
	KindBadRequest Kind = "bad_request"

	// KindBadResponse means a response was received but its status
	// failed validation with a code of 500 or above.
	KindBadResponse Kind = "bad_response"
)

// An Error is the one concrete failure shape that crosses the client's
// public boundary. Transport failures, rejected statuses and
// interceptor failures are all normalized into this type.
//
// Status and Envelope are set together: both are present exactly when
// a response was actually received, and absent for pure transport
// failures.
type Error struct {
	// Message is the human readable description of the failure.
	Message string

	// Kind classifies the failure. It is always set.
	Kind Kind

	// Status is the HTTP status code of the rejected response, or
	// zero when no response was received.
	Status int

	// Payload is the best-effort decoded body of the rejected
	// response, or nil when no response was received.
	Payload any

	// Descriptor is the request that failed.
	Descriptor *request.Descriptor

	// Envelope is the rejected response, or nil when no response was
	// received.
	Envelope *request.Envelope

	cause error
}

// New creates an Error with the given message, descriptor and kind.
func New(message string, d *request.Descriptor, kind Kind) *Error {
	return &Error{
		Message:    message,
		Kind:       kind,
		Descriptor: d,
	}
}

// Wrap normalizes err into an *Error attributed to d.
//
// An err that already is an *Error passes through unchanged, except
// that a missing descriptor is filled in from d. Anything else is
// classified via Classify and wrapped with its message preserved; the
// original error remains reachable through errors.Unwrap.
func Wrap(err error, d *request.Descriptor) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.Descriptor == nil {
			e.Descriptor = d
		}
		return e
	}
	return &Error{
		Message:    err.Error(),
		Kind:       Classify(err),
		Descriptor: d,
		cause:      err,
	}
}

// FromEnvelope builds the Error for a response whose status failed
// validation: KindBadResponse at status 500 and above, KindBadRequest
// below. The rejected response stays reachable through Envelope, and
// its body is decoded best-effort into Payload.
func FromEnvelope(env *request.Envelope) *Error {
	kind := KindBadRequest
	if env.Status >= 500 {
		kind = KindBadResponse
	}
	return &Error{
		Message:    fmt.Sprintf("request failed with status code %d", env.Status),
		Kind:       kind,
		Status:     env.Status,
		Payload:    payload(env),
		Descriptor: env.Descriptor,
		Envelope:   env,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if the Error wraps one.
func (e *Error) Unwrap() error {
	return e.cause
}

// Timeout reports whether the failure was a deadline failure, making
// *Error usable where a net.Error timeout check is expected.
func (e *Error) Timeout() bool {
	return e.Kind == KindTimeout
}

// Canceled reports whether the caller canceled the call.
func (e *Error) Canceled() bool {
	return e.Kind == KindCanceled
}

// Classify maps a raw failure onto a Kind. Cancellation is recognized
// first, then deadline failures both structurally (net.Error with
// Timeout true, context.DeadlineExceeded) and by message content.
// Everything else is a network failure.
func Classify(err error) Kind {
	if err == nil {
		return KindNetwork
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return KindTimeout
	}
	return KindNetwork
}

// IsKind reports whether err is or wraps an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// As extracts the *Error from err's chain, if there is one.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// payload decodes the rejected response body best-effort: the already
// decoded value when present, otherwise JSON when the body parses as
// JSON, otherwise the body text.
func payload(env *request.Envelope) any {
	if env.Data != nil {
		return env.Data
	}
	if len(env.Body) == 0 {
		return nil
	}
	if json.Valid(env.Body) {
		var v any
		if err := json.Unmarshal(env.Body, &v); err == nil {
			return v
		}
	}
	return string(env.Body)
}
