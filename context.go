// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"context"
)

// contextKey is the type for context keys to avoid collisions.
type contextKey string

const clientKey contextKey = "client"

// NewContext returns a copy of ctx carrying c, making the client
// available to every consumer downstream of the context. It is the
// provider half of the context-provider pattern the reactive bindings
// build on.
func NewContext(ctx context.Context, c *Client) context.Context {
	if c == nil {
		panic("requestkit: nil client")
	}
	return context.WithValue(ctx, clientKey, c)
}

// FromContext returns the Client carried by ctx. It panics if no
// client was attached with NewContext, since consumers written
// against a provided client cannot do anything sensible without one.
func FromContext(ctx context.Context) *Client {
	c, ok := ctx.Value(clientKey).(*Client)
	if !ok {
		panic("requestkit: no client in context")
	}
	return c
}

// ClientFromContext returns the Client carried by ctx, or false if
// none was attached.
func ClientFromContext(ctx context.Context) (*Client, bool) {
	c, ok := ctx.Value(clientKey).(*Client)
	return c, ok
}
