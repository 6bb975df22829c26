// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reactive

import (
	"context"

	"github.com/ersinkoc/RequestKit"
	"github.com/ersinkoc/RequestKit/request"
)

// doerFunc adapts a function to the requestkit.Doer interface so tests
// can script call outcomes without a network.
type doerFunc func(ctx context.Context, opts *requestkit.Options) (*request.Envelope, error)

func (f doerFunc) Do(ctx context.Context, opts *requestkit.Options) (*request.Envelope, error) {
	return f(ctx, opts)
}

// replyData is a doer whose every call succeeds with the given decoded
// payload.
func replyData(data any) doerFunc {
	return func(context.Context, *requestkit.Options) (*request.Envelope, error) {
		return &request.Envelope{Status: 200, StatusText: "OK", OK: true, Data: data}, nil
	}
}

// failWith is a doer whose every call fails with the given error.
func failWith(err error) doerFunc {
	return func(context.Context, *requestkit.Options) (*request.Envelope, error) {
		return nil, err
	}
}
