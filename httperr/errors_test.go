// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersinkoc/RequestKit/request"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "canceled context",
			err:  context.Canceled,
			want: KindCanceled,
		},
		{
			name: "wrapped canceled context",
			err:  &url.Error{Op: "Get", URL: "https://foo.com", Err: context.Canceled},
			want: KindCanceled,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: KindTimeout,
		},
		{
			name: "wrapped deadline exceeded",
			err:  &url.Error{Op: "Get", URL: "https://foo.com", Err: context.DeadlineExceeded},
			want: KindTimeout,
		},
		{
			name: "net error reporting timeout",
			err:  timeoutError{},
			want: KindTimeout,
		},
		{
			name: "timeout by message content",
			err:  errors.New("dial tcp: i/o timeout while connecting"),
			want: KindTimeout,
		},
		{
			name: "deadline by message content",
			err:  errors.New("operation aborted: deadline exceeded by peer"),
			want: KindTimeout,
		},
		{
			name: "plain failure is network",
			err:  errors.New("connection refused"),
			want: KindNetwork,
		},
		{
			name: "nil is network",
			err:  nil,
			want: KindNetwork,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, Classify(testCase.err))
		})
	}
}

func TestNew(t *testing.T) {
	d := &request.Descriptor{Method: "GET", URL: "https://foo.com"}
	e := New("something broke", d, KindNetwork)
	assert.Equal(t, "something broke", e.Message)
	assert.Equal(t, KindNetwork, e.Kind)
	assert.Same(t, d, e.Descriptor)
	assert.Zero(t, e.Status)
	assert.Nil(t, e.Envelope)
	assert.EqualError(t, e, "network: something broke")
}

func TestWrap(t *testing.T) {
	d := &request.Descriptor{Method: "GET", URL: "https://foo.com"}
	t.Run("raw error is classified and wrapped", func(t *testing.T) {
		cause := errors.New("connection refused")
		e := Wrap(cause, d)
		assert.Equal(t, KindNetwork, e.Kind)
		assert.Equal(t, "connection refused", e.Message)
		assert.Same(t, d, e.Descriptor)
		assert.ErrorIs(t, e, cause)
	})
	t.Run("already normalized error passes through", func(t *testing.T) {
		orig := New("original", d, KindTimeout)
		e := Wrap(orig, d)
		assert.Same(t, orig, e)
	})
	t.Run("wrapped normalized error passes through", func(t *testing.T) {
		orig := New("original", d, KindTimeout)
		e := Wrap(fmt.Errorf("outer: %w", orig), d)
		assert.Same(t, orig, e)
	})
	t.Run("missing descriptor is filled in", func(t *testing.T) {
		orig := New("original", nil, KindTimeout)
		e := Wrap(orig, d)
		assert.Same(t, d, e.Descriptor)
	})
}

func TestFromEnvelope(t *testing.T) {
	d := &request.Descriptor{Method: "GET", URL: "https://foo.com"}
	testCases := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantPayload any
	}{
		{
			name:        "client error with JSON body",
			status:      404,
			body:        `{"error":"not found"}`,
			wantKind:    KindBadRequest,
			wantPayload: map[string]any{"error": "not found"},
		},
		{
			name:        "server error",
			status:      503,
			body:        "upstream unavailable",
			wantKind:    KindBadResponse,
			wantPayload: "upstream unavailable",
		},
		{
			name:     "boundary stays bad request at 499",
			status:   499,
			wantKind: KindBadRequest,
		},
		{
			name:     "boundary becomes bad response at 500",
			status:   500,
			wantKind: KindBadResponse,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			env := &request.Envelope{
				Status:     testCase.status,
				Body:       []byte(testCase.body),
				Descriptor: d,
			}
			e := FromEnvelope(env)
			assert.Equal(t, testCase.wantKind, e.Kind)
			assert.Equal(t, testCase.status, e.Status)
			assert.Equal(t, testCase.wantPayload, e.Payload)
			assert.Same(t, env, e.Envelope)
			assert.Same(t, d, e.Descriptor)
			assert.EqualError(t, e, fmt.Sprintf("%s: request failed with status code %d", testCase.wantKind, testCase.status))
		})
	}
	t.Run("pre-decoded data is preferred", func(t *testing.T) {
		env := &request.Envelope{
			Status:     400,
			Body:       []byte(`{"a":1}`),
			Data:       "decoded",
			Descriptor: d,
		}
		assert.Equal(t, "decoded", FromEnvelope(env).Payload)
	})
}

func TestErrorPredicates(t *testing.T) {
	d := &request.Descriptor{}
	assert.True(t, New("x", d, KindTimeout).Timeout())
	assert.False(t, New("x", d, KindNetwork).Timeout())
	assert.True(t, New("x", d, KindCanceled).Canceled())
	assert.False(t, New("x", d, KindTimeout).Canceled())
}

func TestIsKind(t *testing.T) {
	d := &request.Descriptor{}
	e := New("x", d, KindCanceled)
	assert.True(t, IsKind(e, KindCanceled))
	assert.False(t, IsKind(e, KindTimeout))
	assert.True(t, IsKind(fmt.Errorf("outer: %w", e), KindCanceled))
	assert.False(t, IsKind(errors.New("plain"), KindNetwork))
	assert.False(t, IsKind(nil, KindNetwork))
}

func TestAs(t *testing.T) {
	d := &request.Descriptor{}
	e := New("x", d, KindNetwork)
	got, ok := As(fmt.Errorf("outer: %w", e))
	assert.True(t, ok)
	assert.Same(t, e, got)
	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

// timeoutError implements net.Error with Timeout() == true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "fake net failure" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return false }
