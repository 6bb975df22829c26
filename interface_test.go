// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ersinkoc/RequestKit/request"
)

func TestHelpers(t *testing.T) {
	env := &request.Envelope{Status: 200, OK: true}

	testCases := []struct {
		name   string
		action func(d Doer) (*request.Envelope, error)
		check  func(*testing.T, *Options)
	}{
		{
			name: "Get",
			action: func(d Doer) (*request.Envelope, error) {
				return Get(context.Background(), d, "test")
			},
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, "GET", opts.Method)
			},
		},
		{
			name: "Head",
			action: func(d Doer) (*request.Envelope, error) {
				return Head(context.Background(), d, "test")
			},
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, "HEAD", opts.Method)
			},
		},
		{
			name: "Post",
			action: func(d Doer) (*request.Envelope, error) {
				return Post(context.Background(), d, "test", request.Raw("payload"))
			},
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, "POST", opts.Method)
				assert.False(t, opts.Body.IsZero())
			},
		},
		{
			name: "PostForm",
			action: func(d Doer) (*request.Envelope, error) {
				return PostForm(context.Background(), d, "test", url.Values{"a": {"1"}})
			},
			check: func(t *testing.T, opts *Options) {
				assert.Equal(t, "POST", opts.Method)
				assert.Equal(t, url.Values{"a": {"1"}}, opts.Form)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			mockDoer := newMockDoer(t)
			var opts *Options
			mockDoer.On("Do", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
				opts = args.Get(1).(*Options)
			}).Return(env, nil).Once()

			got, err := testCase.action(mockDoer)

			mockDoer.AssertExpectations(t)
			require.NoError(t, err)
			assert.Same(t, env, got)
			require.NotNil(t, opts)
			assert.Equal(t, "test", opts.URL)
			testCase.check(t, opts)
		})
	}
}

func TestInflate(t *testing.T) {
	t.Run("nil doer panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "requestkit: nil doer", func() {
			Inflate(nil)
		})
	})
	t.Run("executor passes through", func(t *testing.T) {
		cl := &Client{}
		assert.Same(t, cl, Inflate(cl))
	})
	t.Run("doer is wrapped", func(t *testing.T) {
		env := &request.Envelope{Status: 200, OK: true}
		testCases := []struct {
			name   string
			action func(e Executor) (*request.Envelope, error)
			method string
		}{
			{
				name: "Do",
				action: func(e Executor) (*request.Envelope, error) {
					return e.Do(context.Background(), &Options{URL: "test"})
				},
			},
			{
				name: "Get",
				action: func(e Executor) (*request.Envelope, error) {
					return e.Get(context.Background(), "test")
				},
				method: "GET",
			},
			{
				name: "Head",
				action: func(e Executor) (*request.Envelope, error) {
					return e.Head(context.Background(), "test")
				},
				method: "HEAD",
			},
			{
				name: "Post",
				action: func(e Executor) (*request.Envelope, error) {
					return e.Post(context.Background(), "test", request.Raw("payload"))
				},
				method: "POST",
			},
			{
				name: "PostForm",
				action: func(e Executor) (*request.Envelope, error) {
					return e.PostForm(context.Background(), "test", url.Values{"a": {"1"}})
				},
				method: "POST",
			},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				mockDoer := newMockDoer(t)
				var opts *Options
				mockDoer.On("Do", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					opts = args.Get(1).(*Options)
				}).Return(env, nil).Once()

				got, err := testCase.action(Inflate(mockDoer))

				mockDoer.AssertExpectations(t)
				require.NoError(t, err)
				assert.Same(t, env, got)
				if testCase.method != "" {
					assert.Equal(t, testCase.method, opts.Method)
				}
			})
		}
	})
	t.Run("close idle connections delegates", func(t *testing.T) {
		mockDoer := newMockDoerWithCloseIdleConnections(t)
		mockDoer.On("CloseIdleConnections").Once()

		Inflate(mockDoer).CloseIdleConnections()

		mockDoer.AssertExpectations(t)
	})
	t.Run("close idle connections tolerated", func(t *testing.T) {
		mockDoer := newMockDoer(t)

		assert.NotPanics(t, func() {
			Inflate(mockDoer).CloseIdleConnections()
		})
	})
}

type mockDoer struct {
	mock.Mock
}

func newMockDoer(t *testing.T) *mockDoer {
	m := &mockDoer{}
	m.Test(t)
	return m
}

func (m *mockDoer) Do(ctx context.Context, opts *Options) (*request.Envelope, error) {
	args := m.Called(ctx, opts)
	env, _ := args.Get(0).(*request.Envelope)
	return env, args.Error(1)
}

type mockDoerWithCloseIdleConnections struct {
	mockDoer
}

func newMockDoerWithCloseIdleConnections(t *testing.T) *mockDoerWithCloseIdleConnections {
	m := &mockDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}
