// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/request"
)

func TestClient(t *testing.T) {
	t.Run("happy path", testClientHappyPath)
	t.Run("zero value", testClientZeroValue)
	t.Run("merge", testClientMerge)
	t.Run("read body error", testClientBodyError)
	t.Run("clone", testClientClone)
	t.Run("close idle connections", testClientCloseIdleConnections)
	t.Run("protocols", testClientProtocols)
}

func testClientHappyPath(t *testing.T) {
	t.Parallel()
	// Declare happy path test cases. Each test case invokes one of the
	// exported verb methods on Client: Get, Head, Post, and PostForm.
	testCases := []struct {
		name        string
		action      func(c *Client) (*request.Envelope, error)
		extraChecks func(*testing.T, *http.Request)
	}{
		{
			name: "Get",
			action: func(c *Client) (*request.Envelope, error) {
				return c.Get(context.Background(), "test")
			},
			extraChecks: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "GET", r.Method)
				assert.Nil(t, r.Body)
			},
		},
		{
			name: "Head",
			action: func(c *Client) (*request.Envelope, error) {
				return c.Head(context.Background(), "test")
			},
			extraChecks: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "HEAD", r.Method)
				assert.Nil(t, r.Body)
			},
		},
		{
			name: "Post",
			action: func(c *Client) (*request.Envelope, error) {
				return c.Post(context.Background(), "test", request.JSON(map[string]int{"a": 1}))
			},
			extraChecks: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "POST", r.Method)
				assert.Equal(t, "application/json;charset=UTF-8", r.Header.Get("Content-Type"))
				b, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.JSONEq(t, `{"a":1}`, string(b))
			},
		},
		{
			name: "PostForm",
			action: func(c *Client) (*request.Envelope, error) {
				return c.PostForm(context.Background(), "test", url.Values{"ham": {"eggs", "spam"}})
			},
			extraChecks: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "POST", r.Method)
				mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				require.NoError(t, err)
				require.Equal(t, "multipart/form-data", mediaType)
				f, err := multipart.NewReader(r.Body, params["boundary"]).ReadForm(1 << 20)
				require.NoError(t, err)
				assert.Equal(t, []string{"eggs", "spam"}, f.Value["ham"])
			},
		},
		{
			name: "Put",
			action: func(c *Client) (*request.Envelope, error) {
				return c.Put(context.Background(), "test", request.Raw("payload"))
			},
			extraChecks: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "PUT", r.Method)
				assert.Equal(t, "text/plain;charset=UTF-8", r.Header.Get("Content-Type"))
			},
		},
		{
			name: "Patch",
			action: func(c *Client) (*request.Envelope, error) {
				return c.Patch(context.Background(), "test", request.JSON([]int{1, 2}))
			},
			extraChecks: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "PATCH", r.Method)
			},
		},
		{
			name: "Delete",
			action: func(c *Client) (*request.Envelope, error) {
				return c.Delete(context.Background(), "test")
			},
			extraChecks: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "DELETE", r.Method)
			},
		},
		{
			name: "Options",
			action: func(c *Client) (*request.Envelope, error) {
				return c.Options(context.Background(), "test")
			},
			extraChecks: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "OPTIONS", r.Method)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			mockDoer := newMockHTTPDoer(t)
			cl := &Client{
				HTTPDoer: mockDoer,
			}

			resp := &http.Response{
				Status:     "200 OK",
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader("foo")),
			}

			var sent *http.Request
			mockDoer.On("Do", mock.Anything).Run(func(args mock.Arguments) {
				sent = args.Get(0).(*http.Request)
			}).Return(resp, nil).Once()

			env, err := testCase.action(cl)

			mockDoer.AssertExpectations(t)
			require.NoError(t, err)
			require.NotNil(t, env)
			assert.Equal(t, 200, env.Status)
			assert.Equal(t, "OK", env.StatusText)
			assert.True(t, env.OK)
			assert.Equal(t, "foo", env.Text())
			assert.Equal(t, "foo", env.Data)
			assert.Equal(t, 0, env.Attempt)
			require.NotNil(t, sent)
			assert.Equal(t, "test", sent.URL.String())
			if testCase.extraChecks != nil {
				testCase.extraChecks(t, sent)
			}
		})
	}
}

func testClientZeroValue(t *testing.T) {
	t.Parallel()
	var cl Client

	env, err := cl.Get(context.Background(), httpServer.URL+"/echo")

	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, 200, env.Status)
	assert.True(t, env.OK)
	var payload echoPayload
	require.NoError(t, env.JSON(&payload))
	assert.Equal(t, "GET", payload.Method)
}

func testClientMerge(t *testing.T) {
	t.Parallel()
	t.Run("headers", func(t *testing.T) {
		cl := &Client{
			BaseURL: httpServer.URL,
			Header: http.Header{
				"X-Default":     {"a"},
				"X-Both":        {"client"},
				"Authorization": {"Bearer secret"},
			},
		}

		env, err := cl.Do(context.Background(), &Options{
			URL: "/echo",
			Header: map[string]string{
				"X-Both":        "call",
				"Authorization": "",
			},
		})

		require.NoError(t, err)
		var payload echoPayload
		require.NoError(t, env.JSON(&payload))
		assert.Equal(t, []string{"a"}, payload.Header["X-Default"])
		assert.Equal(t, []string{"call"}, payload.Header["X-Both"])
		assert.NotContains(t, payload.Header, "Authorization")
	})
	t.Run("query", func(t *testing.T) {
		cl := &Client{BaseURL: httpServer.URL}

		env, err := cl.Do(context.Background(), &Options{
			URL:   "/echo",
			Query: request.Params{"q": "kits", "tags": []string{"a", "b"}},
			QueryOptions: &request.SerializeOptions{
				Format: request.ArrayBrackets,
			},
		})

		require.NoError(t, err)
		var payload echoPayload
		require.NoError(t, env.JSON(&payload))
		assert.Equal(t, "/echo?q=kits&tags%5B%5D=a&tags%5B%5D=b", payload.RequestURI)
	})
	t.Run("base url ignored for absolute", func(t *testing.T) {
		cl := &Client{BaseURL: "https://unreachable.invalid"}

		env, err := cl.Get(context.Background(), httpServer.URL+"/echo")

		require.NoError(t, err)
		assert.Equal(t, 200, env.Status)
	})
	t.Run("bad method", func(t *testing.T) {
		cl := &Client{}

		env, err := cl.Do(context.Background(), &Options{Method: "B@D", URL: "test"})

		assert.Nil(t, env)
		require.Error(t, err)
		herr, ok := httperr.As(err)
		require.True(t, ok)
		assert.Equal(t, httperr.KindNetwork, herr.Kind)
		assert.Contains(t, herr.Message, "invalid method")
	})
	t.Run("bad header shape", func(t *testing.T) {
		cl := &Client{}

		_, err := cl.Do(context.Background(), &Options{URL: "test", Header: 42})

		require.Error(t, err)
		herr, ok := httperr.As(err)
		require.True(t, ok)
		assert.Nil(t, herr.Envelope)
	})
}

func testClientBodyError(t *testing.T) {
	t.Parallel()
	mockDoer := newMockHTTPDoer(t)
	cl := &Client{HTTPDoer: mockDoer}
	resp := &http.Response{
		Status:     "200 OK",
		StatusCode: 200,
		Body:       io.NopCloser(brokenReader{}),
	}
	mockDoer.On("Do", mock.Anything).Return(resp, nil).Once()

	env, err := cl.Get(context.Background(), "test")

	mockDoer.AssertExpectations(t)
	assert.Nil(t, env)
	require.Error(t, err)
	herr, ok := httperr.As(err)
	require.True(t, ok)
	assert.Equal(t, httperr.KindNetwork, herr.Kind)
	assert.Equal(t, 200, herr.Status)
	require.NotNil(t, herr.Envelope)
	assert.Equal(t, 200, herr.Envelope.Status)
}

func testClientClone(t *testing.T) {
	t.Parallel()
	orig := &Client{
		BaseURL: "https://api.example.com",
		Header:  http.Header{"X-Token": {"a"}},
		Timeout: time.Minute,
	}
	orig.Interceptors.Request.Use(nil, nil)

	cl := orig.Clone()

	assert.Equal(t, orig.BaseURL, cl.BaseURL)
	assert.Equal(t, orig.Timeout, cl.Timeout)
	assert.Equal(t, 1, cl.Interceptors.Request.Len())

	// Changes on either side must not leak to the other.
	cl.Header.Set("X-Token", "b")
	assert.Equal(t, "a", orig.Header.Get("X-Token"))
	orig.Interceptors.Request.Use(nil, nil)
	assert.Equal(t, 1, cl.Interceptors.Request.Len())
	cl.Interceptors.Response.Use(nil, nil)
	assert.Equal(t, 0, orig.Interceptors.Response.Len())
}

func testClientCloseIdleConnections(t *testing.T) {
	t.Parallel()
	t.Run("supported", func(t *testing.T) {
		mockDoer := newMockHTTPDoerWithCloseIdleConnections(t)
		cl := &Client{HTTPDoer: mockDoer}
		mockDoer.On("CloseIdleConnections").Once()

		cl.CloseIdleConnections()

		mockDoer.AssertExpectations(t)
	})
	t.Run("unsupported", func(t *testing.T) {
		mockDoer := newMockHTTPDoer(t)
		cl := &Client{HTTPDoer: mockDoer}

		assert.NotPanics(t, func() {
			cl.CloseIdleConnections()
		})
	})
}

func testClientProtocols(t *testing.T) {
	t.Parallel()
	for _, server := range servers {
		t.Run(serverName(server), func(t *testing.T) {
			cl := &Client{HTTPDoer: server.Client()}

			env, err := cl.Get(context.Background(), server.URL+"/echo")

			require.NoError(t, err)
			assert.Equal(t, 200, env.Status)
			var payload echoPayload
			require.NoError(t, env.JSON(&payload))
			if server == http2Server {
				assert.Equal(t, "HTTP/2.0", payload.Proto)
			} else {
				assert.Equal(t, "HTTP/1.1", payload.Proto)
			}
		})
	}
}

func TestStatusText(t *testing.T) {
	testCases := []struct {
		name     string
		resp     *http.Response
		expected string
	}{
		{"reason phrase", &http.Response{Status: "200 OK", StatusCode: 200}, "OK"},
		{"custom phrase", &http.Response{Status: "299 Custom Thing", StatusCode: 299}, "Custom Thing"},
		{"no phrase", &http.Response{Status: "", StatusCode: 404}, "Not Found"},
		{"code only", &http.Response{Status: "200", StatusCode: 200}, "200"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, statusText(testCase.resp))
		})
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("wire snapped")
}

type mockHTTPDoer struct {
	mock.Mock
}

func newMockHTTPDoer(t *testing.T) *mockHTTPDoer {
	m := &mockHTTPDoer{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	err := args.Error(1)
	if resp, ok := args.Get(0).(*http.Response); ok {
		return resp, err
	}
	return nil, err
}

type mockHTTPDoerWithCloseIdleConnections struct {
	mockHTTPDoer
}

func newMockHTTPDoerWithCloseIdleConnections(t *testing.T) *mockHTTPDoerWithCloseIdleConnections {
	m := &mockHTTPDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}
