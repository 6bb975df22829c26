// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ersinkoc/RequestKit/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes one HTTP call and returns its decoded response
// envelope (or error). Client implements the Doer interface, and any
// other Doer implementation must behave substantially the same as
// Client.Do.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(ctx context.Context, opts *Options) (*request.Envelope, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Get issues a GET to the specified URL and returns the decoded
// response envelope (or error). Client implements the Getter
// interface, and any other Getter implementation must behave
// substantially the same as Client.Get.
//
// Any Doer can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(ctx context.Context, url string) (*request.Envelope, error)
}

// Header is the interface that wraps the basic Head method.
//
// Head issues a HEAD to the specified URL and returns the decoded
// response envelope (or error). Client implements the Header
// interface, and any other Header implementation must behave
// substantially the same as Client.Head.
//
// Any Doer can be used to emulate a Header via the Head function.
type Header interface {
	Head(ctx context.Context, url string) (*request.Envelope, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Post issues a POST with the given body to the specified URL and
// returns the decoded response envelope (or error). Client implements
// the Poster interface, and any other Poster implementation must
// behave substantially the same as Client.Post.
//
// Any Doer can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(ctx context.Context, url string, body request.Body) (*request.Envelope, error)
}

// FormPoster is the interface that wraps the basic PostForm method.
//
// PostForm issues a POST to the specified URL with data's keys and
// values encoded as the request body. Client implements the
// FormPoster interface, and any other FormPoster implementation must
// behave substantially the same as Client.PostForm.
//
// Any Doer can be used to emulate a FormPoster via the PostForm
// function.
type FormPoster interface {
	PostForm(ctx context.Context, url string, data url.Values) (*request.Envelope, error)
}

// IdleCloser is the interface that wraps the basic
// CloseIdleConnections method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes connections which were previously established by requests
// but are now sitting idle in a "keep-alive" state. It does not
// interrupt any connections currently in use.
//
// If the underlying implementation does not support this ability,
// CloseIdleConnections does nothing.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups the basic Do, Get, Head, Post,
// PostForm, and CloseIdleConnections methods.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Getter
	Header
	Poster
	FormPoster
	IdleCloser
}

// Get uses the specified Doer to issue a GET to the specified URL,
// using the same pipeline as d.Do.
//
// To customize headers or any other per-call options, use d.Do.
func Get(ctx context.Context, d Doer, url string) (*request.Envelope, error) {
	return d.Do(ctx, &Options{Method: http.MethodGet, URL: url})
}

// Head uses the specified Doer to issue a HEAD to the specified URL,
// using the same pipeline as d.Do.
//
// To customize headers or any other per-call options, use d.Do.
func Head(ctx context.Context, d Doer, url string) (*request.Envelope, error) {
	return d.Do(ctx, &Options{Method: http.MethodHead, URL: url})
}

// Post uses the specified Doer to issue a POST to the specified URL,
// using the same pipeline as d.Do.
//
// The body may be built with request.JSON, request.Form,
// request.Multipart or request.Raw; its content type is inferred
// unless the call sets one explicitly through d.Do.
func Post(ctx context.Context, d Doer, url string, body request.Body) (*request.Envelope, error) {
	return d.Do(ctx, &Options{Method: http.MethodPost, URL: url, Body: body})
}

// PostForm uses the specified Doer to issue a POST to the specified
// URL, with data's keys and values encoded as the request body.
//
// Unless the call's headers declare a different content type, data is
// sent as multipart/form-data.
func PostForm(ctx context.Context, d Doer, url string, data url.Values) (*request.Envelope, error) {
	return d.Do(ctx, &Options{Method: http.MethodPost, URL: url, Form: data})
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that
// only has access to a Doer needs to call a function that requires an
// Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("requestkit: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(ctx context.Context, opts *Options) (*request.Envelope, error) {
	return i.doer.Do(ctx, opts)
}

func (i inflated) Get(ctx context.Context, url string) (*request.Envelope, error) {
	return Get(ctx, i.doer, url)
}

func (i inflated) Head(ctx context.Context, url string) (*request.Envelope, error) {
	return Head(ctx, i.doer, url)
}

func (i inflated) Post(ctx context.Context, url string, body request.Body) (*request.Envelope, error) {
	return Post(ctx, i.doer, url, body)
}

func (i inflated) PostForm(ctx context.Context, url string, data url.Values) (*request.Envelope, error) {
	return PostForm(ctx, i.doer, url, data)
}

func (i inflated) CloseIdleConnections() {
	if ic, ok := i.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
