// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/request"
	"github.com/ersinkoc/RequestKit/retry"
	"github.com/ersinkoc/RequestKit/timeout"
)

const nilCtxPanic = "requestkit: nil context"

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the Go
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// A Client is a convenience HTTP client with configuration defaults,
// interceptor chains, retries and response decoding. Its zero value is
// a valid configuration.
//
// The zero value client uses http.DefaultClient (from net/http) as the
// HTTPDoer, no base URL, no default headers, no call deadline, no
// per-attempt timeout, a disabled retry policy, JSON response decoding
// and 2xx status validation.
//
// Client's HTTPDoer typically has internal state (cached TCP
// connections) so Client instances should be reused instead of created
// as needed. Client is safe for concurrent use by multiple goroutines.
//
// A Client is higher-level than an HTTPDoer. The HTTPDoer is
// responsible for all details of sending one HTTP request and
// receiving its response, while Client builds on top of the HTTPDoer's
// feature set. For example, the HTTPDoer is responsible for redirects,
// so consult the HTTPDoer's documentation to understand how redirects
// are handled. Typically the Go standard HTTP client (http.Client)
// will be used as the HTTPDoer, but this is not required.
//
// On top of the HTTP request features provided by the HTTPDoer, Client
// adds the following features:
//
// • Client merges its configuration defaults into every call, builds
// the full URL from BaseURL, per-call query parameters and headers,
// and encodes the request body;
//
// • Client runs user-installed interceptor chains around every call,
// letting outside code rewrite requests, rewrite responses and recover
// failures;
//
// • Client retries failed request attempts using a customizable retry
// policy, sets per-attempt timeouts using a customizable timeout
// policy, and normalizes every failure into a single *httperr.Error
// shape; and
//
// • Client reads and buffers the HTTP response body and decodes it
// per the configured response type (JSON by default).
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard
	// net/http package is used.
	HTTPDoer HTTPDoer

	// BaseURL, if set, is combined with every call's relative URL. A
	// call whose URL is already absolute ignores BaseURL.
	BaseURL string

	// Header contains default header fields sent with every call.
	// Per-call headers override defaults key for key, and a per-call
	// value of a single empty string deletes the default.
	Header http.Header

	// Timeout bounds each whole call, spanning every attempt and every
	// retry wait. Zero means no deadline beyond the caller's context.
	// Per-call options can override it.
	Timeout time.Duration

	// AttemptTimeout sets the deadline of each individual request
	// attempt within a call. If AttemptTimeout is nil, attempts have
	// no deadline of their own.
	AttemptTimeout timeout.Policy

	// Retry decides when to retry failed attempts and how long to wait
	// between attempts. If Retry is nil, failed attempts are not
	// retried.
	Retry *retry.Policy

	// ResponseType selects how response bodies are decoded. The zero
	// value means JSON.
	ResponseType request.Type

	// ValidateStatus decides whether a received status code counts as
	// success. Nil accepts 200 through 299.
	ValidateStatus func(status int) bool

	// QueryOptions controls how query parameters serialize.
	QueryOptions request.SerializeOptions

	// Serializer optionally replaces the built-in query parameter
	// serialization entirely.
	Serializer request.Serializer

	// RequestTransforms run in order on every call's prepared
	// Descriptor, after the request interceptors.
	RequestTransforms []request.Transform

	// ResponseTransforms run in order on every call's decoded response
	// value.
	ResponseTransforms []request.ResponseTransform

	// BeforeRequest, if set, is called once per attempt before the
	// request is prepared further or sent. On the first attempt of a
	// call it runs before the request interceptors.
	BeforeRequest func(d *request.Descriptor)

	// AfterResponse, if set, is called once per attempt that received
	// a response, before the response interceptors run.
	AfterResponse func(env *request.Envelope)

	// OnError, if set, is called once per call whose failure reaches
	// the caller, after retries and interceptor recovery are
	// exhausted.
	OnError func(err *httperr.Error)

	// Limiter, if set, is awaited before every attempt, bounding the
	// client's request rate across all concurrent calls.
	Limiter *rate.Limiter

	// Logger receives structured events for attempts, responses,
	// retries and terminal failures. The zero value discards them.
	Logger zerolog.Logger

	// Interceptors holds the client's two interceptor chains. See
	// RequestInterceptors and ResponseInterceptors for their dispatch
	// order and concurrency behavior.
	Interceptors Interceptors
}

// An Option configures a Client built by New.
type Option func(*Client)

// New constructs a Client from the given options. New() without
// options is equivalent to &Client{}.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPDoer sets the transport the client sends requests through.
func WithHTTPDoer(d HTTPDoer) Option {
	return func(c *Client) { c.HTTPDoer = d }
}

// WithBaseURL sets the URL every relative call URL is combined with.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.BaseURL = u }
}

// WithHeader adds a default header field sent with every call.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if c.Header == nil {
			c.Header = make(http.Header)
		}
		c.Header.Set(key, value)
	}
}

// WithTimeout sets the default whole-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

// WithAttemptTimeout sets the per-attempt timeout policy.
func WithAttemptTimeout(p timeout.Policy) Option {
	return func(c *Client) { c.AttemptTimeout = p }
}

// WithRetry sets the default retry policy.
func WithRetry(p *retry.Policy) Option {
	return func(c *Client) { c.Retry = p }
}

// WithResponseType sets the default response decoding.
func WithResponseType(t request.Type) Option {
	return func(c *Client) { c.ResponseType = t }
}

// WithValidateStatus sets the default status validator.
func WithValidateStatus(f func(status int) bool) Option {
	return func(c *Client) { c.ValidateStatus = f }
}

// WithQueryOptions sets the default query serialization options.
func WithQueryOptions(o request.SerializeOptions) Option {
	return func(c *Client) { c.QueryOptions = o }
}

// WithSerializer sets a custom query parameter serializer.
func WithSerializer(s request.Serializer) Option {
	return func(c *Client) { c.Serializer = s }
}

// WithRequestTransform appends a default request transform.
func WithRequestTransform(t request.Transform) Option {
	return func(c *Client) { c.RequestTransforms = append(c.RequestTransforms, t) }
}

// WithResponseTransform appends a default response transform.
func WithResponseTransform(t request.ResponseTransform) Option {
	return func(c *Client) { c.ResponseTransforms = append(c.ResponseTransforms, t) }
}

// WithBeforeRequest sets the per-attempt before-request hook.
func WithBeforeRequest(f func(d *request.Descriptor)) Option {
	return func(c *Client) { c.BeforeRequest = f }
}

// WithAfterResponse sets the per-attempt after-response hook.
func WithAfterResponse(f func(env *request.Envelope)) Option {
	return func(c *Client) { c.AfterResponse = f }
}

// WithOnError sets the terminal failure hook.
func WithOnError(f func(err *httperr.Error)) Option {
	return func(c *Client) { c.OnError = f }
}

// WithRateLimit caps the client's request rate at rps requests per
// second with the given burst size.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.Limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets the logger the client emits structured events to.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.Logger = l }
}

// Clone returns a copy of c whose header, transform lists and
// interceptor chains are independent of the original. The HTTPDoer and
// rate limiter are shared, so the clone keeps the original's connection
// pool and stays inside the same rate budget.
func (c *Client) Clone() *Client {
	c2 := &Client{
		HTTPDoer:       c.HTTPDoer,
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout,
		AttemptTimeout: c.AttemptTimeout,
		ResponseType:   c.ResponseType,
		ValidateStatus: c.ValidateStatus,
		QueryOptions:   c.QueryOptions,
		Serializer:     c.Serializer,
		BeforeRequest:  c.BeforeRequest,
		AfterResponse:  c.AfterResponse,
		OnError:        c.OnError,
		Limiter:        c.Limiter,
		Logger:         c.Logger,
	}
	if c.Header != nil {
		c2.Header = c.Header.Clone()
	}
	if c.Retry != nil {
		p := *c.Retry
		c2.Retry = &p
	}
	c2.RequestTransforms = append([]request.Transform(nil), c.RequestTransforms...)
	c2.ResponseTransforms = append([]request.ResponseTransform(nil), c.ResponseTransforms...)
	c.Interceptors.Request.cloneInto(&c2.Interceptors.Request)
	c.Interceptors.Response.cloneInto(&c2.Interceptors.Response)
	return c2
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
//
// If the HTTPDoer does have a CloseIdleConnections method, then the
// effect of this method depends entirely on its implementation in the
// HTTPDoer. For example, the http.Client type forwards the call to its
// Transport, but only if the Transport itself has a
// CloseIdleConnections method (otherwise it does nothing).
func (c *Client) CloseIdleConnections() {
	doer := c.doer()
	if ic, ok := doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return http.DefaultClient
	}

	return c.HTTPDoer
}

// Get issues a GET to the specified URL, using the same pipeline
// followed by Do.
//
// To customize headers, query parameters or any other per-call
// options, use Do.
func (c *Client) Get(ctx context.Context, url string) (*request.Envelope, error) {
	return Get(ctx, c, url)
}

// Head issues a HEAD to the specified URL, using the same pipeline
// followed by Do.
func (c *Client) Head(ctx context.Context, url string) (*request.Envelope, error) {
	return Head(ctx, c, url)
}

// Post issues a POST to the specified URL, using the same pipeline
// followed by Do.
//
// The body may be built with request.JSON, request.Form,
// request.Multipart or request.Raw; its content type is inferred
// unless the call sets one. Use Do to combine a body with other
// per-call options.
func (c *Client) Post(ctx context.Context, url string, body request.Body) (*request.Envelope, error) {
	return Post(ctx, c, url, body)
}

// PostForm issues a POST to the specified URL, with data's keys and
// values encoded as the request body.
//
// Unless the call's headers declare a different content type, data is
// sent as multipart/form-data. Declaring
// application/x-www-form-urlencoded switches to URL encoding.
func (c *Client) PostForm(ctx context.Context, url string, data url.Values) (*request.Envelope, error) {
	return PostForm(ctx, c, url, data)
}

// Put issues a PUT to the specified URL, using the same pipeline
// followed by Do. See Post for the body contract.
func (c *Client) Put(ctx context.Context, url string, body request.Body) (*request.Envelope, error) {
	return c.Do(ctx, &Options{Method: http.MethodPut, URL: url, Body: body})
}

// Patch issues a PATCH to the specified URL, using the same pipeline
// followed by Do. See Post for the body contract.
func (c *Client) Patch(ctx context.Context, url string, body request.Body) (*request.Envelope, error) {
	return c.Do(ctx, &Options{Method: http.MethodPatch, URL: url, Body: body})
}

// Delete issues a DELETE to the specified URL, using the same pipeline
// followed by Do.
func (c *Client) Delete(ctx context.Context, url string) (*request.Envelope, error) {
	return c.Do(ctx, &Options{Method: http.MethodDelete, URL: url})
}

// Options issues an OPTIONS to the specified URL, using the same
// pipeline followed by Do.
func (c *Client) Options(ctx context.Context, url string) (*request.Envelope, error) {
	return c.Do(ctx, &Options{Method: http.MethodOptions, URL: url})
}
