// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"context"
	"net/url"
	"time"

	"github.com/ersinkoc/RequestKit/progress"
	"github.com/ersinkoc/RequestKit/request"
	"github.com/ersinkoc/RequestKit/retry"
	"github.com/ersinkoc/RequestKit/timeout"
)

// Options describes one call. Every field is optional; the zero value
// issues a GET against the client's BaseURL. Unset fields inherit the
// client's defaults.
type Options struct {
	// Method is the HTTP method, uppercased at merge time. An empty
	// string means GET.
	Method string

	// URL is the call target, either absolute or relative to the
	// client's BaseURL.
	URL string

	// Header holds header fields for this call, in any of the shapes
	// request.HeaderFrom accepts: http.Header, map[string]string,
	// map[string][]string or an ordered [][2]string. Call headers
	// override the client's defaults key for key; a value of a single
	// empty string deletes the default key entirely.
	Header any

	// Query holds query parameters appended to the URL.
	Query request.Params

	// QueryOptions, if non-nil, overrides the client's query
	// serialization options for this call.
	QueryOptions *request.SerializeOptions

	// Serializer, if non-nil, overrides the client's query serializer
	// for this call.
	Serializer request.Serializer

	// JSON, if non-nil, is serialized as the JSON request body. It
	// takes precedence over Form and Body.
	JSON any

	// Form, if non-nil, is encoded as the form request body,
	// multipart/form-data unless the call's headers declare
	// application/x-www-form-urlencoded. It takes precedence over
	// Body.
	Form url.Values

	// Body is the raw request body. See request.Raw for the accepted
	// values. JSON and Form, when set, take precedence.
	Body request.Body

	// Timeout, if positive, overrides the client's whole-call deadline
	// for this call. A negative value disables the deadline entirely.
	Timeout time.Duration

	// AttemptTimeout, if non-nil, overrides the client's per-attempt
	// timeout policy for this call.
	AttemptTimeout timeout.Policy

	// Retry, if non-nil, overrides the client's retry policy for this
	// call. Use retry.Limit(n) for a policy that differs from the
	// defaults only in its attempt budget.
	Retry *retry.Policy

	// ResponseType, if not request.TypeDefault, overrides how this
	// call's response body is decoded.
	ResponseType request.Type

	// ValidateStatus, if non-nil, overrides the client's status
	// validator for this call.
	ValidateStatus func(status int) bool

	// RequestTransforms, if non-nil, replaces the client's request
	// transform list for this call.
	RequestTransforms []request.Transform

	// ResponseTransforms, if non-nil, replaces the client's response
	// transform list for this call.
	ResponseTransforms []request.ResponseTransform

	// UploadProgress, if set, receives progress events while the
	// request body is sent.
	UploadProgress progress.Func

	// DownloadProgress, if set, receives progress events while the
	// response body is read.
	DownloadProgress progress.Func

	// Host optionally overrides the Host header to send.
	Host string

	// Close stipulates whether to close the connection after each
	// attempt of this call.
	Close bool
}

// body folds the three body fields into one, JSON winning over Form
// winning over Body.
func (o *Options) body() request.Body {
	switch {
	case o.JSON != nil:
		return request.JSON(o.JSON)
	case o.Form != nil:
		return request.Form(o.Form)
	default:
		return o.Body
	}
}

// callState carries one call through the attempt loop: the prepared
// descriptor, the encoded body re-sent on every attempt, and the
// per-call policies that live outside the Descriptor.
type callState struct {
	d              *request.Descriptor
	body           []byte
	retry          *retry.Policy
	attemptTimeout timeout.Policy
	upload         progress.Func
	download       progress.Func

	retries         int
	attemptTimeouts int
	lastTimedOut    bool
}

// prepare merges the client's defaults with one call's options into a
// fresh descriptor and call state.
func (c *Client) prepare(ctx context.Context, opts *Options) (*callState, error) {
	d, err := request.NewDescriptorWithContext(ctx, opts.Method, request.Combine(c.BaseURL, opts.URL))
	if err != nil {
		return nil, err
	}

	h, err := request.HeaderFrom(opts.Header)
	if err != nil {
		return nil, err
	}
	d.Header = request.MergeHeaders(c.Header, h)

	if len(opts.Query) > 0 {
		q := make(request.Params, len(opts.Query))
		for k, v := range opts.Query {
			q[k] = v
		}
		d.Query = q
	}

	d.QueryOptions = c.QueryOptions
	if opts.QueryOptions != nil {
		d.QueryOptions = *opts.QueryOptions
	}
	d.Serializer = c.Serializer
	if opts.Serializer != nil {
		d.Serializer = opts.Serializer
	}

	d.Body = opts.body()

	d.Timeout = c.Timeout
	if opts.Timeout != 0 {
		d.Timeout = opts.Timeout
		if d.Timeout < 0 {
			d.Timeout = 0
		}
	}

	d.ResponseType = opts.ResponseType.Resolve(c.ResponseType)

	d.ValidateStatus = c.ValidateStatus
	if opts.ValidateStatus != nil {
		d.ValidateStatus = opts.ValidateStatus
	}

	d.RequestTransforms = append([]request.Transform(nil), c.RequestTransforms...)
	if opts.RequestTransforms != nil {
		d.RequestTransforms = append([]request.Transform(nil), opts.RequestTransforms...)
	}
	d.ResponseTransforms = append([]request.ResponseTransform(nil), c.ResponseTransforms...)
	if opts.ResponseTransforms != nil {
		d.ResponseTransforms = append([]request.ResponseTransform(nil), opts.ResponseTransforms...)
	}

	d.Host = opts.Host
	d.Close = opts.Close

	pol := opts.Retry
	if pol == nil {
		pol = c.Retry
	}
	attemptTimeout := opts.AttemptTimeout
	if attemptTimeout == nil {
		attemptTimeout = c.AttemptTimeout
	}

	return &callState{
		d:              d,
		retry:          pol.Normalize(),
		attemptTimeout: attemptTimeout,
		upload:         opts.UploadProgress,
		download:       opts.DownloadProgress,
	}, nil
}

// encode buffers the request body once per call so every attempt can
// re-send identical bytes. The inferred content type is set on the
// descriptor unless its headers already declare one.
func (s *callState) encode() error {
	if s.d.Body.IsZero() || !request.ShouldHaveBody(s.d.Method) {
		return nil
	}
	data, contentType, err := s.d.Body.Encode(s.d.Header)
	if err != nil {
		return err
	}
	s.body = data
	if contentType != "" && s.d.Header.Get("Content-Type") == "" {
		s.d.Header.Set("Content-Type", contentType)
	}
	return nil
}
