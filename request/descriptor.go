// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http/httpguts"
)

const nilCtxMsg = "requestkit/request: nil context"

// A Type selects how a response body is decoded into Envelope.Data.
type Type int

const (
	// TypeDefault defers to the client's configured response type,
	// ultimately TypeJSON.
	TypeDefault Type = iota

	// TypeJSON decodes the body as JSON into Envelope.Data. An empty
	// body decodes to nil. A body that is not valid JSON falls back to
	// its raw text instead of failing.
	TypeJSON

	// TypeText yields the body as a string.
	TypeText

	// TypeBytes yields the body as a byte slice.
	TypeBytes

	// TypeStream leaves the response body unread. Envelope.Stream
	// exposes it and the caller must close it. Responses of this type
	// cannot be retried once headers have been received, since the
	// body is handed over unconsumed.
	TypeStream

	// TypeRaw buffers the body but performs no decoding. The caller
	// works with the Envelope directly.
	TypeRaw
)

// Resolve returns t unless it is TypeDefault, in which case it
// returns fallback, or TypeJSON when the fallback is itself
// TypeDefault.
func (t Type) Resolve(fallback Type) Type {
	if t != TypeDefault {
		return t
	}
	if fallback != TypeDefault {
		return fallback
	}
	return TypeJSON
}

func (t Type) String() string {
	switch t {
	case TypeDefault:
		return "default"
	case TypeJSON:
		return "json"
	case TypeText:
		return "text"
	case TypeBytes:
		return "bytes"
	case TypeStream:
		return "stream"
	case TypeRaw:
		return "raw"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// A Transform mutates a Descriptor after the request interceptors have
// run and before the first attempt is sent. Transforms run in list
// order; an error aborts the call.
type Transform func(*Descriptor) error

// A ResponseTransform rewrites the decoded response value after body
// decoding. Transforms run in list order, each receiving the previous
// one's output; an error aborts the call.
type ResponseTransform func(data any, env *Envelope) (any, error)

// A Descriptor describes one logical HTTP call as it flows through the
// pipeline.
//
// The logical call described by a Descriptor typically results in one
// lower-level http.Request, but may result in several request attempts
// when a failed attempt is retried. The same Descriptor serves every
// attempt of its call: preparation (configuration merge, interceptors,
// transforms) happens once, and retries re-send the prepared
// Descriptor as is.
//
// Like http.Request, a Descriptor has a context controlling the whole
// call. The context can cancel the in-flight attempt, any retry wait,
// and everything else between.
type Descriptor struct {
	// ID correlates all attempts, events and errors belonging to this
	// logical call. NewDescriptor assigns a fresh UUID.
	ID string

	// Method specifies the HTTP method. An empty string means GET.
	Method string

	// URL is the absolute target URL. Query holds parameters that are
	// not yet part of URL; FullURL folds them together.
	URL string

	// Header contains the request header fields to be sent. Keys are
	// canonical per http.Header convention.
	Header http.Header

	// Query contains query parameters to append to URL at send time.
	Query Params

	// QueryOptions controls how Query is serialized.
	QueryOptions SerializeOptions

	// Serializer optionally replaces the built-in parameter
	// serialization entirely.
	Serializer Serializer

	// Body is the request payload. The zero Body sends none.
	Body Body

	// Timeout bounds the whole call, spanning every attempt and every
	// retry wait. Zero means no deadline beyond whatever the context
	// already carries.
	Timeout time.Duration

	// ResponseType selects how the response body is decoded.
	ResponseType Type

	// ValidateStatus decides whether a received status code counts as
	// success. Nil accepts 200 through 299.
	ValidateStatus func(status int) bool

	// RequestTransforms run in order on the prepared Descriptor before
	// the first attempt.
	RequestTransforms []Transform

	// ResponseTransforms run in order on the decoded response value.
	ResponseTransforms []ResponseTransform

	// Close stipulates whether to close the connection after each
	// attempt, preventing TCP connection re-use between attempts of
	// the same call as if Transport.DisableKeepAlives were set.
	Close bool

	// Host optionally overrides the Host header to send. If empty, the
	// host part of URL is sent.
	Host string

	// ctx controls the whole call. It should only be replaced by
	// copying the Descriptor via WithContext.
	ctx context.Context
}

// NewDescriptor wraps NewDescriptorWithContext using the background
// context.
func NewDescriptor(method, url string) (*Descriptor, error) {
	return NewDescriptorWithContext(context.Background(), method, url)
}

// NewDescriptorWithContext returns a new Descriptor for the given
// method and URL. The method is uppercased and defaults to GET.
func NewDescriptorWithContext(ctx context.Context, method, url string) (*Descriptor, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)
	if !validMethod(method) {
		return nil, fmt.Errorf("requestkit/request: invalid method %q", method)
	}
	return &Descriptor{
		ID:     uuid.NewString(),
		Method: method,
		URL:    url,
		Header: make(http.Header),
		ctx:    ctx,
	}, nil
}

// Context returns the descriptor's context. The context controls
// cancellation of the whole call. To change the context, use
// WithContext.
//
// The returned context is always non-nil; it defaults to the
// background context.
func (d *Descriptor) Context() context.Context {
	if d.ctx != nil {
		return d.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of d with its context changed to
// ctx, which must be non-nil.
//
// The context controls the entire lifetime of the call: making
// individual request attempts, running interceptors, and waiting for
// retry delays to elapse.
func (d *Descriptor) WithContext(ctx context.Context) *Descriptor {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	d2 := new(Descriptor)
	*d2 = *d
	d2.ctx = ctx
	return d2
}

// Clone returns a copy of d whose header, query and transform
// collections are independent of the original. Both descriptors keep
// the same ID, since a clone still describes the same logical call.
// Clone supports the copy-with-overrides pattern used by interceptors
// that recover a failed call with an amended request.
func (d *Descriptor) Clone() *Descriptor {
	d2 := new(Descriptor)
	*d2 = *d
	if d.Header != nil {
		d2.Header = d.Header.Clone()
	}
	if d.Query != nil {
		q := make(Params, len(d.Query))
		for k, v := range d.Query {
			q[k] = v
		}
		d2.Query = q
	}
	d2.RequestTransforms = append([]Transform(nil), d.RequestTransforms...)
	d2.ResponseTransforms = append([]ResponseTransform(nil), d.ResponseTransforms...)
	return d2
}

// FullURL returns URL with the serialized Query attached. An existing
// query string on URL is preserved and extended.
func (d *Descriptor) FullURL() string {
	if len(d.Query) == 0 {
		return d.URL
	}
	var q string
	if d.Serializer != nil {
		q = d.Serializer(d.Query)
	} else {
		q = SerializeParams(d.Query, d.QueryOptions)
	}
	return AppendRawQuery(d.URL, q)
}

// AddCookie adds a cookie to the request. Per RFC 6265 section 5.4,
// AddCookie does not attach more than one Cookie header field. That
// means all cookies, if any, are written into the same line, separated
// by semicolons.
//
// AddCookie only sanitizes c's name and value, and does not sanitize a
// Cookie header already present in the request.
func (d *Descriptor) AddCookie(c *http.Cookie) {
	c2 := &http.Cookie{Name: c.Name, Value: c.Value}
	s := c2.String()
	if h := d.Header.Get("Cookie"); h != "" {
		d.Header.Set("Cookie", h+"; "+s)
	} else {
		d.Header.Set("Cookie", s)
	}
}

// SetBasicAuth sets the descriptor's Authorization header to use HTTP
// Basic Authentication with the provided username and password.
//
// With HTTP Basic Authentication the provided username and password
// are not encrypted.
func (d *Descriptor) SetBasicAuth(username, password string) {
	d.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// ToRequest creates the lower-level HTTP request for one attempt of
// this call. The context of the new request is set to ctx, which must
// not be nil, and body carries the pre-encoded payload, which may be
// nil. The new request gets its own copy of the header so transport
// mutations cannot leak back into the descriptor.
func (d *Descriptor) ToRequest(ctx context.Context, body []byte) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	method := d.Method
	if method == "" {
		method = http.MethodGet
	}
	r, err := http.NewRequestWithContext(ctx, method, d.FullURL(), nil)
	if err != nil {
		return nil, err
	}
	if d.Header != nil {
		r.Header = d.Header.Clone()
	}
	if len(body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}
	r.Close = d.Close
	if d.Host != "" {
		r.Host = d.Host
	}
	return r, nil
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

func validMethod(method string) bool {
	if method == "" {
		return false
	}
	return strings.IndexFunc(method, func(r rune) bool {
		return !httpguts.IsTokenRune(r)
	}) == -1
}
