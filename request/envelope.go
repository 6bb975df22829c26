// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ersinkoc/RequestKit/internal/json"
)

// An Envelope represents one completed transport exchange.
//
// Every request attempt that yields a response produces its own
// Envelope; when an attempt is retried, the previous attempt's
// Envelope is discarded and only the last one survives to the caller.
type Envelope struct {
	// Status is the numeric HTTP status code of the response.
	Status int

	// StatusText is the textual reason phrase of the status line.
	StatusText string

	// Header contains the response header fields.
	Header http.Header

	// Body is the buffered response body. It is nil for TypeStream
	// responses, whose body is handed over unread via Stream.
	Body []byte

	// Stream is the unread response body of a TypeStream response.
	// The caller assumes ownership and must close it. It is nil for
	// every other response type.
	Stream io.ReadCloser

	// Data is the decoded response value per the descriptor's response
	// type. It is populated by Decode and is nil before decoding and
	// for TypeRaw and TypeStream responses.
	Data any

	// Descriptor is the request descriptor that produced this
	// response. It is never nil.
	Descriptor *Descriptor

	// OK records whether the response counts as a success, either
	// because Status passed the configured status validation or
	// because an interceptor recovered the attempt.
	OK bool

	// Attempt is the zero-based number of the request attempt that
	// produced this envelope. It is zero on the initial attempt, one
	// on the first retry, and so on.
	Attempt int

	// Duration is the elapsed time of the attempt that produced this
	// envelope, from sending the request to finishing the body read.
	Duration time.Duration
}

// ContentType returns the value of the Content-Type response header.
func (e *Envelope) ContentType() string {
	return e.Header.Get("Content-Type")
}

// ContentLength returns the advertised response body length, or -1
// when the Content-Length header is absent or malformed.
func (e *Envelope) ContentLength() int64 {
	v := e.Header.Get("Content-Length")
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// Text returns the buffered body as a string.
func (e *Envelope) Text() string {
	return string(e.Body)
}

// JSON unmarshals the buffered body into v.
func (e *Envelope) JSON(v any) error {
	return json.Unmarshal(e.Body, v)
}

// Get probes the buffered JSON body with a gjson path expression, for
// example e.Get("items.0.id"). It never fails; probing a non-JSON or
// empty body yields a result that does not exist.
func (e *Envelope) Get(path string) gjson.Result {
	return gjson.GetBytes(e.Body, path)
}

// Decode populates Data from the buffered body according to t.
//
// TypeJSON decodes the body as JSON, with two deliberate soft spots:
// an empty body, such as a 204 or a response with Content-Length 0,
// decodes to nil rather than a decode error, and a body that is not
// valid JSON falls back to its raw text. TypeText and TypeBytes yield
// the body as string and byte slice. TypeStream and TypeRaw leave
// Data untouched.
func (e *Envelope) Decode(t Type) {
	switch t.Resolve(TypeDefault) {
	case TypeJSON:
		if len(e.Body) == 0 {
			e.Data = nil
			return
		}
		var v any
		if err := json.Unmarshal(e.Body, &v); err != nil {
			e.Data = string(e.Body)
			return
		}
		e.Data = v
	case TypeText:
		e.Data = string(e.Body)
	case TypeBytes:
		e.Data = e.Body
	}
}
