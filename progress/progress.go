// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package progress

import (
	"io"
)

// An Event describes how far a body transfer has advanced.
type Event struct {
	// Loaded is the number of body bytes transferred so far.
	Loaded int64
	// Total is the number of body bytes expected in total. If the
	// total is unknown, Total is zero until the final event, where it
	// is set to the number of bytes actually transferred.
	Total int64
	// Percent is Loaded as a share of Total, rounded to the nearest
	// integer. It is zero while Total is unknown, and 100 on the
	// final event.
	Percent int
}

// Func receives progress events. The function is called from the
// goroutine reading the body, so it must not block for long and must
// not read from the body itself.
type Func func(Event)

// Reader counts the bytes read through it and reports them to a
// progress function. It implements io.ReadCloser so it can stand in
// for a request or response body.
type Reader struct {
	r      io.Reader
	fn     Func
	total  int64
	loaded int64
	ended  bool
}

// NewReader wraps r in a counting Reader which calls fn after every
// read and once more when r is exhausted. Pass a zero or negative
// total if the expected size is unknown.
func NewReader(r io.Reader, total int64, fn Func) *Reader {
	return &Reader{r: r, fn: fn, total: total}
}

func (pr *Reader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.loaded += int64(n)
		pr.fn(pr.event(false))
	}
	if err == io.EOF && !pr.ended {
		pr.ended = true
		pr.fn(pr.event(true))
	}
	return n, err
}

// Close closes the underlying reader if it is an io.Closer and is a
// no-op otherwise.
func (pr *Reader) Close() error {
	if c, ok := pr.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (pr *Reader) event(final bool) Event {
	e := Event{Loaded: pr.loaded, Total: pr.total}
	if e.Total <= 0 {
		e.Total = 0
		if final {
			e.Total = pr.loaded
		}
	}
	switch {
	case final:
		e.Percent = 100
	case e.Total > 0:
		e.Percent = percent(pr.loaded, e.Total)
	}
	return e
}

// Complete reports a transfer of size bytes to fn as a single 100%
// event. It is used for bodies whose transfer cannot be observed
// chunk by chunk, for example requests that carry no body at all.
func Complete(size int64, fn Func) {
	if size < 0 {
		size = 0
	}
	fn(Event{Loaded: size, Total: size, Percent: 100})
}

func percent(loaded, total int64) int {
	if loaded >= total {
		return 100
	}
	return int((loaded*100 + total/2) / total)
}
