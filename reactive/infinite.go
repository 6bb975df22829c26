// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reactive

import (
	"context"
	"sync"

	"github.com/ersinkoc/RequestKit"
	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/request"
)

// InfiniteQueryOptions configures an InfiniteQuery.
type InfiniteQueryOptions struct {
	// Client executes the page fetches. Required.
	Client requestkit.Doer

	// Request builds the call for one page given its cursor. The
	// first page receives InitialCursor. Required.
	Request func(cursor any) *requestkit.Options

	// NextCursor derives the cursor of the page after last, or
	// reports false when last is the final page. Required.
	NextCursor func(last *request.Envelope) (cursor any, ok bool)

	// PrevCursor derives the cursor of the page before first, or
	// reports false when first is the earliest page. Optional;
	// when nil, FetchPrev is a no-op.
	PrevCursor func(first *request.Envelope) (cursor any, ok bool)

	// InitialCursor seeds the first page's fetch.
	InitialCursor any
}

// InfiniteState is a point-in-time view of an InfiniteQuery.
type InfiniteState struct {
	// Pages holds every fetched page in order, earliest first.
	Pages []*request.Envelope

	// Err is the most recent page fetch's failure, nil after a
	// success.
	Err *httperr.Error

	// FetchingNext and FetchingPrev report fetches in flight in
	// each direction.
	FetchingNext bool
	FetchingPrev bool

	// HasNext and HasPrev report whether more pages are available
	// in each direction.
	HasNext bool
	HasPrev bool
}

// An InfiniteQuery accumulates a cursor-paginated result set one page
// at a time. It fetches nothing on construction; the first FetchNext
// loads the initial page.
type InfiniteQuery struct {
	doer requestkit.Doer
	opts InfiniteQueryOptions

	mu           sync.Mutex
	pages        []*request.Envelope
	err          *httperr.Error
	started      bool
	fetchingNext bool
	fetchingPrev bool
	hasNext      bool
	hasPrev      bool
	nextCursor   any
	prevCursor   any
	closed       bool
}

// NewInfiniteQuery constructs the query. It panics on a nil client,
// request builder, or next-cursor function.
func NewInfiniteQuery(opts InfiniteQueryOptions) *InfiniteQuery {
	if opts.Client == nil {
		panic("requestkit/reactive: nil client")
	}
	if opts.Request == nil {
		panic("requestkit/reactive: nil request builder")
	}
	if opts.NextCursor == nil {
		panic("requestkit/reactive: nil next cursor")
	}
	return &InfiniteQuery{doer: opts.Client, opts: opts}
}

// Snapshot returns the query's current state. The returned page slice
// is the caller's to keep.
func (q *InfiniteQuery) Snapshot() InfiniteState {
	q.mu.Lock()
	defer q.mu.Unlock()
	pages := make([]*request.Envelope, len(q.pages))
	copy(pages, q.pages)
	return InfiniteState{
		Pages:        pages,
		Err:          q.err,
		FetchingNext: q.fetchingNext,
		FetchingPrev: q.fetchingPrev,
		HasNext:      q.hasNext,
		HasPrev:      q.hasPrev,
	}
}

// FetchNext loads the page after the newest fetched page, or the
// initial page if none has been fetched yet. It returns nil without
// fetching when the final page has been reached, ErrFetchInFlight
// when a FetchNext is already running, and ErrClosed after Close.
func (q *InfiniteQuery) FetchNext(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.fetchingNext {
		q.mu.Unlock()
		return ErrFetchInFlight
	}
	if q.started && !q.hasNext {
		q.mu.Unlock()
		return nil
	}
	cursor := q.opts.InitialCursor
	if q.started {
		cursor = q.nextCursor
	}
	first := !q.started
	q.fetchingNext = true
	q.mu.Unlock()

	env, err := q.doer.Do(ctx, q.opts.Request(cursor))

	q.mu.Lock()
	defer q.mu.Unlock()
	q.fetchingNext = false
	if q.closed {
		return ErrClosed
	}
	if err != nil {
		q.err = asError(err)
		return q.err
	}
	q.err = nil
	q.started = true
	q.pages = append(q.pages, env)
	q.nextCursor, q.hasNext = q.opts.NextCursor(env)
	if first {
		if q.opts.PrevCursor != nil {
			q.prevCursor, q.hasPrev = q.opts.PrevCursor(env)
		}
	}
	return nil
}

// FetchPrev loads the page before the earliest fetched page. Before
// the initial page exists, when no previous-cursor function is
// configured, or when the earliest page has been reached, it returns
// nil without fetching. It returns ErrFetchInFlight when a FetchPrev
// is already running and ErrClosed after Close.
func (q *InfiniteQuery) FetchPrev(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.fetchingPrev {
		q.mu.Unlock()
		return ErrFetchInFlight
	}
	if !q.started || !q.hasPrev || q.opts.PrevCursor == nil {
		q.mu.Unlock()
		return nil
	}
	cursor := q.prevCursor
	q.fetchingPrev = true
	q.mu.Unlock()

	env, err := q.doer.Do(ctx, q.opts.Request(cursor))

	q.mu.Lock()
	defer q.mu.Unlock()
	q.fetchingPrev = false
	if q.closed {
		return ErrClosed
	}
	if err != nil {
		q.err = asError(err)
		return q.err
	}
	q.err = nil
	q.pages = append([]*request.Envelope{env}, q.pages...)
	q.prevCursor, q.hasPrev = q.opts.PrevCursor(env)
	return nil
}

// Close tears the query down. Fetches already in flight return
// ErrClosed without touching the accumulated pages. Close is
// idempotent.
func (q *InfiniteQuery) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
