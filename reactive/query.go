// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reactive

import (
	"context"
	"sync"
	"time"

	"github.com/ersinkoc/RequestKit"
)

// QueryOptions configures a Query.
type QueryOptions struct {
	// Client executes the query's calls. Required.
	Client requestkit.Doer

	// URL is the query's initial target.
	URL string

	// Request, if non-nil, is the call template the query fetches
	// with. The query overrides its URL field on every fetch.
	Request *requestkit.Options

	// Disabled suppresses all automatic fetching: construction, URL
	// changes, polling and focus or reconnect triggers. Refetch and
	// Invalidate still fetch.
	Disabled bool

	// PollInterval, if positive, re-fetches on a fixed cadence until
	// the query is closed.
	PollInterval time.Duration

	// StaleTime is how long fetched data counts as fresh. Zero means
	// data is immediately stale, so every focus or reconnect trigger
	// re-fetches.
	StaleTime time.Duration

	// RefetchOnFocus re-fetches stale data when the host app reports
	// regained focus through NotifyFocus.
	RefetchOnFocus bool

	// RefetchOnReconnect re-fetches stale data when the host app
	// reports regained connectivity through NotifyReconnect.
	RefetchOnReconnect bool
}

// A Query declaratively keeps the response for one URL. It fetches on
// construction and whenever its URL changes, exposes its State to
// polling consumers via Snapshot and to push consumers via Subscribe,
// and aborts a stale in-flight fetch whenever a newer one starts.
type Query struct {
	doer requestkit.Doer
	opts QueryOptions

	mu         sync.Mutex
	state      State
	url        string
	closed     bool
	fetchSeq   int
	cancel     context.CancelFunc
	staleTimer *time.Timer
	subs       map[int]func(State)
	nextSub    int
	pollStop   chan struct{}
}

// NewQuery constructs the query and, unless opts.Disabled is set,
// starts its first fetch. It panics on a nil client.
func NewQuery(opts QueryOptions) *Query {
	if opts.Client == nil {
		panic("requestkit/reactive: nil client")
	}
	q := &Query{
		doer: opts.Client,
		opts: opts,
		url:  opts.URL,
		subs: map[int]func(State){},
	}
	q.fetch(false)
	if opts.PollInterval > 0 && !opts.Disabled {
		q.pollStop = make(chan struct{})
		go q.poll()
	}
	return q
}

// Snapshot returns the query's current state.
func (q *Query) Snapshot() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Subscribe registers fn to observe every state change, invokes it
// once with the current state, and returns the function that removes
// the registration. Listeners are invoked from the query's internal
// goroutines and must not block.
func (q *Query) Subscribe(fn func(State)) func() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return func() {}
	}
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	st := q.state
	q.mu.Unlock()

	fn(st)
	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

// Refetch starts a fresh fetch, aborting one already in flight. It
// works on disabled queries too.
func (q *Query) Refetch() {
	q.fetch(true)
}

// Invalidate marks the current data stale and re-fetches.
func (q *Query) Invalidate() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.state.Stale = true
	q.mu.Unlock()
	q.fetch(true)
}

// SetURL points the query at a new URL. A changed URL triggers a
// fetch; setting the current URL again does nothing.
func (q *Query) SetURL(url string) {
	q.mu.Lock()
	if q.closed || q.url == url {
		q.mu.Unlock()
		return
	}
	q.url = url
	q.mu.Unlock()
	q.fetch(false)
}

// NotifyFocus tells the query the host app regained focus. With
// RefetchOnFocus set, stale data is re-fetched.
func (q *Query) NotifyFocus() {
	if q.opts.RefetchOnFocus {
		q.refetchIfStale()
	}
}

// NotifyReconnect tells the query the host app regained connectivity.
// With RefetchOnReconnect set, stale data is re-fetched.
func (q *Query) NotifyReconnect() {
	if q.opts.RefetchOnReconnect {
		q.refetchIfStale()
	}
}

// Close tears the query down: the in-flight fetch is aborted, polling
// stops, listeners are dropped, and no further state change happens.
// Close is idempotent.
func (q *Query) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	if q.staleTimer != nil {
		q.staleTimer.Stop()
	}
	if q.pollStop != nil {
		close(q.pollStop)
	}
	q.subs = nil
	q.mu.Unlock()
}

func (q *Query) refetchIfStale() {
	q.mu.Lock()
	stale := q.state.Stale || q.opts.StaleTime == 0
	q.mu.Unlock()
	if stale {
		q.fetch(false)
	}
}

// fetch starts a new fetch generation. Automatic triggers pass
// force=false and are suppressed on disabled queries.
func (q *Query) fetch(force bool) {
	q.mu.Lock()
	if q.closed || (q.opts.Disabled && !force) {
		q.mu.Unlock()
		return
	}
	if q.cancel != nil {
		q.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.fetchSeq++
	seq := q.fetchSeq
	url := q.url
	q.state.Loading = true
	st, subs := q.state, q.subscribers()
	q.mu.Unlock()

	notify(subs, st)
	go q.run(ctx, seq, url)
}

// run performs one fetch generation. Its result is discarded when the
// query was closed or a newer generation started while it ran, which
// also swallows the cancellation error its own supersession caused.
func (q *Query) run(ctx context.Context, seq int, url string) {
	opts := requestkit.Options{}
	if q.opts.Request != nil {
		opts = *q.opts.Request
	}
	opts.URL = url

	env, err := q.doer.Do(ctx, &opts)

	q.mu.Lock()
	if q.closed || seq != q.fetchSeq {
		q.mu.Unlock()
		return
	}
	q.state.Loading = false
	if err != nil {
		q.state.Err = asError(err)
	} else {
		q.state.Data = envelopeData(env)
		q.state.Err = nil
		q.state.Stale = false
		q.state.UpdatedAt = time.Now()
		q.armStaleTimer(seq)
	}
	st, subs := q.state, q.subscribers()
	q.mu.Unlock()

	notify(subs, st)
}

// armStaleTimer schedules the staleness flip for the given fetch
// generation. Callers hold q.mu.
func (q *Query) armStaleTimer(seq int) {
	if q.opts.StaleTime <= 0 {
		return
	}
	if q.staleTimer != nil {
		q.staleTimer.Stop()
	}
	q.staleTimer = time.AfterFunc(q.opts.StaleTime, func() {
		q.mu.Lock()
		if q.closed || seq != q.fetchSeq {
			q.mu.Unlock()
			return
		}
		q.state.Stale = true
		st, subs := q.state, q.subscribers()
		q.mu.Unlock()
		notify(subs, st)
	})
}

func (q *Query) poll() {
	ticker := time.NewTicker(q.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-q.pollStop:
			return
		case <-ticker.C:
			q.fetch(false)
		}
	}
}

// subscribers returns the current listeners. Callers hold q.mu.
func (q *Query) subscribers() []func(State) {
	subs := make([]func(State), 0, len(q.subs))
	for _, fn := range q.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
