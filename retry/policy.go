// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/request"
)

// A Backoff selects the delay growth formula between retries.
type Backoff int

const (
	// BackoffExponential doubles the delay with every retry:
	// base * 2^(attempt-1). It is the default.
	BackoffExponential Backoff = iota
	// BackoffLinear grows the delay by one base step per retry:
	// base * attempt.
	BackoffLinear
)

func (b Backoff) String() string {
	switch b {
	case BackoffLinear:
		return "linear"
	default:
		return "exponential"
	}
}

// Defaults applied by Normalize wherever a Policy field is unset.
const (
	DefaultBaseDelay = 1 * time.Second
	DefaultMaxDelay  = 30 * time.Second
)

// DefaultMethods is the default set of retryable HTTP methods. POST
// and PATCH are excluded because they are not idempotent.
var DefaultMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPut,
	http.MethodDelete,
}

// DefaultStatuses is the default set of retryable HTTP status codes:
// request timeout, too many requests, and the transient 5xx family.
var DefaultStatuses = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// OnRetry is an observability callback invoked once per granted retry,
// before the wait for that retry begins. The attempt number starts at
// one for the first retry.
type OnRetry func(attempt int, err *httperr.Error, d *request.Descriptor)

// A Policy controls if and how a failed request attempt is retried.
//
// Policy is a value object: normalize it once per call and treat it as
// immutable afterwards. All methods are nil-safe, and a nil or zero
// Policy never retries since its Limit is zero.
type Policy struct {
	// Limit is the maximum number of retries after the initial
	// attempt. Zero disables retrying entirely.
	Limit int

	// BaseDelay is the first retry delay and the backoff step size.
	// Zero means DefaultBaseDelay.
	BaseDelay time.Duration

	// MaxDelay caps every computed delay, including a server-provided
	// Retry-After. Zero means DefaultMaxDelay.
	MaxDelay time.Duration

	// Backoff selects the delay growth formula.
	Backoff Backoff

	// Jitter replaces each computed delay with a uniformly random
	// duration between zero and that delay, the "full jitter" spread.
	// Off by default so that delays stay deterministic.
	Jitter bool

	// Methods is the set of HTTP methods eligible for retry. Nil
	// means DefaultMethods; an explicit empty set retries no method.
	Methods []string

	// Statuses is the set of response status codes eligible for
	// retry. Nil means DefaultStatuses; an explicit empty set retries
	// no status. Failures without a status, such as network failures,
	// are not subject to this set.
	Statuses []int

	// Condition, when set, must also approve every retry.
	Condition Condition

	// OnRetry, when set, is invoked once per granted retry.
	OnRetry OnRetry

	// IgnoreRetryAfter disables honoring the Retry-After response
	// header when computing delays.
	IgnoreRetryAfter bool
}

// Limit returns a Policy that retries up to n times with every other
// setting at its default. It is the shorthand for the common case
// where only an attempt budget matters.
func Limit(n int) *Policy {
	return &Policy{Limit: n}
}

// Normalize returns a copy of p with every unset field replaced by its
// default, and a nil p replaced by the zero Policy. The result is what
// the other methods effectively operate on.
func (p *Policy) Normalize() *Policy {
	var n Policy
	if p != nil {
		n = *p
	}
	if n.Limit < 0 {
		n.Limit = 0
	}
	if n.BaseDelay <= 0 {
		n.BaseDelay = DefaultBaseDelay
	}
	if n.MaxDelay <= 0 {
		n.MaxDelay = DefaultMaxDelay
	}
	if n.Methods == nil {
		n.Methods = DefaultMethods
	}
	if n.Statuses == nil {
		n.Statuses = DefaultStatuses
	}
	return &n
}

// Decide reports whether another attempt should be made after a
// failure. retries is the number of retries already performed for the
// call, so it is zero when the initial attempt fails.
//
// The checks short-circuit in a fixed order: the retry budget, the
// never-retried CANCELED kind, the retryable method set, the retryable
// status set (skipped when the failure carries no status), and finally
// the custom Condition.
func (p *Policy) Decide(retries int, err *httperr.Error) bool {
	if err == nil {
		return false
	}
	if retries >= p.limit() {
		return false
	}
	if err.Kind == httperr.KindCanceled {
		return false
	}
	if !containsString(p.methods(), failedMethod(err)) {
		return false
	}
	if err.Status != 0 && !containsInt(p.statuses(), err.Status) {
		return false
	}
	if p != nil && p.Condition != nil && !p.Condition(err) {
		return false
	}
	return true
}

// Delay computes the backoff delay before the given retry. Attempt
// numbering starts at one for the first retry. The result never
// exceeds the delay cap, and with Jitter enabled it is drawn uniformly
// from [0, delay).
func (p *Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := p.baseDelay()
	max := p.maxDelay()
	var ceil int64
	if p != nil && p.Backoff == BackoffLinear {
		ceil = int64(base) * int64(attempt)
	} else {
		exp := int64(1) << uint(attempt-1)
		if exp < 1 {
			exp = 0
		}
		ceil = int64(base) * exp
	}
	if ceil < int64(base) || ceil > int64(max) {
		ceil = int64(max)
	}
	d := time.Duration(ceil)
	if p != nil && p.Jitter && d > 0 {
		d = jitter(d)
	}
	return d
}

// NextDelay computes the wait before the given retry, honoring a
// Retry-After header on the rejected response when it asks for a
// longer wait than the backoff formula. The result never exceeds the
// delay cap.
func (p *Policy) NextDelay(attempt int, err *httperr.Error) time.Duration {
	d := p.Delay(attempt)
	if p != nil && p.IgnoreRetryAfter {
		return d
	}
	ra, ok := retryAfterOf(err, time.Now())
	if ok && ra > d {
		if max := p.maxDelay(); ra > max {
			ra = max
		}
		d = ra
	}
	return d
}

// ParseRetryAfter parses a Retry-After header value, either a
// non-negative decimal number of seconds or an HTTP date. A date is
// converted to the duration remaining from now; a date already in the
// past yields zero. The second return value reports whether the value
// was understood.
func ParseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

func retryAfterOf(err *httperr.Error, now time.Time) (time.Duration, bool) {
	if err == nil || err.Envelope == nil || err.Envelope.Header == nil {
		return 0, false
	}
	return ParseRetryAfter(err.Envelope.Header.Get("Retry-After"), now)
}

func (p *Policy) limit() int {
	if p == nil || p.Limit < 0 {
		return 0
	}
	return p.Limit
}

func (p *Policy) baseDelay() time.Duration {
	if p == nil || p.BaseDelay <= 0 {
		return DefaultBaseDelay
	}
	return p.BaseDelay
}

func (p *Policy) maxDelay() time.Duration {
	if p == nil || p.MaxDelay <= 0 {
		return DefaultMaxDelay
	}
	return p.MaxDelay
}

func (p *Policy) methods() []string {
	if p == nil || p.Methods == nil {
		return DefaultMethods
	}
	return p.Methods
}

func (p *Policy) statuses() []int {
	if p == nil || p.Statuses == nil {
		return DefaultStatuses
	}
	return p.Statuses
}

func failedMethod(err *httperr.Error) string {
	if err.Descriptor == nil {
		return ""
	}
	m := err.Descriptor.Method
	if m == "" {
		m = http.MethodGet
	}
	return strings.ToUpper(m)
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(set []int, n int) bool {
	for _, v := range set {
		if v == n {
			return true
		}
	}
	return false
}

var (
	jitterLock sync.Mutex
	jitterRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// jitter draws a uniformly random duration from [0, d). The shared
// source is locked because rand.Rand is not safe for concurrent use.
func jitter(d time.Duration) time.Duration {
	jitterLock.Lock()
	defer jitterLock.Unlock()
	return time.Duration(jitterRand.Int63n(int64(d)))
}
