// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"
)

// A Policy decides the deadline of each individual request attempt
// within a call. The attempt deadline is separate from the call
// deadline: an attempt timeout is potentially retryable, a call
// timeout is not.
//
// Implementations of Policy must be safe for concurrent use by
// multiple goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next request attempt.
	//
	// Parameter timeouts is the number of attempts that have already
	// timed out within the call, and lastTimedOut reports whether the
	// immediately preceding attempt was one of them. Both are zero
	// valued before the initial attempt.
	Timeout(timeouts int, lastTimedOut bool) time.Duration
}

// Infinite is a built-in timeout policy whose attempts never time
// out on their own. The call deadline, if any, still applies.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that gives every attempt the same
// deadline, the behavior most HTTP client software calls a request
// timeout.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that relaxes the next timeout
// value after an attempt has timed out.
//
// Adaptive suits services whose occasional slow responses are best
// cured by a quick timeout and retry, while still backing off when
// slowness turns out to be sustained: an aggressive usual timeout
// against a service in a slow phase would otherwise time out every
// attempt and burn the whole retry budget.
//
// Parameter usual is the timeout for the initial attempt and for any
// retry whose immediately preceding attempt completed without timing
// out.
//
// Parameter after supplies the timeouts used once attempts start
// timing out: after[0] follows the call's first timeout, after[1] the
// second, and so on, with the last element repeating once the call
// has timed out more often than after has elements.
//
// For example:
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// gives every attempt 200 milliseconds until one times out, gives the
// next attempt a full second, and falls back to 10 seconds for
// attempts after any further timeout.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(timeouts int, lastTimedOut bool) time.Duration {
	if !lastTimedOut {
		return p[0]
	}

	i := timeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
