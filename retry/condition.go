// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/ersinkoc/RequestKit/httperr"
)

// A Condition is a custom retry predicate. It is consulted last in
// the retry decision, after the built-in budget, kind, method and
// status checks have all passed.
//
// Every Condition must be safe for concurrent use by multiple
// goroutines. Simple conditions compose into more complex decision
// trees using And and Or.
type Condition func(err *httperr.Error) bool

// And composes two conditions into one that approves a retry only if
// both approve it.
//
// Short-circuit logic is used, so g is not evaluated if f returns
// false.
func (f Condition) And(g Condition) Condition {
	return func(err *httperr.Error) bool {
		return f(err) && g(err)
	}
}

// Or composes two conditions into one that approves a retry if either
// approves it.
//
// Short-circuit logic is used, so g is not evaluated if f returns
// true.
func (f Condition) Or(g Condition) Condition {
	return func(err *httperr.Error) bool {
		return f(err) || g(err)
	}
}

// KindIs constructs a condition that approves a retry when the failure
// kind is one of the given kinds.
func KindIs(kinds ...httperr.Kind) Condition {
	ks := make([]httperr.Kind, len(kinds))
	copy(ks, kinds)
	return func(err *httperr.Error) bool {
		for _, k := range ks {
			if err.Kind == k {
				return true
			}
		}
		return false
	}
}

// StatusIs constructs a condition that approves a retry when the
// failure carries one of the given status codes.
func StatusIs(ss ...int) Condition {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(err *httperr.Error) bool {
		for _, s := range ss2 {
			if err.Status == s {
				return true
			}
		}
		return false
	}
}
