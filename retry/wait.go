// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"time"
)

// Wait blocks until d has elapsed or ctx is done, whichever comes
// first. It returns nil when the full delay elapsed and the context's
// error when the context fired, so the caller can abandon the retry
// loop without starting another attempt.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
