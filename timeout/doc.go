// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout decides how long each individual request attempt of
// a call may run, retries included. The Policy interface abstracts the
// decision; Fixed and Adaptive construct the common cases, and
// Infinite opts an attempt out of its own deadline.
package timeout
