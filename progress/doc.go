// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package progress reports the advancement of HTTP body transfers.
// Request and response bodies are wrapped in a counting reader which
// invokes a caller-supplied callback after every chunk read, plus one
// final time when the transfer ends.
package progress
