// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decides whether a failed request attempt is retried
// and how long to wait before retrying it.
//
// The central type is Policy, a value object. The zero Policy retries
// nothing. A bare attempt limit is the most common configuration and
// has a shorthand constructor:
//
//	policy := retry.Limit(3)
//
// Everything not set on a Policy falls back to a documented default:
// idempotent methods only, the transient status codes
// {408, 429, 500, 502, 503, 504}, exponential backoff from a one
// second base capped at thirty seconds. A custom Condition narrows
// the decision further and composes with And and Or:
//
//	policy := &retry.Policy{
//		Limit:     5,
//		Condition: retry.KindIs(httperr.KindTimeout).Or(retry.StatusIs(503)),
//	}
//
// A server-provided Retry-After header is honored when it asks for a
// longer wait than the backoff formula, capped at the policy maximum.
package retry
