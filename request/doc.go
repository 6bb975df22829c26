// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Descriptor (describes one
logical HTTP call) and Envelope (describes a completed exchange),
together with the URL, header and body machinery that prepares a
Descriptor for the wire.

The first core type is Descriptor. A Descriptor describes how to make
a logical HTTP call, potentially involving repeated request attempts
if a retry is necessary after a failure. For those familiar with the
Go standard HTTP library, net/http, a Descriptor looks like an
http.Request enriched with the call-level concerns net/http leaves to
the application: query parameter serialization, a tagged-union body
that is buffered so it can be re-sent on retry, a response type
selector, a status validator, and transform hooks. Fields are named
consistently with http.Request wherever possible.

A Descriptor carries a context that governs the entire call:

	d, err := request.NewDescriptorWithContext(ctx, "POST", "https://example.com/upload")
	...

If a deadline is set on the descriptor context, it is separate from
any deadline set on individual request attempts, which are dictated by
the client's per-attempt timeout policy. An individual attempt may
therefore fail due either to an attempt timeout or to a call timeout.
The former is potentially retryable, the latter is not.

The second core type is Envelope, which represents the response to one
completed transport exchange. Envelope is the output type of the
client's call methods and the input type of response interceptors. You
will typically not allocate Envelope values yourself but work with the
ones handed out by the client.

The remaining exports are the composition helpers the client is built
from, usable on their own: Combine and AppendQuery for URL assembly,
SerializeParams for query strings, HeaderFrom and MergeHeaders for
header normalization, and Body with its JSON, Form, Multipart and Raw
constructors for payload encoding.
*/
package request
