// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package requestkit provides a convenience HTTP client with
configuration defaults, interceptor chains, retry support and response
decoding within a simple and familiar interface.

Create a Client to begin making requests.

	client := &requestkit.Client{}
	env, err := client.Get(ctx, "https://api.example.com/items")
	...
	env, err := client.Post(ctx, "https://api.example.com/items",
		request.JSON(item))
	...
	env, err := client.PostForm(ctx, "https://api.example.com/form",
		url.Values{"key": {"Value"}, "id": {"123"}})

A successful call returns a request.Envelope carrying the buffered
response body and, in Envelope.Data, the body decoded per the response
type (JSON by default). A failed call returns a single *httperr.Error
whose Kind classifies the failure.

Configure defaults on the Client, either directly or through the
functional options accepted by New; per-call Options override them:

	client := requestkit.New(
		requestkit.WithBaseURL("https://api.example.com"),
		requestkit.WithHeader("Authorization", "Bearer "+token),
		requestkit.WithTimeout(10*time.Second),
	)
	env, err := client.Do(ctx, &requestkit.Options{
		Method: "GET",
		URL:    "/search",
		Query:  request.Params{"q": "kits", "tags": []string{"new", "go"}},
	})

For control over how the client sends HTTP requests and receives HTTP
responses, use a custom HTTPDoer. For example, use a Go standard HTTP
client:

	doer := &http.Client{
		..., // See package "net/http" for detailed documentation
	}
	client := &requestkit.Client{
		HTTPDoer: doer,
	}

For control over the client's retry decisions and timing, set a retry
policy using package retry:

	client := &requestkit.Client{
		Retry: &retry.Policy{
			Limit:     3,
			BaseDelay: 250 * time.Millisecond,
			MaxDelay:  5 * time.Second,
		},
	}

For control over the client's individual attempt timeouts, set a
timeout policy using package timeout:

	client := &requestkit.Client{
		AttemptTimeout: timeout.Fixed(10 * time.Second),
	}

To rewrite requests before they are sent, rewrite responses after they
are received, or recover failures, install interceptors. Request
handlers run in registration order before the first attempt; response
handlers run in reverse registration order after every attempt:

	client.Interceptors.Request.Use(func(ctx context.Context, d *request.Descriptor) (*request.Descriptor, error) {
		d.Header.Set("X-Trace-Id", d.ID)
		return d, nil
	}, nil)

Package requestkit provides basic interfaces for each method of the
client (Doer, Getter, Header, Poster, FormPoster, and IdleCloser); a
combined interface that composes all the basic methods (Executor); and
utility functions for working with a Doer (Inflate, Get, Head, Post,
and PostForm). Package reactive builds stateful UI-facing bindings on
top of the Doer contract, and package metrics exposes the client's
hooks as Prometheus collectors.
*/
package requestkit
