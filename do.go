// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestkit

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/progress"
	"github.com/ersinkoc/RequestKit/request"
	"github.com/ersinkoc/RequestKit/retry"
)

// Do executes one HTTP call described by opts and returns its decoded
// response, following the defaults, interceptors and policies set on
// the client.
//
// The call proceeds in a fixed order. The client's defaults and opts
// are merged into a request.Descriptor. The request interceptors run
// forward, then the request transforms, then the body is encoded once
// and buffered. Attempts are then made until one succeeds or the retry
// policy gives up: each attempt gets its own timeout from the
// per-attempt policy and a fresh reader over the buffered body, so a
// retried request re-sends identical bytes. A received response is
// validated against the status validator; successes flow through the
// response interceptors in reverse order, while failed attempts are
// offered to the rejected side of the response chain, which may
// recover them into successes. What the retry policy declines to retry
// is returned as a single *httperr.Error.
//
// On success the returned Envelope carries the buffered body, with
// Envelope.Data decoded per the response type. Responses of
// request.TypeStream are not buffered; the caller owns Envelope.Stream
// and must close it. On failure Do returns a nil Envelope, and a
// response that was received before the failure remains reachable
// through the error's Envelope field.
//
// The context bounds the whole call including retry waits. Canceling
// it fails the call with a KindCanceled error, which no retry policy
// retries. Do panics if ctx is nil.
func (c *Client) Do(ctx context.Context, opts *Options) (*request.Envelope, error) {
	if ctx == nil {
		panic(nilCtxPanic)
	}
	if opts == nil {
		opts = &Options{}
	}

	s, err := c.prepare(ctx, opts)
	if err != nil {
		return c.fail(httperr.Wrap(err, nil))
	}

	if c.BeforeRequest != nil {
		c.BeforeRequest(s.d)
	}

	d, herr := runRequestInterceptors(ctx, c.Interceptors.Request.snapshot(), s.d)
	if herr != nil {
		return c.fail(herr)
	}
	s.d = d

	for _, t := range s.d.RequestTransforms {
		if err := t(s.d); err != nil {
			return c.fail(httperr.Wrap(err, s.d))
		}
	}

	callCtx := ctx
	if s.d.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, s.d.Timeout)
		defer cancel()
	}

	if err := s.encode(); err != nil {
		return c.fail(httperr.Wrap(err, s.d))
	}

	for {
		if s.retries > 0 && c.BeforeRequest != nil {
			c.BeforeRequest(s.d)
		}
		if c.Limiter != nil {
			if err := c.Limiter.Wait(callCtx); err != nil {
				return c.fail(httperr.Wrap(err, s.d))
			}
		}

		env, herr := c.send(callCtx, s)

		if herr == nil {
			if c.AfterResponse != nil {
				c.AfterResponse(env)
			}
			if env.OK {
				renv, rerr := runResponseInterceptors(callCtx, c.Interceptors.Response.snapshot(), env)
				if rerr == nil {
					return c.finish(renv, s.d)
				}
				herr = rerr
			} else {
				renv, rerr := runErrorInterceptors(callCtx, c.Interceptors.Response.snapshot(), httperr.FromEnvelope(env))
				if renv != nil {
					return c.finish(renv, s.d)
				}
				herr = rerr
			}
		} else {
			renv, rerr := runErrorInterceptors(callCtx, c.Interceptors.Response.snapshot(), herr)
			if renv != nil {
				return c.finish(renv, s.d)
			}
			herr = rerr
		}

		if herr.Timeout() {
			s.attemptTimeouts++
			s.lastTimedOut = true
		} else {
			s.lastTimedOut = false
		}

		if !s.retry.Decide(s.retries, herr) {
			return c.fail(herr)
		}

		n := s.retries + 1
		delay := s.retry.NextDelay(n, herr)
		if s.retry.OnRetry != nil {
			s.retry.OnRetry(n, herr, s.d)
		}
		c.Logger.Info().
			Str("id", s.d.ID).
			Str("method", s.d.Method).
			Str("url", s.d.URL).
			Int("retry", n).
			Dur("delay", delay).
			Str("kind", string(herr.Kind)).
			Msg("retrying request")
		if err := retry.Wait(callCtx, delay); err != nil {
			// The wait was interrupted; propagate the failure that
			// triggered it, not the interruption.
			return c.fail(herr)
		}
		if env != nil && env.Stream != nil {
			_ = env.Stream.Close()
		}
		s.retries++
	}
}

// send makes one request attempt and returns either an Envelope with
// its validation verdict set, or the attempt's failure.
func (c *Client) send(ctx context.Context, s *callState) (*request.Envelope, *httperr.Error) {
	d := s.d

	actx := ctx
	cancel := context.CancelFunc(func() {})
	if s.attemptTimeout != nil {
		if t := s.attemptTimeout.Timeout(s.attemptTimeouts, s.lastTimedOut); t > 0 {
			actx, cancel = context.WithTimeout(ctx, t)
		}
	}

	req, err := d.ToRequest(actx, s.body)
	if err != nil {
		cancel()
		return nil, httperr.Wrap(err, d)
	}
	if s.upload != nil {
		if len(s.body) > 0 {
			req.Body = progress.NewReader(bytes.NewReader(s.body), int64(len(s.body)), s.upload)
		} else {
			progress.Complete(0, s.upload)
		}
	}

	c.Logger.Debug().
		Str("id", d.ID).
		Str("method", d.Method).
		Str("url", req.URL.String()).
		Int("attempt", s.retries).
		Msg("sending request")

	start := time.Now()
	resp, err := c.doer().Do(req)
	if err != nil {
		cancel()
		return nil, httperr.Wrap(err, d)
	}

	env := &request.Envelope{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		Descriptor: d,
		Attempt:    s.retries,
	}
	validate := d.ValidateStatus
	if validate == nil {
		validate = defaultValidateStatus
	}
	env.OK = validate(env.Status)

	if d.ResponseType == request.TypeStream {
		rc := io.ReadCloser(resp.Body)
		if s.download != nil {
			rc = progress.NewReader(rc, knownLength(resp), s.download)
		}
		env.Stream = streamBody{ReadCloser: rc, cancel: cancel}
		env.Duration = time.Since(start)
		c.logResponse(env)
		return env, nil
	}

	var r io.Reader = resp.Body
	if s.download != nil {
		r = progress.NewReader(resp.Body, knownLength(resp), s.download)
	}
	data, rerr := io.ReadAll(r)
	_ = resp.Body.Close()
	cancel()
	env.Duration = time.Since(start)
	if rerr != nil {
		herr := httperr.Wrap(rerr, d)
		herr.Status = env.Status
		herr.Envelope = env
		return nil, herr
	}
	env.Body = data
	c.logResponse(env)
	return env, nil
}

// finish turns env into the call's successful result: it decodes the
// body per the response type and applies the response transforms.
func (c *Client) finish(env *request.Envelope, d *request.Descriptor) (*request.Envelope, error) {
	if env.Descriptor == nil {
		env.Descriptor = d
	}
	env.OK = true
	env.Decode(d.ResponseType)
	data := env.Data
	for _, t := range d.ResponseTransforms {
		v, err := t(data, env)
		if err != nil {
			return c.fail(wrapResponseError(err, env))
		}
		data = v
	}
	env.Data = data
	return env, nil
}

// fail logs a terminal failure, fires the OnError hook and hands the
// error to the caller.
func (c *Client) fail(herr *httperr.Error) (*request.Envelope, error) {
	evt := c.Logger.Error().
		Str("kind", string(herr.Kind)).
		Str("error", herr.Message)
	if d := herr.Descriptor; d != nil {
		evt = evt.Str("id", d.ID).Str("method", d.Method).Str("url", d.URL)
	}
	if herr.Status != 0 {
		evt = evt.Int("status", herr.Status)
	}
	evt.Msg("request failed")

	if c.OnError != nil {
		c.OnError(herr)
	}
	return nil, herr
}

func (c *Client) logResponse(env *request.Envelope) {
	c.Logger.Debug().
		Str("id", env.Descriptor.ID).
		Int("status", env.Status).
		Int("attempt", env.Attempt).
		Dur("elapsed", env.Duration).
		Msg("received response")
}

func defaultValidateStatus(status int) bool {
	return status >= 200 && status < 300
}

// statusText extracts the reason phrase from the response status line.
func statusText(resp *http.Response) string {
	s := resp.Status
	if prefix := strconv.Itoa(resp.StatusCode) + " "; strings.HasPrefix(s, prefix) {
		return strings.TrimPrefix(s, prefix)
	}
	if s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

// knownLength returns the advertised response body length, or zero
// when the transport does not know it.
func knownLength(resp *http.Response) int64 {
	if resp.ContentLength > 0 {
		return resp.ContentLength
	}
	return 0
}

// streamBody hands a TypeStream response body to the caller while
// keeping the attempt's timeout context alive until the body is
// closed.
type streamBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b streamBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
