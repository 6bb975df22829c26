// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/http"
	"net/textproto"

	"golang.org/x/net/http/httpguts"
)

const badHeaderTypeMsg = "requestkit/request: invalid type (for headers use " +
	"nil, http.Header, map[string]string, map[string][]string or [][2]string)"

// HeaderFrom converts a header source of any supported shape into a
// canonical http.Header.
//
// The source may be nil (empty header), an http.Header, a
// map[string]string, a map[string][]string, or an ordered [][2]string
// list of key/value pairs. Keys are canonicalized via
// textproto.CanonicalMIMEHeaderKey. With the ordered pair form,
// repeated keys accumulate values; with the map forms, every key
// appears once and replaces prior values.
//
// Field names and values are validated per RFC 7230. An invalid name
// or value makes the whole conversion fail; an empty value is valid,
// because merging treats it as a deletion marker.
//
// The returned header never aliases the source.
func HeaderFrom(src any) (http.Header, error) {
	out := make(http.Header)
	switch x := src.(type) {
	case nil:
		return out, nil
	case http.Header:
		for k, vs := range x {
			if err := checkField(k, vs); err != nil {
				return nil, err
			}
			ck := textproto.CanonicalMIMEHeaderKey(k)
			out[ck] = append(out[ck], vs...)
		}
		return out, nil
	case map[string][]string:
		return HeaderFrom(http.Header(x))
	case map[string]string:
		for k, v := range x {
			if err := checkField(k, []string{v}); err != nil {
				return nil, err
			}
			out.Set(k, v)
		}
		return out, nil
	case [][2]string:
		for _, kv := range x {
			if err := checkField(kv[0], []string{kv[1]}); err != nil {
				return nil, err
			}
			out.Add(kv[0], kv[1])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s, got %T", badHeaderTypeMsg, src)
	}
}

// MergeHeaders folds the given header containers into one canonical
// http.Header. Later sources overwrite earlier ones key-for-key. A
// source entry whose value is a single empty string deletes the key
// from the result instead of setting it, so callers can unset an
// inherited default per call. Nil sources are skipped.
//
// The result shares no storage with any source.
func MergeHeaders(sources ...http.Header) http.Header {
	out := make(http.Header)
	for _, src := range sources {
		for k, vs := range src {
			ck := textproto.CanonicalMIMEHeaderKey(k)
			if len(vs) == 0 || len(vs) == 1 && vs[0] == "" {
				delete(out, ck)
				continue
			}
			out[ck] = append([]string(nil), vs...)
		}
	}
	return out
}

func checkField(name string, values []string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("requestkit/request: invalid header field name %q", name)
	}
	for _, v := range values {
		if !httpguts.ValidHeaderFieldValue(v) {
			return fmt.Errorf("requestkit/request: invalid value for header field %q", name)
		}
	}
	return nil
}
