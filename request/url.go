// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ersinkoc/RequestKit/internal/json"
)

// An ArrayFormat selects how array-valued query parameters are written
// into the query string.
type ArrayFormat int

const (
	// ArrayRepeat repeats the key for every element: k=v1&k=v2. It is
	// the default format.
	ArrayRepeat ArrayFormat = iota
	// ArrayBrackets appends empty brackets to the key: k[]=v1&k[]=v2.
	ArrayBrackets
	// ArrayIndices appends the element index to the key: k[0]=v1&k[1]=v2.
	ArrayIndices
	// ArrayComma joins the elements with commas under a single key:
	// k=v1,v2. The joined text is percent-encoded as a whole, so the
	// separating commas themselves are encoded.
	ArrayComma
)

// Params contains the query parameters of a request descriptor. Keys
// are serialized in lexicographic order so that a given Params value
// always produces the same query string.
//
// Values may be strings, numbers, booleans, time.Time (serialized as
// RFC 3339 text), slices or arrays of any of these, or maps and
// structs (serialized as their JSON text). Nil values are dropped.
type Params map[string]any

// SerializeOptions controls how SerializeParams renders a Params map.
// The zero value requests the default format with percent-encoding
// enabled.
type SerializeOptions struct {
	// Format selects the array serialization format.
	Format ArrayFormat

	// DisableEncoding suppresses percent-encoding of keys and values.
	// The caller becomes responsible for producing a valid query
	// string.
	DisableEncoding bool
}

// Serializer converts a Params map to a raw query string, without a
// leading "?". A Serializer installed on a client or descriptor
// replaces SerializeParams entirely.
type Serializer func(Params) string

// absoluteURL matches URLs that carry their own scheme prefix,
// including protocol-relative references such as //host/path.
var absoluteURL = regexp.MustCompile(`^(?i:[a-z][a-z0-9+.\-]*:)?//`)

// IsAbsoluteURL reports whether ref carries its own scheme prefix. A
// protocol-relative reference beginning with "//" counts as absolute.
func IsAbsoluteURL(ref string) bool {
	return absoluteURL.MatchString(ref)
}

// Combine joins a base URL and a reference into one URL.
//
// If ref is absolute, it is returned unchanged and base is ignored. An
// empty base returns ref, and an empty ref returns base. Otherwise the
// two are joined with exactly one slash regardless of how many
// trailing slashes base has or leading slashes ref has.
func Combine(base, ref string) string {
	if base == "" {
		return ref
	}
	if ref == "" {
		return base
	}
	if IsAbsoluteURL(ref) {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

// SerializeParams renders a Params map as a raw query string in
// lexicographic key order. Nil-valued entries are dropped. Array
// values are rendered per opts.Format, time values as RFC 3339 text,
// and map or struct values as their JSON text.
func SerializeParams(p Params, opts SerializeOptions) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	esc := func(s string) string {
		if opts.DisableEncoding {
			return s
		}
		return url.QueryEscape(s)
	}
	pair := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	for _, k := range keys {
		v := p[k]
		if v == nil {
			continue
		}
		ek := esc(k)
		if elems, ok := arrayValues(v); ok {
			switch opts.Format {
			case ArrayBrackets:
				for _, e := range elems {
					pair(ek+"[]", esc(e))
				}
			case ArrayIndices:
				for i, e := range elems {
					pair(fmt.Sprintf("%s[%d]", ek, i), esc(e))
				}
			case ArrayComma:
				pair(ek, esc(strings.Join(elems, ",")))
			default:
				for _, e := range elems {
					pair(ek, esc(e))
				}
			}
			continue
		}
		pair(ek, esc(paramValue(v)))
	}
	return b.String()
}

// AppendQuery serializes p and attaches it to rawURL. An existing
// query string is kept and extended with "&". A URL fragment is
// detached first and re-appended after the query so it stays the last
// component. If p serializes to nothing, rawURL is returned unchanged.
func AppendQuery(rawURL string, p Params, opts SerializeOptions) string {
	return AppendRawQuery(rawURL, SerializeParams(p, opts))
}

// AppendRawQuery attaches an already serialized query string to
// rawURL, following the same rules as AppendQuery.
func AppendRawQuery(rawURL, query string) string {
	if query == "" {
		return rawURL
	}
	frag := ""
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL, frag = rawURL[:i], rawURL[i:]
	}
	sep := "?"
	if strings.IndexByte(rawURL, '?') >= 0 {
		sep = "&"
	}
	return rawURL + sep + query + frag
}

// arrayValues flattens a slice or array value into its rendered
// elements. []byte does not count as an array; it renders as text via
// paramValue. Nil elements are dropped.
func arrayValues(v any) ([]string, bool) {
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	elems := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		e := rv.Index(i).Interface()
		if e == nil {
			continue
		}
		elems = append(elems, paramValue(e))
	}
	return elems, true
}

// paramValue renders one scalar parameter value as text.
func paramValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		return x.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(x)
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.IsValid() && (rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct) {
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
