// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/ersinkoc/RequestKit/internal/json"
)

// Content types inferred by Body.Encode when the caller has not
// declared one.
const (
	ContentTypeJSON   = "application/json;charset=UTF-8"
	ContentTypeText   = "text/plain;charset=UTF-8"
	ContentTypeBinary = "application/octet-stream"
	ContentTypeForm   = "application/x-www-form-urlencoded"
)

type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyJSON
	bodyForm
	bodyMultipart
	bodyRaw
)

// A Body is the request payload of a Descriptor, expressed as a tagged
// union. The zero Body means no payload. Construct a non-empty Body
// with JSON, Form, Multipart or Raw.
type Body struct {
	kind  bodyKind
	value any
}

// JSON returns a Body that serializes v to compact JSON text with
// content type application/json;charset=UTF-8.
func JSON(v any) Body {
	return Body{kind: bodyJSON, value: v}
}

// Form returns a Body built from form fields. If the request headers
// declare application/x-www-form-urlencoded, the fields are encoded as
// a URL-encoded form; otherwise they are encoded as a multipart form.
func Form(v url.Values) Body {
	return Body{kind: bodyForm, value: v}
}

// Multipart returns a Body that encodes a prepared multipart form,
// including any file parts it carries.
func Multipart(f *MultipartForm) Body {
	return Body{kind: bodyMultipart, value: f}
}

// Raw returns a Body that passes v through with a type-appropriate
// content type.
//
// Strings and byte slices pass through unchanged. An io.Reader is read
// to the end and buffered, and closed if it is an io.ReadCloser.
// url.Values encode as a URL-encoded form and a *MultipartForm as a
// multipart form. A json.RawMessage passes through as pre-encoded
// JSON. Maps, structs, slices and arrays serialize to their JSON
// text. Anything else is coerced to its string representation with
// text/plain content type.
func Raw(v any) Body {
	return Body{kind: bodyRaw, value: v}
}

// IsZero reports whether b carries no payload.
func (b Body) IsZero() bool {
	return b.kind == bodyNone
}

// Encode renders the body as a byte slice plus the content type to
// send it under. The caller's headers influence form encoding (see
// Form) and header is therefore consulted but never modified. A nil
// data result means no body is to be sent. An empty contentType means
// no content type could be inferred and any declared header value
// stands.
//
// The result is fully buffered so that the same body can be sent again
// on every retry of the request.
func (b Body) Encode(header http.Header) (data []byte, contentType string, err error) {
	switch b.kind {
	case bodyNone:
		return nil, "", nil
	case bodyJSON:
		data, err = json.Marshal(b.value)
		if err != nil {
			return nil, "", fmt.Errorf("requestkit/request: encode JSON body: %w", err)
		}
		return data, ContentTypeJSON, nil
	case bodyForm:
		v, _ := b.value.(url.Values)
		if declaresForm(header) {
			return []byte(v.Encode()), "", nil
		}
		f := NewMultipartForm()
		for _, k := range sortedKeys(v) {
			for _, fv := range v[k] {
				f.AddField(k, fv)
			}
		}
		return f.encode()
	case bodyMultipart:
		f, _ := b.value.(*MultipartForm)
		if f == nil {
			return nil, "", nil
		}
		return f.encode()
	case bodyRaw:
		return rawBytes(b.value)
	}
	return nil, "", nil
}

// rawBytes converts a raw body value to its wire form. It subsumes
// the plain nil/string/[]byte/io.Reader conversion and adds the
// pre-built form and object cases.
func rawBytes(v any) (data []byte, contentType string, err error) {
	switch x := v.(type) {
	case nil:
		return nil, "", nil
	case json.RawMessage:
		return x, ContentTypeJSON, nil
	case string:
		return []byte(x), ContentTypeText, nil
	case []byte:
		return x, ContentTypeBinary, nil
	case url.Values:
		return []byte(x.Encode()), ContentTypeForm, nil
	case *MultipartForm:
		return x.encode()
	case io.ReadCloser:
		data, err = io.ReadAll(x)
		if err != nil {
			return nil, "", err
		}
		if err = x.Close(); err != nil {
			return nil, "", err
		}
		return data, ContentTypeBinary, nil
	case io.Reader:
		data, err = io.ReadAll(x)
		if err != nil {
			return nil, "", err
		}
		return data, ContentTypeBinary, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		data, err = json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("requestkit/request: encode raw body: %w", err)
		}
		return data, ContentTypeJSON, nil
	}
	return []byte(fmt.Sprint(v)), ContentTypeText, nil
}

// ShouldHaveBody reports whether requests with the given method carry
// a payload. It returns false only for GET and HEAD, compared
// case-insensitively. An empty method counts as GET.
func ShouldHaveBody(method string) bool {
	switch strings.ToUpper(method) {
	case "", http.MethodGet, http.MethodHead:
		return false
	}
	return true
}

// A MultipartForm accumulates field and file parts for a
// multipart/form-data request body.
type MultipartForm struct {
	parts []multipartPart
}

type multipartPart struct {
	field    string
	value    string
	filename string
	content  io.Reader
}

// NewMultipartForm returns an empty multipart form.
func NewMultipartForm() *MultipartForm {
	return &MultipartForm{}
}

// AddField appends a plain text field part.
func (f *MultipartForm) AddField(name, value string) *MultipartForm {
	f.parts = append(f.parts, multipartPart{field: name, value: value})
	return f
}

// AddFile appends a file part whose content is read from r when the
// form is encoded.
func (f *MultipartForm) AddFile(name, filename string, r io.Reader) *MultipartForm {
	f.parts = append(f.parts, multipartPart{field: name, filename: filename, content: r})
	return f
}

// encode buffers the whole form and returns it together with the
// multipart/form-data content type carrying the part boundary.
func (f *MultipartForm) encode() (data []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.content == nil {
			if err = w.WriteField(p.field, p.value); err != nil {
				return nil, "", err
			}
			continue
		}
		var fw io.Writer
		fw, err = w.CreateFormFile(p.field, p.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err = io.Copy(fw, p.content); err != nil {
			return nil, "", err
		}
	}
	if err = w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func declaresForm(header http.Header) bool {
	ct := header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(ct), ContentTypeForm)
}

func sortedKeys(v url.Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
