// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeDecode(t *testing.T) {
	testCases := []struct {
		name string
		body string
		typ  Type
		want any
	}{
		{
			name: "json object",
			body: `{"name":"gopher","n":2}`,
			typ:  TypeJSON,
			want: map[string]any{"name": "gopher", "n": float64(2)},
		},
		{
			name: "json array",
			body: `[1,2]`,
			typ:  TypeJSON,
			want: []any{float64(1), float64(2)},
		},
		{
			name: "empty body decodes to nil",
			body: "",
			typ:  TypeJSON,
			want: nil,
		},
		{
			name: "invalid json falls back to text",
			body: "<html>not json</html>",
			typ:  TypeJSON,
			want: "<html>not json</html>",
		},
		{
			name: "default resolves to json",
			body: `{"a":1}`,
			typ:  TypeDefault,
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "text",
			body: "plain",
			typ:  TypeText,
			want: "plain",
		},
		{
			name: "bytes",
			body: "\x01\x02",
			typ:  TypeBytes,
			want: []byte{0x1, 0x2},
		},
		{
			name: "raw leaves data alone",
			body: `{"a":1}`,
			typ:  TypeRaw,
			want: nil,
		},
		{
			name: "stream leaves data alone",
			body: "",
			typ:  TypeStream,
			want: nil,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			e := &Envelope{Body: []byte(testCase.body)}
			if testCase.body == "" {
				e.Body = nil
			}
			e.Decode(testCase.typ)
			assert.Equal(t, testCase.want, e.Data)
		})
	}
}

func TestEnvelopeContentType(t *testing.T) {
	e := &Envelope{Header: http.Header{"Content-Type": {"application/json"}}}
	assert.Equal(t, "application/json", e.ContentType())
}

func TestEnvelopeContentLength(t *testing.T) {
	h := func(v string) http.Header {
		out := http.Header{}
		if v != "" {
			out.Set("Content-Length", v)
		}
		return out
	}
	assert.Equal(t, int64(42), (&Envelope{Header: h("42")}).ContentLength())
	assert.Equal(t, int64(-1), (&Envelope{Header: h("")}).ContentLength())
	assert.Equal(t, int64(-1), (&Envelope{Header: h("forty-two")}).ContentLength())
	assert.Equal(t, int64(-1), (&Envelope{Header: h("-7")}).ContentLength())
}

func TestEnvelopeText(t *testing.T) {
	e := &Envelope{Body: []byte("hello")}
	assert.Equal(t, "hello", e.Text())
}

func TestEnvelopeJSON(t *testing.T) {
	e := &Envelope{Body: []byte(`{"id":"a1","count":3}`)}
	var v struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	}
	require.NoError(t, e.JSON(&v))
	assert.Equal(t, "a1", v.ID)
	assert.Equal(t, 3, v.Count)
}

func TestEnvelopeGet(t *testing.T) {
	e := &Envelope{Body: []byte(`{"items":[{"id":"a1"},{"id":"b2"}]}`)}
	assert.Equal(t, "a1", e.Get("items.0.id").String())
	assert.Equal(t, int64(2), e.Get("items.#").Int())
	assert.False(t, e.Get("missing").Exists())

	plain := &Envelope{Body: []byte("not json")}
	assert.False(t, plain.Get("anything").Exists())
}
