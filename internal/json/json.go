// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package json routes all JSON encoding and decoding through sonic
// configured for standard library compatibility.
package json

import (
	encjson "encoding/json"
	"io"

	"github.com/bytedance/sonic"
)

// RawMessage is a raw encoded JSON value. It is accepted anywhere a
// request body may be supplied pre-encoded.
type RawMessage = encjson.RawMessage

var std = sonic.ConfigStd

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return std.Marshal(v)
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return std.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses JSON-encoded data and stores the result in the value
// pointed to by v.
func Unmarshal(data []byte, v any) error {
	return std.Unmarshal(data, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return std.Valid(data)
}

// NewEncoder returns a streaming encoder writing to w.
func NewEncoder(w io.Writer) sonic.Encoder {
	return std.NewEncoder(w)
}

// NewDecoder returns a streaming decoder reading from r.
func NewDecoder(r io.Reader) sonic.Decoder {
	return std.NewDecoder(r)
}
