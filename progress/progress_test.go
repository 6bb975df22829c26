// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package progress

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderKnownTotal(t *testing.T) {
	var events []Event
	pr := NewReader(strings.NewReader("abcdefgh"), 8, func(e Event) {
		events = append(events, e)
	})

	buf := make([]byte, 3)
	for {
		_, err := pr.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, []Event{
		{Loaded: 3, Total: 8, Percent: 38},
		{Loaded: 6, Total: 8, Percent: 75},
		{Loaded: 8, Total: 8, Percent: 100},
		{Loaded: 8, Total: 8, Percent: 100},
	}, events)
}

func TestReaderUnknownTotal(t *testing.T) {
	var events []Event
	pr := NewReader(strings.NewReader("hello"), 0, func(e Event) {
		events = append(events, e)
	})

	_, err := io.Copy(io.Discard, pr)

	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Loaded: 5, Total: 0, Percent: 0},
		{Loaded: 5, Total: 5, Percent: 100},
	}, events)
}

func TestReaderEmpty(t *testing.T) {
	var events []Event
	pr := NewReader(strings.NewReader(""), 0, func(e Event) {
		events = append(events, e)
	})

	_, err := io.Copy(io.Discard, pr)

	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Loaded: 0, Total: 0, Percent: 100},
	}, events)
}

func TestReaderFinalOnce(t *testing.T) {
	// A reader that returns data and io.EOF from the same call must
	// still produce exactly one final event.
	var events []Event
	pr := NewReader(iotest.DataErrReader(strings.NewReader("abcdefgh")), 8, func(e Event) {
		events = append(events, e)
	})

	buf := make([]byte, 64)
	n, err := pr.Read(buf)
	require.Equal(t, 8, n)
	require.Equal(t, io.EOF, err)
	_, err = pr.Read(buf)
	require.Equal(t, io.EOF, err)

	assert.Equal(t, []Event{
		{Loaded: 8, Total: 8, Percent: 100},
		{Loaded: 8, Total: 8, Percent: 100},
	}, events)
}

func TestReaderClose(t *testing.T) {
	t.Run("Closer", func(t *testing.T) {
		c := &closeRecorder{Reader: strings.NewReader("x")}
		pr := NewReader(c, 1, func(Event) {})

		err := pr.Close()

		require.NoError(t, err)
		assert.True(t, c.closed)
	})
	t.Run("PlainReader", func(t *testing.T) {
		pr := NewReader(strings.NewReader("x"), 1, func(Event) {})

		err := pr.Close()

		require.NoError(t, err)
	})
}

func TestComplete(t *testing.T) {
	t.Run("Size", func(t *testing.T) {
		var events []Event
		Complete(42, func(e Event) { events = append(events, e) })
		assert.Equal(t, []Event{{Loaded: 42, Total: 42, Percent: 100}}, events)
	})
	t.Run("NegativeSize", func(t *testing.T) {
		var events []Event
		Complete(-1, func(e Event) { events = append(events, e) })
		assert.Equal(t, []Event{{Loaded: 0, Total: 0, Percent: 100}}, events)
	})
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestPercent(t *testing.T) {
	testCases := []struct {
		loaded, total int64
		expected      int
	}{
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13},
		{5, 5, 100},
		{7, 5, 100},
	}
	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("%d of %d", testCase.loaded, testCase.total), func(t *testing.T) {
			assert.Equal(t, testCase.expected, percent(testCase.loaded, testCase.total))
		})
	}
}
