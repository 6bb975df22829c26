// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInfinite(t *testing.T) {
	a := Infinite.Timeout(0, false)
	assert.Equal(t, time.Duration(math.MaxInt64), a)
	b := Infinite.Timeout(10, true)
	assert.Equal(t, time.Duration(math.MaxInt64), b)
}

func TestFixed(t *testing.T) {
	p := Fixed(90 * time.Second)
	a := p.Timeout(0, false)
	assert.Equal(t, 90*time.Second, a)
	b := p.Timeout(1, true)
	assert.Equal(t, 90*time.Second, b)
	c := p.Timeout(2, true)
	assert.Equal(t, 90*time.Second, c)
}

func TestAdaptive(t *testing.T) {
	p := Adaptive(20*time.Millisecond, 50*time.Millisecond, 400*time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, p.Timeout(0, false))
	assert.Equal(t, 50*time.Millisecond, p.Timeout(1, true))
	assert.Equal(t, 20*time.Millisecond, p.Timeout(1, false))
	assert.Equal(t, 20*time.Millisecond, p.Timeout(2, false))
	assert.Equal(t, 400*time.Millisecond, p.Timeout(2, true))
	assert.Equal(t, 400*time.Millisecond, p.Timeout(3, true))
	assert.Equal(t, 400*time.Millisecond, p.Timeout(4, true))
}

func TestAdaptiveNoAfter(t *testing.T) {
	p := Adaptive(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, p.Timeout(0, false))
	assert.Equal(t, 250*time.Millisecond, p.Timeout(1, true))
	assert.Equal(t, 250*time.Millisecond, p.Timeout(5, true))
}
