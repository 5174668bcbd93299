// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferPoolGetRecycleRoundTrip(t *testing.T) {
	p := newBufferPool[int](2)

	bm := p.get()
	require.NotNil(t, bm)
	bm.Value = 42
	bm.InitReferenceCounter(1)

	bm.ReleaseLocks(1) // drops to zero, recycles back into the ring

	again := p.get()
	require.Equal(t, 0, again.Value, "recycled buffer must have its value zeroed")
}

func TestBufferPoolGrowsWhenGenerationExhausted(t *testing.T) {
	p := newBufferPool[int](1)

	first := p.get()
	first.InitReferenceCounter(1) // keep it locked, forcing the next get to grow the pool

	second := p.get()
	require.NotNil(t, second)
	require.NotSame(t, first, second)
	require.GreaterOrEqual(t, p.gen.cap(), 2, "pool should have grown a new, larger generation")
}

func TestGlobalPoolIsPerType(t *testing.T) {
	intPool := globalPool[int]()
	stringPool := globalPool[string]()
	samePool := globalPool[int]()

	require.Same(t, intPool, samePool, "globalPool[T] must be a process-wide singleton per T")
	require.NotEqual(t, intPool, stringPool)
}

func TestWarmGlobalPoolGrowsCapacity(t *testing.T) {
	WarmGlobalPool[uint16](64)
	p := globalPool[uint16]()
	require.GreaterOrEqual(t, p.gen.cap(), 64)
}
