// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalBufferScopeGetRecycleRoundTrip(t *testing.T) {
	scope := NewLocalBufferScope()
	defer scope.Close()

	lp := localPoolFor[int](scope)
	bm := lp.get()
	bm.Value = 5
	bm.AddThreadLocalLocks(1)

	bm.ReleaseThreadLocalLocks(1) // drops to zero, recycles into lp.free

	again := lp.get()
	require.Same(t, bm, again, "a single-writer scope must reuse the just-recycled buffer")
	require.Equal(t, 0, again.Value, "recycled buffer must have its value zeroed")
}

func TestLocalBufferScopeForeignReturnIsDrainedOnNextGet(t *testing.T) {
	scope := NewLocalBufferScope()
	defer scope.Close()

	lp := localPoolFor[int](scope)
	bm := lp.get()
	bm.AddThreadLocalLocks(1)

	// Simulate a foreign goroutine fully releasing this buffer's only
	// auxiliary lock: it must land on the return queue, not recycle
	// directly, since only the owning goroutine may touch lp.free.
	bm.foreignReleases.Store(0)
	bm.ReleaseLocksFromOtherThread(0)

	require.Len(t, lp.returned, 1)

	lp.drainForeignReturns()
	require.Empty(t, lp.returned, "drain must clear the return queue")
}

func TestLocalBufferScopeCloseWithOutstandingLogsButDoesNotPanic(t *testing.T) {
	scope := NewLocalBufferScope()
	lp := localPoolFor[int](scope)
	_ = lp.get() // never recycled: outstanding stays > 0

	require.NotPanics(t, func() { scope.Close() })
	require.NotPanics(t, func() { scope.Close() }, "Close must be idempotent")
}
