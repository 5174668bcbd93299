// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"

	"code.hybscloud.com/iox"
	"github.com/stretchr/testify/require"
)

func TestRingPoolGetPutRoundTrip(t *testing.T) {
	ring := newRingPool[int](4)
	ring.setNonblock(true)
	ring.fill(func() int { return 0 })
	require.Equal(t, 4, ring.cap())

	var got []int
	for i := 0; i < 4; i++ {
		idx, err := ring.get()
		require.NoError(t, err)
		got = append(got, idx)
	}

	_, err := ring.get()
	require.ErrorIs(t, err, iox.ErrWouldBlock, "an exhausted nonblocking ring must report ErrWouldBlock")

	for _, idx := range got {
		require.NoError(t, ring.put(idx))
	}

	idx, err := ring.get()
	require.NoError(t, err)
	require.Contains(t, got, idx)
}

func TestRingPoolRoundsCapacityUpToPowerOfTwo(t *testing.T) {
	ring := newRingPool[int](5)
	require.Equal(t, 8, ring.cap())
}
