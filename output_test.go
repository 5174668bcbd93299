// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutputPortPublishAndConnectTo(t *testing.T) {
	src := NewCheapOutputPort(NewCheapCopyPort[int](CreationInfo[int]{Name: "wrapped-out", Flags: Flags{Emits: true}}))
	dstPort := NewCheapCopyPort[int](CreationInfo[int]{Name: "wrapped-out-sink", Flags: Flags{Accepts: true, PushStrategy: true}})

	src.ConnectTo(dstPort)
	require.True(t, src.Publish(17))

	v, _ := dstPort.Get()
	require.Equal(t, 17, v)
	require.True(t, src.HasChanged())
}

func TestBoundedOutputPortEnforcesBounds(t *testing.T) {
	bounded := NewBoundedPort[int](CreationInfo[int]{Name: "wrapped-bounded"}, &Bounds[int]{
		Min: 0, Max: 10, Action: ActionAdjustToRange, Less: intLess,
	})
	out := NewBoundedOutputPort(bounded)

	out.Publish(99)
	v, _ := out.Get()
	require.Equal(t, 10, v)
}
