// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProxyPortForwardsPushThroughTwoHops(t *testing.T) {
	upstream := NewCheapCopyPort[int](CreationInfo[int]{Name: "proxy-up", Flags: Flags{Emits: true}})
	middle := NewCheapProxyPort(NewCheapCopyPort[int](CreationInfo[int]{Name: "proxy-mid", Flags: Flags{Accepts: true, Emits: true, PushStrategy: true}}))
	downstream := NewCheapCopyPort[int](CreationInfo[int]{Name: "proxy-down", Flags: Flags{Accepts: true, PushStrategy: true}})

	middle.ConnectFrom(upstream)
	middle.ConnectTo(downstream)

	// A single publish at the head of the chain must reach every downstream
	// push destination, not just the first hop (spec §8 Scenario 1).
	require.True(t, upstream.Publish(42))

	v, _ := middle.Get()
	require.Equal(t, 42, v)

	dv, _ := downstream.Get()
	require.Equal(t, 42, dv, "a push chain longer than one hop must reach its end")
}

func TestProxyPortPublishesOnwardDirectly(t *testing.T) {
	middle := NewCheapProxyPort(NewCheapCopyPort[int](CreationInfo[int]{Name: "proxy-mid-direct", Flags: Flags{Accepts: true, Emits: true, PushStrategy: true}}))
	downstream := NewCheapCopyPort[int](CreationInfo[int]{Name: "proxy-down-direct", Flags: Flags{Accepts: true, PushStrategy: true}})

	middle.ConnectTo(downstream)

	require.True(t, middle.Publish(4))
	dv, _ := downstream.Get()
	require.Equal(t, 4, dv)
}
