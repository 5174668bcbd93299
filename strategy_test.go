// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrategyPropagationSendsInitialPush(t *testing.T) {
	def := 11
	upstream := NewCheapCopyPort[int](CreationInfo[int]{
		Name:    "upstream",
		Flags:   Flags{Emits: true, Output: true},
		Default: &def,
	})
	downstream := NewCheapCopyPort[int](CreationInfo[int]{
		Name:  "downstream",
		Flags: Flags{Accepts: true, PushStrategy: true},
	})

	require.Equal(t, StrategyPull, upstream.common().Strategy(), "upstream strategy before connect")

	Connect(upstream, downstream)

	require.True(t, upstream.common().Strategy().pushes(), "upstream strategy after connect should push")

	v, _ := downstream.Get()
	require.Equal(t, def, v, "downstream should receive the initial push on strategy flip")
	require.True(t, downstream.HasChanged(), "downstream should report a change after the initial push")
}

func TestStrategyChangeEventEmitted(t *testing.T) {
	var events []RuntimeChangeEvent
	OnRuntimeChange(func(ev RuntimeChangeEvent) { events = append(events, ev) })

	upstream := NewCheapCopyPort[int](CreationInfo[int]{Name: "flip-source", Flags: Flags{Emits: true}})
	downstream := NewCheapCopyPort[int](CreationInfo[int]{Name: "flip-sink", Flags: Flags{Accepts: true, PushStrategy: true}})

	before := len(events)
	Connect(upstream, downstream)

	require.Greater(t, len(events), before, "expected at least one RuntimeChangeEvent from the strategy flip")
	last := events[len(events)-1]
	require.Equal(t, "flip-source", last.PortName)
	require.True(t, last.NewStrategy.pushes(), "event should record the flip to a pushing strategy")
}

func TestWantsPushInitialFanInGate(t *testing.T) {
	shared := NewCheapCopyPort[int](CreationInfo[int]{Name: "fan-in-sink", Flags: Flags{Accepts: true, PushStrategy: true}})
	a := NewCheapCopyPort[int](CreationInfo[int]{Name: "fan-in-a", Flags: Flags{Emits: true}})
	bDefault := 5
	b := NewCheapCopyPort[int](CreationInfo[int]{Name: "fan-in-b", Flags: Flags{Emits: true}, Default: &bDefault})

	Connect(a, shared)
	shared.ResetChanged()
	Connect(b, shared)

	// With two sources, WantsPush's fan-in<=1 rule must suppress any
	// unsolicited CHANGED_INITIAL push onto shared from either edge alone.
	require.GreaterOrEqual(t, shared.pc.fanIn(), 2, "expected shared port to have fan-in >= 2")
	require.False(t, shared.HasChanged(), "b's flip to push must not initial-push onto a fan-in-2 port")
	v, _ := shared.Get()
	require.Equal(t, 0, v, "shared must keep a's value, not receive b's default")
}
