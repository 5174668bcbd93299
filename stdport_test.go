// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardPortPublishGet(t *testing.T) {
	p := NewStandardPort[string](CreationInfo[string]{Name: "std-basic"})

	require.True(t, p.Publish("hello"))

	v, _ := p.Get()
	require.Equal(t, "hello", v)
}

func TestStandardPortGetUnusedBufferCommit(t *testing.T) {
	p := NewStandardPort[string](CreationInfo[string]{Name: "std-handle"})

	handle := p.GetUnusedBuffer()
	*handle.Value() = "committed"
	require.True(t, p.Commit(handle))

	v, _ := p.Get()
	require.Equal(t, "committed", v)
}

func TestStandardPortDiscardNeverPublishes(t *testing.T) {
	p := NewStandardPort[string](CreationInfo[string]{Name: "std-discard"})
	p.Publish("original")

	handle := p.GetUnusedBuffer()
	*handle.Value() = "thrown away"
	handle.Discard()

	v, _ := p.Get()
	require.Equal(t, "original", v, "a discarded handle must never reach the current value")
}

func TestStandardPortCommitTwicePanics(t *testing.T) {
	p := NewStandardPort[string](CreationInfo[string]{Name: "std-double-commit"})
	handle := p.GetUnusedBuffer()
	*handle.Value() = "x"
	require.True(t, p.Commit(handle))

	require.Panics(t, func() { p.Commit(handle) }, "committing an already-released handle is a programmer error")
}

func TestStandardPortReceiveAnyPushesIntoQueue(t *testing.T) {
	p := NewStandardPort[int](CreationInfo[int]{
		Name:  "std-queued",
		Flags: Flags{Accepts: true, HasQueue: true, PushStrategy: true},
		Queue: &QueueSettings{MaxLength: 2},
	})

	p.receiveAny(1, time.Now(), KindChanged)
	p.receiveAny(2, time.Now(), KindChanged)

	v, _, ok := p.Dequeue()
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestStandardPortPullFallsBackToOwnValue(t *testing.T) {
	p := NewStandardPort[int](CreationInfo[int]{Name: "std-sourceless"})
	p.Publish(5)

	v, _ := p.Pull()
	require.Equal(t, 5, v)
}

func TestStandardPortPushChain(t *testing.T) {
	source := NewStandardPort[int](CreationInfo[int]{Name: "std-source", Flags: Flags{Emits: true, PushStrategy: true}})
	sink := NewStandardPort[int](CreationInfo[int]{Name: "std-sink", Flags: Flags{Accepts: true, PushStrategy: true}})

	Connect(source, sink)
	source.Publish(77)

	v, _ := sink.Get()
	require.Equal(t, 77, v)
}

func TestStandardPortPushChainReachesSecondHop(t *testing.T) {
	source := NewStandardPort[int](CreationInfo[int]{Name: "std-chain-source", Flags: Flags{Emits: true, PushStrategy: true}})
	middle := NewStandardPort[int](CreationInfo[int]{Name: "std-chain-middle", Flags: Flags{Accepts: true, Emits: true, PushStrategy: true}})
	sink := NewStandardPort[int](CreationInfo[int]{Name: "std-chain-sink", Flags: Flags{Accepts: true, PushStrategy: true}})

	Connect(source, middle)
	Connect(middle, sink)

	source.Publish(13)

	mv, _ := middle.Get()
	require.Equal(t, 13, mv)

	sv, _ := sink.Get()
	require.Equal(t, 13, sv, "a push must propagate past the second hop, not stop at the first receiver")
}
