// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"
	"time"
)

func TestCheapCopyPortPublishGet(t *testing.T) {
	p := NewCheapCopyPort[int](CreationInfo[int]{Name: "counter"})

	if v, _ := p.Get(); v != 0 {
		t.Fatalf("initial value = %d, want 0", v)
	}

	if !p.Publish(42) {
		t.Fatalf("Publish returned false")
	}
	if v, _ := p.Get(); v != 42 {
		t.Fatalf("Get() = %d, want 42", v)
	}
}

func TestCheapCopyPortListenerFires(t *testing.T) {
	p := NewCheapCopyPort[int](CreationInfo[int]{Name: "watched"})

	var gotValue int
	var gotStatus ChangeStatus
	p.AddListener(func(value any, _ time.Time, status ChangeStatus) {
		gotValue = value.(int)
		gotStatus = status
	})

	p.Publish(7)

	if gotValue != 7 {
		t.Fatalf("listener saw value %d, want 7", gotValue)
	}
	if gotStatus != ChangeNormal {
		t.Fatalf("listener saw status %v, want ChangeNormal", gotStatus)
	}
}

func TestCheapCopyPortPushChain(t *testing.T) {
	source := NewCheapCopyPort[int](CreationInfo[int]{Name: "source", Flags: Flags{Emits: true, Output: true, PushStrategy: true}})
	sink := NewCheapCopyPort[int](CreationInfo[int]{Name: "sink", Flags: Flags{Accepts: true, PushStrategy: true}})

	Connect(source, sink)
	source.Publish(99)

	if v, _ := sink.Get(); v != 99 {
		t.Fatalf("sink.Get() = %d, want 99 (push fan-out failed)", v)
	}
}

func TestCheapCopyPortPullFallsBackToOwnValue(t *testing.T) {
	p := NewCheapCopyPort[int](CreationInfo[int]{Name: "sourceless"})
	p.Publish(5)

	v, _ := p.Pull()
	if v != 5 {
		t.Fatalf("Pull() with no source = %d, want 5 (spec §7 item 4 fallback)", v)
	}
}

func TestCheapCopyPortDequeue(t *testing.T) {
	p := NewCheapCopyPort[int](CreationInfo[int]{
		Name:  "queued",
		Flags: Flags{Accepts: true, HasQueue: true, PushStrategy: true},
		Queue: &QueueSettings{MaxLength: 2},
	})

	p.receiveAny(1, time.Now(), KindChanged)
	p.receiveAny(2, time.Now(), KindChanged)
	p.receiveAny(3, time.Now(), KindChanged)

	v, _, ok := p.Dequeue()
	if !ok || v != 2 {
		t.Fatalf("got %d, %v, want 2, true", v, ok)
	}
	v, _, ok = p.Dequeue()
	if !ok || v != 3 {
		t.Fatalf("got %d, %v, want 3, true", v, ok)
	}
}
