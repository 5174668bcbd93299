// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"time"
	"unsafe"
)

// CheapCopyPort is the fast-path port kind for small, trivially-copyable
// value types (spec §4.1): its current value lives behind a single
// ABA-guarded atomic pointer, so Get is a CAS-retry loop with no mutex and
// Publish is one atomic swap plus one ReleaseLocks on the value it replaced.
type CheapCopyPort[T any] struct {
	pc      *portCommon
	current atomicTaggedPointer

	defaultValue T
	queue        InputQueue[T]
}

// NewCheapCopyPort constructs a ready-to-publish cheap-copy port from info,
// allocating and installing its initial (default) value from the process-
// wide pool for T (spec §3, §4.1).
func NewCheapCopyPort[T any](info CreationInfo[T]) *CheapCopyPort[T] {
	pc := newPortCommon(info.Name, info.Flags)
	pc.minNetworkUpdateInterval = info.MinNetworkUpdateInterval

	p := &CheapCopyPort[T]{pc: pc}
	pc.setSelf(p)

	var def T
	if info.Default != nil {
		def = *info.Default
	}
	p.defaultValue = def

	bm := globalPool[T]().get()
	bm.Value = def
	bm.Timestamp = time.Now()
	tag := bm.InitReferenceCounter(1)
	p.current.store(unsafe.Pointer(bm), tag)

	if info.Flags.HasQueue && info.Queue != nil {
		if info.Queue.DequeueAll {
			p.queue = NewDequeueAllQueue[T](info.Queue.MaxLength)
		} else {
			p.queue = NewFIFOQueue[T](info.Queue.MaxLength)
		}
	}

	pc.MarkReady()
	return p
}

func (p *CheapCopyPort[T]) common() *portCommon { return p.pc }

// queueCapacity reports this port's input queue bound, or 0 if it has none,
// for strategy propagation's queue-capacity-valued Strategy (spec §4.7 step 1).
func (p *CheapCopyPort[T]) queueCapacity() int {
	if p.queue == nil {
		return 0
	}
	return p.queue.maxLength()
}

// Name returns the port's configured name.
func (p *CheapCopyPort[T]) Name() string { return p.pc.Name() }

// AddListener registers l to be called synchronously on every publish this
// port makes or receives (spec §5).
func (p *CheapCopyPort[T]) AddListener(l Listener) { p.pc.AddListener(l) }

// SetPullRequestHandler installs h as this port's pull-request override
// (spec §4.6).
func (p *CheapCopyPort[T]) SetPullRequestHandler(h PullRequestHandler) {
	p.pc.SetPullRequestHandler(h)
}

// HasChanged and ResetChanged expose the port's change-status flag
// (spec §6/§8).
func (p *CheapCopyPort[T]) HasChanged() bool { return p.pc.HasChanged() }
func (p *CheapCopyPort[T]) ResetChanged()    { p.pc.ResetChanged() }

// Get is the wait-free (CAS-retry) fast read path: it copies the current
// value and timestamp without ever blocking a concurrent publish
// (spec §4.1, §9).
func (p *CheapCopyPort[T]) Get() (T, time.Time) {
	for {
		ptr, tag := p.current.load()
		bm := (*BufferManager[T])(ptr)
		if bm.TryLock(1, tag) {
			v, ts := bm.Value, bm.Timestamp
			bm.ReleaseLocks(1)
			return v, ts
		}
	}
}

// Publish installs value as the port's new current value, releases the
// lock on the value it replaced, notifies listeners, and pushes to every
// destination whose effective strategy wants it (spec §4.2).
func (p *CheapCopyPort[T]) Publish(value T) bool {
	return publishCore[T](p.pc, p, value, time.Now(), KindChanged, p.assignGlobal)
}

// PublishLocal is Publish's thread-local-pool variant: the replacement
// buffer manager comes from scope's per-goroutine free list instead of the
// contended global pool (spec §4.1/§9's thread-local buffer pools). The
// caller must not share scope across goroutines.
func (p *CheapCopyPort[T]) PublishLocal(scope *LocalBufferScope, value T) bool {
	return publishCore[T](p.pc, p, value, time.Now(), KindChanged, p.assignLocal(scope))
}

func (p *CheapCopyPort[T]) assignGlobal(value T, timestamp time.Time, _ PublishKind) (T, bool) {
	bm := globalPool[T]().get()
	bm.Value = value
	bm.Timestamp = timestamp
	tag := bm.InitReferenceCounter(1)
	old, oldTag := p.current.swap(unsafe.Pointer(bm), tag)
	(*BufferManager[T])(old).ReleaseLocksChecked(1, oldTag)
	return value, true
}

func (p *CheapCopyPort[T]) assignLocal(scope *LocalBufferScope) assignLocalFunc[T] {
	return func(value T, timestamp time.Time, _ PublishKind) (T, bool) {
		bm := localPoolFor[T](scope).get()
		bm.Value = value
		bm.Timestamp = timestamp
		// The buffer transitions from thread-local ownership to the
		// standard atomic discipline at the moment it becomes reachable
		// from the shared current pointer, since any goroutine may read it
		// from here on (spec §4.1).
		tag := bm.InitReferenceCounter(1)
		old, oldTag := p.current.swap(unsafe.Pointer(bm), tag)
		(*BufferManager[T])(old).ReleaseLocksChecked(1, oldTag)
		return value, true
	}
}

// receiveAny implements portNode for the cross-type publish/pull engines.
func (p *CheapCopyPort[T]) receiveAny(value any, timestamp time.Time, kind PublishKind) bool {
	v, ok := value.(T)
	if !ok {
		fatalf("dataports: receiveAny on port %q got incompatible type %T", p.pc.name, value)
	}
	stored, changed := receiveCore[T](p.pc, v, timestamp, kind, p.assignGlobal)
	if changed && p.queue != nil && kind != KindChangedInitial {
		qbm := globalPool[T]().get()
		qbm.Value = stored
		qbm.Timestamp = timestamp
		qbm.InitReferenceCounter(1)
		p.queue.enqueue(qbm)
	}
	return changed
}

// Pull retrieves a value by walking incoming connections, per spec §4.6,
// whatever the port's own strategy is.
func (p *CheapCopyPort[T]) Pull() (T, time.Time) {
	v, ts, _ := p.pullRawAny(false)
	typed, _ := v.(T)
	return typed, ts
}

func (p *CheapCopyPort[T]) pullRawAny(ignoreLocalHandler bool) (any, time.Time, bool) {
	return pullFromIncoming(p.pc, ignoreLocalHandler, func() (any, time.Time, bool) {
		v, ts := p.Get()
		return v, ts, true
	})
}

func (p *CheapCopyPort[T]) currentAny() (any, time.Time, bool) {
	v, ts := p.Get()
	return v, ts, true
}

// Dequeue and DequeueAll expose the port's input queue, if any (spec §4.5).
// They return false / a nil Fragment when the port has no queue configured.
func (p *CheapCopyPort[T]) Dequeue() (T, time.Time, bool) {
	fifo, ok := p.queue.(*FIFOQueue[T])
	if !ok {
		var zero T
		return zero, time.Time{}, false
	}
	bm, ok := fifo.Dequeue()
	if !ok {
		var zero T
		return zero, time.Time{}, false
	}
	v, ts := bm.Value, bm.Timestamp
	bm.ReleaseLocks(1)
	return v, ts, true
}

func (p *CheapCopyPort[T]) DequeueAll() *Fragment[T] {
	all, ok := p.queue.(*DequeueAllQueue[T])
	if !ok {
		return nil
	}
	return all.DequeueAll()
}
