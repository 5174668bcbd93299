// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"sync"
	"sync/atomic"
	"time"
)

// Listener receives a callback synchronously on the publishing goroutine
// whenever its port's value changes, holding the incremented lock for the
// callback's duration (spec §5: "Listeners are invoked synchronously on the
// publishing thread, holding the incremented lock for the duration of the
// callback; a listener may extend the lock lifetime by taking an owning
// handle"). value is the concrete T for the port it was added to.
type Listener func(value any, timestamp time.Time, changeType ChangeStatus)

// PullRequestHandler lets a port compute a pulled value on demand instead of
// (or before) the pull engine walks its incoming connections (spec §4.6,
// §3 "optional pull-request handler"). Returning ok=false means "no
// override, fall through to normal pull traversal".
type PullRequestHandler func(ignoreLocalHandler bool) (value any, ok bool)

// portNode is the type-erased view every connection, the pull engine and
// the strategy propagator operate through, so a graph can mix
// CheapCopyPort[T] and StandardPort[T] instances of different T without the
// engines themselves being generic. Concrete ports implement it by
// converting to/from their T at the boundary — the same type-erasure
// spec §4.8's generic port facade performs, just pushed down to where the
// graph-walking code needs it.
type portNode interface {
	common() *portCommon

	// receiveAny assigns value (which must be the port's concrete T) into
	// this port via the non-publishing Receive path, per spec §4.2.
	receiveAny(value any, timestamp time.Time, kind PublishKind) bool

	// pullRawAny runs this port's half of the pull protocol: if hijacked or
	// sourceless, returns its own locked current value; otherwise recurses
	// upstream. Returns the pulled value, its timestamp, and whether a
	// value was available at all.
	pullRawAny(ignoreLocalHandler bool) (value any, timestamp time.Time, ok bool)

	// currentAny returns a snapshot of the port's current value without
	// pulling (used by strategy propagation's initial push).
	currentAny() (value any, timestamp time.Time, ok bool)
}

// Connection is a directed edge between two ports, carrying the flags that
// the strategy propagator and publish engine read (spec §3 "Connections").
type Connection struct {
	Source      portNode
	Destination portNode

	// ReversePush marks an edge the destination uses to push data back
	// upstream to the source (spec §3 ReversePush flag on the destination
	// side of this edge).
	ReversePush bool

	// Conversion is non-nil for a conversion edge (spec §3, §4.7): the
	// publish engine dispatches through it instead of calling receiveAny
	// directly, and the pull engine skips conversion edges entirely when
	// choosing an upstream source.
	Conversion *ConversionConnector
}

// portCommon holds the state spec §3 assigns to every port, shared by
// CheapCopyPort, StandardPort and their bounded/queued variants. Each
// concrete port holds a pointer to its own instance.
type portCommon struct {
	mu sync.Mutex // guards listeners, incoming, outgoing and pullHandler

	name  string
	flags Flags

	strategy atomic.Int32 // Strategy, see types.go
	ready    atomic.Bool
	hijacked atomic.Bool

	changeStatus atomic.Int32 // ChangeStatus

	minNetworkUpdateInterval time.Duration

	incoming []*Connection
	outgoing []*Connection

	listeners   []Listener
	pullHandler PullRequestHandler

	// self lets portCommon methods that must call back into graph
	// algorithms (SetHijacked, strategy propagation) hand the engines a
	// portNode. Set once by the concrete port's constructor via setSelf,
	// after the concrete value's address is stable.
	self portNode
}

func newPortCommon(name string, flags Flags) *portCommon {
	pc := &portCommon{name: name, flags: flags}
	pc.hijacked.Store(flags.Hijacked)
	if flags.PushStrategy {
		pc.strategy.Store(1)
	} else {
		pc.strategy.Store(int32(StrategyPull))
	}
	return pc
}

func (pc *portCommon) setSelf(p portNode) { pc.self = p }

func (pc *portCommon) Name() string { return pc.name }

func (pc *portCommon) IsReady() bool { return pc.ready.Load() }

// MarkReady declares the port initialized; spec §6 assumes IsReady is
// monotonic after init until delete, so this never clears it.
func (pc *portCommon) MarkReady() { pc.ready.Store(true) }

func (pc *portCommon) IsHijacked() bool { return pc.hijacked.Load() }

func (pc *portCommon) SetHijacked(h bool) {
	pc.hijacked.Store(h)
	structureMu.Lock()
	defer structureMu.Unlock()
	propagateStrategyLocked(pc.self, nil)
}

func (pc *portCommon) Strategy() Strategy { return Strategy(pc.strategy.Load()) }

func (pc *portCommon) AddListener(l Listener) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.listeners = append(pc.listeners, l)
}

func (pc *portCommon) notifyListeners(value any, timestamp time.Time, status ChangeStatus) {
	pc.mu.Lock()
	ls := pc.listeners
	pc.mu.Unlock()
	for _, l := range ls {
		l(value, timestamp, status)
	}
}

// HasChanged reports whether any publish (ChangeNormal) or initial push
// (ChangeInitial) has occurred since the last ResetChanged (spec §6/§8).
func (pc *portCommon) HasChanged() bool {
	return ChangeStatus(pc.changeStatus.Load()) != ChangeNone
}

func (pc *portCommon) ResetChanged() {
	pc.changeStatus.Store(int32(ChangeNone))
}

func (pc *portCommon) markChange(kind PublishKind) {
	if kind == KindChangedInitial {
		pc.changeStatus.CompareAndSwap(int32(ChangeNone), int32(ChangeInitial))
		return
	}
	pc.changeStatus.Store(int32(ChangeNormal))
}

// fanIn returns the number of incoming connections, used by WantsPush's
// CHANGED_INITIAL fan-in<=1 rule (spec §4.2, §4.7).
func (pc *portCommon) fanIn() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.incoming)
}

// SetPullRequestHandler installs or clears the port's pull-request handler
// (spec §3, §4.6).
func (pc *portCommon) SetPullRequestHandler(h PullRequestHandler) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.pullHandler = h
}
