// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "time"

// Strategy is a port's per-edge push/pull decision: -1 = disconnected,
// 0 = pull, n>=1 = push with queue capacity n. See spec §3/§4.7.
type Strategy int32

const (
	// StrategyDisconnected marks a port with no effective strategy yet.
	StrategyDisconnected Strategy = -1
	// StrategyPull marks a port that must be actively pulled for a value.
	StrategyPull Strategy = 0
)

// pushes reports whether s represents a push strategy (s >= 1).
func (s Strategy) pushes() bool { return s >= 1 }

// ChangeStatus distinguishes an ordinary value change from the one-shot
// initial push a newly connected destination receives, and "no change".
// Supplemented from original_source/tChangeContext.h: spec §8's boolean
// HasChanged/ResetChanged is backed by this finer-grained status so the
// strategy propagator's CHANGED_INITIAL fan-in rule (spec §4.7) can tell
// the two apart.
type ChangeStatus int32

const (
	// ChangeNone indicates the port's value has not changed since the last
	// ResetChanged.
	ChangeNone ChangeStatus = iota
	// ChangeNormal indicates at least one ordinary publish occurred.
	ChangeNormal
	// ChangeInitial indicates the only change since reset was an initial
	// push performed by strategy propagation onto a freshly connected port.
	ChangeInitial
)

// PublishKind selects which of Publish's two compile-time variants a
// call site uses, matching the source's Assign<change_const> template
// parameter: CHANGED marks an ordinary publish, CHANGED_INITIAL marks a
// one-shot initial push that bypasses input queues and is gated by the
// fan-in<=1 rule in WantsPush.
type PublishKind int32

const (
	// KindChanged is an ordinary publish.
	KindChanged PublishKind = iota
	// KindChangedInitial is a one-shot initial push onto a new connection.
	KindChangedInitial
)

// Flags bundle the direction and strategy bits a port is created with.
// Field names spell out the source's bitfield names (spec §3). The port
// constructors and engines read PushStrategy, Output, HasQueue, Hijacked and
// NoInitialPushing; NonStandardAssign is set by NewBoundedPort but not read.
// The remaining fields are carried on the port and are not read by this
// package: Emits and Accepts do not restrict Connect, DefaultOnDisconnect
// has no connection-loss path to act on, and ReversePush on an edge is
// taken from Connection.ReversePush.
type Flags struct {
	Emits                bool // port can be a publish source
	Accepts              bool // port can be a publish destination
	Output               bool // port is an output-direction port
	PushStrategy         bool // port requests push when possible
	ReversePush          bool // port serves as a push source to its own sources
	HasQueue             bool // port owns an input queue
	DequeueAll           bool // not read; QueueSettings.DequeueAll selects the queue variant
	NonStandardAssign    bool // Assign must go through a subclass hook
	DefaultOnDisconnect  bool // republish default value on network connection loss
	Hijacked             bool // port starts hijacked: publishes/assignment are suppressed
	MultiType            bool // standard port may publish differing concrete types
	NoInitialPushing     bool // suppress InitialPushTo on new connections
}

// OutOfBoundsAction selects a BoundedPort's policy for an out-of-range
// publish (spec §4.4).
type OutOfBoundsAction int32

const (
	// ActionDiscard rejects the publish outright.
	ActionDiscard OutOfBoundsAction = iota
	// ActionAdjustToRange clamps the value into [min, max].
	ActionAdjustToRange
	// ActionApplyDefault substitutes the bounded port's configured default.
	ActionApplyDefault
)

// QueueSettings bundles the two input-queue knobs the source passes
// together (original_source/tQueueSettings.h), rather than two loose
// CreationInfo fields.
type QueueSettings struct {
	DequeueAll bool
	MaxLength  int // <=0 means the queue is unbounded
}

// CreationInfo is the immutable record a port is constructed from (spec §3,
// §6). T is the port's data type.
type CreationInfo[T any] struct {
	Name                string
	Parent              string
	Flags               Flags
	Default             *T
	Queue               *QueueSettings
	Unit                string
	MinNetworkUpdateInterval time.Duration
}
