// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"sync"
)

// Bounds describes a BoundedPort's valid range and its out-of-range policy
// (spec §4.4). T must be ordered in the caller's domain; Less is supplied
// instead of requiring T to satisfy cmp.Ordered so bounded ports work over
// any numeric-like or custom-ordered type, matching the source's template
// parameterization over a comparison policy.
type Bounds[T any] struct {
	Min, Max T
	Action   OutOfBoundsAction
	Default  T
	Less     func(a, b T) bool
}

func (b *Bounds[T]) inRange(v T) bool {
	return !b.Less(v, b.Min) && !b.Less(b.Max, v)
}

func (b *Bounds[T]) clamp(v T) T {
	if b.Less(v, b.Min) {
		return b.Min
	}
	if b.Less(b.Max, v) {
		return b.Max
	}
	return v
}

// BoundedPort enforces Bounds on every publish by installing a
// StandardPort.assignHook, the NonStandardAssign composition spec §3/§9
// calls for instead of a bounds-checking subclass (original_source/
// api/tBoundedPort.h).
type BoundedPort[T any] struct {
	*StandardPort[T]

	mu         sync.Mutex
	bounds     *Bounds[T]
	boundsSet  bool
}

// NewBoundedPort constructs a bounded port. initialBounds may be nil, in
// which case SetBounds must be called before the first publish for the
// bounds to have any effect (spec §4.4's pre-init-only SetBounds rule
// starts counting from port construction, not from the first SetBounds
// call).
func NewBoundedPort[T any](info CreationInfo[T], initialBounds *Bounds[T]) *BoundedPort[T] {
	info.Flags.NonStandardAssign = true
	sp := NewStandardPort[T](info)
	bp := &BoundedPort[T]{StandardPort: sp}
	if initialBounds != nil {
		bp.bounds = initialBounds
		bp.boundsSet = true
	}
	sp.assignHook = bp.enforce
	return bp
}

// SetBounds installs new bounds. It is honored only while the port's change
// flag is clear (no publish or receive since construction or the last
// ResetChanged); otherwise it logs ErrBoundsPostInit and is a no-op, since
// readers may already hold values published under the old bounds.
func (bp *BoundedPort[T]) SetBounds(b Bounds[T]) {
	bp.mu.Lock()
	if bp.common().HasChanged() {
		bp.mu.Unlock()
		logger.Warn().Str("port", bp.Name()).Err(ErrBoundsPostInit).Send()
		return
	}
	old := bp.bounds
	bp.bounds = &b
	bp.boundsSet = true
	bp.mu.Unlock()

	// bp.mu is released first: the republish runs enforce, which takes it.
	if old != nil {
		bp.republishIfNowOutOfRange(old)
	}
}

// republishIfNowOutOfRange re-applies the new bounds to the port's current
// value if changing bounds made it invalid (spec §4.4 "changing bounds
// republishes the current value if it is now out of range").
func (bp *BoundedPort[T]) republishIfNowOutOfRange(old *Bounds[T]) {
	current, _ := bp.Get()
	if bp.bounds.inRange(current) {
		return
	}
	adjusted, ok := bp.enforce(current)
	if !ok {
		return
	}
	bp.Publish(adjusted)
}

// Publish enforces bounds via GetUnusedBuffer/Commit so the same
// NonStandardAssign hook StandardPort.Commit already calls applies here
// too — BoundedPort never bypasses it with a separate fast path.
func (bp *BoundedPort[T]) Publish(value T) bool {
	handle := bp.GetUnusedBuffer()
	*handle.Value() = value
	return bp.Commit(handle)
}

func (bp *BoundedPort[T]) enforce(value T) (T, bool) {
	bp.mu.Lock()
	bounds := bp.bounds
	bp.mu.Unlock()
	if bounds == nil || bounds.inRange(value) {
		return value, true
	}
	switch bounds.Action {
	case ActionAdjustToRange:
		return bounds.clamp(value), true
	case ActionApplyDefault:
		return bounds.Default, true
	default: // ActionDiscard
		logger.Debug().Str("port", bp.Name()).Msg("dataports: discarding out-of-bounds publish")
		return value, false
	}
}

// PublishBrowser is the browser/diagnostic publish path spec §4.4/§7 item 3
// describes: a DISCARD violation is reported as a BoundsError instead of
// being silently dropped, for UIs that want to surface the rejection.
func (bp *BoundedPort[T]) PublishBrowser(value T) error {
	bp.mu.Lock()
	bounds := bp.bounds
	bp.mu.Unlock()
	if bounds != nil && bounds.Action == ActionDiscard && !bounds.inRange(value) {
		return &BoundsError{Value: value, Min: bounds.Min, Max: bounds.Max}
	}
	bp.Publish(value)
	return nil
}
