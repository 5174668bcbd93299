// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "time"

// assignLocalFunc stores value as the port's new current value and returns
// the value actually stored (a BoundedPort's ADJUST_TO_RANGE hook may alter
// it) plus whether the store happened at all (a BoundedPort's DISCARD hook
// can refuse; hijacked and not-ready ports are refused by publishCore/
// receiveCore before assign runs). Supplied by CheapCopyPort and
// StandardPort, each of which keeps its current value in a different shape
// (a tagged atomic pointer vs. a mutex-guarded *BufferManager[T]) — this
// is the "behavior" composition
// spec §9 asks for in place of C++ inheritance from a shared publish/
// receive base class.
type assignLocalFunc[T any] func(value T, timestamp time.Time, kind PublishKind) (T, bool)

// publishCore runs the half of spec §4.2 shared by every port kind:
// WantsPush's CHANGED_INITIAL fan-in gate, the not-ready/hijacked guards,
// the type-specific local assignment, listener notification, change-status
// bookkeeping, and fan-out to outgoing connections (including conversion
// edges). It is called by CheapCopyPort.Publish and StandardPort.Commit
// with their respective assignLocalFunc.
func publishCore[T any](pc *portCommon, node portNode, value T, timestamp time.Time, kind PublishKind, assign assignLocalFunc[T]) bool {
	if pc.IsHijacked() {
		return false
	}
	if !pc.IsReady() && kind != KindChangedInitial {
		logger.Warn().Str("port", pc.name).Msg("dataports: publish to a port that has not completed initialization")
		return false
	}
	if kind == KindChangedInitial && pc.fanIn() > 1 {
		// spec §4.2 WantsPush: an unsolicited initial push is ambiguous when
		// more than one source could claim it, so it is dropped.
		return false
	}

	stored, ok := assign(value, timestamp, kind)
	if !ok {
		return false
	}

	pc.markChange(kind)
	status := ChangeNormal
	if kind == KindChangedInitial {
		status = ChangeInitial
	}
	pc.notifyListeners(stored, timestamp, status)

	fanOut(pc, stored, timestamp, kind)
	return true
}

// fanOut delivers value to every outgoing connection whose destination
// currently wants a push, per spec §4.7's per-edge strategy: a destination
// with an effective pull strategy is left to pull the value itself instead
// of receiving an unsolicited push. Conversion edges are delivered through
// their connector whatever the destination's strategy.
func fanOut[T any](pc *portCommon, value T, timestamp time.Time, kind PublishKind) {
	pc.mu.Lock()
	outgoing := append([]*Connection(nil), pc.outgoing...)
	pc.mu.Unlock()

	for _, edge := range outgoing {
		dst := edge.Destination
		if edge.Conversion != nil {
			_ = edge.Conversion.deliver(value, timestamp, kind)
			continue
		}
		if !dst.common().Strategy().pushes() {
			continue
		}
		dst.receiveAny(value, timestamp, kind)
	}
}

// receiveCore is the non-publishing counterpart of publishCore (spec §4.2
// Receive): it skips WantsPush's fan-in gate (the caller is a strategy-
// approved upstream push, not an ambiguous unsolicited one), but otherwise
// continues the push exactly as publishCore does — assign, notify, then
// fan out to this port's own outgoing connections — so a push chain of any
// length reaches every downstream port, matching the source's Receive
// (common/tPublishOperation.h), which loops OutgoingConnectionsBegin()..End()
// and recurses instead of stopping at the first hop.
func receiveCore[T any](pc *portCommon, value T, timestamp time.Time, kind PublishKind, assign assignLocalFunc[T]) (T, bool) {
	if pc.IsHijacked() {
		var zero T
		return zero, false
	}
	stored, ok := assign(value, timestamp, kind)
	if !ok {
		var zero T
		return zero, false
	}
	pc.markChange(kind)
	status := ChangeNormal
	if kind == KindChangedInitial {
		status = ChangeInitial
	}
	pc.notifyListeners(stored, timestamp, status)
	fanOut(pc, stored, timestamp, kind)
	return stored, true
}
