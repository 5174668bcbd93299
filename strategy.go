// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"math"
	"sync"
)

// structureMu serializes strategy propagation, which Connect, Disconnect
// and SetHijacked run under it (spec §4.7: "propagation runs under a single
// structure-wide lock, matching the source's runtime structure mutex").
// Connect and Disconnect update the edge lists under each port's own mutex
// before taking structureMu, and ConnectWithConversion does not take it.
// A single mutex rather than per-port locks avoids the lock-ordering
// problems a cyclic port graph would otherwise create.
var structureMu sync.Mutex

// propagateStrategyLocked recomputes the effective Strategy of root and
// recursively of every port upstream of it, per spec §4.7:
//
//  1. A port's desire to push starts from its own PushStrategy flag.
//  2. If any non-conversion outgoing edge's destination has an effective
//     push strategy, or the edge is ReversePush and this port is an Output
//     port, the port wants push too.
//  3. A port that wants push gets queueCapacityStrategy's value (its queue
//     capacity, or 1); otherwise, and always when hijacked, StrategyPull.
//  4. The recomputation is forwarded to every non-conversion source,
//     whether or not this port's strategy changed.
//  5. Changing a port's effective strategy from non-push to push fires one
//     CHANGED_INITIAL publish of its current value onto every
//     non-conversion destination with fan-in<=1, unless either side has
//     NoInitialPushing set.
//  6. Every strategy change emits a RuntimeChangeEvent.
//
// visited guards against infinite recursion on a cyclic graph; it may be
// nil for a top-level call.
func propagateStrategyLocked(root portNode, visited map[portNode]bool) {
	if root == nil {
		return
	}
	if visited == nil {
		visited = make(map[portNode]bool)
	}
	if visited[root] {
		return
	}
	visited[root] = true

	pc := root.common()

	wantsPush := pc.flags.PushStrategy
	pc.mu.Lock()
	outgoing := append([]*Connection(nil), pc.outgoing...)
	pc.mu.Unlock()

	for _, edge := range outgoing {
		if edge.Conversion != nil {
			continue
		}
		dst := edge.Destination.common()
		if dst.Strategy().pushes() || (edge.ReversePush && pc.flags.Output) {
			wantsPush = true
		}
	}

	newStrategy := StrategyPull
	if wantsPush {
		newStrategy = Strategy(queueCapacityStrategy(root))
	}
	if pc.IsHijacked() {
		newStrategy = StrategyPull
	}

	old := pc.Strategy()
	if old == newStrategy {
		propagateToSourcesLocked(pc, visited)
		return
	}
	pc.strategy.Store(int32(newStrategy))

	if !old.pushes() && newStrategy.pushes() {
		initialPushToFreshDestinationsLocked(root, pc)
	}

	publishRuntimeChangeLocked(pc.name, old, newStrategy)

	propagateToSourcesLocked(pc, visited)
}

// queueCapacityPort is implemented by port kinds that can own an input
// queue; queueCapacityStrategy uses it to give a pushing, queued port's
// effective Strategy its queue capacity instead of the bare value 1
// (spec §4.7 step 1: "min(queue_cap, INT16_MAX)").
type queueCapacityPort interface {
	queueCapacity() int
}

func queueCapacityStrategy(root portNode) int {
	q, ok := root.(queueCapacityPort)
	if !ok {
		return 1
	}
	cap := q.queueCapacity()
	if cap <= 0 {
		return 1
	}
	if cap > math.MaxInt16 {
		return math.MaxInt16
	}
	return cap
}

func propagateToSourcesLocked(pc *portCommon, visited map[portNode]bool) {
	pc.mu.Lock()
	incoming := append([]*Connection(nil), pc.incoming...)
	pc.mu.Unlock()
	for _, edge := range incoming {
		if edge.Conversion != nil {
			continue
		}
		propagateStrategyLocked(edge.Source, visited)
	}
}

// initialPushToFreshDestinationsLocked sends one CHANGED_INITIAL publish to
// every destination with fan-in<=1 (spec §4.7 step 6, §4.2 WantsPush),
// since a destination with more than one source cannot unambiguously
// attribute an unsolicited initial value to this edge. Nothing is pushed
// when root or the destination has NoInitialPushing set.
func initialPushToFreshDestinationsLocked(root portNode, pc *portCommon) {
	if pc.flags.NoInitialPushing {
		return
	}
	value, timestamp, ok := root.currentAny()
	if !ok {
		return
	}
	pc.mu.Lock()
	outgoing := append([]*Connection(nil), pc.outgoing...)
	pc.mu.Unlock()
	for _, edge := range outgoing {
		if edge.Conversion != nil {
			continue
		}
		dst := edge.Destination
		if dst.common().flags.NoInitialPushing || dst.common().fanIn() > 1 {
			continue
		}
		dst.receiveAny(value, timestamp, KindChangedInitial)
	}
}
