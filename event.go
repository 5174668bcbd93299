// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "sync"

// RuntimeChangeEvent describes one structural change to the port graph:
// a port's effective Strategy changed value (between push and pull, or
// between two push queue capacities). Supplemented
// from original_source/tEvent.h, whose change-notification mechanism the
// distilled spec only alludes to via "emits a runtime change event" in
// §4.7 step 6.
type RuntimeChangeEvent struct {
	PortName    string
	OldStrategy Strategy
	NewStrategy Strategy
}

// RuntimeChangeListener receives every RuntimeChangeEvent emitted by
// strategy propagation, in the order they occur.
type RuntimeChangeListener func(RuntimeChangeEvent)

var runtimeChangeBus struct {
	mu        sync.Mutex
	listeners []RuntimeChangeListener
}

// OnRuntimeChange registers a listener for every future strategy change
// across the whole process's port graph (original_source/tEvent.h's
// process-wide runtime listener registry).
func OnRuntimeChange(l RuntimeChangeListener) {
	runtimeChangeBus.mu.Lock()
	defer runtimeChangeBus.mu.Unlock()
	runtimeChangeBus.listeners = append(runtimeChangeBus.listeners, l)
}

func publishRuntimeChangeLocked(portName string, old, new_ Strategy) {
	runtimeChangeBus.mu.Lock()
	listeners := runtimeChangeBus.listeners
	runtimeChangeBus.mu.Unlock()

	ev := RuntimeChangeEvent{PortName: portName, OldStrategy: old, NewStrategy: new_}
	for _, l := range listeners {
		l(ev)
	}
	logger.Debug().Str("port", portName).Int32("old_strategy", int32(old)).
		Int32("new_strategy", int32(new_)).Msg("dataports: strategy changed")
}
