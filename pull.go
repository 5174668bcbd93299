// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "time"

// pullFromIncoming implements spec §4.6's shared half of the pull protocol,
// used by both CheapCopyPort and StandardPort's pullRawAny: given the
// node's own (possibly hijacked) current value and its incoming edges,
// decide whether to return the local value or recurse upstream.
//
// Order of precedence, grounded on original_source/common/tPullOperation.h:
//  1. A hijacked port always returns its own current value; hijacking
//     severs it from its sources for both push and pull purposes.
//  2. An installed pull-request handler gets first refusal, unless the
//     caller set ignoreLocalHandler (used by the handler itself to pull
//     through to the real upstream source without recursing into itself).
//  3. The first non-conversion incoming edge is recursed into.
//  4. With neither a handler nor a non-conversion source, the port's own
//     current value is returned (spec §7 item 4's fallback).
func pullFromIncoming(pc *portCommon, ignoreLocalHandler bool, own func() (any, time.Time, bool)) (any, time.Time, bool) {
	if pc.IsHijacked() {
		return own()
	}

	if !ignoreLocalHandler {
		pc.mu.Lock()
		handler := pc.pullHandler
		pc.mu.Unlock()
		if handler != nil {
			if value, ok := handler(ignoreLocalHandler); ok {
				return value, time.Now(), true
			}
		}
	}

	pc.mu.Lock()
	var source portNode
	for _, edge := range pc.incoming {
		if edge.Conversion != nil {
			continue
		}
		source = edge.Source
		break
	}
	pc.mu.Unlock()

	if source == nil {
		return own()
	}
	return source.pullRawAny(ignoreLocalHandler)
}
