// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// Sentinel errors for the recoverable half of the error taxonomy (spec §7
// items 1-4). Programmer-error conditions (reference counter corruption,
// double release) never surface as an error value; they go through fatalf.
var (
	// ErrIncompatibleType is returned by GenericPort.PublishRaw when the
	// value is not of the port's registered type. Connect does not check
	// port types and never returns it.
	ErrIncompatibleType = errors.New("dataports: incompatible port types without conversion")

	// ErrBoundsPostInit is logged (not returned) when SetBounds is called
	// while the bounded port's change flag is set (it has published or
	// received since construction or the last ResetChanged); kept as a
	// sentinel so callers that
	// inspect the warning programmatically in tests have something to match.
	ErrBoundsPostInit = errors.New("dataports: bounds set after port initialization, ignored")

	// ErrHijacked is returned by GenericPort.PublishRaw when the port does
	// not take the value: it is hijacked, or a bounded port discarded it.
	ErrHijacked = errors.New("dataports: port is hijacked")

	// ErrNotReady names the not-ready publish condition. No function returns
	// it: a publish to a port that has not completed initialization logs a
	// warning and returns false.
	ErrNotReady = errors.New("dataports: port is not ready")

	// ErrNoSource names the no-pull-source condition. No function returns or
	// checks it: a pull against a port with neither an incoming connection
	// nor a pull-request handler returns the port's own current value
	// (spec §7 item 4).
	ErrNoSource = errors.New("dataports: no pull source, returning own value")

	// ErrWouldBlock re-exports the non-blocking pool contract so callers of
	// dataports never need to import code.hybscloud.com/iox directly.
	ErrWouldBlock = iox.ErrWouldBlock
)

// BoundsError is returned by browser-path publishes that violate a bounded
// port's range with the DISCARD action; it carries the offending value so
// callers can report it, mirroring tBoundedPort.h's descriptive message for
// string-serializable values (spec §7 item 3).
type BoundsError struct {
	Value any
	Min   any
	Max   any
}

func (e *BoundsError) Error() string {
	if s, ok := e.Value.(fmt.Stringer); ok {
		return fmt.Sprintf("dataports: value %s out of bounds [%v, %v]", s.String(), e.Min, e.Max)
	}
	return fmt.Sprintf("dataports: value %v out of bounds [%v, %v]", e.Value, e.Min, e.Max)
}

// fatalf logs and panics, the Go analogue of the source's assert-then-abort
// for programmer-error conditions: reference counter corruption (tag
// mismatch, negative refcount) must never be recovered from (spec §7 item 6).
func fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Error().Msg(msg)
	panic("dataports: fatal: " + msg)
}
