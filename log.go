// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"os"

	"github.com/rs/zerolog"
)

// logger is the package-wide sink for WARNING/ERROR-class events named in
// the error taxonomy (bounds set after init, publishes to a not-ready port,
// corrupted reference counters before they escalate to a fatal abort). Pool
// exhaustion is not logged: the pool grows instead. Ports do not
// carry a context.Context on their hot path, so unlike
// starboard-nz-ephemeral_buffers' log.Ctx(ctx) pattern this is a package
// global; SetLogger lets an embedding application redirect it.
var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetLogger replaces the package-wide logger used for structural warnings,
// errors and fatal-assertion messages.
func SetLogger(l zerolog.Logger) {
	logger = l
}
