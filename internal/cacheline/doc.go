// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cacheline reports the CPU L1 cache line size for the target
// architecture, used by the ring pool to spread consecutive slot indices
// across cache lines so neighbouring slots do not false-share.
package cacheline
