// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build arm64

package cacheline

// Size is the L1 cache line size for ARM64 architectures.
// Apple Silicon uses 128-byte L2 lines; 128 is kept as the conservative
// value so padding never under-shoots on that family.
const Size = 128
