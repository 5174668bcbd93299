// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !amd64 && !arm64

package cacheline

// Size is the default L1 cache line size assumed on other architectures.
const Size = 64
