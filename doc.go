// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dataports implements an in-process, real-time publish/subscribe
// fabric: typed ports exchange values over directed connections through a
// lock-free current-value slot, a two-tier (thread-local + global) buffer
// pool system, reference-counted buffer lifetimes with ABA-safe tagged
// pointers, and a strategy-propagation algorithm that decides per edge
// whether data is pushed eagerly or pulled on demand.
//
// # Ports
//
// Two back-ends share the same external contract. CheapCopyPort holds its
// current value as an atomic tagged pointer into a pool-recycled buffer
// manager — the fast path for small, trivially-copyable values. StandardPort
// holds heap-allocated buffers shared by atomic refcount, for larger or
// non-trivially-destructible values. BoundedPort wraps a StandardPort to
// enforce bounds on publish; there is no bounded variant of CheapCopyPort.
// Either back-end can have an input queue (FIFOQueue or DequeueAllQueue)
// attached.
//
// # Publish and pull
//
// Publish assigns a buffer to a port's current slot, notifies listeners, and
// walks outgoing connections, recursively receiving into any destination
// that wants push. A port without an incoming push connection is pulled on
// demand: Pull walks backward through the connection graph until it finds a
// value and returns it to the caller; the pulled value is not stored on the
// ports it passes through.
//
// # Concurrency
//
// On a CheapCopyPort, Publish, receive and Get use no mutex around the
// current value: one atomic exchange per assignment, one atomic
// fetch-add/fetch-sub per external lock/unlock. A StandardPort guards its
// current buffer with a per-port mutex. Strategy propagation, which
// Connect, Disconnect and SetHijacked run, is serialized under a single
// process-wide structure mutex; the edge lists themselves are updated under
// each port's own mutex, before that lock is taken, and bounds changes use
// the bounded port's own mutex.
//
// # Dependencies
//
// dataports reuses code.hybscloud.com/iox for semantic non-blocking errors
// and code.hybscloud.com/spin for CAS-retry backoff, the same roles those
// packages play in hayabusa-cloud-iobuf's bounded pool. Logging goes through
// github.com/rs/zerolog.
package dataports
