// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "time"

// proxyBackend is the union of everything ProxyPort forwards to: a port
// used on both the publishing and receiving side of a graph, typically to
// republish a value onward unchanged or after local inspection
// (original_source/tProxyPort.h).
type proxyBackend[T any] interface {
	queuedBackend[T]
}

// ProxyPort is the typed wrapper for a port that sits in the middle of a
// chain: applications read its current/pulled value like an InputPort and
// publish through it like an OutputPort, and it forwards pushes to its own
// outgoing connections exactly like any other port (spec §4.9).
type ProxyPort[T any] struct {
	backend proxyBackend[T]
	node    portNode
}

func NewCheapProxyPort[T any](p *CheapCopyPort[T]) *ProxyPort[T] {
	return &ProxyPort[T]{backend: p, node: p}
}

func NewStandardProxyPort[T any](p *StandardPort[T]) *ProxyPort[T] {
	return &ProxyPort[T]{backend: p, node: p}
}

func (x *ProxyPort[T]) Name() string { return x.backend.Name() }

func (x *ProxyPort[T]) Publish(value T) bool { return x.backend.Publish(value) }

func (x *ProxyPort[T]) Get() (T, time.Time)  { return x.backend.Get() }
func (x *ProxyPort[T]) Pull() (T, time.Time) { return x.backend.Pull() }

func (x *ProxyPort[T]) Dequeue() (T, time.Time, bool) { return x.backend.Dequeue() }
func (x *ProxyPort[T]) DequeueAll() *Fragment[T]      { return x.backend.DequeueAll() }

func (x *ProxyPort[T]) AddListener(l Listener) { x.backend.AddListener(l) }

func (x *ProxyPort[T]) SetPullRequestHandler(h PullRequestHandler) {
	x.backend.SetPullRequestHandler(h)
}

func (x *ProxyPort[T]) HasChanged() bool { return x.backend.HasChanged() }
func (x *ProxyPort[T]) ResetChanged()    { x.backend.ResetChanged() }

func (x *ProxyPort[T]) ConnectTo(dst portNode)   { Connect(x.node, dst) }
func (x *ProxyPort[T]) ConnectFrom(src portNode) { Connect(src, x.node) }

func (x *ProxyPort[T]) Node() portNode { return x.node }
