// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "time"

// cheapOrStandard is the minimal interface OutputPort/InputPort/ProxyPort
// need from whichever concrete backend (CheapCopyPort, StandardPort or
// BoundedPort) they were built around (spec §4.9's thin typed wrappers over
// the two port kinds).
type cheapOrStandard[T any] interface {
	Name() string
	AddListener(Listener)
	SetPullRequestHandler(PullRequestHandler)
	HasChanged() bool
	ResetChanged()
	Get() (T, time.Time)
	Publish(value T) bool
}

// OutputPort is the typed, ergonomic wrapper applications construct for a
// port they intend to publish to (spec §6's typed API surface over
// CheapCopyPort/StandardPort/BoundedPort; original_source/tOutputPort.h).
type OutputPort[T any] struct {
	backend cheapOrStandard[T]
	node    portNode
}

// NewCheapOutputPort wraps a CheapCopyPort[T] as an OutputPort.
func NewCheapOutputPort[T any](p *CheapCopyPort[T]) *OutputPort[T] {
	return &OutputPort[T]{backend: p, node: p}
}

// NewStandardOutputPort wraps a StandardPort[T] as an OutputPort.
func NewStandardOutputPort[T any](p *StandardPort[T]) *OutputPort[T] {
	return &OutputPort[T]{backend: p, node: p}
}

// NewBoundedOutputPort wraps a BoundedPort[T] as an OutputPort.
func NewBoundedOutputPort[T any](p *BoundedPort[T]) *OutputPort[T] {
	return &OutputPort[T]{backend: p, node: p}
}

func (o *OutputPort[T]) Name() string { return o.backend.Name() }

// Publish forwards to the wrapped port's Publish (spec §4.2).
func (o *OutputPort[T]) Publish(value T) bool { return o.backend.Publish(value) }

// Get returns the port's current value, mainly useful for an OutputPort
// that is also read locally (spec §6).
func (o *OutputPort[T]) Get() (T, time.Time) { return o.backend.Get() }

func (o *OutputPort[T]) AddListener(l Listener) { o.backend.AddListener(l) }

func (o *OutputPort[T]) HasChanged() bool { return o.backend.HasChanged() }
func (o *OutputPort[T]) ResetChanged()    { o.backend.ResetChanged() }

// ConnectTo wires this port as the source of an edge to dst (spec §3).
func (o *OutputPort[T]) ConnectTo(dst portNode) { Connect(o.node, dst) }

// Node exposes the underlying portNode for Connect/Disconnect/GenericPort
// callers that need the type-erased view.
func (o *OutputPort[T]) Node() portNode { return o.node }
