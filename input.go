// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "time"

// queuedBackend is the minimal interface InputPort needs in addition to
// cheapOrStandard: access to whichever input queue the concrete port was
// configured with (spec §4.5, §4.9).
type queuedBackend[T any] interface {
	cheapOrStandard[T]
	Pull() (T, time.Time)
	Dequeue() (T, time.Time, bool)
	DequeueAll() *Fragment[T]
}

// InputPort is the typed wrapper for a port an application intends to
// read from, including its optional input queue (original_source/
// tInputPort.h/.hpp).
type InputPort[T any] struct {
	backend queuedBackend[T]
	node    portNode
}

func NewCheapInputPort[T any](p *CheapCopyPort[T]) *InputPort[T] {
	return &InputPort[T]{backend: p, node: p}
}

func NewStandardInputPort[T any](p *StandardPort[T]) *InputPort[T] {
	return &InputPort[T]{backend: p, node: p}
}

func NewBoundedInputPort[T any](p *BoundedPort[T]) *InputPort[T] {
	return &InputPort[T]{backend: p, node: p}
}

func (i *InputPort[T]) Name() string { return i.backend.Name() }

// Get returns the port's currently stored value without pulling upstream,
// whatever its strategy; Pull is the accessor that runs the pull engine
// (spec §4.6).
func (i *InputPort[T]) Get() (T, time.Time) { return i.backend.Get() }

// Pull actively retrieves a value by walking incoming connections
// (spec §4.6).
func (i *InputPort[T]) Pull() (T, time.Time) { return i.backend.Pull() }

// Dequeue pops the oldest queued value (spec §4.5 FIFO queues).
func (i *InputPort[T]) Dequeue() (T, time.Time, bool) { return i.backend.Dequeue() }

// DequeueAll drains the port's dequeue-all queue (spec §4.5).
func (i *InputPort[T]) DequeueAll() *Fragment[T] { return i.backend.DequeueAll() }

func (i *InputPort[T]) AddListener(l Listener) { i.backend.AddListener(l) }

func (i *InputPort[T]) SetPullRequestHandler(h PullRequestHandler) {
	i.backend.SetPullRequestHandler(h)
}

func (i *InputPort[T]) HasChanged() bool { return i.backend.HasChanged() }
func (i *InputPort[T]) ResetChanged()    { i.backend.ResetChanged() }

func (i *InputPort[T]) ConnectFrom(src portNode) { Connect(src, i.node) }

func (i *InputPort[T]) Node() portNode { return i.node }
