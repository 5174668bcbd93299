// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"fmt"
	"sync"
	"time"
)

// genericPortBackend is the minimal surface GenericPort needs from a
// concrete CheapCopyPort[T]/StandardPort[T]/BoundedPort[T], letting one
// non-generic facade type stand in for any of them (spec §4.8's generic
// port facade, original_source/api/tGenericPortImplementation.h/.cpp).
type genericPortBackend interface {
	portNode
	Name() string
	AddListener(Listener)
	SetPullRequestHandler(PullRequestHandler)
	HasChanged() bool
	ResetChanged()
}

// GenericPort lets code that does not know a port's concrete data type at
// compile time still publish, pull and connect it — the spec §4.8
// counterpart of the source's runtime type-erased port handle, achieved in
// Go with an interface value instead of a base-class pointer.
type GenericPort struct {
	backend genericPortBackend
	typ     *typeDescriptor
}

// typeDescriptor records what RegisterType learned about one Go type, kept
// so GenericPort.PublishRaw can validate a caller's any value before
// forwarding it into the type-safe receiveAny path.
type typeDescriptor struct {
	name    string
	checker func(any) bool
}

var typeRegistry sync.Map // map[string]*typeDescriptor

// RegisterType records T's name in the process-wide type registry so
// NewGenericPort can look it up by name and PublishRaw can type-check
// values against it (spec §4.8, "generic port facade resolves types by name").
func RegisterType[T any](name string) {
	typeRegistry.Store(name, &typeDescriptor{
		name: name,
		checker: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
	})
}

// NewGenericPort wraps backend, which must be a *CheapCopyPort[T],
// *StandardPort[T] or *BoundedPort[T] for some T, behind the type-erased
// facade. typeName must have been registered with RegisterType[T].
func NewGenericPort(backend genericPortBackend, typeName string) (*GenericPort, error) {
	v, ok := typeRegistry.Load(typeName)
	if !ok {
		return nil, fmt.Errorf("dataports: type %q not registered", typeName)
	}
	return &GenericPort{backend: backend, typ: v.(*typeDescriptor)}, nil
}

func (g *GenericPort) Name() string { return g.backend.Name() }

// PublishRaw type-checks value against the port's registered type and, if
// it matches, delivers it via the ordinary receive path (spec §4.8;
// BrowsePublishRaw in original_source is this call plus relaxed readiness
// checks, which receiveAny's callees already apply uniformly here — see
// DESIGN.md Open Question 2).
func (g *GenericPort) PublishRaw(value any) error {
	if !g.typ.checker(value) {
		return ErrIncompatibleType
	}
	if !g.backend.receiveAny(value, time.Now(), KindChanged) {
		return ErrHijacked
	}
	return nil
}

// PullRaw retrieves the port's current or pulled value without the caller
// needing to know its concrete type (spec §4.6, §4.8).
func (g *GenericPort) PullRaw(ignoreLocalHandler bool) (any, time.Time) {
	v, ts, _ := g.backend.pullRawAny(ignoreLocalHandler)
	return v, ts
}

// AddListener and pull-request/change-status passthroughs mirror the
// generic facade's job of exposing every non-type-specific operation
// without the caller touching the concrete port type.
func (g *GenericPort) AddListener(l Listener)                     { g.backend.AddListener(l) }
func (g *GenericPort) SetPullRequestHandler(h PullRequestHandler) { g.backend.SetPullRequestHandler(h) }
func (g *GenericPort) HasChanged() bool                           { return g.backend.HasChanged() }
func (g *GenericPort) ResetChanged()                              { g.backend.ResetChanged() }

// node exposes the underlying portNode for Connect/Disconnect/
// ConnectWithConversion, which operate on portNode rather than GenericPort
// directly so typed ports never have to go through the facade just to wire
// a connection.
func (g *GenericPort) node() portNode { return g.backend }

// ConnectGeneric wires src to dst through the ordinary Connect path,
// resolving each side's concrete portNode from its facade.
func ConnectGeneric(src, dst *GenericPort) { Connect(src.node(), dst.node()) }
