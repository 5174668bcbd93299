// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "time"

// ConversionFunc transforms a value flowing across a ConversionConnector
// from the source port's type to the destination port's type. A non-nil
// error drops the value instead of forwarding it (spec §3/§4.7 conversion
// connections; original_source/common/tConversionConnector.h).
type ConversionFunc func(value any) (any, error)

// ConversionConnector adapts a publish crossing a type-incompatible edge,
// grounded on original_source/common/tConversionConnector.h/.cpp. Unlike a
// plain Connection, it never participates in strategy propagation's push/
// pull forwarding or in pull-engine upstream traversal (spec §4.6, §4.7):
// both engines treat any edge with a non-nil Conversion as a graph
// boundary, not a pass-through.
type ConversionConnector struct {
	Convert ConversionFunc

	// destination caches the type-erased view of the connector's fixed
	// output port, letting Publish dispatch without walking back through
	// GenericPort's registry on every call (original_source/common/
	// tConversionConnector.h's cached tGenericPortImplementation pointer).
	destination portNode
}

// NewConversionConnector builds a connector that applies fn to every value
// published across it before delivering to dst.
func NewConversionConnector(fn ConversionFunc, dst portNode) *ConversionConnector {
	return &ConversionConnector{Convert: fn, destination: dst}
}

// deliver runs the connector's conversion function and, on success, feeds
// the result into the cached destination via the ordinary receive path.
func (c *ConversionConnector) deliver(value any, timestamp time.Time, kind PublishKind) error {
	converted, err := c.Convert(value)
	if err != nil {
		logger.Debug().Err(err).Msg("dataports: conversion connector dropped a value")
		return err
	}
	c.destination.receiveAny(converted, timestamp, kind)
	return nil
}

// Connect links src to dst with a plain (non-conversion) edge, registers it
// on both ports' connection lists, and runs strategy propagation so an
// already-pushing destination immediately starts pulling pushes from src
// (spec §3 Connections, §4.7).
func Connect(src, dst portNode) {
	edge := &Connection{Source: src, Destination: dst}
	addOutgoing(src, edge)
	addIncoming(dst, edge)

	structureMu.Lock()
	defer structureMu.Unlock()
	propagateStrategyLocked(dst, nil)
}

// ConnectWithConversion links src to dst through a conversion function,
// registering the edge on both ports but excluding it from strategy
// propagation and pull traversal (spec §4.7).
func ConnectWithConversion(src, dst portNode, fn ConversionFunc) *ConversionConnector {
	conv := NewConversionConnector(fn, dst)
	edge := &Connection{Source: src, Destination: dst, Conversion: conv}
	addOutgoing(src, edge)
	addIncoming(dst, edge)
	return conv
}

// Disconnect removes every edge directly between src and dst.
func Disconnect(src, dst portNode) {
	srcPc := src.common()
	dstPc := dst.common()

	srcPc.mu.Lock()
	srcPc.outgoing = filterConnections(srcPc.outgoing, dst)
	srcPc.mu.Unlock()

	dstPc.mu.Lock()
	dstPc.incoming = filterConnections(dstPc.incoming, src)
	dstPc.mu.Unlock()

	structureMu.Lock()
	defer structureMu.Unlock()
	propagateStrategyLocked(dst, nil)
	propagateStrategyLocked(src, nil)
}

func addOutgoing(p portNode, edge *Connection) {
	pc := p.common()
	pc.mu.Lock()
	pc.outgoing = append(pc.outgoing, edge)
	pc.mu.Unlock()
}

func addIncoming(p portNode, edge *Connection) {
	pc := p.common()
	pc.mu.Lock()
	pc.incoming = append(pc.incoming, edge)
	pc.mu.Unlock()
}

func filterConnections(edges []*Connection, endpoint portNode) []*Connection {
	out := edges[:0]
	for _, e := range edges {
		if e.Source == endpoint || e.Destination == endpoint {
			continue
		}
		out = append(out, e)
	}
	return out
}
