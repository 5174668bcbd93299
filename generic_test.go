// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type genericTestPayload struct{ N int }

func TestGenericPortPublishAndPullRaw(t *testing.T) {
	RegisterType[genericTestPayload]("dataports.genericTestPayload")

	p := NewCheapCopyPort[genericTestPayload](CreationInfo[genericTestPayload]{Name: "generic-payload"})
	g, err := NewGenericPort(p, "dataports.genericTestPayload")
	require.NoError(t, err)

	require.NoError(t, g.PublishRaw(genericTestPayload{N: 5}))

	v, _ := g.PullRaw(false)
	require.Equal(t, genericTestPayload{N: 5}, v)
}

func TestGenericPortRejectsUnregisteredType(t *testing.T) {
	p := NewCheapCopyPort[int](CreationInfo[int]{Name: "generic-unregistered"})
	_, err := NewGenericPort(p, "dataports.doesNotExist")
	require.Error(t, err)
}

func TestGenericPortPublishRawRejectsWrongType(t *testing.T) {
	RegisterType[int]("dataports.genericInt")

	p := NewCheapCopyPort[int](CreationInfo[int]{Name: "generic-int"})
	g, err := NewGenericPort(p, "dataports.genericInt")
	require.NoError(t, err)

	err = g.PublishRaw("not an int")
	require.ErrorIs(t, err, ErrIncompatibleType)
}

func TestConnectGenericWiresUnderlyingNodes(t *testing.T) {
	RegisterType[int]("dataports.genericInt2")

	src := NewCheapCopyPort[int](CreationInfo[int]{Name: "generic-src", Flags: Flags{Emits: true}})
	dst := NewCheapCopyPort[int](CreationInfo[int]{Name: "generic-dst", Flags: Flags{Accepts: true, PushStrategy: true}})

	gSrc, err := NewGenericPort(src, "dataports.genericInt2")
	require.NoError(t, err)
	gDst, err := NewGenericPort(dst, "dataports.genericInt2")
	require.NoError(t, err)

	ConnectGeneric(gSrc, gDst)

	require.True(t, src.common().Strategy().pushes())
}
