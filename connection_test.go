// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConversionConnectorDeliversConvertedValue(t *testing.T) {
	dst := NewCheapCopyPort[string](CreationInfo[string]{Name: "dst-string"})

	conv := NewConversionConnector(func(v any) (any, error) {
		return fmt.Sprintf("n=%d", v.(int)), nil
	}, dst)

	require.NoError(t, conv.deliver(7, time.Now(), KindChanged))

	v, _ := dst.Get()
	require.Equal(t, "n=7", v)
}

func TestConversionConnectorDropsOnError(t *testing.T) {
	dst := NewCheapCopyPort[string](CreationInfo[string]{Name: "dst-string-2"})
	conv := NewConversionConnector(func(any) (any, error) {
		return nil, fmt.Errorf("boom")
	}, dst)

	err := conv.deliver(1, time.Now(), KindChanged)
	require.Error(t, err)

	v, _ := dst.Get()
	require.Equal(t, "", v, "a failed conversion must not reach the destination")
}

func TestConnectWithConversionExcludedFromPlainEdgeLists(t *testing.T) {
	src := NewCheapCopyPort[int](CreationInfo[int]{Name: "conv-src"})
	dst := NewCheapCopyPort[string](CreationInfo[string]{Name: "conv-dst"})

	conv := ConnectWithConversion(src, dst, func(v any) (any, error) {
		return fmt.Sprintf("%d", v.(int)), nil
	})

	require.Len(t, src.common().outgoing, 1)
	require.Same(t, conv, src.common().outgoing[0].Conversion)
}

func TestConnectPropagatesStrategyAndDisconnectReverts(t *testing.T) {
	src := NewCheapCopyPort[int](CreationInfo[int]{Name: "rev-src", Flags: Flags{Emits: true}})
	dst := NewCheapCopyPort[int](CreationInfo[int]{Name: "rev-dst", Flags: Flags{Accepts: true, PushStrategy: true}})

	Connect(src, dst)
	require.True(t, src.common().Strategy().pushes())
	require.Len(t, dst.common().incoming, 1)

	Disconnect(src, dst)

	require.Empty(t, src.common().outgoing)
	require.Empty(t, dst.common().incoming)
}
