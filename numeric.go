// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"encoding/binary"
	"fmt"
	"math"
)

// NumberKind tags which concrete representation a Number currently holds,
// the canonical numeric container's discriminant spec §6 calls out as an
// out-of-core collaborator but whose wire format it fully specifies.
// Supplemented from that wire-format description since BoundedPort's
// numeric instantiations need a concrete container to bound and serialize.
type NumberKind int

const (
	KindImmediate NumberKind = iota // 7-bit signed value packed into the selector byte itself
	KindInt64
	KindInt32
	KindInt16
	KindFloat64
	KindFloat32
)

// Number is the canonical numeric value container referenced by spec §6's
// wire format section and by BoundedPort's numeric label ("unit table ...
// only relevant to numeric bounded ports").
type Number struct {
	Kind    NumberKind
	Int     int64
	Float   float64
	HasUnit bool
}

func NumberFromInt64(v int64) Number { return Number{Kind: selectIntKind(v), Int: v} }

// selectIntKind picks the narrowest integer representation (or the 7-bit
// immediate) that can hold v losslessly, matching the encoder's incentive
// to prefer the shortest wire form.
func selectIntKind(v int64) NumberKind {
	switch {
	case v >= -58 && v <= 63:
		return KindImmediate
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return KindInt16
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return KindInt32
	default:
		return KindInt64
	}
}

func NumberFromFloat64(v float64) Number { return Number{Kind: KindFloat64, Float: v} }
func NumberFromFloat32(v float32) Number { return Number{Kind: KindFloat32, Float: float64(v)} }

// selector byte values, per spec §6: "-64=int64, -63=int32, -62=int16,
// -61=float64, -60=float32, -59=legacy-const (skipped, warns), any other
// value = 7-bit signed immediate decoded as (first >> 1)".
const (
	selectorInt64      = -64
	selectorInt32      = -63
	selectorInt16      = -62
	selectorFloat64    = -61
	selectorFloat32    = -60
	selectorLegacyConst = -59
)

// EncodeNumber serializes n per spec §6's bit-exact numeric wire format.
func EncodeNumber(n Number) []byte {
	var selector int
	var payload []byte

	switch n.Kind {
	case KindImmediate:
		selector = int(n.Int)
	case KindInt16:
		selector = selectorInt16
		payload = make([]byte, 2)
		binary.LittleEndian.PutUint16(payload, uint16(int16(n.Int)))
	case KindInt32:
		selector = selectorInt32
		payload = make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, uint32(int32(n.Int)))
	case KindInt64:
		selector = selectorInt64
		payload = make([]byte, 8)
		binary.LittleEndian.PutUint64(payload, uint64(n.Int))
	case KindFloat32:
		selector = selectorFloat32
		payload = make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, math.Float32bits(float32(n.Float)))
	case KindFloat64:
		selector = selectorFloat64
		payload = make([]byte, 8)
		binary.LittleEndian.PutUint64(payload, math.Float64bits(n.Float))
	default:
		fatalf("dataports: unknown Number kind %d", n.Kind)
	}

	raw7 := byte(selector) & 0x7f
	first := raw7 << 1
	if n.HasUnit {
		first |= 1
	}
	out := append([]byte{first}, payload...)
	if n.HasUnit {
		// The trailing unit-table reference is an opaque identifier this
		// core never resolves (spec §6/"Unit table: opaque identifier,
		// only relevant to numeric bounded ports for labeling" is an
		// out-of-core collaborator); a single placeholder byte preserves
		// wire alignment for decoders that must consume it.
		out = append(out, 0)
	}
	return out
}

// DecodeNumber deserializes a Number per spec §6's wire format. has_unit is
// tolerated on read: the trailing unit byte is consumed and folded into the
// returned byte count, but never otherwise acted on. A legacy-const selector
// is skipped with a logged warning, but per original_source/numeric/tNumber.cpp
// still has one payload byte of its own to consume before the optional unit
// byte.
func DecodeNumber(data []byte) (Number, int, error) {
	if len(data) < 1 {
		return Number{}, 0, fmt.Errorf("dataports: numeric wire data is empty")
	}
	first := data[0]
	hasUnit := first&1 != 0
	raw7 := first >> 1
	selector := int(raw7)
	if raw7 >= 64 {
		selector = int(raw7) - 128
	}

	unitExtra := 0
	if hasUnit {
		unitExtra = 1
	}

	switch selector {
	case selectorLegacyConst:
		need := 2 + unitExtra
		if len(data) < need {
			return Number{}, 0, fmt.Errorf("dataports: truncated legacy numeric constant")
		}
		logger.Warn().Msg("dataports: skipping legacy numeric constant on decode")
		return Number{HasUnit: hasUnit}, need, nil
	case selectorInt16:
		need := 3 + unitExtra
		if len(data) < need {
			return Number{}, 0, fmt.Errorf("dataports: truncated int16 numeric value")
		}
		v := int16(binary.LittleEndian.Uint16(data[1:3]))
		return Number{Kind: KindInt16, Int: int64(v), HasUnit: hasUnit}, need, nil
	case selectorInt32:
		need := 5 + unitExtra
		if len(data) < need {
			return Number{}, 0, fmt.Errorf("dataports: truncated int32 numeric value")
		}
		v := int32(binary.LittleEndian.Uint32(data[1:5]))
		return Number{Kind: KindInt32, Int: int64(v), HasUnit: hasUnit}, need, nil
	case selectorInt64:
		need := 9 + unitExtra
		if len(data) < need {
			return Number{}, 0, fmt.Errorf("dataports: truncated int64 numeric value")
		}
		v := int64(binary.LittleEndian.Uint64(data[1:9]))
		return Number{Kind: KindInt64, Int: v, HasUnit: hasUnit}, need, nil
	case selectorFloat32:
		need := 5 + unitExtra
		if len(data) < need {
			return Number{}, 0, fmt.Errorf("dataports: truncated float32 numeric value")
		}
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[1:5]))
		return Number{Kind: KindFloat32, Float: float64(v), HasUnit: hasUnit}, need, nil
	case selectorFloat64:
		need := 9 + unitExtra
		if len(data) < need {
			return Number{}, 0, fmt.Errorf("dataports: truncated float64 numeric value")
		}
		v := math.Float64frombits(binary.LittleEndian.Uint64(data[1:9]))
		return Number{Kind: KindFloat64, Float: v, HasUnit: hasUnit}, need, nil
	default:
		need := 1 + unitExtra
		if len(data) < need {
			return Number{}, 0, fmt.Errorf("dataports: truncated immediate numeric value")
		}
		return Number{Kind: KindImmediate, Int: int64(selector), HasUnit: hasUnit}, need, nil
	}
}
