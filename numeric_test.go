// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "testing"

func TestNumericRoundTrip(t *testing.T) {
	cases := []Number{
		NumberFromInt64(0),
		NumberFromInt64(42),
		NumberFromInt64(-58),
		NumberFromInt64(63),
		NumberFromInt64(-12345),
		NumberFromInt64(123456789),
		NumberFromInt64(-9223372036854775808),
		NumberFromFloat32(3.5),
		NumberFromFloat64(-2.71828),
	}

	for _, n := range cases {
		encoded := EncodeNumber(n)
		decoded, consumed, err := DecodeNumber(encoded)
		if err != nil {
			t.Fatalf("DecodeNumber(%v) error: %v", n, err)
		}
		if consumed != len(encoded) {
			t.Fatalf("consumed %d bytes, want %d", consumed, len(encoded))
		}
		switch n.Kind {
		case KindFloat32, KindFloat64:
			if decoded.Float != n.Float {
				t.Fatalf("float round trip mismatch: got %v want %v", decoded.Float, n.Float)
			}
		default:
			if decoded.Int != n.Int {
				t.Fatalf("int round trip mismatch: got %v want %v", decoded.Int, n.Int)
			}
		}
	}
}

func TestNumericHasUnitTolerated(t *testing.T) {
	n := NumberFromInt64(7)
	n.HasUnit = true
	encoded := EncodeNumber(n)
	decoded, _, err := DecodeNumber(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decoded.HasUnit {
		t.Fatalf("expected has_unit bit to survive round trip")
	}
	if decoded.Int != 7 {
		t.Fatalf("got %d want 7", decoded.Int)
	}
}

func TestNumericLegacyConstSkipped(t *testing.T) {
	// selector -59, low bit 0: raw7 = -59 & 0x7f = 69, first byte = 69<<1 = 138,
	// plus one payload byte the legacy constant itself still carries.
	data := []byte{138, 0xff}
	_, consumed, err := DecodeNumber(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed != 2 {
		t.Fatalf("legacy-const should consume exactly 2 bytes, got %d", consumed)
	}
}

func TestNumericLegacyConstWithUnitConsumesThreeBytes(t *testing.T) {
	// Same selector as above but with has_unit set (low bit 1): 138|1 = 139.
	data := []byte{139, 0xff, 0xaa}
	_, consumed, err := DecodeNumber(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed != 3 {
		t.Fatalf("legacy-const with has_unit should consume exactly 3 bytes, got %d", consumed)
	}
}

func TestNumericHasUnitDoesNotMisalignSubsequentValues(t *testing.T) {
	first := NumberFromInt64(7)
	first.HasUnit = true
	second := NumberFromInt64(99)

	stream := append(EncodeNumber(first), EncodeNumber(second)...)

	decodedFirst, n, err := DecodeNumber(stream)
	if err != nil {
		t.Fatalf("unexpected error decoding first value: %v", err)
	}
	if !decodedFirst.HasUnit || decodedFirst.Int != 7 {
		t.Fatalf("got %+v, want HasUnit=true Int=7", decodedFirst)
	}

	decodedSecond, _, err := DecodeNumber(stream[n:])
	if err != nil {
		t.Fatalf("unexpected error decoding second value: %v", err)
	}
	if decodedSecond.Int != 99 {
		t.Fatalf("second value misaligned by the first value's unit byte: got %d, want 99", decodedSecond.Int)
	}
}
