// Copyright 2024 The ZetaSQL-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindFromName(t *testing.T) {
	testCases := []struct {
		name string
		kind Kind
		ok   bool
	}{
		{"INT64", Int64Kind, true},
		{"int64", Int64Kind, true},
		{"BOOLEAN", BoolKind, true},
		{"FLOAT64", DoubleKind, true},
		{"NUMERIC", NumericKind, true},
		{"STRUCT", StructKind, true},
		{"ARRAY", ArrayKind, true},
		{"UNKNOWN", UnknownKind, false},
		{"VARCHAR", UnknownKind, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := KindFromName(tc.name)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.kind, kind)
			}
		})
	}
}

func TestIdenticalAndEquivalent(t *testing.T) {
	f := NewFactory()

	named := f.StructOf(
		StructField{Name: "a", Type: Int64},
		StructField{Name: "b", Type: String},
	)
	renamed := f.StructOf(
		StructField{Name: "x", Type: Int64},
		StructField{Name: "y", Type: String},
	)
	anonymous := f.StructOf(
		StructField{Type: Int64},
		StructField{Type: String},
	)
	widened := f.StructOf(
		StructField{Name: "a", Type: Double},
		StructField{Name: "b", Type: String},
	)

	colorV1 := NewEnum("Color", []string{"RED", "GREEN"})
	colorV2 := NewEnum("Color", []string{"RED", "GREEN", "BLUE"})
	shade := NewEnum("Shade", []string{"LIGHT", "DARK"})

	protoA := NewProto("pkg.Msg", nil)
	protoB := NewProto("pkg.Msg", nil)
	protoOther := NewProto("pkg.Other", nil)

	testCases := []struct {
		name       string
		a, b       *T
		identical  bool
		equivalent bool
	}{
		{"same scalar", Int64, Int64, true, true},
		{"different scalars", Int64, Int32, false, false},
		{"same struct", named, named, true, true},
		{"renamed fields", named, renamed, false, true},
		{"anonymous fields", named, anonymous, false, true},
		{"widened field", named, widened, false, false},
		{"arrays of equivalent structs", f.ArrayOf(named), f.ArrayOf(renamed), false, true},
		{"arrays of identical elems", f.ArrayOf(Int64), f.ArrayOf(Int64), true, true},
		// Enum identity is by name; the value list may evolve.
		{"enum versions", colorV1, colorV2, true, true},
		{"distinct enums", colorV1, shade, false, false},
		{"protos by name", protoA, protoB, true, true},
		{"distinct protos", protoA, protoOther, false, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.identical, tc.a.Identical(tc.b))
			require.Equal(t, tc.identical, tc.b.Identical(tc.a))
			require.Equal(t, tc.equivalent, tc.a.Equivalent(tc.b))
			require.Equal(t, tc.equivalent, tc.b.Equivalent(tc.a))
		})
	}
}

func TestTypeString(t *testing.T) {
	f := NewFactory()
	testCases := []struct {
		typ      *T
		expected string
	}{
		{Int64, "INT64"},
		{f.ArrayOf(String), "ARRAY<STRING>"},
		{
			f.StructOf(StructField{Name: "a", Type: Int64}, StructField{Type: Bytes}),
			"STRUCT<a INT64, BYTES>",
		},
		{
			f.ArrayOf(f.StructOf(StructField{Name: "ts", Type: Timestamp})),
			"ARRAY<STRUCT<ts TIMESTAMP>>",
		},
		{NewEnum("Color", nil), "ENUM<Color>"},
		{NewProto("pkg.Msg", nil), "PROTO<pkg.Msg>"},
		{NewExtended("geo.Point"), "EXTENDED<geo.Point>"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.typ.String())
		})
	}
}

func TestFactoryInterning(t *testing.T) {
	f := NewFactory()

	a1 := f.ArrayOf(Int64)
	a2 := f.ArrayOf(Int64)
	require.Same(t, a1, a2)

	s1 := f.StructOf(StructField{Name: "a", Type: Int64})
	s2 := f.StructOf(StructField{Name: "a", Type: Int64})
	require.Same(t, s1, s2)

	// Aliases distinguish interned entries even though the types stay
	// equivalent.
	s3 := f.StructOf(StructField{Name: "b", Type: Int64})
	require.NotSame(t, s1, s3)
	require.True(t, s1.Equivalent(s3))

	// A second factory produces distinct pointers for equal types.
	other := NewFactory()
	require.NotSame(t, a1, other.ArrayOf(Int64))
}
