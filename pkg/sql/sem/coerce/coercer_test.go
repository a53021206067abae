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

package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/graphaelli/zetasql/pkg/sql/sem/semlang"
	"github.com/graphaelli/zetasql/pkg/sql/sem/value"
	"github.com/graphaelli/zetasql/pkg/sql/types"
)

func newTestCoercer(t *testing.T) (*Coercer, *types.Factory) {
	t.Helper()
	f := types.NewFactory()
	return NewCoercer(f, nil, nil), f
}

func TestCoercesToScalars(t *testing.T) {
	c, _ := newTestCoercer(t)
	color := types.NewEnum("Color", []string{"RED", "GREEN"})
	shade := types.NewEnum("Shade", []string{"LIGHT", "DARK"})

	testCases := []struct {
		name       string
		from       InputArgumentType
		to         *types.T
		isExplicit bool
		ok         bool
		distance   int
	}{
		{"identical", Expression(types.Int64), types.Int64, false, true, 0},
		{"int32 expr widens", Expression(types.Int32), types.Int64, false, true, 1},
		{"int32 expr to double", Expression(types.Int32), types.Double, false, true, 2},
		{"int32 expr to numeric", Expression(types.Int32), types.Numeric, false, true, 3},
		{"int64 expr does not narrow", Expression(types.Int64), types.Int32, false, false, 0},
		{"string expr to date needs cast", Expression(types.String), types.Date, false, false, 0},
		{"string expr to date explicit", Expression(types.String), types.Date, true, true, 1},
		{"int64 param narrows", Parameter(types.Int64), types.Int32, false, true, 1},
		{"string param to timestamp", Parameter(types.String), types.Timestamp, false, true, 1},
		{"same enum", Expression(color), color, false, true, 0},
		{"distinct enums never coerce", Expression(color), shade, true, false, 0},
		{"null literal", Literal(value.Null(types.String)), types.Timestamp, false, true, 1},
		{"double literal to numeric", Literal(value.Double(3.5)), types.Numeric, false, true, 1},
		{"double literal does not narrow to int32", Literal(value.Double(3.5)), types.Int32, false, false, 0},
		{"string literal to date", Literal(value.String("2014-01-31")), types.Date, false, true, 1},
		{"bool expr to bytes impossible", Expression(types.Bool), types.Bytes, true, false, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var result SignatureMatchResult
			ok := c.CoercesTo(tc.from, tc.to, tc.isExplicit, &result)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, 1, result.MatchedArguments())
				require.Equal(t, 0, result.NonMatchedArguments())
				require.Equal(t, tc.distance, result.Distance())
			} else {
				require.Equal(t, 0, result.MatchedArguments())
				require.Equal(t, 1, result.NonMatchedArguments())
			}
		})
	}
}

// Explicit coercion must admit everything implicit coercion admits.
func TestExplicitSupersetOfImplicit(t *testing.T) {
	c, _ := newTestCoercer(t)
	scalars := []*types.T{
		types.Bool, types.Int32, types.Int64, types.Uint32, types.Uint64,
		types.Float, types.Double, types.Numeric, types.String, types.Bytes,
		types.Date, types.Time, types.Datetime, types.Timestamp,
	}
	for _, from := range scalars {
		for _, to := range scalars {
			var implicit, explicit SignatureMatchResult
			if c.CoercesTo(Expression(from), to, false, &implicit) {
				require.True(t, c.CoercesTo(Expression(from), to, true, &explicit),
					"%s coerces implicitly but not explicitly to %s", from, to)
			}
		}
	}
}

func TestSignatureMatchResultAccumulates(t *testing.T) {
	c, _ := newTestCoercer(t)
	var result SignatureMatchResult

	require.True(t, c.CoercesTo(Expression(types.Int32), types.Int64, false, &result))
	require.True(t, c.CoercesTo(Literal(value.Null(types.Int64)), types.Int64, false, &result))
	require.False(t, c.CoercesTo(Expression(types.String), types.Int64, false, &result))

	require.Equal(t, 2, result.MatchedArguments())
	require.Equal(t, 1, result.NonMatchedArguments())
	require.Equal(t, 2, result.Distance())
}

func TestAssignableTo(t *testing.T) {
	c, f := newTestCoercer(t)
	narrow := f.StructOf(types.StructField{Name: "a", Type: types.Int32})
	wide := f.StructOf(types.StructField{Name: "a", Type: types.Int64})

	testCases := []struct {
		name     string
		from     InputArgumentType
		to       *types.T
		ok       bool
		distance int
	}{
		{"identity", Expression(types.Int64), types.Int64, true, 0},
		{"coercible stays assignable", Expression(types.Int32), types.Int64, true, 1},
		{"int64 narrows to int32", Expression(types.Int64), types.Int32, true, 1},
		{"uint64 narrows to uint32", Expression(types.Uint64), types.Uint32, true, 1},
		{"int64 does not narrow to uint32", Expression(types.Int64), types.Uint32, false, 0},
		{"double does not narrow to float", Expression(types.Double), types.Float, false, 0},
		{"string stays unassignable", Expression(types.String), types.Int64, false, 0},
		// The narrowings apply at the top level only, never inside structs.
		{"no narrowing inside struct", Expression(wide), narrow, false, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var result SignatureMatchResult
			ok := c.AssignableTo(tc.from, tc.to, false, &result)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.distance, result.Distance())
				require.Equal(t, 1, result.MatchedArguments())
			} else {
				require.Equal(t, 1, result.NonMatchedArguments())
			}
		})
	}
}

func TestCoerceLiteral(t *testing.T) {
	c, f := newTestCoercer(t)

	t.Run("int32 retypes to int64", func(t *testing.T) {
		var result SignatureMatchResult
		out, ok := c.CoerceLiteral(value.Int32(5), types.Int64, false, &result)
		require.True(t, ok)
		require.Same(t, types.Int64, out.Type())
		require.Equal(t, int64(5), out.IntValue())
		require.Equal(t, 1, result.Distance())
	})

	t.Run("null retypes", func(t *testing.T) {
		var result SignatureMatchResult
		out, ok := c.CoerceLiteral(value.Null(types.Int64), types.Double, false, &result)
		require.True(t, ok)
		require.True(t, out.IsNull())
		require.Same(t, types.Double, out.Type())
		require.Equal(t, 1, result.Distance())
	})

	t.Run("struct literal rebuilds fields", func(t *testing.T) {
		src := f.StructOf(
			types.StructField{Name: "a", Type: types.Int32},
			types.StructField{Name: "b", Type: types.String},
		)
		dst := f.StructOf(
			types.StructField{Name: "x", Type: types.Int64},
			types.StructField{Name: "y", Type: types.String},
		)
		sv, err := value.Struct(src, []value.Value{value.Int32(1), value.String("x")})
		require.NoError(t, err)

		var result SignatureMatchResult
		out, ok := c.CoerceLiteral(sv, dst, false, &result)
		require.True(t, ok)
		require.Same(t, dst, out.Type())
		require.Same(t, types.Int64, out.Field(0).Type())
		require.Equal(t, int64(1), out.Field(0).IntValue())
		require.Equal(t, 1, result.Distance())
	})

	t.Run("failure leaves result mismatched", func(t *testing.T) {
		var result SignatureMatchResult
		_, ok := c.CoerceLiteral(value.Double(3.5), types.Int32, false, &result)
		require.False(t, ok)
		require.Equal(t, 1, result.NonMatchedArguments())
	})
}

func TestCoerceLiteralDefaultTimeZone(t *testing.T) {
	f := types.NewFactory()
	zone := time.FixedZone("UTC-8", -8*60*60)
	c := NewCoercer(f, zone, nil)

	d, ok := value.Convert(value.String("2014-01-31"), types.Date)
	require.True(t, ok)

	var result SignatureMatchResult
	out, ok := c.CoerceLiteral(d, types.Timestamp, false, &result)
	require.True(t, ok)
	require.Same(t, types.Timestamp, out.Type())
	require.Equal(t, zone, out.TimeValue().Location())
	require.Equal(t, 31, out.TimeValue().Day())
	require.Equal(t, 0, out.TimeValue().Hour())
	require.Equal(t, 2, result.Distance())
}

func TestStructCoercion(t *testing.T) {
	c, f := newTestCoercer(t)

	ab := f.StructOf(
		types.StructField{Name: "a", Type: types.Int64},
		types.StructField{Name: "b", Type: types.String},
	)
	xy := f.StructOf(
		types.StructField{Name: "x", Type: types.Int64},
		types.StructField{Name: "y", Type: types.String},
	)
	widened := f.StructOf(
		types.StructField{Name: "a", Type: types.Double},
		types.StructField{Name: "b", Type: types.String},
	)
	single := f.StructOf(types.StructField{Name: "a", Type: types.Int64})
	stringField := f.StructOf(types.StructField{Name: "s", Type: types.String})
	dateField := f.StructOf(types.StructField{Name: "d", Type: types.Date})

	t.Run("field names are irrelevant", func(t *testing.T) {
		var result SignatureMatchResult
		require.True(t, c.CoercesTo(Expression(ab), xy, false, &result))
		require.Equal(t, 0, result.Distance())
	})

	t.Run("fields coerce individually", func(t *testing.T) {
		src := f.StructOf(
			types.StructField{Name: "a", Type: types.Int32},
			types.StructField{Name: "b", Type: types.String},
		)
		var result SignatureMatchResult
		require.True(t, c.CoercesTo(Expression(src), widened, false, &result))
		require.Equal(t, 2, result.Distance())
		require.Equal(t, 1, result.MatchedArguments())
	})

	t.Run("arity mismatch", func(t *testing.T) {
		var result SignatureMatchResult
		require.False(t, c.CoercesTo(Expression(single), ab, false, &result))
		require.Equal(t, 1, result.NonMatchedArguments())
	})

	t.Run("literal fields keep literal rules", func(t *testing.T) {
		sv, err := value.Struct(stringField, []value.Value{value.String("2014-01-31")})
		require.NoError(t, err)

		var exprResult SignatureMatchResult
		require.False(t, c.CoercesTo(Expression(stringField), dateField, false, &exprResult))

		var litResult SignatureMatchResult
		out, ok := c.CoerceLiteral(sv, dateField, false, &litResult)
		require.True(t, ok)
		require.Same(t, types.Date, out.Field(0).Type())
		require.Equal(t, 31, out.Field(0).TimeValue().Day())
	})

	t.Run("partially literal struct", func(t *testing.T) {
		mixed := f.StructOf(
			types.StructField{Name: "s", Type: types.String},
			types.StructField{Name: "i", Type: types.Int64},
		)
		target := f.StructOf(
			types.StructField{Name: "d", Type: types.Date},
			types.StructField{Name: "i", Type: types.Int64},
		)
		arg, err := PartialStruct(mixed, []InputArgumentType{
			Literal(value.String("2014-01-31")),
			Expression(types.Int64),
		})
		require.NoError(t, err)

		var result SignatureMatchResult
		require.True(t, c.CoercesTo(arg, target, false, &result))
		require.Equal(t, 1, result.Distance())
	})
}

func TestArrayCoercion(t *testing.T) {
	c, f := newTestCoercer(t)
	arrInt32 := f.ArrayOf(types.Int32)
	arrInt64 := f.ArrayOf(types.Int64)

	t.Run("equivalent arrays", func(t *testing.T) {
		var result SignatureMatchResult
		require.True(t, c.CoercesTo(Expression(arrInt64), arrInt64, false, &result))
		require.Equal(t, 0, result.Distance())
	})

	t.Run("general expression requires equivalence", func(t *testing.T) {
		var result SignatureMatchResult
		require.False(t, c.CoercesTo(Expression(arrInt32), arrInt64, false, &result))
	})

	t.Run("explicit cast recurses into elements", func(t *testing.T) {
		var result SignatureMatchResult
		require.True(t, c.CoercesTo(Expression(arrInt32), arrInt64, true, &result))
		require.Equal(t, 1, result.Distance())
	})

	t.Run("parameter arrays coerce element-wise", func(t *testing.T) {
		var result SignatureMatchResult
		require.True(t, c.CoercesTo(Parameter(arrInt32), arrInt64, false, &result))
		require.Equal(t, 1, result.Distance())
	})

	t.Run("literal arrays coerce element-wise", func(t *testing.T) {
		av, err := value.Array(arrInt32, []value.Value{value.Int32(1)})
		require.NoError(t, err)
		var result SignatureMatchResult
		require.True(t, c.CoercesTo(Literal(av), arrInt64, false, &result))
		require.Equal(t, 1, result.Distance())
	})

	t.Run("array to scalar", func(t *testing.T) {
		var result SignatureMatchResult
		require.False(t, c.CoercesTo(Expression(arrInt64), types.Int64, false, &result))
	})
}

func TestDisabledKinds(t *testing.T) {
	f := types.NewFactory()
	opts := semlang.DefaultOptions()
	opts.DisableKind(types.NumericKind)
	opts.DisableKind(types.ArrayKind)
	c := NewCoercer(f, nil, opts)

	var result SignatureMatchResult
	require.False(t, c.CoercesTo(Expression(types.Int32), types.Numeric, false, &result))
	require.False(t, c.CoercesTo(Literal(value.Null(types.String)), types.Numeric, false, &result))

	arr := f.ArrayOf(types.Int64)
	require.False(t, c.CoercesTo(Expression(arr), arr, false, &result))
}

func TestGetLiteralCoercionCost(t *testing.T) {
	require.Equal(t, 1, GetLiteralCoercionCost(value.Null(types.String), types.Timestamp))
	require.Equal(t, 1, GetLiteralCoercionCost(value.Null(types.Int64), types.Int64))
	require.Equal(t, 0, GetLiteralCoercionCost(value.Int64(5), types.Int64))
	require.Equal(t, 1, GetLiteralCoercionCost(value.Int32(5), types.Int64))
	require.Equal(t, types.CostInfinite, GetLiteralCoercionCost(value.Bool(true), types.Bytes))
}
