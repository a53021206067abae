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

// Package value implements the immutable literal values carried by
// analysis-time arguments. A Value knows its own type and may represent SQL
// NULL independently of that type.
package value

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/graphaelli/zetasql/pkg/sql/types"
)

// Value is an immutable literal. The zero Value is invalid; build values
// through the constructors below.
type Value struct {
	typ  *types.T
	null bool

	// Scalar payloads, discriminated by typ.Kind().
	i  int64   // INT32, INT64, ENUM (value index), DATE (days)
	u  uint64  // UINT32, UINT64
	f  float64 // FLOAT, DOUBLE
	s  string  // STRING, NUMERIC (decimal text)
	b  []byte  // BYTES, PROTO (serialized message)
	bl bool    // BOOL
	t  time.Time

	children []Value // STRUCT fields, ARRAY elements
}

// Null returns the NULL literal of the given type.
func Null(t *types.T) Value {
	return Value{typ: t, null: true}
}

// Bool returns a BOOL literal.
func Bool(b bool) Value { return Value{typ: types.Bool, bl: b} }

// Int32 returns an INT32 literal.
func Int32(v int32) Value { return Value{typ: types.Int32, i: int64(v)} }

// Int64 returns an INT64 literal.
func Int64(v int64) Value { return Value{typ: types.Int64, i: v} }

// Uint32 returns a UINT32 literal.
func Uint32(v uint32) Value { return Value{typ: types.Uint32, u: uint64(v)} }

// Uint64 returns a UINT64 literal.
func Uint64(v uint64) Value { return Value{typ: types.Uint64, u: v} }

// Float returns a FLOAT literal.
func Float(v float32) Value { return Value{typ: types.Float, f: float64(v)} }

// Double returns a DOUBLE literal.
func Double(v float64) Value { return Value{typ: types.Double, f: v} }

// Numeric returns a NUMERIC literal from its decimal text form.
func Numeric(s string) Value { return Value{typ: types.Numeric, s: s} }

// String returns a STRING literal.
func String(s string) Value { return Value{typ: types.String, s: s} }

// Bytes returns a BYTES literal.
func Bytes(b []byte) Value { return Value{typ: types.Bytes, b: b} }

// Timestamp returns a TIMESTAMP literal.
func Timestamp(t time.Time) Value { return Value{typ: types.Timestamp, t: t} }

// Date returns a DATE literal.
func Date(t time.Time) Value { return Value{typ: types.Date, t: t} }

// Enum returns a literal of the given enum type. The name must be one of
// the enum's declared value names.
func Enum(t *types.T, name string) (Value, error) {
	if !t.IsEnum() {
		return Value{}, errors.AssertionFailedf("Enum called with non-enum type %s", t)
	}
	for i, v := range t.EnumValues() {
		if v == name {
			return Value{typ: t, i: int64(i), s: name}, nil
		}
	}
	return Value{}, errors.Newf("enum %s has no value named %q", t.EnumName(), name)
}

// Proto returns a literal of the given proto type holding a serialized
// message.
func Proto(t *types.T, wire []byte) (Value, error) {
	if !t.IsProto() {
		return Value{}, errors.AssertionFailedf("Proto called with non-proto type %s", t)
	}
	return Value{typ: t, b: wire}, nil
}

// Struct returns a struct literal. The field values must match the struct
// type's arity; per-field types are the caller's responsibility (the
// coercion engine builds structs from already-coerced children).
func Struct(t *types.T, fields []Value) (Value, error) {
	if !t.IsStruct() {
		return Value{}, errors.AssertionFailedf("Struct called with non-struct type %s", t)
	}
	if len(fields) != t.NumFields() {
		return Value{}, errors.AssertionFailedf(
			"struct type %s has %d fields, got %d values", t, t.NumFields(), len(fields))
	}
	return Value{typ: t, children: append([]Value(nil), fields...)}, nil
}

// Array returns an array literal.
func Array(t *types.T, elems []Value) (Value, error) {
	if !t.IsArray() {
		return Value{}, errors.AssertionFailedf("Array called with non-array type %s", t)
	}
	return Value{typ: t, children: append([]Value(nil), elems...)}, nil
}

// Zero returns the zero (non-NULL) literal of a type: 0, empty string,
// empty composites. Useful for synthesizing placeholder literals.
func Zero(t *types.T) Value {
	switch t.Kind() {
	case types.StructKind:
		fields := make([]Value, t.NumFields())
		for i, f := range t.StructFields() {
			fields[i] = Zero(f.Type)
		}
		return Value{typ: t, children: fields}
	case types.ArrayKind:
		return Value{typ: t}
	default:
		return Value{typ: t}
	}
}

// Type returns the value's own type.
func (v Value) Type() *types.T { return v.typ }

// IsNull returns whether the value represents SQL NULL.
func (v Value) IsNull() bool { return v.null }

// NumFields returns the number of struct fields.
func (v Value) NumFields() int { return len(v.children) }

// Field returns the i-th struct field value.
func (v Value) Field(i int) Value { return v.children[i] }

// Len returns the number of array elements.
func (v Value) Len() int { return len(v.children) }

// Elem returns the i-th array element.
func (v Value) Elem(i int) Value { return v.children[i] }

// BoolValue returns the payload of a BOOL literal.
func (v Value) BoolValue() bool { return v.bl }

// IntValue returns the payload of a signed integer literal.
func (v Value) IntValue() int64 { return v.i }

// UintValue returns the payload of an unsigned integer literal.
func (v Value) UintValue() uint64 { return v.u }

// FloatValue returns the payload of a floating point literal.
func (v Value) FloatValue() float64 { return v.f }

// StringValue returns the payload of a STRING, NUMERIC or ENUM literal.
func (v Value) StringValue() string { return v.s }

// BytesValue returns the payload of a BYTES or PROTO literal.
func (v Value) BytesValue() []byte { return v.b }

// TimeValue returns the payload of a date/time literal.
func (v Value) TimeValue() time.Time { return v.t }

// String implements the fmt.Stringer interface.
func (v Value) String() string {
	if v.typ == nil {
		return "<invalid>"
	}
	if v.null {
		return fmt.Sprintf("NULL(%s)", v.typ)
	}
	switch v.typ.Kind() {
	case types.BoolKind:
		return fmt.Sprintf("%t", v.bl)
	case types.Int32Kind, types.Int64Kind:
		return fmt.Sprintf("%d", v.i)
	case types.Uint32Kind, types.Uint64Kind:
		return fmt.Sprintf("%d", v.u)
	case types.FloatKind, types.DoubleKind:
		return fmt.Sprintf("%g", v.f)
	case types.StringKind:
		return fmt.Sprintf("%q", v.s)
	case types.NumericKind:
		return v.s
	case types.BytesKind, types.ProtoKind:
		return fmt.Sprintf("0x%x", v.b)
	case types.EnumKind:
		return v.s
	case types.StructKind, types.ArrayKind:
		parts := make([]string, len(v.children))
		for i, c := range v.children {
			parts[i] = c.String()
		}
		if v.typ.IsStruct() {
			return "(" + strings.Join(parts, ", ") + ")"
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("<%s>", v.typ)
	}
}

// Convert returns a copy of v retyped to the given target type, converting
// the scalar payload where the conversion is value-preserving and
// representable here (numeric widenings and exact narrowings, string/bytes
// reinterpretation). The boolean result is false when the payload conversion
// is not supported at analysis time; legality of the coercion itself is the
// engine's concern, not Convert's.
func Convert(v Value, to *types.T) (Value, bool) {
	if v.null {
		return Null(to), true
	}
	if v.typ.Identical(to) {
		return v, true
	}
	from, tgt := v.typ.Kind(), to.Kind()
	out := Value{typ: to}
	switch {
	case isSignedKind(from) && isSignedKind(tgt):
		out.i = v.i
	case isUnsignedKind(from) && isUnsignedKind(tgt):
		out.u = v.u
	case isUnsignedKind(from) && isSignedKind(tgt):
		out.i = int64(v.u)
	case isSignedKind(from) && isUnsignedKind(tgt):
		if v.i < 0 {
			return Value{}, false
		}
		out.u = uint64(v.i)
	case isSignedKind(from) && isFloatKind(tgt):
		out.f = float64(v.i)
	case isUnsignedKind(from) && isFloatKind(tgt):
		out.f = float64(v.u)
	case isFloatKind(from) && isFloatKind(tgt):
		out.f = v.f
	case from == types.StringKind && tgt == types.BytesKind:
		out.b = []byte(v.s)
	case from == types.BytesKind && tgt == types.StringKind:
		out.s = string(v.b)
	case from == types.StringKind && tgt == types.DateKind:
		t, err := time.Parse("2006-01-02", v.s)
		if err != nil {
			return Value{}, false
		}
		out.t = t
	case from == types.StringKind && tgt == types.TimeKind:
		t, err := time.Parse("15:04:05", v.s)
		if err != nil {
			return Value{}, false
		}
		out.t = t
	case from == types.StringKind && tgt == types.DatetimeKind:
		t, err := parseCivilDatetime(v.s)
		if err != nil {
			return Value{}, false
		}
		out.t = t
	case from == types.StringKind && tgt == types.TimestampKind:
		t, err := time.Parse(time.RFC3339, v.s)
		if err != nil {
			return Value{}, false
		}
		out.t = t
	case from == types.StringKind && tgt == types.EnumKind:
		ev, err := Enum(to, v.s)
		if err != nil {
			return Value{}, false
		}
		out = ev
	case from == types.EnumKind && tgt == types.StringKind:
		out.s = v.s
	case from == types.EnumKind && isSignedKind(tgt):
		out.i = v.i
	case from == types.ProtoKind && tgt == types.BytesKind:
		out.b = v.b
	case from == types.BytesKind && tgt == types.ProtoKind:
		out.b = v.b
	case from == types.DateKind && tgt == types.TimestampKind,
		from == types.DateKind && tgt == types.DatetimeKind,
		from == types.DatetimeKind && tgt == types.TimestampKind:
		out.t = v.t
	default:
		return Value{}, false
	}
	return out, true
}

func parseCivilDatetime(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", s)
	}
	return t, err
}

func isSignedKind(k types.Kind) bool {
	return k == types.Int32Kind || k == types.Int64Kind
}

func isUnsignedKind(k types.Kind) bool {
	return k == types.Uint32Kind || k == types.Uint64Kind
}

func isFloatKind(k types.Kind) bool {
	return k == types.FloatKind || k == types.DoubleKind
}
