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

// Package types implements the SQL type system consumed by the coercion
// engine: scalar kinds, struct and array composites, enums, proto messages,
// pairwise cast legality with costs, and a factory for interned composite
// types.
package types

import (
	"bytes"
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Kind identifies the shape of a type. Composite kinds (StructKind,
// ArrayKind) carry additional structure on T.
type Kind int

const (
	UnknownKind Kind = iota
	BoolKind
	Int32Kind
	Int64Kind
	Uint32Kind
	Uint64Kind
	FloatKind
	DoubleKind
	NumericKind
	StringKind
	BytesKind
	DateKind
	TimeKind
	DatetimeKind
	TimestampKind
	EnumKind
	ProtoKind
	StructKind
	ArrayKind
	ExtendedKind
)

var kindNames = map[Kind]string{
	UnknownKind:   "UNKNOWN",
	BoolKind:      "BOOL",
	Int32Kind:     "INT32",
	Int64Kind:     "INT64",
	Uint32Kind:    "UINT32",
	Uint64Kind:    "UINT64",
	FloatKind:     "FLOAT",
	DoubleKind:    "DOUBLE",
	NumericKind:   "NUMERIC",
	StringKind:    "STRING",
	BytesKind:     "BYTES",
	DateKind:      "DATE",
	TimeKind:      "TIME",
	DatetimeKind:  "DATETIME",
	TimestampKind: "TIMESTAMP",
	EnumKind:      "ENUM",
	ProtoKind:     "PROTO",
	StructKind:    "STRUCT",
	ArrayKind:     "ARRAY",
	ExtendedKind:  "EXTENDED",
}

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindFromName maps a SQL type name to its Kind. BOOLEAN and FLOAT64 are
// accepted aliases.
func KindFromName(name string) (Kind, bool) {
	switch strings.ToUpper(name) {
	case "BOOLEAN":
		return BoolKind, true
	case "FLOAT64":
		return DoubleKind, true
	}
	for k, s := range kindNames {
		if k == UnknownKind {
			continue
		}
		if strings.EqualFold(name, s) {
			return k, true
		}
	}
	return UnknownKind, false
}

// StructField is one named component of a struct type. The name is an
// alias: it does not participate in type equivalence.
type StructField struct {
	Name string
	Type *T
}

// T is an immutable node in the type system. Scalar types are shared
// singletons; composite types should be allocated through a Factory so that
// pointer equality implies type identity.
type T struct {
	kind Kind

	// StructKind only.
	fields []StructField
	// ArrayKind only.
	elem *T
	// EnumKind only.
	enumName   string
	enumValues []string
	// ProtoKind only. The descriptor is optional; equivalence is by full
	// name so that two versions of the same message unify.
	protoName protoreflect.FullName
	protoDesc protoreflect.MessageDescriptor
	// ExtendedKind only.
	extendedName string
}

// Scalar type singletons.
var (
	Bool      = &T{kind: BoolKind}
	Int32     = &T{kind: Int32Kind}
	Int64     = &T{kind: Int64Kind}
	Uint32    = &T{kind: Uint32Kind}
	Uint64    = &T{kind: Uint64Kind}
	Float     = &T{kind: FloatKind}
	Double    = &T{kind: DoubleKind}
	Numeric   = &T{kind: NumericKind}
	String    = &T{kind: StringKind}
	Bytes     = &T{kind: BytesKind}
	Date      = &T{kind: DateKind}
	Time      = &T{kind: TimeKind}
	Datetime  = &T{kind: DatetimeKind}
	Timestamp = &T{kind: TimestampKind}
)

var scalarByKind = map[Kind]*T{
	BoolKind:      Bool,
	Int32Kind:     Int32,
	Int64Kind:     Int64,
	Uint32Kind:    Uint32,
	Uint64Kind:    Uint64,
	FloatKind:     Float,
	DoubleKind:    Double,
	NumericKind:   Numeric,
	StringKind:    String,
	BytesKind:     Bytes,
	DateKind:      Date,
	TimeKind:      Time,
	DatetimeKind:  Datetime,
	TimestampKind: Timestamp,
}

// ScalarOf returns the shared singleton for a simple scalar kind.
func ScalarOf(k Kind) (*T, bool) {
	t, ok := scalarByKind[k]
	return t, ok
}

// NewEnum returns an enum type with the given name and value names.
func NewEnum(name string, values []string) *T {
	return &T{kind: EnumKind, enumName: name, enumValues: append([]string(nil), values...)}
}

// NewProto returns a proto message type identified by its full message name.
// The descriptor may be nil when only the name is known.
func NewProto(name protoreflect.FullName, desc protoreflect.MessageDescriptor) *T {
	return &T{kind: ProtoKind, protoName: name, protoDesc: desc}
}

// NewExtended returns an opaque extension type. Extended types coerce only
// to themselves.
func NewExtended(name string) *T {
	return &T{kind: ExtendedKind, extendedName: name}
}

// Kind returns the type's kind.
func (t *T) Kind() Kind { return t.kind }

// IsStruct returns whether the type is a struct.
func (t *T) IsStruct() bool { return t.kind == StructKind }

// IsArray returns whether the type is an array.
func (t *T) IsArray() bool { return t.kind == ArrayKind }

// IsEnum returns whether the type is an enum.
func (t *T) IsEnum() bool { return t.kind == EnumKind }

// IsProto returns whether the type is a proto message.
func (t *T) IsProto() bool { return t.kind == ProtoKind }

// StructFields returns the ordered fields of a struct type, nil otherwise.
func (t *T) StructFields() []StructField { return t.fields }

// NumFields returns the field count of a struct type.
func (t *T) NumFields() int { return len(t.fields) }

// ArrayElem returns the element type of an array type, nil otherwise.
func (t *T) ArrayElem() *T { return t.elem }

// EnumName returns the name of an enum type.
func (t *T) EnumName() string { return t.enumName }

// EnumValues returns the value names of an enum type.
func (t *T) EnumValues() []string { return t.enumValues }

// ProtoName returns the full message name of a proto type.
func (t *T) ProtoName() protoreflect.FullName { return t.protoName }

// ProtoDescriptor returns the descriptor of a proto type, which may be nil.
func (t *T) ProtoDescriptor() protoreflect.MessageDescriptor { return t.protoDesc }

// ExtendedName returns the name of an extended type.
func (t *T) ExtendedName() string { return t.extendedName }

// Identical reports exact type equality, including struct field aliases.
func (t *T) Identical(other *T) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || t.kind != other.kind {
		return false
	}
	switch t.kind {
	case StructKind:
		if len(t.fields) != len(other.fields) {
			return false
		}
		for i := range t.fields {
			if t.fields[i].Name != other.fields[i].Name ||
				!t.fields[i].Type.Identical(other.fields[i].Type) {
				return false
			}
		}
		return true
	case ArrayKind:
		return t.elem.Identical(other.elem)
	case EnumKind:
		return t.enumName == other.enumName
	case ProtoKind:
		return t.protoName == other.protoName && t.protoDesc == other.protoDesc
	case ExtendedKind:
		return t.extendedName == other.extendedName
	default:
		return true
	}
}

// Equivalent reports structural equality ignoring struct field aliases.
// Proto types are equivalent when they share a full message name, even if
// their descriptors come from different versions of the message.
func (t *T) Equivalent(other *T) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || t.kind != other.kind {
		return false
	}
	switch t.kind {
	case StructKind:
		if len(t.fields) != len(other.fields) {
			return false
		}
		for i := range t.fields {
			if !t.fields[i].Type.Equivalent(other.fields[i].Type) {
				return false
			}
		}
		return true
	case ArrayKind:
		return t.elem.Equivalent(other.elem)
	case EnumKind:
		return t.enumName == other.enumName
	case ProtoKind:
		return t.protoName == other.protoName
	case ExtendedKind:
		return t.extendedName == other.extendedName
	default:
		return true
	}
}

// String implements the fmt.Stringer interface, producing SQL type syntax
// such as ARRAY<STRUCT<a INT64, b STRING>>.
func (t *T) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.kind {
	case StructKind:
		var buf bytes.Buffer
		buf.WriteString("STRUCT<")
		for i, f := range t.fields {
			if i != 0 {
				buf.WriteString(", ")
			}
			if f.Name != "" {
				buf.WriteString(f.Name)
				buf.WriteByte(' ')
			}
			buf.WriteString(f.Type.String())
		}
		buf.WriteByte('>')
		return buf.String()
	case ArrayKind:
		return fmt.Sprintf("ARRAY<%s>", t.elem)
	case EnumKind:
		return fmt.Sprintf("ENUM<%s>", t.enumName)
	case ProtoKind:
		return fmt.Sprintf("PROTO<%s>", t.protoName)
	case ExtendedKind:
		return fmt.Sprintf("EXTENDED<%s>", t.extendedName)
	default:
		return t.kind.String()
	}
}
