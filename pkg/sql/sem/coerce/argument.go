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
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/graphaelli/zetasql/pkg/sql/sem/value"
	"github.com/graphaelli/zetasql/pkg/sql/types"
)

// ArgumentKind discriminates how an argument occurs in the query text.
// Literals and parameters coerce more freely than general expressions.
type ArgumentKind int

const (
	// ArgumentExpression is a general expression of known type.
	ArgumentExpression ArgumentKind = iota
	// ArgumentLiteral is a literal whose value is known at analysis time.
	ArgumentLiteral
	// ArgumentParameter is a query parameter.
	ArgumentParameter
)

// InputArgumentType describes one argument occurrence: its type, whether it
// is a literal, parameter or general expression, and, for (partially)
// literal structs, per-field argument descriptions.
type InputArgumentType struct {
	typ  *types.T
	kind ArgumentKind

	// literal is set iff kind == ArgumentLiteral.
	literal *value.Value

	// fieldArguments is optionally set for struct-typed arguments that are
	// literal or partially literal. A nil slice means every field is
	// treated as a non-literal of its declared type.
	fieldArguments []InputArgumentType
}

// Expression returns an argument describing a general expression of type t.
func Expression(t *types.T) InputArgumentType {
	return InputArgumentType{typ: t, kind: ArgumentExpression}
}

// Parameter returns an argument describing a query parameter of type t.
func Parameter(t *types.T) InputArgumentType {
	return InputArgumentType{typ: t, kind: ArgumentParameter}
}

// Literal returns an argument describing a literal value. Struct literals
// get a per-field argument list derived from the value's children.
func Literal(v value.Value) InputArgumentType {
	arg := InputArgumentType{typ: v.Type(), kind: ArgumentLiteral, literal: &v}
	if v.Type().IsStruct() && !v.IsNull() {
		arg.fieldArguments = make([]InputArgumentType, v.NumFields())
		for i := 0; i < v.NumFields(); i++ {
			arg.fieldArguments[i] = Literal(v.Field(i))
		}
	}
	return arg
}

// PartialStruct returns an argument describing a struct expression whose
// fields are individually described, e.g. a struct constructor mixing
// literal and non-literal fields. The field arguments must match the struct
// type's arity and field types.
func PartialStruct(t *types.T, fields []InputArgumentType) (InputArgumentType, error) {
	if !t.IsStruct() {
		return InputArgumentType{}, errors.AssertionFailedf(
			"PartialStruct called with non-struct type %s", t)
	}
	if len(fields) != t.NumFields() {
		return InputArgumentType{}, errors.AssertionFailedf(
			"struct type %s has %d fields, got %d arguments", t, t.NumFields(), len(fields))
	}
	return InputArgumentType{
		typ:            t,
		kind:           ArgumentExpression,
		fieldArguments: append([]InputArgumentType(nil), fields...),
	}, nil
}

// Type returns the argument's type.
func (a InputArgumentType) Type() *types.T { return a.typ }

// Kind returns the argument's occurrence kind.
func (a InputArgumentType) Kind() ArgumentKind { return a.kind }

// IsLiteral returns whether the argument is a literal.
func (a InputArgumentType) IsLiteral() bool { return a.kind == ArgumentLiteral }

// IsParameter returns whether the argument is a query parameter.
func (a InputArgumentType) IsParameter() bool { return a.kind == ArgumentParameter }

// IsNullLiteral returns whether the argument is a literal NULL.
func (a InputArgumentType) IsNullLiteral() bool {
	return a.kind == ArgumentLiteral && a.literal != nil && a.literal.IsNull()
}

// LiteralValue returns the embedded literal value, if any.
func (a InputArgumentType) LiteralValue() (value.Value, bool) {
	if a.literal == nil {
		return value.Value{}, false
	}
	return *a.literal, true
}

// FieldArguments returns the per-field argument list of a (partially)
// literal struct argument. The second result is false when fields should be
// treated as non-literals of their declared types.
func (a InputArgumentType) FieldArguments() ([]InputArgumentType, bool) {
	return a.fieldArguments, a.fieldArguments != nil
}

// String implements the fmt.Stringer interface.
func (a InputArgumentType) String() string {
	switch a.kind {
	case ArgumentLiteral:
		if a.IsNullLiteral() {
			return "null " + a.typ.String()
		}
		return "literal " + a.typ.String()
	case ArgumentParameter:
		return "param " + a.typ.String()
	default:
		return a.typ.String()
	}
}

// validate checks the discriminant/payload invariant. Violations are caller
// contract bugs, not recoverable analysis outcomes.
func (a InputArgumentType) validate() error {
	if a.typ == nil {
		return errors.AssertionFailedf("argument has no type")
	}
	if (a.kind == ArgumentLiteral) != (a.literal != nil) {
		return errors.AssertionFailedf(
			"argument kind %d inconsistent with literal payload presence", a.kind)
	}
	if a.fieldArguments != nil && !a.typ.IsStruct() {
		return errors.AssertionFailedf(
			"field arguments present on non-struct argument of type %s", a.typ)
	}
	return nil
}

// InputArgumentTypeSet is an ordered collection of arguments. Insertion
// order is preserved and observable; the set remembers the first inserted
// argument that is not a NULL literal, whose field aliases win when building
// a struct supertype. Duplicates are kept: multiplicity matters for cost
// aggregation.
type InputArgumentTypeSet struct {
	args         []InputArgumentType
	firstNonNull int
}

// NewInputArgumentTypeSet returns a set containing the given arguments in
// order.
func NewInputArgumentTypeSet(args ...InputArgumentType) *InputArgumentTypeSet {
	s := &InputArgumentTypeSet{firstNonNull: -1}
	for _, a := range args {
		s.Append(a)
	}
	return s
}

// Append adds an argument at the end of the set.
func (s *InputArgumentTypeSet) Append(a InputArgumentType) {
	if s.firstNonNull < 0 && !a.IsNullLiteral() {
		s.firstNonNull = len(s.args)
	}
	s.args = append(s.args, a)
}

// Len returns the number of arguments in the set.
func (s *InputArgumentTypeSet) Len() int { return len(s.args) }

// Arguments returns the arguments in insertion order. The returned slice is
// owned by the set and must not be mutated.
func (s *InputArgumentTypeSet) Arguments() []InputArgumentType { return s.args }

// FirstNonNullArgument returns the first inserted argument that is not a
// NULL literal.
func (s *InputArgumentTypeSet) FirstNonNullArgument() (InputArgumentType, bool) {
	if s.firstNonNull < 0 {
		return InputArgumentType{}, false
	}
	return s.args[s.firstNonNull], true
}

// String implements the fmt.Stringer interface.
func (s *InputArgumentTypeSet) String() string {
	parts := make([]string, len(s.args))
	for i, a := range s.args {
		parts[i] = a.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
