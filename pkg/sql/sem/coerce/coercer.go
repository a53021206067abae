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

// Package coerce decides which implicit and explicit type coercions are
// legal and computes common supertypes for heterogeneous argument sets.
// Different rules apply to literals, query parameters and general
// expressions, and NULL values are handled separately. Every negative
// outcome is a normal boolean/sentinel result, never an error.
package coerce

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/graphaelli/zetasql/pkg/sql/sem/semlang"
	"github.com/graphaelli/zetasql/pkg/sql/sem/value"
	"github.com/graphaelli/zetasql/pkg/sql/types"
)

// Coercer answers coercion and supertype queries. It is stateless with
// respect to any argument set and safe for concurrent use; the injected
// factory and options are borrowed and must outlive it.
type Coercer struct {
	factory *types.Factory
	// defaultTimeZone applies to coercions between dates/datetimes and
	// timestamps. Not relevant for other coercions.
	defaultTimeZone *time.Location
	opts            *semlang.Options
	logger          *zap.Logger
}

// Option configures a Coercer.
type Option func(*Coercer)

// WithLogger attaches a logger for debug-level coercion traces.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coercer) { c.logger = l }
}

// NewCoercer returns a Coercer using the given type factory, default
// timezone and language options. A nil timezone defaults to UTC; nil
// options enable everything.
func NewCoercer(
	factory *types.Factory, defaultTimeZone *time.Location, opts *semlang.Options, options ...Option,
) *Coercer {
	if defaultTimeZone == nil {
		defaultTimeZone = time.UTC
	}
	if opts == nil {
		opts = semlang.DefaultOptions()
	}
	c := &Coercer{
		factory:         factory,
		defaultTimeZone: defaultTimeZone,
		opts:            opts,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetLiteralCoercionCost returns the cost of coercing a literal value to
// the given type. The cost of coercing NULL values is 1 regardless of the
// target; non-NULL values cost the declared pairwise kind distance. Absence
// of any legal coercion is signaled by types.CostInfinite, never an error.
func GetLiteralCoercionCost(v value.Value, to *types.T) int {
	if v.IsNull() {
		return 1
	}
	if v.Type().Equivalent(to) {
		return 0
	}
	return types.KindCoercionCost(v.Type().Kind(), to.Kind())
}

// CoercesTo returns whether the argument can become the target type, under
// explicit or implicit coercion semantics. On success the result's matched
// count and distance are updated; on failure its non-matched count is
// incremented.
func (c *Coercer) CoercesTo(
	from InputArgumentType, to *types.T, isExplicit bool, result *SignatureMatchResult,
) bool {
	return c.coercesTo(from, to, isExplicit, result, nil)
}

// AssignableTo allows everything CoercesTo allows, plus INT64 -> INT32 and
// UINT64 -> UINT32. This supports statements like
// "UPDATE t SET int32_col = int32_col + 1", and as a side effect also
// permits an arbitrary wide expression into a narrow column. The narrowings
// apply only at the top level, not inside struct or array recursion.
func (c *Coercer) AssignableTo(
	from InputArgumentType, to *types.T, isExplicit bool, result *SignatureMatchResult,
) bool {
	var scratch SignatureMatchResult
	if c.coercesTo(from, to, isExplicit, &scratch, nil) {
		result.addMatch(scratch.distance)
		return true
	}
	fromKind, toKind := from.Type().Kind(), to.Kind()
	narrowing := (fromKind == types.Int64Kind && toKind == types.Int32Kind) ||
		(fromKind == types.Uint64Kind && toKind == types.Uint32Kind)
	if narrowing && c.opts.TypeEnabled(to) {
		if cast, ok := types.FindCast(fromKind, toKind, types.ContextAssignment); ok {
			result.addMatch(cast.Cost)
			return true
		}
	}
	result.addMismatch()
	return false
}

// CoerceLiteral coerces a literal value to the target type, additionally
// rebuilding the coerced literal where the conversion is representable at
// analysis time. The boolean result mirrors CoercesTo; the returned value
// is meaningful only on success.
func (c *Coercer) CoerceLiteral(
	v value.Value, to *types.T, isExplicit bool, result *SignatureMatchResult,
) (value.Value, bool) {
	coerced := v
	ok := c.coercesTo(Literal(v), to, isExplicit, result, &coerced)
	return coerced, ok
}

// coercesTo is the argument-level dispatch. When coerced is non-nil and the
// argument is a literal, the coerced literal value is written through it on
// success where representable.
func (c *Coercer) coercesTo(
	from InputArgumentType, to *types.T, isExplicit bool,
	result *SignatureMatchResult, coerced *value.Value,
) bool {
	if to == nil {
		panic(errors.AssertionFailedf("coercion target type is nil"))
	}
	if err := from.validate(); err != nil {
		panic(err)
	}
	if from.Type().Identical(to) {
		if coerced != nil && from.literal != nil {
			*coerced = *from.literal
		}
		result.addMatch(0)
		return true
	}
	switch {
	case from.IsLiteral():
		return c.literalCoercesTo(from, to, isExplicit, result, coerced)
	case from.Type().IsStruct():
		return c.structCoercesTo(from, to, isExplicit, result, coerced)
	case from.Type().IsArray():
		return c.arrayCoercesTo(from, to, isExplicit, result)
	case from.IsParameter():
		return c.parameterCoercesTo(from.Type(), to, isExplicit, result)
	default:
		return c.typeCoercesTo(from.Type(), to, isExplicit, result)
	}
}

// literalCoercesTo handles literal arguments. NULL literals coerce to any
// enabled type at cost 1; struct and array literals recurse.
func (c *Coercer) literalCoercesTo(
	from InputArgumentType, to *types.T, isExplicit bool,
	result *SignatureMatchResult, coerced *value.Value,
) bool {
	v := *from.literal
	if v.IsNull() {
		if !c.opts.TypeEnabled(to) {
			c.logger.Debug("null literal coercion to disabled type",
				zap.Stringer("to", to))
			result.addMismatch()
			return false
		}
		if coerced != nil {
			*coerced = value.Null(to)
		}
		result.addMatch(1)
		return true
	}
	if v.Type().IsStruct() {
		return c.structCoercesTo(from, to, isExplicit, result, coerced)
	}
	if v.Type().IsArray() {
		return c.arrayCoercesTo(from, to, isExplicit, result)
	}
	cost, ok := c.simpleCoercionCost(v.Type(), to, isExplicit, true /* literalOrParameter */)
	if !ok {
		result.addMismatch()
		return false
	}
	if coerced != nil {
		if conv, ok := value.Convert(v, to); ok {
			*coerced = c.retime(v.Type(), conv)
		}
	}
	result.addMatch(cost)
	return true
}

// retime rebuilds a timestamp produced from a civil date or datetime in the
// coercer's default timezone.
func (c *Coercer) retime(fromType *types.T, conv value.Value) value.Value {
	if conv.Type().Kind() != types.TimestampKind {
		return conv
	}
	if k := fromType.Kind(); k != types.DateKind && k != types.DatetimeKind {
		return conv
	}
	t := conv.TimeValue()
	return value.Timestamp(time.Date(
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		c.defaultTimeZone))
}

// parameterCoercesTo handles query parameters of simple type, which get the
// same relaxed legality as literals but have no value to range-check.
func (c *Coercer) parameterCoercesTo(
	from, to *types.T, isExplicit bool, result *SignatureMatchResult,
) bool {
	cost, ok := c.simpleCoercionCost(from, to, isExplicit, true /* literalOrParameter */)
	if !ok {
		result.addMismatch()
		return false
	}
	result.addMatch(cost)
	return true
}

// typeCoercesTo handles general expressions of simple type using the
// declared pairwise legality and cost tables.
func (c *Coercer) typeCoercesTo(
	from, to *types.T, isExplicit bool, result *SignatureMatchResult,
) bool {
	cost, ok := c.simpleCoercionCost(from, to, isExplicit, false /* literalOrParameter */)
	if !ok {
		result.addMismatch()
		return false
	}
	result.addMatch(cost)
	return true
}

// simpleCoercionCost consults type equivalence and the kind cast table.
// Equivalent types (including different versions of the same proto message)
// coerce at cost 0. It does not handle struct or array recursion.
func (c *Coercer) simpleCoercionCost(
	from, to *types.T, isExplicit, literalOrParameter bool,
) (int, bool) {
	if !c.opts.TypeEnabled(to) {
		return 0, false
	}
	if from.Equivalent(to) {
		return 0, true
	}
	if from.Kind() == to.Kind() {
		// Same kind but not equivalent: distinct enums, protos or
		// extension types never coerce to each other.
		return 0, false
	}
	ctx := types.ContextImplicit
	if isExplicit {
		ctx = types.ContextExplicit
	}
	cast, ok := types.FindCastFor(from.Kind(), to.Kind(), ctx, literalOrParameter)
	if !ok {
		return 0, false
	}
	return cast.Cost, true
}

// structCoercesTo coerces a struct-typed argument field by field. Field
// names are irrelevant; only field count and per-field coercibility matter.
// When the argument is a literal and coerced is non-nil, a new struct
// literal is rebuilt from the coerced field values.
func (c *Coercer) structCoercesTo(
	from InputArgumentType, to *types.T, isExplicit bool,
	result *SignatureMatchResult, coerced *value.Value,
) bool {
	fromType := from.Type()
	if !fromType.IsStruct() {
		panic(errors.AssertionFailedf("structCoercesTo called with non-struct argument %s", fromType))
	}
	if !to.IsStruct() || to.NumFields() != fromType.NumFields() || !c.opts.KindEnabled(types.StructKind) {
		result.addMismatch()
		return false
	}
	fieldArgs, ok := from.FieldArguments()
	if !ok {
		fieldArgs = make([]InputArgumentType, fromType.NumFields())
		for i, f := range fromType.StructFields() {
			fieldArgs[i] = Expression(f.Type)
		}
	}

	rebuild := from.literal != nil && coerced != nil
	var coercedFields []value.Value
	if rebuild {
		coercedFields = make([]value.Value, len(fieldArgs))
	}

	var fieldResult SignatureMatchResult
	for i, fieldArg := range fieldArgs {
		toField := to.StructFields()[i].Type
		var childBuf *value.Value
		if rebuild {
			if lit, ok := fieldArg.LiteralValue(); ok {
				coercedFields[i] = lit
			}
			childBuf = &coercedFields[i]
		}
		if !c.coercesTo(fieldArg, toField, isExplicit, &fieldResult, childBuf) {
			c.logger.Debug("struct field coercion failed",
				zap.Int("field", i),
				zap.Stringer("from", fieldArg.Type()),
				zap.Stringer("to", toField))
			result.addMismatch()
			return false
		}
	}
	if rebuild {
		if sv, err := value.Struct(to, coercedFields); err == nil {
			*coerced = sv
		}
	}
	result.addMatch(fieldResult.distance)
	return true
}

// arrayCoercesTo coerces an array-typed argument. Explicit coercion, or
// implicit coercion of a literal or parameter, recurses into the element
// types; implicit coercion of a general expression requires the two array
// types to be equivalent, since a non-literal array cannot be
// re-materialized element by element.
func (c *Coercer) arrayCoercesTo(
	from InputArgumentType, to *types.T, isExplicit bool, result *SignatureMatchResult,
) bool {
	fromType := from.Type()
	if !fromType.IsArray() {
		panic(errors.AssertionFailedf("arrayCoercesTo called with non-array argument %s", fromType))
	}
	if !to.IsArray() || !c.opts.TypeEnabled(to) {
		result.addMismatch()
		return false
	}
	if fromType.Equivalent(to) {
		result.addMatch(0)
		return true
	}
	flexible := from.IsLiteral() || from.IsParameter()
	if !isExplicit && !flexible {
		result.addMismatch()
		return false
	}
	elemArg := Expression(fromType.ArrayElem())
	if flexible {
		// Literal and parameter arrays are rebuilt element by element, so
		// their elements keep the relaxed coercion rules.
		elemArg = Parameter(fromType.ArrayElem())
	}
	var elemResult SignatureMatchResult
	if !c.coercesTo(elemArg, to.ArrayElem(), isExplicit, &elemResult, nil) {
		result.addMismatch()
		return false
	}
	result.addMatch(elemResult.distance)
	return true
}
