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
	"fmt"
	"math"
	"sort"
)

// Context specifies in which syntactic context a cast between two kinds is
// legal. A higher value corresponds to a higher strictness; a higher value
// Context can use lower value Contexts.
type Context uint8

const (
	_ Context = iota
	// ContextImplicit casts apply automatically in any expression.
	ContextImplicit
	// ContextAssignment casts additionally apply in assignment contexts
	// (e.g. SET col = expr with a narrower column type).
	ContextAssignment
	// ContextExplicit casts require explicit CAST syntax.
	ContextExplicit
)

// CostInfinite is the distinguished "no coercion exists" cost. All real
// coercion costs are small non-negative integers; identical types cost 0.
const CostInfinite = math.MaxInt32

// Cast describes the legality and cost of converting one simple kind to
// another. Source and Target are filled in by init.
type Cast struct {
	Source  Kind
	Target  Kind
	// Context is the minimal context in which a general expression of the
	// source kind may be cast to the target kind.
	Context Context
	// LiteralOnly marks casts that are additionally legal as implicit
	// coercions when the source is a literal or query parameter.
	LiteralOnly bool
	// Cost is the coercion distance between the two kinds; lower is a
	// closer match.
	Cost int
}

// castMap defines which simple kinds can be cast to which other kinds.
// The map goes from source kind -> target kind -> Cast. Composite kinds
// (struct, array) and same-kind conversions are handled structurally by the
// coercion engine, not here.
var castMap = map[Kind]map[Kind]Cast{
	BoolKind: {
		Int32Kind:  {Context: ContextExplicit, Cost: 11},
		Int64Kind:  {Context: ContextExplicit, Cost: 12},
		StringKind: {Context: ContextExplicit, Cost: 13},
	},
	Int32Kind: {
		Int64Kind:   {Context: ContextImplicit, Cost: 1},
		DoubleKind:  {Context: ContextImplicit, Cost: 2},
		NumericKind: {Context: ContextImplicit, Cost: 3},
		Uint32Kind:  {Context: ContextExplicit, Cost: 11},
		Uint64Kind:  {Context: ContextExplicit, Cost: 12},
		FloatKind:   {Context: ContextExplicit, Cost: 11},
		BoolKind:    {Context: ContextExplicit, Cost: 12},
		StringKind:  {Context: ContextExplicit, Cost: 13},
		EnumKind:    {Context: ContextExplicit, Cost: 14},
	},
	Uint32Kind: {
		Int64Kind:   {Context: ContextImplicit, Cost: 1},
		Uint64Kind:  {Context: ContextImplicit, Cost: 1},
		DoubleKind:  {Context: ContextImplicit, Cost: 2},
		NumericKind: {Context: ContextImplicit, Cost: 3},
		Int32Kind:   {Context: ContextExplicit, Cost: 11},
		FloatKind:   {Context: ContextExplicit, Cost: 11},
		BoolKind:    {Context: ContextExplicit, Cost: 12},
		StringKind:  {Context: ContextExplicit, Cost: 13},
		EnumKind:    {Context: ContextExplicit, Cost: 14},
	},
	Int64Kind: {
		DoubleKind:  {Context: ContextImplicit, Cost: 1},
		NumericKind: {Context: ContextImplicit, Cost: 2},
		// The assignment narrowing permitted for statements like
		// UPDATE t SET int32_col = int32_col + 1. Also reachable as a
		// literal coercion, where the resolver range-checks the value.
		Int32Kind:  {Context: ContextAssignment, LiteralOnly: true, Cost: 1},
		Uint32Kind: {Context: ContextExplicit, LiteralOnly: true, Cost: 2},
		Uint64Kind: {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		FloatKind:  {Context: ContextExplicit, Cost: 11},
		BoolKind:   {Context: ContextExplicit, Cost: 12},
		StringKind: {Context: ContextExplicit, Cost: 13},
		EnumKind:   {Context: ContextExplicit, Cost: 14},
	},
	Uint64Kind: {
		DoubleKind:  {Context: ContextImplicit, Cost: 1},
		NumericKind: {Context: ContextImplicit, Cost: 2},
		Uint32Kind:  {Context: ContextAssignment, Cost: 1},
		Int32Kind:   {Context: ContextExplicit, Cost: 12},
		Int64Kind:   {Context: ContextExplicit, Cost: 11},
		FloatKind:   {Context: ContextExplicit, Cost: 11},
		BoolKind:    {Context: ContextExplicit, Cost: 12},
		StringKind:  {Context: ContextExplicit, Cost: 13},
		EnumKind:    {Context: ContextExplicit, Cost: 14},
	},
	FloatKind: {
		DoubleKind:  {Context: ContextImplicit, Cost: 1},
		NumericKind: {Context: ContextExplicit, LiteralOnly: true, Cost: 2},
		Int32Kind:   {Context: ContextExplicit, Cost: 11},
		Int64Kind:   {Context: ContextExplicit, Cost: 11},
		Uint32Kind:  {Context: ContextExplicit, Cost: 12},
		Uint64Kind:  {Context: ContextExplicit, Cost: 12},
		StringKind:  {Context: ContextExplicit, Cost: 13},
	},
	DoubleKind: {
		FloatKind:   {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		NumericKind: {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		Int32Kind:   {Context: ContextExplicit, Cost: 12},
		Int64Kind:   {Context: ContextExplicit, Cost: 11},
		Uint32Kind:  {Context: ContextExplicit, Cost: 12},
		Uint64Kind:  {Context: ContextExplicit, Cost: 11},
		StringKind:  {Context: ContextExplicit, Cost: 13},
	},
	NumericKind: {
		DoubleKind: {Context: ContextImplicit, Cost: 1},
		FloatKind:  {Context: ContextExplicit, LiteralOnly: true, Cost: 2},
		Int32Kind:  {Context: ContextExplicit, Cost: 12},
		Int64Kind:  {Context: ContextExplicit, Cost: 11},
		Uint32Kind: {Context: ContextExplicit, Cost: 12},
		Uint64Kind: {Context: ContextExplicit, Cost: 11},
		StringKind: {Context: ContextExplicit, Cost: 13},
	},
	StringKind: {
		// String literals and parameters coerce to the civil time types,
		// enums and protos; general string expressions need a cast.
		DateKind:      {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		TimeKind:      {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		DatetimeKind:  {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		TimestampKind: {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		EnumKind:      {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		ProtoKind:     {Context: ContextExplicit, LiteralOnly: true, Cost: 1},
		BytesKind:     {Context: ContextExplicit, Cost: 11},
		BoolKind:      {Context: ContextExplicit, Cost: 12},
		Int32Kind:     {Context: ContextExplicit, Cost: 12},
		Int64Kind:     {Context: ContextExplicit, Cost: 12},
		Uint32Kind:    {Context: ContextExplicit, Cost: 12},
		Uint64Kind:    {Context: ContextExplicit, Cost: 12},
		FloatKind:     {Context: ContextExplicit, Cost: 12},
		DoubleKind:    {Context: ContextExplicit, Cost: 12},
		NumericKind:   {Context: ContextExplicit, Cost: 12},
	},
	BytesKind: {
		StringKind: {Context: ContextExplicit, Cost: 11},
		ProtoKind:  {Context: ContextExplicit, Cost: 12},
	},
	DateKind: {
		DatetimeKind:  {Context: ContextImplicit, Cost: 1},
		TimestampKind: {Context: ContextImplicit, Cost: 2},
		StringKind:    {Context: ContextExplicit, Cost: 13},
	},
	TimeKind: {
		StringKind: {Context: ContextExplicit, Cost: 13},
	},
	DatetimeKind: {
		TimestampKind: {Context: ContextImplicit, Cost: 1},
		DateKind:      {Context: ContextExplicit, Cost: 11},
		TimeKind:      {Context: ContextExplicit, Cost: 11},
		StringKind:    {Context: ContextExplicit, Cost: 13},
	},
	TimestampKind: {
		DateKind:     {Context: ContextExplicit, Cost: 11},
		TimeKind:     {Context: ContextExplicit, Cost: 11},
		DatetimeKind: {Context: ContextExplicit, Cost: 11},
		StringKind:   {Context: ContextExplicit, Cost: 13},
	},
	EnumKind: {
		StringKind: {Context: ContextExplicit, Cost: 13},
		Int32Kind:  {Context: ContextExplicit, Cost: 11},
		Int64Kind:  {Context: ContextExplicit, Cost: 11},
		Uint32Kind: {Context: ContextExplicit, Cost: 12},
		Uint64Kind: {Context: ContextExplicit, Cost: 12},
	},
	ProtoKind: {
		StringKind: {Context: ContextExplicit, Cost: 13},
		BytesKind:  {Context: ContextExplicit, Cost: 12},
	},
}

// FindCast returns whether a general expression of the source kind can be
// cast to the target kind in the given Context, along with the cast
// description.
func FindCast(src, tgt Kind, ctx Context) (Cast, bool) {
	if tgts, ok := castMap[src]; ok {
		if cast, ok := tgts[tgt]; ok {
			return cast, ctx >= cast.Context
		}
	}
	return Cast{}, false
}

// FindCastFor is like FindCast but also admits literal-only casts as
// implicit coercions when the source is a literal or query parameter.
func FindCastFor(src, tgt Kind, ctx Context, literalOrParameter bool) (Cast, bool) {
	if tgts, ok := castMap[src]; ok {
		if cast, ok := tgts[tgt]; ok {
			return cast, ctx >= cast.Context || (literalOrParameter && cast.LiteralOnly)
		}
	}
	return Cast{}, false
}

// KindCoercionCost returns the declared pairwise cost between two simple
// kinds, regardless of context, or CostInfinite if no cast exists at all.
// Identical kinds cost 0.
func KindCoercionCost(src, tgt Kind) int {
	if src == tgt {
		return 0
	}
	if cast, ok := castMap[src][tgt]; ok {
		return cast.Cost
	}
	return CostInfinite
}

// SupertypeKinds returns the kinds a general (non-literal) expression of the
// given kind implicitly coerces to, ordered from most to least specific:
// the kind itself first, then implicit targets by ascending cost. This is
// the candidate list used for common-supertype computation.
func SupertypeKinds(k Kind) []Kind {
	out := []Kind{k}
	var wider []Kind
	for tgt, cast := range castMap[k] {
		if cast.Context == ContextImplicit && !cast.LiteralOnly {
			wider = append(wider, tgt)
		}
	}
	sort.Slice(wider, func(i, j int) bool {
		ci, cj := castMap[k][wider[i]].Cost, castMap[k][wider[j]].Cost
		if ci != cj {
			return ci < cj
		}
		return wider[i] < wider[j]
	})
	return append(out, wider...)
}

// init does sanity checks on castMap and fills in Source and Target.
func init() {
	for src, tgts := range castMap {
		for tgt := range tgts {
			ent := castMap[src][tgt]
			ent.Source = src
			ent.Target = tgt
			if src == tgt {
				panic(fmt.Sprintf("self-cast declared for %s", src))
			}
			if ent.Context == Context(0) {
				panic(fmt.Sprintf("cast from %s to %s has no Context set", src, tgt))
			}
			if ent.Cost <= 0 || ent.Cost >= CostInfinite {
				panic(fmt.Sprintf("cast from %s to %s has invalid cost %d", src, tgt, ent.Cost))
			}
			if ent.LiteralOnly && ent.Context == ContextImplicit {
				panic(fmt.Sprintf("literal-only cast from %s to %s cannot be implicit", src, tgt))
			}
			castMap[src][tgt] = ent
		}
	}
}
