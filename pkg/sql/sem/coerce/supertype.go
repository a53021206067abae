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
	"go.uber.org/zap"

	"github.com/graphaelli/zetasql/pkg/sql/sem/value"
	"github.com/graphaelli/zetasql/pkg/sql/types"
)

// GetCommonSuperType returns the single type every member of the argument
// set can implicitly coerce to, or nil if there is none. A nil result is an
// expected, recoverable outcome, not an error. Struct supertypes take their
// field aliases from the first non-NULL argument inserted into the set.
//
// Parameters are first treated like general expressions when collecting
// candidates; if that yields nothing, they are treated like literals and
// merely checked to coerce to the candidates.
func (c *Coercer) GetCommonSuperType(argumentSet *InputArgumentTypeSet) *types.T {
	if t := c.getCommonSuperTypeImpl(argumentSet, false); t != nil {
		return t
	}
	return c.getCommonSuperTypeImpl(argumentSet, true)
}

func (c *Coercer) getCommonSuperTypeImpl(
	argumentSet *InputArgumentTypeSet, treatParametersAsLiterals bool,
) *types.T {
	if argumentSet == nil || argumentSet.Len() == 0 {
		return nil
	}
	args := argumentSet.Arguments()
	for _, a := range args {
		if a.Type().IsStruct() {
			return c.getCommonStructSuperType(argumentSet)
		}
	}
	for _, a := range args {
		if a.Type().IsArray() {
			return c.getCommonArraySuperType(argumentSet, treatParametersAsLiterals)
		}
	}

	candidates := c.collectCandidates(args, treatParametersAsLiterals)
	var best *types.T
	bestDistance := types.CostInfinite
	for _, cand := range candidates {
		distance, ok := c.candidateDistance(args, cand)
		if !ok {
			continue
		}
		// Ties keep the earlier candidate: more specific, or declared
		// earlier in the set.
		if distance < bestDistance {
			best, bestDistance = cand, distance
		}
	}
	if best == nil {
		c.logger.Debug("no common supertype",
			zap.Stringer("arguments", argumentSet),
			zap.Bool("treat_parameters_as_literals", treatParametersAsLiterals))
	}
	return best
}

// collectCandidates gathers candidate supertypes in set-insertion order.
// Candidates come from the rigid members (general expressions, and
// parameters unless treated as literals), widened along their implicit
// coercion ladders from most to least specific. If there are no rigid
// members, the flexible members' types supply the candidates instead.
func (c *Coercer) collectCandidates(
	args []InputArgumentType, treatParametersAsLiterals bool,
) []*types.T {
	rigid := func(a InputArgumentType) bool {
		if a.IsLiteral() {
			return false
		}
		return !a.IsParameter() || !treatParametersAsLiterals
	}

	var candidates []*types.T
	add := func(t *types.T) {
		for _, k := range types.SupertypeKinds(t.Kind()) {
			cand := t
			if k != t.Kind() {
				scalar, ok := types.ScalarOf(k)
				if !ok {
					continue
				}
				cand = scalar
			}
			if !c.opts.TypeEnabled(cand) {
				continue
			}
			duplicate := false
			for _, existing := range candidates {
				if existing.Equivalent(cand) {
					duplicate = true
					break
				}
			}
			if !duplicate {
				candidates = append(candidates, cand)
			}
		}
	}

	hasRigid := false
	for _, a := range args {
		if rigid(a) {
			hasRigid = true
			add(a.Type())
		}
	}
	if hasRigid {
		return candidates
	}
	for _, a := range args {
		if !a.IsNullLiteral() {
			add(a.Type())
		}
	}
	if len(candidates) == 0 {
		// Only NULL literals: the supertype is their declared type.
		for _, a := range args {
			add(a.Type())
		}
	}
	return candidates
}

// candidateDistance returns the aggregate implicit coercion distance of all
// members to the candidate, or false if any member cannot coerce.
func (c *Coercer) candidateDistance(
	args []InputArgumentType, candidate *types.T,
) (int, bool) {
	var result SignatureMatchResult
	for _, a := range args {
		if !c.coercesTo(a, candidate, false /* isExplicit */, &result, nil) {
			return 0, false
		}
	}
	return result.distance, true
}

// getCommonStructSuperType computes a struct supertype field by field. All
// members must be struct-typed (NULL struct literals included) with the
// same arity; the resulting field aliases come from the first non-NULL
// argument.
func (c *Coercer) getCommonStructSuperType(argumentSet *InputArgumentTypeSet) *types.T {
	args := argumentSet.Arguments()
	for _, a := range args {
		if !a.Type().IsStruct() {
			return nil
		}
	}
	aliasSource, ok := argumentSet.FirstNonNullArgument()
	if !ok {
		aliasSource = args[0]
	}
	numFields := aliasSource.Type().NumFields()
	for _, a := range args {
		if a.Type().NumFields() != numFields {
			return nil
		}
	}

	// Fast path: when all members share one shape modulo field aliases, the
	// supertype is that shape carrying the alias source's names.
	if c.opts.TypeEnabled(aliasSource.Type()) {
		shape := c.stripFieldAliases(aliasSource.Type())
		sameShape := true
		for _, a := range args {
			if !c.stripFieldAliases(a.Type()).Identical(shape) {
				sameShape = false
				break
			}
		}
		if sameShape {
			return aliasSource.Type()
		}
	}

	fields := make([]types.StructField, numFields)
	for i := 0; i < numFields; i++ {
		fieldSet := NewInputArgumentTypeSet()
		for _, a := range args {
			fieldType := a.Type().StructFields()[i].Type
			switch {
			case a.IsNullLiteral():
				fieldSet.Append(Literal(value.Null(fieldType)))
			default:
				if fieldArgs, ok := a.FieldArguments(); ok {
					fieldSet.Append(fieldArgs[i])
				} else if a.IsParameter() {
					fieldSet.Append(Parameter(fieldType))
				} else {
					fieldSet.Append(Expression(fieldType))
				}
			}
		}
		fieldSuper := c.GetCommonSuperType(fieldSet)
		if fieldSuper == nil {
			c.logger.Debug("no common supertype for struct field",
				zap.Int("field", i), zap.Stringer("arguments", fieldSet))
			return nil
		}
		fields[i] = types.StructField{
			Name: aliasSource.Type().StructFields()[i].Name,
			Type: fieldSuper,
		}
	}
	return c.factory.StructOf(fields...)
}

// getCommonArraySuperType computes the supertype of all element types and
// wraps it in a freshly allocated array type. All members must be
// array-typed; the candidate is then re-verified against every member, which
// enforces that general array expressions are exactly equivalent to it.
func (c *Coercer) getCommonArraySuperType(
	argumentSet *InputArgumentTypeSet, treatParametersAsLiterals bool,
) *types.T {
	args := argumentSet.Arguments()
	for _, a := range args {
		if !a.Type().IsArray() {
			return nil
		}
	}

	elemSet := NewInputArgumentTypeSet()
	for _, a := range args {
		elemType := a.Type().ArrayElem()
		switch {
		case a.IsNullLiteral():
			elemSet.Append(Literal(value.Null(elemType)))
		case a.IsLiteral(), a.IsParameter():
			// Flexible arrays coerce element-wise; a parameter stand-in
			// keeps the element flexible without inventing element values.
			elemSet.Append(Parameter(elemType))
		default:
			elemSet.Append(Expression(elemType))
		}
	}
	elemSuper := c.getCommonSuperTypeImpl(elemSet, treatParametersAsLiterals)
	if elemSuper == nil {
		return nil
	}
	candidate := c.factory.ArrayOf(elemSuper)
	if _, ok := c.candidateDistance(args, candidate); !ok {
		c.logger.Debug("array supertype candidate rejected",
			zap.Stringer("candidate", candidate),
			zap.Stringer("arguments", argumentSet))
		return nil
	}
	return candidate
}

// stripFieldAliases returns the type with all struct field aliases removed,
// including within nested structs and array elements, normalizing it for
// structural comparison. Composite results are allocated through the
// factory.
func (c *Coercer) stripFieldAliases(t *types.T) *types.T {
	switch t.Kind() {
	case types.StructKind:
		fields := make([]types.StructField, t.NumFields())
		for i, f := range t.StructFields() {
			fields[i] = types.StructField{Type: c.stripFieldAliases(f.Type)}
		}
		return c.factory.StructOf(fields...)
	case types.ArrayKind:
		return c.factory.ArrayOf(c.stripFieldAliases(t.ArrayElem()))
	default:
		return t
	}
}
