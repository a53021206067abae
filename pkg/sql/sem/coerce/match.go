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

import "fmt"

// SignatureMatchResult accumulates match quality across the arguments of one
// signature-matching attempt. The caller owns it for the whole attempt; the
// engine only ever increments it. It must not be shared across concurrent
// coercion calls.
type SignatureMatchResult struct {
	matched    int
	nonMatched int
	distance   int
}

// MatchedArguments returns how many arguments coerced successfully.
func (r *SignatureMatchResult) MatchedArguments() int { return r.matched }

// NonMatchedArguments returns how many arguments failed to coerce.
func (r *SignatureMatchResult) NonMatchedArguments() int { return r.nonMatched }

// Distance returns the aggregate coercion cost of the matched arguments.
// Lower is a closer match; 0 means identical types throughout.
func (r *SignatureMatchResult) Distance() int { return r.distance }

// String implements the fmt.Stringer interface.
func (r *SignatureMatchResult) String() string {
	return fmt.Sprintf("matched=%d non_matched=%d distance=%d",
		r.matched, r.nonMatched, r.distance)
}

func (r *SignatureMatchResult) addMatch(cost int) {
	r.matched++
	r.distance += cost
}

func (r *SignatureMatchResult) addMismatch() {
	r.nonMatched++
}
