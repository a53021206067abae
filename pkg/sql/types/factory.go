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

import "sync"

// Factory allocates and interns composite types. Interning makes pointer
// equality meaningful for types built through the same factory, including
// types synthesized during supertype computation. A Factory is safe for
// concurrent use.
type Factory struct {
	mu     sync.Mutex
	byName map[string]*T
}

// NewFactory returns an empty type factory.
func NewFactory() *Factory {
	return &Factory{byName: make(map[string]*T)}
}

func (f *Factory) intern(t *T) *T {
	key := t.String()
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byName[key]; ok {
		return existing
	}
	f.byName[key] = t
	return t
}

// ArrayOf returns the array type with the given element type.
func (f *Factory) ArrayOf(elem *T) *T {
	return f.intern(&T{kind: ArrayKind, elem: elem})
}

// StructOf returns the struct type with the given ordered fields. Field
// names are aliases and distinguish interned entries, but not equivalence.
func (f *Factory) StructOf(fields ...StructField) *T {
	return f.intern(&T{kind: StructKind, fields: append([]StructField(nil), fields...)})
}
