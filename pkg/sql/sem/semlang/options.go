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

// Package semlang holds the dialect configuration consulted by semantic
// analysis. Options gate which type kinds, and therefore which coercions,
// are legal under the active SQL dialect.
package semlang

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/graphaelli/zetasql/pkg/sql/types"
)

// Options is the set of dialect feature flags. The zero value enables
// everything. Options must outlive any Coercer holding them and must not be
// mutated while shared.
type Options struct {
	disabledKinds map[types.Kind]struct{}
}

// DefaultOptions returns options with every type kind enabled.
func DefaultOptions() *Options {
	return &Options{}
}

// DisableKind marks a type kind as unsupported by the dialect. No coercion
// targets a disabled kind, not even a NULL literal.
func (o *Options) DisableKind(k types.Kind) {
	if o.disabledKinds == nil {
		o.disabledKinds = make(map[types.Kind]struct{})
	}
	o.disabledKinds[k] = struct{}{}
}

// KindEnabled returns whether the dialect supports the given type kind.
func (o *Options) KindEnabled(k types.Kind) bool {
	if o == nil {
		return true
	}
	_, disabled := o.disabledKinds[k]
	return !disabled
}

// TypeEnabled returns whether the dialect supports the given type,
// including the kinds of all nested field and element types.
func (o *Options) TypeEnabled(t *types.T) bool {
	if !o.KindEnabled(t.Kind()) {
		return false
	}
	switch t.Kind() {
	case types.StructKind:
		for _, f := range t.StructFields() {
			if !o.TypeEnabled(f.Type) {
				return false
			}
		}
	case types.ArrayKind:
		return o.TypeEnabled(t.ArrayElem())
	}
	return true
}

type optionsFile struct {
	DisabledTypes []string `yaml:"disabled_types"`
}

// ReadOptions loads options from a YAML file of the form:
//
//	disabled_types: [NUMERIC, PROTO]
func ReadOptions(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open options file")
	}
	defer f.Close()

	var file optionsFile
	if err := yaml.NewDecoder(f).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "could not decode yaml options")
	}

	opts := DefaultOptions()
	for _, name := range file.DisabledTypes {
		kind, ok := types.KindFromName(name)
		if !ok {
			return nil, errors.Newf("unknown type name %q in disabled_types", name)
		}
		opts.DisableKind(kind)
	}
	return opts, nil
}
