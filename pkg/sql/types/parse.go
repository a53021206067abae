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
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/cockroachdb/errors"
)

// typeExpr is the participle grammar for SQL type names:
//
//	type   := "ARRAY" "<" type ">"
//	        | "STRUCT" "<" [field ("," field)*] ">"
//	        | ident
//	field  := [ident] type
type typeExpr struct {
	Array  *typeExpr   `parser:"  'ARRAY' '<' @@ '>'"`
	Struct *structExpr `parser:"| @@"`
	Scalar string      `parser:"| @Ident"`
}

type structExpr struct {
	Fields []*fieldExpr `parser:"'STRUCT' '<' (@@ (',' @@)*)? '>'"`
}

type fieldExpr struct {
	Named   *namedField `parser:"  @@"`
	Unnamed *typeExpr   `parser:"| @@"`
}

type namedField struct {
	Name string    `parser:"@Ident"`
	Type *typeExpr `parser:"@@"`
}

var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z_0-9.]*`},
	{Name: "Punct", Pattern: `[<>,]`},
})

var typeParser = participle.MustBuild[typeExpr](
	participle.Lexer(typeLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(4),
)

// Parse parses a SQL type name such as ARRAY<STRUCT<a INT64, b STRING>>.
// Composite types are allocated through the given factory.
func Parse(factory *Factory, s string) (*T, error) {
	expr, err := typeParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse type %q", s)
	}
	return expr.build(factory)
}

func (e *typeExpr) build(factory *Factory) (*T, error) {
	switch {
	case e.Array != nil:
		elem, err := e.Array.build(factory)
		if err != nil {
			return nil, err
		}
		return factory.ArrayOf(elem), nil
	case e.Struct != nil:
		fields := make([]StructField, len(e.Struct.Fields))
		for i, f := range e.Struct.Fields {
			var err error
			switch {
			case f.Named != nil:
				fields[i].Name = f.Named.Name
				fields[i].Type, err = f.Named.Type.build(factory)
			case f.Unnamed != nil:
				fields[i].Type, err = f.Unnamed.build(factory)
			default:
				err = errors.Newf("empty struct field at position %d", i)
			}
			if err != nil {
				return nil, err
			}
		}
		return factory.StructOf(fields...), nil
	default:
		kind, ok := KindFromName(e.Scalar)
		if !ok {
			return nil, errors.Newf("unknown type name %q", e.Scalar)
		}
		t, ok := ScalarOf(kind)
		if !ok {
			return nil, errors.Newf("type name %q does not name a scalar type", e.Scalar)
		}
		return t, nil
	}
}
