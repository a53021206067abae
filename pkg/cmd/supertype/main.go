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

// supertype resolves the common supertype of a set of SQL type arguments and
// prints the pairwise coercion matrix.
//
// Each argument is a type name, optionally prefixed with an occurrence kind:
//
//	supertype INT64 'param DOUBLE' 'literal STRING' NULL
//
// A bare NULL stands for an untyped NULL literal.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/graphaelli/zetasql/pkg/sql/sem/coerce"
	"github.com/graphaelli/zetasql/pkg/sql/sem/semlang"
	"github.com/graphaelli/zetasql/pkg/sql/sem/value"
	"github.com/graphaelli/zetasql/pkg/sql/types"
)

var (
	explicitFlag     bool
	paramsAsLiterals bool
	optionsPath      string
	verbose          bool
)

var rootCmd = &cobra.Command{
	Use:   "supertype <type> [<type> ...]",
	Short: "Compute the common supertype of SQL type arguments",
	Long: `Compute the common supertype of a set of SQL type arguments and print
the pairwise coercion matrix. Arguments may be prefixed with "literal",
"param" or "null" to control which coercion rules apply; unprefixed
arguments are treated as general expressions.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVar(&explicitFlag, "explicit", false,
		"use explicit cast legality in the coercion matrix")
	rootCmd.Flags().BoolVar(&paramsAsLiterals, "params-as-literals", false,
		"treat parameter arguments as literal zero values")
	rootCmd.Flags().StringVar(&optionsPath, "options", "",
		"path to a YAML language options file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

func run(cmd *cobra.Command, argStrings []string) error {
	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync()
	}

	opts := semlang.DefaultOptions()
	if optionsPath != "" {
		var err error
		if opts, err = semlang.ReadOptions(optionsPath); err != nil {
			return err
		}
	}

	factory := types.NewFactory()
	coercer := coerce.NewCoercer(factory, nil, opts, coerce.WithLogger(logger))

	set := coerce.NewInputArgumentTypeSet()
	for _, s := range argStrings {
		arg, err := parseArgument(factory, s)
		if err != nil {
			return err
		}
		set.Append(arg)
	}

	super := coercer.GetCommonSuperType(set)
	if super == nil {
		fmt.Println("no common supertype")
	} else {
		fmt.Printf("common supertype: %s\n", super)
	}

	printMatrix(coercer, set.Arguments())
	return nil
}

// parseArgument parses one command line argument of the form
// "[literal|param|null] <type>" or the bare word NULL.
func parseArgument(factory *types.Factory, s string) (coerce.InputArgumentType, error) {
	trimmed := strings.TrimSpace(s)
	if strings.EqualFold(trimmed, "null") {
		return coerce.Literal(value.Null(types.Int64)), nil
	}

	prefix, rest := "", trimmed
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		head := trimmed[:i]
		switch strings.ToLower(head) {
		case "literal", "param", "null":
			prefix, rest = strings.ToLower(head), strings.TrimSpace(trimmed[i:])
		}
	}

	typ, err := types.Parse(factory, rest)
	if err != nil {
		return coerce.InputArgumentType{}, errors.Wrapf(err, "argument %q", s)
	}

	switch prefix {
	case "null":
		return coerce.Literal(value.Null(typ)), nil
	case "literal":
		return coerce.Literal(value.Zero(typ)), nil
	case "param":
		if paramsAsLiterals {
			return coerce.Literal(value.Zero(typ)), nil
		}
		return coerce.Parameter(typ), nil
	default:
		return coerce.Expression(typ), nil
	}
}

// printMatrix renders the pairwise coercion costs between all arguments.
// Rows coerce into column types; "-" marks an illegal coercion.
func printMatrix(coercer *coerce.Coercer, args []coerce.InputArgumentType) {
	table := tablewriter.NewWriter(os.Stdout)
	header := []string{"from \\ to"}
	for _, a := range args {
		header = append(header, a.Type().String())
	}
	table.SetHeader(header)

	for _, from := range args {
		row := []string{from.String()}
		for _, to := range args {
			var result coerce.SignatureMatchResult
			if coercer.CoercesTo(from, to.Type(), explicitFlag, &result) {
				row = append(row, strconv.Itoa(result.Distance()))
			} else {
				row = append(row, "-")
			}
		}
		table.Append(row)
	}
	table.Render()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
