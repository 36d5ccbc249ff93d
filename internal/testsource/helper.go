// Copyright 2026 Oliver Eikemeier. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package testsource provides utilities for parsing, rewriting and executing
// JavaScript snippets in tests.
//
// It handles the common boilerplate of driving the goja parser, applying an
// edit set to source text, and running a snippet in an isolated goja VM with
// its observable behavior captured.
package testsource

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"fillmore-labs.com/hoistguard/rewrite"
)

// Parse parses a JavaScript fragment for tests.
func Parse(tb testing.TB, src string) *ast.Program {
	tb.Helper()

	program, err := parser.ParseFile(nil, "test.js", src, 0)
	if err != nil {
		tb.Fatalf("Failed to parse source %q: %v", src, err)
	}

	return program
}

// Apply applies keyword edits to src and returns the rewritten text.
// Positions are 1-based byte offsets, as produced by the parser.
func Apply(tb testing.TB, src string, edits []rewrite.Edit) string {
	tb.Helper()

	var out strings.Builder

	last := file.Idx(1)
	for _, e := range edits {
		if e.Pos < last {
			tb.Fatalf("Edit at %d out of order", e.Pos)
		}

		out.WriteString(src[last-1 : e.Pos-1])

		if got := src[e.Pos-1 : e.End-1]; got != e.OldKeyword {
			tb.Fatalf("Edit at %d expects %q, source has %q", e.Pos, e.OldKeyword, got)
		}
		out.WriteString(e.NewKeyword)

		last = e.End
	}
	out.WriteString(src[last-1:])

	return out.String()
}

// Observed captures the program-observable outcome of running a snippet:
// everything logged, the completion value, and the failure class if any.
type Observed struct {
	Log   []string
	Value string
	Err   string
}

// Run executes a snippet in a fresh goja VM. The snippet gets a log function
// collecting output and a setTimeout standing in for deferred execution; the
// deferred queue is drained after the script completes, in order.
func Run(tb testing.TB, src string) Observed {
	tb.Helper()

	vm := goja.New()

	var obs Observed
	var queue []goja.Callable

	err := vm.Set("log", func(call goja.FunctionCall) goja.Value {
		for _, a := range call.Arguments {
			obs.Log = append(obs.Log, a.String())
		}

		return goja.Undefined()
	})
	if err != nil {
		tb.Fatalf("Failed to install log: %v", err)
	}

	err = vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		if fn, ok := goja.AssertFunction(call.Argument(0)); ok {
			queue = append(queue, fn)
		}

		return goja.Undefined()
	})
	if err != nil {
		tb.Fatalf("Failed to install setTimeout: %v", err)
	}

	v, err := vm.RunString(src)
	if err == nil {
		for len(queue) > 0 {
			fn := queue[0]
			queue = queue[1:]

			if _, ferr := fn(goja.Undefined()); ferr != nil {
				err = ferr

				break
			}
		}
	}

	switch {
	case err != nil:
		obs.Err = errClass(err)

	case v != nil:
		obs.Value = v.String()
	}

	return obs
}

// errClass reduces a runtime failure to its class name, so legacy and
// rewritten runs compare on the kind of failure rather than message
// spelling.
func errClass(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		s := exc.Value().String()
		if i := strings.IndexByte(s, ':'); i >= 0 {
			return s[:i]
		}

		return s
	}

	return "error"
}
