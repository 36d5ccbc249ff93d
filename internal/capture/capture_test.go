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

package capture_test

import (
	"testing"

	. "fillmore-labs.com/hoistguard/internal/capture"
	"fillmore-labs.com/hoistguard/internal/scopes"
	"fillmore-labs.com/hoistguard/internal/testsource"
)

func analyze(tb testing.TB, src string) (*scopes.Graph, Result) {
	tb.Helper()

	g, err := scopes.Build(testsource.Parse(tb, src))
	if err != nil {
		tb.Fatalf("Failed to build scope graph: %v", err)
	}

	return g, Analyze(g)
}

func flagsFor(tb testing.TB, g *scopes.Graph, res Result, name string) Flags {
	tb.Helper()

	for bd := range g.Bindings() {
		if bd.Name == name {
			return res.Flags[bd.ID]
		}
	}

	tb.Fatalf("No binding named %q", name)

	return 0
}

func TestHazardFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		ident string
		want  Flags
		not   Flags
	}{
		{
			name:  "UseBeforeDeclaration",
			src:   `log(x); var x = 1;`,
			ident: "x",
			want:  FlagTDZ,
		},
		{
			name:  "SelfInitializer",
			src:   `var x = x + 1;`,
			ident: "x",
			want:  FlagTDZ,
		},
		{
			name:  "DeferredClosureIsNotTDZ",
			src:   `setTimeout(function () { log(x); }); var x = 1;`,
			ident: "x",
			not:   FlagTDZ,
		},
		{
			name:  "LoopCapture",
			src:   `for (var i = 0; i < 3; i++) { setTimeout(function () { log(i); }); }`,
			ident: "i",
			want:  FlagLoopCapture,
		},
		{
			name:  "ArrowLoopCapture",
			src:   `for (var i = 0; i < 3; i++) { setTimeout(() => log(i)); }`,
			ident: "i",
			want:  FlagLoopCapture,
		},
		{
			name:  "ClosureOutsideLoop",
			src:   `var i = 0; setTimeout(function () { log(i); });`,
			ident: "i",
			not:   FlagLoopCapture,
		},
		{
			name:  "EscapeFromBlock",
			src:   `function f(r) { if (r) { var x = 1; return x; } return x; }`,
			ident: "x",
			want:  FlagOutsideHome,
		},
		{
			name:  "StaysInBlock",
			src:   `function f(r) { if (r) { var x = 1; return x; } return 0; }`,
			ident: "x",
			not:   FlagOutsideHome,
		},
		{
			name:  "EvalVisibility",
			src:   `function f() { var x = 1; eval("x"); }`,
			ident: "x",
			want:  FlagDynamicScope,
		},
		{
			name:  "EvalElsewhere",
			src:   `function f() { var x = 1; } function g() { eval("1"); }`,
			ident: "x",
			not:   FlagDynamicScope,
		},
		{
			name:  "WithReference",
			src:   `var x = 1; var o = {}; with (o) { log(x); }`,
			ident: "x",
			want:  FlagDynamicScope,
		},
		{
			name:  "DeclarationInsideWith",
			src:   `var o = {}; with (o) { var x = 1; } log(x);`,
			ident: "x",
			want:  FlagDynamicScope,
		},
		{
			name:  "RedeclarationSameBlock",
			src:   `var x = 1; var x = 2;`,
			ident: "x",
			want:  FlagHomeCollision,
		},
		{
			name:  "RedeclarationAcrossBlocks",
			src:   `{ var x = 1; } { var x = 2; }`,
			ident: "x",
			want:  FlagOutsideHome,
		},
		{
			name:  "Clean",
			src:   `function f() { var x = 1; return x; }`,
			ident: "x",
			not:   FlagTDZ | FlagLoopCapture | FlagOutsideHome | FlagHomeCollision | FlagDynamicScope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			g, res := analyze(t, tt.src)

			// when
			fl := flagsFor(t, g, res, tt.ident)

			// then
			if !fl.Has(tt.want) {
				t.Errorf("Flags %b are missing %b", fl, tt.want)
			}
			if fl.Any(tt.not) {
				t.Errorf("Flags %b contain unwanted %b", fl, tt.not)
			}
		})
	}
}

func TestCaptureEdges(t *testing.T) {
	t.Parallel()

	// given
	g, res := analyze(t, `var n = 0; setTimeout(function () { n = n + 1; });`)

	// when
	bd := binding(t, g, "n")
	edges := res.Edges[bd.ID]

	// then
	if len(edges) == 0 {
		t.Fatal("Expected a capture edge")
	}

	var write bool
	for _, e := range edges {
		if g.Scope(e.Closure).Kind != scopes.KindFunction {
			t.Errorf("Closure scope kind is %v, want function", g.Scope(e.Closure).Kind)
		}
		write = write || e.Write
	}
	if !write {
		t.Error("Assignment inside the closure should produce a write edge")
	}
}

func TestNoEdgesWithoutClosures(t *testing.T) {
	t.Parallel()

	// given
	g, res := analyze(t, `var n = 0; n = n + 1; log(n);`)

	// then
	if edges := res.Edges[binding(t, g, "n").ID]; len(edges) != 0 {
		t.Errorf("Got %d capture edges, want none", len(edges))
	}
}

func binding(tb testing.TB, g *scopes.Graph, name string) *scopes.Binding {
	tb.Helper()

	for bd := range g.Bindings() {
		if bd.Name == name {
			return bd
		}
	}

	tb.Fatalf("No binding named %q", name)

	return nil
}
