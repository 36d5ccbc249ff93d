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

// Package capture relates bindings to the closures that reference them and
// detects the hazards that make a block-scoped rewrite observable: loop
// captures, reads before the declarator, references escaping the home block,
// and dynamic scoping. The analysis is pure and never fails; absence of
// evidence is itself a valid decision input.
package capture

import "fillmore-labs.com/hoistguard/internal/scopes"

// Flags indicates which hazards were observed on a binding.
type Flags uint8

const (
	// FlagTDZ is a reference before the declarator completes, in the same
	// execution context. The legacy form reads the default value there; the
	// block-scoped form fails hard.
	FlagTDZ Flags = 1 << iota

	// FlagLoopCapture is a capture by a closure created inside the loop the
	// declaration textually belongs to.
	FlagLoopCapture

	// FlagOutsideHome is a reference or an extra declaration site outside
	// the home block; after lowering it would resolve to a different
	// binding, or to none.
	FlagOutsideHome

	// FlagHomeCollision is a second declaration site in the same home
	// block, which the block-scoped form rejects as a re-declaration.
	FlagHomeCollision

	// FlagDynamicScope is visibility to a direct eval call, or a reference
	// or declaration site under a with statement; resolution escapes static
	// analysis there.
	FlagDynamicScope
)

// Has reports whether all given flags are set.
func (f Flags) Has(fl Flags) bool { return f&fl == fl }

// Any reports whether at least one of the given flags is set.
func (f Flags) Any(fl Flags) bool { return f&fl != 0 }

// Edge relates a binding to a closure referencing it from outside the
// declaring scope's lexical extent.
type Edge struct {
	Binding scopes.BindingID

	// Closure is the innermost function scope enclosing the reference.
	Closure scopes.ID

	// Write is set when the closure assigns to the binding.
	Write bool
}

// Result is the capture analysis for one scope graph, read-only afterward.
type Result struct {
	// Edges maps bindings to their capturing closures.
	Edges map[scopes.BindingID][]Edge

	// Flags maps bindings to observed hazards; absent means none.
	Flags map[scopes.BindingID]Flags
}

// Analyze computes capture edges and hazard flags for every binding.
func Analyze(g *scopes.Graph) Result {
	res := Result{
		Edges: make(map[scopes.BindingID][]Edge),
		Flags: make(map[scopes.BindingID]Flags),
	}

	for bd := range g.Bindings() {
		fl := analyzeBinding(g, bd, &res)
		if fl != 0 {
			res.Flags[bd.ID] = fl
		}
	}

	return res
}

func analyzeBinding(g *scopes.Graph, bd *scopes.Binding, res *Result) Flags {
	var fl Flags

	site := bd.Site()

	for i, s := range bd.Sites {
		if s.InWith {
			fl |= FlagDynamicScope
		}

		if i == 0 {
			continue
		}

		if s.Home == site.Home {
			fl |= FlagHomeCollision
		} else {
			fl |= FlagOutsideHome
		}
	}

	for _, ref := range bd.Refs {
		if !g.Within(ref.Scope, site.Home) {
			fl |= FlagOutsideHome
		}
		if ref.InWith {
			fl |= FlagDynamicScope
		}

		cl := nearestClosure(g, ref.Scope, bd.Scope)
		if cl == scopes.NoScope {
			// same execution context: the reference runs when this code does
			if ref.Pos < site.End {
				fl |= FlagTDZ
			}

			continue
		}

		addEdge(res, Edge{Binding: bd.ID, Closure: cl, Write: ref.Write})

		if bd.EnclosingLoop != scopes.NoScope && g.Within(cl, bd.EnclosingLoop) {
			fl |= FlagLoopCapture
		}
	}

	for _, es := range g.EvalScopes() {
		if g.Within(es, bd.Scope) {
			fl |= FlagDynamicScope

			break
		}
	}

	return fl
}

// nearestClosure returns the innermost function scope crossed between a
// reference and the declaring scope, or NoScope when the reference is in the
// same execution context.
func nearestClosure(g *scopes.Graph, from, declaring scopes.ID) scopes.ID {
	for s := from; s != declaring && s != scopes.NoScope; s = g.Scope(s).Parent {
		if g.Scope(s).Kind == scopes.KindFunction {
			return s
		}
	}

	return scopes.NoScope
}

func addEdge(res *Result, e Edge) {
	for _, ex := range res.Edges[e.Binding] {
		if ex == e {
			return
		}
	}

	res.Edges[e.Binding] = append(res.Edges[e.Binding], e)
}
