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

// Package scopes builds the scope graph and binding table for a parsed
// JavaScript program.
//
// Scopes are held in an arena indexed by integer id, with the parent stored
// as an index; parent references are used for upward lookup only. Hoisting
// of function-scoped declarations is modeled as a dedicated attachment step:
// every declaration is attached to the scope its declaration form owns, not
// the scope it textually appears in. The graph is immutable once [Build]
// returns.
package scopes

import (
	"iter"

	"github.com/dop251/goja/file"
)

// Kind classifies a scope node.
type Kind uint8

//go:generate go tool stringer -type Kind -linecomment
const (
	// KindProgram is the root scope; it has no parent.
	KindProgram Kind = iota // program

	// KindFunction is the scope of a function body, including its parameters.
	KindFunction // function

	// KindBlock is a compound statement or switch body.
	KindBlock // block

	// KindLoop spans a loop's initializer and body; declarations attached
	// here get per-iteration semantics in the block-scoped form.
	KindLoop // loop

	// KindCatch owns a catch clause's parameter.
	KindCatch // catch
)

// ID is an index into the scope arena.
type ID int

// NoScope is the nil value for scope references.
const NoScope ID = -1

// Scope is one node of the scope tree.
type Scope struct {
	ID     ID
	Parent ID
	Kind   Kind

	// Children are the direct child scopes, in traversal order.
	Children []ID

	// Names maps declared names to their bindings. Within one scope, names
	// are unique; colliding declarations are flagged, never merged silently.
	Names map[string]BindingID

	// Pos and End delimit the scope's lexical extent, descriptive only.
	Pos, End file.Idx
}

// FreeRef is a read of a name with no reachable declaration; such names are
// treated as globals supplied by the host environment and excluded from
// lowering.
type FreeRef struct {
	Name string
	Pos  file.Idx
}

// Graph is the immutable result of [Build].
type Graph struct {
	scopes   []Scope
	bindings []Binding
	free     []FreeRef

	// evals records scopes containing a direct eval call; everything visible
	// there escapes static resolution.
	evals []ID
}

// Root returns the program scope.
func (g *Graph) Root() *Scope { return &g.scopes[0] }

// Scope returns the scope with the given id.
func (g *Graph) Scope(id ID) *Scope { return &g.scopes[id] }

// Binding returns the binding with the given id.
func (g *Graph) Binding(id BindingID) *Binding { return &g.bindings[id] }

// Bindings iterates over all bindings in declaration order.
func (g *Graph) Bindings() iter.Seq[*Binding] {
	return func(yield func(*Binding) bool) {
		for i := range g.bindings {
			if !yield(&g.bindings[i]) {
				return
			}
		}
	}
}

// Free returns all free references, ordered by position.
func (g *Graph) Free() []FreeRef { return g.free }

// EvalScopes returns the scopes containing a direct eval call.
func (g *Graph) EvalScopes() []ID { return g.evals }

// Lookup resolves a name through the scope chain starting at from.
func (g *Graph) Lookup(from ID, name string) BindingID {
	for s := from; s != NoScope; s = g.scopes[s].Parent {
		if id, ok := g.scopes[s].Names[name]; ok {
			return id
		}
	}

	return NoBinding
}

// Within reports whether inner is outer or one of its descendants.
func (g *Graph) Within(inner, outer ID) bool {
	for s := inner; s != NoScope; s = g.scopes[s].Parent {
		if s == outer {
			return true
		}
	}

	return false
}
