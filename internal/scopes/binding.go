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

package scopes

import (
	"slices"

	"github.com/dop251/goja/file"

	"fillmore-labs.com/hoistguard/rewrite"
)

// DeclKind is the declaration form that created a binding.
type DeclKind uint8

const (
	// DeclVar is a legacy function-scoped mutable declaration.
	DeclVar DeclKind = iota

	// DeclLet is a block-scoped mutable declaration.
	DeclLet

	// DeclConst is a block-scoped immutable declaration.
	DeclConst

	// DeclFunction is a hoisted function declaration name.
	DeclFunction

	// DeclParam is a function parameter.
	DeclParam

	// DeclCatchParam is a catch clause parameter.
	DeclCatchParam

	// DeclImplicitGlobal is a name that was assigned but never declared.
	DeclImplicitGlobal
)

func (d DeclKind) String() string {
	switch d {
	case DeclVar:
		return "var"
	case DeclLet:
		return "let"
	case DeclConst:
		return "const"
	case DeclFunction:
		return "function"
	case DeclParam:
		return "param"
	case DeclCatchParam:
		return "catch-param"
	case DeclImplicitGlobal:
		return "implicit-global"
	default:
		return "unknown"
	}
}

// FunctionScoped reports whether the declaration form attaches to the
// nearest function or program scope.
func (d DeclKind) FunctionScoped() bool {
	return d == DeclVar || d == DeclFunction || d == DeclImplicitGlobal
}

// BindingID is an index into the binding table.
type BindingID int

// NoBinding is the nil value for binding references.
const NoBinding BindingID = -1

// DeclSite is one textual declaration of a binding. Function-scoped
// re-declarations merge onto a single binding with multiple sites; the first
// site is authoritative.
type DeclSite struct {
	// Keyword is the position of the declaration keyword.
	Keyword file.Idx

	// Name is the position of the declared identifier.
	Name file.Idx

	// End is the position just past the declarator, including its initializer.
	End file.Idx

	// Home is the innermost scope textually containing the site. For a
	// hoisted declaration this is where the binding would live after
	// lowering to block scope.
	Home ID

	// HasInit reports whether the declarator carries an initializer.
	HasInit bool

	// InWith is set for sites inside a with statement body, where even the
	// declarator's own initializer write may be intercepted at runtime.
	InWith bool
}

// Ref is one read or write of a binding.
type Ref struct {
	Pos   file.Idx
	Scope ID

	// Write is set for assignment targets, including compound assignments
	// and increment/decrement.
	Write bool

	// InWith is set for references inside a with statement body, where
	// resolution may be intercepted at runtime.
	InWith bool
}

// Binding represents one declared identifier.
type Binding struct {
	ID   BindingID
	Name string

	// Scope is the declaring scope after hoisting.
	Scope ID

	Kind DeclKind

	// Sites holds every textual declaration, first site first.
	Sites []DeclSite

	// Pattern is set for names bound through a destructuring target; such
	// declarators are never rewritten.
	Pattern bool

	// Reassigned is set when any assignment other than the first site's
	// initializer targets the binding.
	Reassigned bool

	// Refs are all reads and writes, ordered by position.
	Refs []Ref

	// EnclosingLoop is the nearest loop scope between the declaration site
	// and the declaring scope, or NoScope. When set, the declaration gains
	// per-iteration semantics in the block-scoped form.
	EnclosingLoop ID

	// Hazards collects collision findings from the attachment step.
	Hazards []rewrite.Hazard
}

// Site returns the authoritative first declaration site.
func (b *Binding) Site() DeclSite { return b.Sites[0] }

// AddHazard records a hazard once.
func (b *Binding) AddHazard(h rewrite.Hazard) {
	if !slices.Contains(b.Hazards, h) {
		b.Hazards = append(b.Hazards, h)
	}
}

// HasHazard reports whether the hazard was recorded.
func (b *Binding) HasHazard(h rewrite.Hazard) bool {
	return slices.Contains(b.Hazards, h)
}

// NeedsDecision reports whether the classifier owes this binding a lowering
// decision. Only legacy function-scoped declarations and implicit globals
// are decided; parameters, function names and block-scoped declarations are
// never rewritten.
func (b *Binding) NeedsDecision() bool {
	return b.Kind == DeclVar || b.Kind == DeclImplicitGlobal
}
