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
	"cmp"
	"slices"

	"github.com/dop251/goja/file"
)

// resolve matches the recorded identifier occurrences against the completed
// binding table. Writes go first: an assignment to an undeclared name
// creates a global at runtime, and later reads must find it.
func (b *builder) resolve() {
	for _, r := range b.pending {
		if !r.write || b.g.Lookup(r.scope, r.name) != NoBinding {
			continue
		}

		site := DeclSite{Keyword: r.pos, Name: r.pos, End: r.pos, Home: 0}
		id := b.newBinding(r.name, 0, DeclImplicitGlobal, site, false)
		b.g.scopes[0].Names[r.name] = id
	}

	for _, r := range b.pending {
		id := b.g.Lookup(r.scope, r.name)
		if id == NoBinding {
			b.g.free = append(b.g.free, FreeRef{Name: r.name, Pos: r.pos})

			continue
		}

		bd := &b.g.bindings[id]
		bd.Refs = append(bd.Refs, Ref{
			Pos:    r.pos,
			Scope:  r.scope,
			Write:  r.write,
			InWith: b.inWith(r.pos),
		})
		if r.write {
			bd.Reassigned = true
		}
	}
}

func (b *builder) inWith(pos file.Idx) bool {
	for _, s := range b.withs {
		if s.from <= pos && pos < s.to {
			return true
		}
	}

	return false
}

// finish orders reference lists, marks sites under with statements and
// computes loop attachment.
func (b *builder) finish() {
	for i := range b.g.bindings {
		bd := &b.g.bindings[i]

		for j := range bd.Sites {
			if b.inWith(bd.Sites[j].Name) {
				bd.Sites[j].InWith = true
			}
		}

		slices.SortStableFunc(bd.Refs, func(a, c Ref) int { return cmp.Compare(a.Pos, c.Pos) })
		bd.EnclosingLoop = b.enclosingLoop(bd)
	}

	slices.SortStableFunc(b.g.free, func(a, c FreeRef) int { return cmp.Compare(a.Pos, c.Pos) })
}

// enclosingLoop finds the nearest loop scope between the first declaration
// site and the declaring scope. When present, the declaration is re-entered
// per iteration and lowering changes its binding per iteration.
func (b *builder) enclosingLoop(bd *Binding) ID {
	for s := bd.Site().Home; s != bd.Scope && s != NoScope; s = b.g.scopes[s].Parent {
		if b.g.scopes[s].Kind == KindLoop {
			return s
		}
	}

	return NoScope
}
