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

// Package plan turns lowering decisions into the ordered, non-overlapping
// edit set consumed by an external printer. The plan is all-or-nothing per
// source unit: any invariant violation discards the whole plan.
package plan

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/dop251/goja/file"

	"fillmore-labs.com/hoistguard/internal/scopes"
	"fillmore-labs.com/hoistguard/rewrite"
)

// ErrInternalInvariant reports a defect in the engine itself, such as
// overlapping edits or a binding without a lowering decision. It is never
// caused by user input.
var ErrInternalInvariant = errors.New("internal invariant violation")

const (
	varKeyword   = "var"
	letKeyword   = "let"
	constKeyword = "const"
)

// statementEdit accumulates the declarator decisions sharing one keyword.
type statementEdit struct {
	action  rewrite.Action
	hazards []rewrite.Hazard
}

// combine merges the actions of two declarators of one statement: any kept
// declarator keeps the statement, any mutable one forces the mutable form.
func combine(a, b rewrite.Action) rewrite.Action {
	switch {
	case a == rewrite.KeepFunctionScoped || b == rewrite.KeepFunctionScoped:
		return rewrite.KeepFunctionScoped

	case a == rewrite.ToBlockLet || b == rewrite.ToBlockLet:
		return rewrite.ToBlockLet

	default:
		return rewrite.ToBlockConst
	}
}

// Build converts decisions into keyword edits, sorted by position and
// asserted non-overlapping. Declarators of one statement share their
// keyword and are rewritten together or not at all; kept statements
// produce no edit.
func Build(g *scopes.Graph, decisions []rewrite.Decision) ([]rewrite.Edit, error) {
	decided := make(map[file.Idx]struct{}, len(decisions))

	merged := make(map[file.Idx]*statementEdit)
	var order []file.Idx

	for _, d := range decisions {
		decided[d.NamePos] = struct{}{}

		switch d.Action {
		case rewrite.KeepFunctionScoped, rewrite.ToBlockLet, rewrite.ToBlockConst:

		default:
			return nil, fmt.Errorf("plan: decision for %q has unknown action %d: %w", d.Name, d.Action, ErrInternalInvariant)
		}

		se, ok := merged[d.KeywordPos]
		if !ok {
			se = &statementEdit{action: d.Action}
			merged[d.KeywordPos] = se
			order = append(order, d.KeywordPos)
		} else {
			se.action = combine(se.action, d.Action)
		}

		for _, h := range d.Hazards {
			if !slices.Contains(se.hazards, h) {
				se.hazards = append(se.hazards, h)
			}
		}
	}

	var edits []rewrite.Edit

	for _, pos := range order {
		se := merged[pos]

		keyword := letKeyword

		switch se.action {
		case rewrite.KeepFunctionScoped:
			continue

		case rewrite.ToBlockConst:
			keyword = constKeyword
		}

		edits = append(edits, rewrite.Edit{
			Pos:         pos,
			End:         pos + file.Idx(len(varKeyword)),
			OldKeyword:  varKeyword,
			NewKeyword:  keyword,
			HazardNotes: slices.Clone(se.hazards),
		})
	}

	// every decision-bearing binding must have been decided
	for bd := range g.Bindings() {
		if !bd.NeedsDecision() {
			continue
		}
		if _, ok := decided[bd.Site().Name]; !ok {
			return nil, fmt.Errorf("plan: binding %q at %d has no lowering decision: %w",
				bd.Name, bd.Site().Name, ErrInternalInvariant)
		}
	}

	slices.SortFunc(edits, func(a, b rewrite.Edit) int { return cmp.Compare(a.Pos, b.Pos) })

	for i := 1; i < len(edits); i++ {
		if edits[i].Pos < edits[i-1].End {
			return nil, fmt.Errorf("plan: overlapping edits at %d and %d: %w",
				edits[i-1].Pos, edits[i].Pos, ErrInternalInvariant)
		}
	}

	return edits, nil
}
