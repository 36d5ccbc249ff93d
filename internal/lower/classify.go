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

// Package lower classifies function-scoped bindings for lowering.
//
// The policy is a fixed-order rule list: hazards that change observable
// behavior always dominate convenience preferences, and the immutable form
// is preferred over the mutable one whenever safe. The one configurable
// branch is loop-capture rebinding, the single place where the legacy and
// block-scoped semantics legitimately diverge and a human must choose.
package lower

import (
	"cmp"
	"slices"

	"fillmore-labs.com/hoistguard/internal/capture"
	"fillmore-labs.com/hoistguard/internal/scopes"
	"fillmore-labs.com/hoistguard/rewrite"
)

// Options holds the classifier configuration, immutable per run.
type Options struct {
	// LoopCaptureRebinding lowers captured loop declarations anyway,
	// accepting per-iteration rebinding as a deliberate semantic change.
	LoopCaptureRebinding bool
}

// Classify produces one decision per function-scoped binding, plus advisory
// notes for flagged bindings that carry no decision.
func Classify(g *scopes.Graph, caps capture.Result, opts Options) ([]rewrite.Decision, []rewrite.Note) {
	var decisions []rewrite.Decision
	var notes []rewrite.Note

	for bd := range g.Bindings() {
		if !bd.NeedsDecision() {
			if len(bd.Hazards) > 0 {
				notes = append(notes, rewrite.Note{
					Name:    bd.Name,
					Pos:     bd.Site().Name,
					Hazards: slices.Clone(bd.Hazards),
				})
			}

			continue
		}

		decisions = append(decisions, classify(bd, caps.Flags[bd.ID], opts))
	}

	slices.SortStableFunc(decisions, func(a, b rewrite.Decision) int { return cmp.Compare(a.NamePos, b.NamePos) })
	slices.SortStableFunc(notes, func(a, b rewrite.Note) int { return cmp.Compare(a.Pos, b.Pos) })

	return decisions, notes
}

func classify(bd *scopes.Binding, fl capture.Flags, opts Options) rewrite.Decision {
	d := rewrite.Decision{
		Name:       bd.Name,
		KeywordPos: bd.Site().Keyword,
		NamePos:    bd.Site().Name,
		Action:     rewrite.KeepFunctionScoped,
		Hazards:    hazards(bd, fl),
	}

	switch {
	case bd.Kind == scopes.DeclImplicitGlobal:
		d.Reason = rewrite.ReasonFree

	case bd.Pattern, bd.Site().Keyword == 0:
		// destructuring targets, and sites whose keyword could not be
		// located in the source text
		d.Reason = rewrite.ReasonUnsupportedForm

	case bd.HasHazard(rewrite.HazardDuplicateBlockBinding) || fl.Any(capture.FlagHomeCollision):
		d.Reason = rewrite.ReasonDuplicateBlockBinding

	case fl.Any(capture.FlagOutsideHome | capture.FlagDynamicScope):
		d.Reason = rewrite.ReasonScopeResolutionChange

	case fl.Any(capture.FlagTDZ):
		d.Reason = rewrite.ReasonTemporalDeadZone

	case fl.Any(capture.FlagLoopCapture) && !opts.LoopCaptureRebinding:
		d.Reason = rewrite.ReasonIterationChange

	default:
		d.Action, d.Reason = lowered(bd)

		// only reachable with the rebinding option set
		if fl.Any(capture.FlagLoopCapture) {
			d.Reason = rewrite.ReasonLoopCaptureRebinding
		}
	}

	return d
}

// lowered picks the block-scoped form: immutable when the binding is
// assigned exactly once at its declaration, mutable otherwise. A declarator
// without initializer cannot take the immutable form.
func lowered(bd *scopes.Binding) (rewrite.Action, rewrite.Reason) {
	switch {
	case !bd.Reassigned && bd.Site().HasInit:
		return rewrite.ToBlockConst, rewrite.ReasonNeverReassigned

	case !bd.Reassigned:
		return rewrite.ToBlockLet, rewrite.ReasonMissingInitializer

	default:
		return rewrite.ToBlockLet, rewrite.ReasonReassigned
	}
}

func hazards(bd *scopes.Binding, fl capture.Flags) []rewrite.Hazard {
	hs := slices.Clone(bd.Hazards)

	add := func(h rewrite.Hazard) {
		if !slices.Contains(hs, h) {
			hs = append(hs, h)
		}
	}

	if fl.Any(capture.FlagHomeCollision) {
		add(rewrite.HazardDuplicateBlockBinding)
	}
	if fl.Any(capture.FlagOutsideHome | capture.FlagDynamicScope) {
		add(rewrite.HazardScopeResolutionChange)
	}
	if fl.Any(capture.FlagTDZ) {
		add(rewrite.HazardTemporalDeadZone)
	}
	if fl.Any(capture.FlagLoopCapture) {
		add(rewrite.HazardIterationChange)
	}

	return hs
}
