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

package rewrite

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/file"
)

// Action is the outcome of classifying one function-scoped binding.
type Action uint8

const (
	// KeepFunctionScoped leaves the declaration untouched.
	KeepFunctionScoped Action = iota

	// ToBlockLet rewrites the declaration keyword to a block-scoped mutable one.
	ToBlockLet

	// ToBlockConst rewrites the declaration keyword to a block-scoped immutable one.
	ToBlockConst
)

// MarshalText implements [encoding.TextMarshaler].
func (a Action) MarshalText() ([]byte, error) {
	switch a {
	case KeepFunctionScoped:
		return []byte("keep"), nil

	case ToBlockLet:
		return []byte("let"), nil

	case ToBlockConst:
		return []byte("const"), nil

	default:
		return nil, fmt.Errorf("unknown action %d", a)
	}
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (a *Action) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "keep":
		*a = KeepFunctionScoped

	case "let":
		*a = ToBlockLet

	case "const":
		*a = ToBlockConst

	default:
		return fmt.Errorf("unknown action %q", string(text))
	}

	return nil
}

func (a Action) String() string {
	text, err := a.MarshalText()
	if err != nil {
		return fmt.Sprintf("Action(%d)", a)
	}

	return string(text)
}

// Reason tags a [Decision] with the first matching rule of the fixed
// classification policy.
type Reason string

const (
	// ReasonFree marks a name that was never declared, only assigned; the
	// binding is an implicit global and outside the rewrite's reach.
	ReasonFree Reason = "Free"

	// ReasonDuplicateBlockBinding marks declarations that would collide as
	// block-scoped bindings in one scope.
	ReasonDuplicateBlockBinding Reason = "DuplicateBlockBinding"

	// ReasonScopeResolutionChange marks declarations whose references would
	// resolve to a different binding once the scope shrinks.
	ReasonScopeResolutionChange Reason = "ScopeResolutionChange"

	// ReasonTemporalDeadZone marks declarations referenced before the
	// declarator completes; block scoping would turn a defined read of the
	// default value into a hard failure.
	ReasonTemporalDeadZone Reason = "TemporalDeadZoneHazard"

	// ReasonIterationChange marks loop declarations captured by closures
	// created inside the loop body; per-iteration rebinding is an observable
	// semantic change and is never applied silently.
	ReasonIterationChange Reason = "IntentionalIterationSemanticsChange"

	// ReasonLoopCaptureRebinding marks a lowered loop declaration whose
	// per-iteration rebinding was explicitly accepted by configuration.
	ReasonLoopCaptureRebinding Reason = "LoopCaptureRebindingAccepted"

	// ReasonNeverReassigned marks declarations assigned exactly once, at the
	// declaration itself.
	ReasonNeverReassigned Reason = "NeverReassigned"

	// ReasonMissingInitializer marks never-assigned declarations without an
	// initializer; an immutable form needs one, so the mutable form is used.
	ReasonMissingInitializer Reason = "MissingInitializer"

	// ReasonReassigned marks declarations assigned after the declaration.
	ReasonReassigned Reason = "Reassigned"

	// ReasonUnsupportedForm marks declarator forms outside the rewrite's
	// scope, such as destructuring patterns.
	ReasonUnsupportedForm Reason = "UnsupportedForm"
)

// Hazard names an observable-behavior risk recorded on a binding. Hazards are
// routine analysis outcomes, not errors.
type Hazard string

const (
	// HazardDuplicateBlockBinding is a re-declaration that is legal in the
	// function-scoped form but a collision in the block-scoped form.
	HazardDuplicateBlockBinding Hazard = "DuplicateBlockBinding"

	// HazardTemporalDeadZone is a reference preceding the declarator in the
	// same execution context.
	HazardTemporalDeadZone Hazard = "TemporalDeadZoneHazard"

	// HazardIterationChange is a closure created inside a loop capturing a
	// declaration made in that loop.
	HazardIterationChange Hazard = "IntentionalIterationSemanticsChange"

	// HazardScopeResolutionChange is a reference that would resolve to a
	// different binding after lowering, or a name visible to dynamic scoping
	// constructs the analysis cannot see through.
	HazardScopeResolutionChange Hazard = "ScopeResolutionChange"
)

// Decision is the classification of one function-scoped binding. Decisions
// are immutable once produced and consumed by the rewrite plan emitter.
type Decision struct {
	// Name is the declared identifier.
	Name string `json:"name"`

	// KeywordPos is the byte offset of the declaration keyword at the first
	// declaration site, 1-based as reported by the parser.
	KeywordPos file.Idx `json:"keywordPos"`

	// NamePos is the byte offset of the declared identifier.
	NamePos file.Idx `json:"namePos"`

	// Action says whether and how the declaration is lowered.
	Action Action `json:"action"`

	// Reason is the first matching rule of the classification policy.
	Reason Reason `json:"reason"`

	// Hazards collects every hazard observed on the binding, including ones
	// that did not decide the outcome.
	Hazards []Hazard `json:"hazards,omitempty"`
}

// Note is an advisory finding on a binding that carries no lowering decision,
// such as a duplicated block-scoped declaration.
type Note struct {
	// Name is the declared identifier.
	Name string `json:"name"`

	// Pos is the byte offset of the declared identifier.
	Pos file.Idx `json:"pos"`

	// Hazards lists the hazards recorded on the binding.
	Hazards []Hazard `json:"hazards"`
}
