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

package analyzer

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"fillmore-labs.com/hoistguard/internal/capture"
	"fillmore-labs.com/hoistguard/internal/config"
	"fillmore-labs.com/hoistguard/internal/lower"
	"fillmore-labs.com/hoistguard/internal/plan"
	"fillmore-labs.com/hoistguard/internal/scopes"
	"fillmore-labs.com/hoistguard/rewrite"
)

// ErrMalformedScope is returned when the program's scope structure cannot be
// resolved, for example when the analyzer is handed a nil program.
var ErrMalformedScope = scopes.ErrMalformedScope

// ErrInternalInvariant is returned when the computed edit set violates an
// internal consistency check. It indicates a bug in the analyzer, not in the
// analyzed program.
var ErrInternalInvariant = plan.ErrInternalInvariant

// Result holds the outcome of analyzing one program.
type Result struct {
	// Decisions contains one entry per function-scoped declaration,
	// in source order.
	Decisions []rewrite.Decision `json:"decisions"`

	// Edits is the non-overlapping keyword rewrite set realizing the
	// lowering decisions, in source order.
	Edits []rewrite.Edit `json:"edits"`

	// Notes flags hazards on declarations that were not candidates for
	// lowering, such as duplicate let bindings.
	Notes []rewrite.Note `json:"notes,omitempty"`
}

// Analyze runs the full pipeline over a parsed program: binding resolution,
// capture analysis, lowering classification and edit planning.
func (a *Analyzer) Analyze(program *ast.Program) (*Result, error) {
	g, err := scopes.Build(program)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	caps := capture.Analyze(g)

	decisions, notes := lower.Classify(g, caps, lower.Options{
		LoopCaptureRebinding: a.behavior.Enabled(config.LoopCaptureRebinding),
	})

	edits, err := plan.Build(g, decisions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &Result{Decisions: decisions, Edits: edits, Notes: notes}, nil
}

// AnalyzeSource parses src and analyzes the resulting program.
// The filename is used in parse error messages only.
func (a *Analyzer) AnalyzeSource(filename, src string) (*Result, error) {
	program, err := parser.ParseFile(nil, filename, src, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return a.Analyze(program)
}
