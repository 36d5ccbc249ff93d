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

// Package rewrite defines the output contract of the declaration-lowering
// engine: per-binding lowering decisions, advisory hazard notes, and the
// ordered, non-overlapping edit set handed to an external printer. The
// printer owns applying edits to the original text and preserving all
// formatting outside the edited spans.
package rewrite

import "github.com/dop251/goja/file"

// Edit replaces one declaration keyword in the source text. Positions are
// 1-based byte offsets into the parsed source, [Pos, End) covering exactly
// the old keyword. Edits within one plan are sorted ascending and never
// overlap.
type Edit struct {
	Pos file.Idx `json:"pos"`
	End file.Idx `json:"end"`

	OldKeyword string `json:"oldKeyword"`
	NewKeyword string `json:"newKeyword"`

	// HazardNotes carries hazards that were explicitly accepted for this
	// edit, such as the per-iteration rebinding of a captured loop variable.
	HazardNotes []Hazard `json:"hazardNotes,omitempty"`
}
