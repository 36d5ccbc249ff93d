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

import "fillmore-labs.com/hoistguard/internal/config"

// Public API constants for the hoistguard analyzer.
const (
	name = "hoistguard"
	doc  = `hoistguard lowers JavaScript var declarations to let and const where safe`
	url  = "https://pkg.go.dev/fillmore-labs.com/hoistguard"
)

// Analyzer resolves bindings in a JavaScript program and decides, per var
// declaration, whether it can be lowered to a block-scoped let or const
// without changing observable behavior.
type Analyzer struct {
	behavior config.BitMask[config.Behavior]
}

// New creates a new instance of the hoistguard analyzer.
// It allows for programmatic configuration using [Option], which is useful
// for integrating the analyzer into other tools. For command-line use, the
// pre-configured [Default] variable is typically sufficient.
func New(opts ...Option) *Analyzer {
	r := makeRunOptions(opts)

	return &Analyzer{behavior: r.behavior}
}

// Default is a pre-configured *[Analyzer] with conservative settings: all
// hazards block lowering.
var Default = New()
