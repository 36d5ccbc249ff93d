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

package config

// Behavior represents configuration options for the lowering engine.
type Behavior uint8

const (
	// LoopCaptureRebinding accepts the observable semantic change of
	// per-iteration bindings for loop variables captured by closures created
	// inside the loop body: all closures observing the final value becomes
	// each closure observing its own iteration's value.
	LoopCaptureRebinding Behavior = 1 << iota
)
