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

// Package analyzer implements the hoistguard declaration lowering engine.
//
// # Overview
//
// HoistGuard resolves every binding in a JavaScript program and decides, per
// var declaration, whether it can be lowered to a block-scoped let or const
// without changing observable behavior.
//
// # Example
//
// Before:
//
//	function f() {
//	    for (var i = 0; i < 3; i++) {
//	        var msg = "step " + i;  // msg hoists to function scope
//	        log(msg);
//	    }
//	}
//
// After applying hoistguard's edits:
//
//	function f() {
//	    for (var i = 0; i < 3; i++) {
//	        const msg = "step " + i;  // msg lives only in the loop body
//	        log(msg);
//	    }
//	}
//
// The loop variable i itself stays var: lowering it to let rebinds it per
// iteration, which is observable whenever a closure created in the body
// captures it. That rewrite is opt-in via [WithLoopCaptureRebinding].
//
// # Hazards
//
// A var keeps its keyword whenever lowering could change behavior:
//
//   - A reference outside the declaration's innermost block would resolve
//     differently or throw.
//   - A reference before the declaration reads undefined today but would
//     hit the temporal dead zone after lowering.
//   - The lowered binding would collide with a let or const in the same
//     block.
//   - eval or with makes scope resolution dynamic.
//
// Every kept var carries machine-readable hazard annotations explaining the
// decision.
package analyzer
