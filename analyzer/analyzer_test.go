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

package analyzer_test

import (
	"errors"
	"flag"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/tools/txtar"

	. "fillmore-labs.com/hoistguard/analyzer"
	"fillmore-labs.com/hoistguard/internal/testsource"
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		options Option
		want    string
	}{
		{
			name: "ConstLowering",
			src:  `var a = 1; log(a);`,
			want: `const a = 1; log(a);`,
		},
		{
			name: "LetLowering",
			src:  `var b = 1; b = 2; log(b);`,
			want: `let b = 1; b = 2; log(b);`,
		},
		{
			name: "BlockHome",
			src:  `function f() { { var x = 1; log(x); } }`,
			want: `function f() { { const x = 1; log(x); } }`,
		},
		{
			name: "HoistingPitfallKept",
			src:  `function f(r) { if (r) { var x = 1; return x; } return x; }`,
			want: `function f(r) { if (r) { var x = 1; return x; } return x; }`,
		},
		{
			name: "LoopCaptureKept",
			src:  `for (var i = 0; i < 3; i++) { setTimeout(function () { log(i); }); }`,
			want: `for (var i = 0; i < 3; i++) { setTimeout(function () { log(i); }); }`,
		},
		{
			name:    "LoopCaptureRebinding",
			src:     `for (var i = 0; i < 3; i++) { setTimeout(function () { log(i); }); }`,
			options: WithLoopCaptureRebinding(true),
			want:    `for (let i = 0; i < 3; i++) { setTimeout(function () { log(i); }); }`,
		},
		{
			name: "UseBeforeDeclarationKept",
			src:  `log(x); var x = 1;`,
			want: `log(x); var x = 1;`,
		},
		{
			name: "MultiDeclarator",
			src:  `var a = 1, b = 2; b = 3; log(a, b);`,
			want: `let a = 1, b = 2; b = 3; log(a, b);`,
		},
		{
			name: "LoopCounter",
			src:  `for (var i = 0; i < 3; i++) { log(i); }`,
			want: `for (let i = 0; i < 3; i++) { log(i); }`,
		},
		{
			name: "ForInSpacing",
			src:  `for (var  k in o) { log(k); }`,
			want: `for (let  k in o) { log(k); }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			a := New(tt.options)

			// when
			result, err := a.AnalyzeSource("test.js", tt.src)
			if err != nil {
				t.Fatalf("Failed to analyze: %v", err)
			}

			// then
			if got := testsource.Apply(t, tt.src, result.Edits); got != tt.want {
				t.Errorf("Rewritten source is %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSoundness runs every snippet of the fixture corpus twice, legacy and
// rewritten under default configuration, and requires identical observable
// behavior: log output, completion value and failure class.
func TestSoundness(t *testing.T) {
	t.Parallel()

	archive, err := txtar.ParseFile(filepath.Join("testdata", "soundness.txtar"))
	if err != nil {
		t.Fatalf("Failed to read fixture corpus: %v", err)
	}

	for _, f := range archive.Files {
		t.Run(f.Name, func(t *testing.T) {
			t.Parallel()

			// given
			src := string(f.Data)

			result, err := Default.AnalyzeSource(f.Name, src)
			if err != nil {
				t.Fatalf("Failed to analyze: %v", err)
			}

			// when
			rewritten := testsource.Apply(t, src, result.Edits)

			legacy := testsource.Run(t, src)
			lowered := testsource.Run(t, rewritten)

			// then
			if !reflect.DeepEqual(legacy, lowered) {
				t.Errorf("Behavior diverged:\nlegacy:    %+v\nrewritten: %+v\nsource:\n%s\nrewritten source:\n%s",
					legacy, lowered, src, rewritten)
			}
		})
	}
}

// Re-running the pipeline on its own output yields zero further edits.
func TestIdempotence(t *testing.T) {
	t.Parallel()

	srcs := []string{
		`var a = 1; log(a);`,
		`var b = 1; b = 2; log(b);`,
		`function f() { var n = 0; return function () { n = n + 1; return n; }; }`,
		`for (var i = 0; i < 3; i++) { log(i); }`,
	}

	for _, src := range srcs {
		// given
		result, err := Default.AnalyzeSource("test.js", src)
		if err != nil {
			t.Fatalf("Failed to analyze: %v", err)
		}

		rewritten := testsource.Apply(t, src, result.Edits)

		// when
		again, err := Default.AnalyzeSource("test.js", rewritten)
		if err != nil {
			t.Fatalf("Failed to re-analyze: %v", err)
		}

		// then
		if len(again.Edits) != 0 {
			t.Errorf("Re-analysis of %q produced %d edits, want none", rewritten, len(again.Edits))
		}
	}
}

// The loop capture rewrite is observable: the legacy form logs the final
// value three times, the rebound form logs each iteration's value.
func TestLoopCaptureDivergence(t *testing.T) {
	t.Parallel()

	// given
	src := `for (var i = 0; i < 3; i++) { setTimeout(function () { log(i); }); }`

	result, err := New(WithLoopCaptureRebinding(true)).AnalyzeSource("test.js", src)
	if err != nil {
		t.Fatalf("Failed to analyze: %v", err)
	}

	// when
	legacy := testsource.Run(t, src)
	lowered := testsource.Run(t, testsource.Apply(t, src, result.Edits))

	// then
	if want := []string{"3", "3", "3"}; !reflect.DeepEqual(legacy.Log, want) {
		t.Errorf("Legacy log is %v, want %v", legacy.Log, want)
	}
	if want := []string{"0", "1", "2"}; !reflect.DeepEqual(lowered.Log, want) {
		t.Errorf("Rebound log is %v, want %v", lowered.Log, want)
	}
}

func TestRegisterFlags(t *testing.T) {
	t.Parallel()

	// given
	a := New()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	a.RegisterFlags(fs)

	if err := fs.Parse([]string{"-loop-capture-rebinding"}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	// when
	src := `for (var i = 0; i < 3; i++) { setTimeout(function () { log(i); }); }`
	result, err := a.AnalyzeSource("test.js", src)
	if err != nil {
		t.Fatalf("Failed to analyze: %v", err)
	}

	// then
	if len(result.Edits) != 1 {
		t.Errorf("Got %d edits, want the loop variable lowered", len(result.Edits))
	}
}

func TestAnalyzeErrors(t *testing.T) {
	t.Parallel()

	if _, err := Default.AnalyzeSource("broken.js", `var = ;`); err == nil {
		t.Error("Expected a parse error")
	}

	if _, err := Default.Analyze(nil); !errors.Is(err, ErrMalformedScope) {
		t.Errorf("Got %v, want ErrMalformedScope", err)
	}
}
