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

package rewrite_test

import (
	"encoding/json"
	"testing"

	. "fillmore-labs.com/hoistguard/rewrite"
)

func TestActionText(t *testing.T) {
	t.Parallel()

	for _, a := range []Action{KeepFunctionScoped, ToBlockLet, ToBlockConst} {
		text, err := a.MarshalText()
		if err != nil {
			t.Fatalf("Failed to marshal %d: %v", a, err)
		}

		var back Action
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", text, err)
		}

		if back != a {
			t.Errorf("Round trip of %v yielded %v", a, back)
		}
	}

	if _, err := Action(42).MarshalText(); err == nil {
		t.Error("Expected an error for an unknown action")
	}

	var a Action
	if err := a.UnmarshalText([]byte("move")); err == nil {
		t.Error("Expected an error for unknown text")
	}
}

func TestDecisionJSON(t *testing.T) {
	t.Parallel()

	// given
	d := Decision{
		Name:       "x",
		KeywordPos: 1,
		NamePos:    5,
		Action:     ToBlockConst,
		Reason:     ReasonNeverReassigned,
	}

	// when
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	// then
	want := `{"name":"x","keywordPos":1,"namePos":5,"action":"const","reason":"NeverReassigned"}`
	if string(data) != want {
		t.Errorf("Got %s, want %s", data, want)
	}
}
