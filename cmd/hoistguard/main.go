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

// Command hoistguard analyzes JavaScript sources and reports which var
// declarations can safely be lowered to let or const.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"fillmore-labs.com/hoistguard/analyzer"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	logger := slog.New(slog.NewTextHandler(errOut, nil))

	flags := flag.NewFlagSet("hoistguard", flag.ContinueOnError)
	flags.SetOutput(errOut)

	jsonOut := flags.Bool("json", false, "emit decisions and edits as JSON")

	a := analyzer.New()
	a.RegisterFlags(flags)

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if flags.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: hoistguard [flags] file.js ...")

		return 2
	}

	exit := 0
	for _, fname := range flags.Args() {
		if err := analyzeFile(a, fname, *jsonOut, out); err != nil {
			logger.Error("Analysis failed", "file", fname, "err", err)

			exit = 1
		}
	}

	return exit
}

func analyzeFile(a *analyzer.Analyzer, fname string, jsonOut bool, out io.Writer) error {
	src, err := os.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	result, err := a.AnalyzeSource(fname, string(src))
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	}

	printResult(out, fname, result)

	return nil
}

func printResult(out io.Writer, fname string, result *analyzer.Result) {
	for _, d := range result.Decisions {
		fmt.Fprintf(out, "%s:%d: %s: %s (%s)", fname, d.NamePos, d.Name, d.Action, d.Reason)

		for _, h := range d.Hazards {
			fmt.Fprintf(out, " [%s]", h)
		}

		fmt.Fprintln(out)
	}

	for _, n := range result.Notes {
		fmt.Fprintf(out, "%s:%d: %s: note", fname, n.Pos, n.Name)

		for _, h := range n.Hazards {
			fmt.Fprintf(out, " [%s]", h)
		}

		fmt.Fprintln(out)
	}
}
