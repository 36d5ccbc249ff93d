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
	"log/slog"

	"fillmore-labs.com/hoistguard/internal/config"
)

// Option configures specific behavior of a [New] hoistguard analyzer.
type Option interface {
	apply(r *runOptions)
	LogAttr() slog.Attr
}

// Options is a list of [Option] values that itself satisfies the [Option] interface.
type Options []Option

// LogValue implements [slog.LogValuer].
func (o Options) LogValue() slog.Value {
	as := make([]slog.Attr, 0, len(o))
	as = appendOptions(as, o)

	return slog.GroupValue(as...)
}

func appendOptions(as []slog.Attr, o Options) []slog.Attr {
	for _, opt := range o {
		switch opt := opt.(type) {
		case nil:
			as = append(as, slog.String("nil", "<nil>"))

		case Options:
			as = appendOptions(as, opt)

		default:
			as = append(as, opt.LogAttr())
		}
	}

	return as
}

func (o Options) apply(r *runOptions) {
	for _, opt := range o {
		if opt == nil {
			continue
		}

		opt.apply(r)
	}
}

// LogAttr is for logging with [slog.Logger.LogAttrs].
func (o Options) LogAttr() slog.Attr {
	return slog.Any("options", o)
}

// WithLoopCaptureRebinding is an [Option] to accept per-iteration rebinding
// of loop variables captured by closures. The rewrite then changes observable
// behavior: each closure sees its own iteration's value instead of the final
// one, which is almost always what the author meant.
func WithLoopCaptureRebinding(rebinding bool) Option {
	return loopCaptureOption{rebinding: rebinding}
}

type loopCaptureOption struct{ rebinding bool }

func (o loopCaptureOption) apply(r *runOptions) {
	r.behavior.Set(config.LoopCaptureRebinding, o.rebinding)
}

func (o loopCaptureOption) LogAttr() slog.Attr {
	return slog.Bool("loop-capture-rebinding", o.rebinding)
}
