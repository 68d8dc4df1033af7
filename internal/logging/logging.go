// Copyright 2026 The Pdiff Authors
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

// Package logging wires this module's workers into the caller's ctxlog-carried *slog.Logger,
// tagging every record with the worker's rank so interleaved goroutine output stays attributable.
package logging

import (
	"context"
	"log/slog"

	"cloudeng.io/logging/ctxlog"
)

// ForWorker returns the context's logger with a "worker" attribute bound to rank, or the default
// handler's logger if ctx carries none.
func ForWorker(ctx context.Context, rank int) *slog.Logger {
	return ctxlog.Logger(ctx).With("worker", rank)
}

// WithLogger attaches logger to ctx for every worker goroutine spawned from it to inherit.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return ctxlog.WithLogger(ctx, logger)
}
