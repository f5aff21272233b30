// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dump is the incremental export engine. A Walker turns the tag
// list of a repository into targets (one directory per release), a Planner
// decides which commits of a target are new since the last run, and a
// Generator renders those commits into numbered patch files and records
// how far it got.
//
// Every target is processed to completion before the next one starts.
// Patch files are written first and the target state is saved once the
// whole batch is on disk, so an interrupted run is resumed or rebuilt on
// the next invocation rather than leaving a half-advanced state behind.
package dump

import (
	"log/slog"

	"github.com/sirseerhq/commit-dump/internal/vcs"
)

// Target is one output directory and the commit range dumped into it.
type Target struct {
	// Key identifies the target in the state store, e.g. "v5.10" or
	// "v5.10/v5.10-rc3".
	Key string

	// Dir is the absolute directory the patch files are written to.
	Dir string

	// Range is the commit range the target holds.
	Range vcs.Range

	// Width is the number of digits file offsets are padded to.
	Width int
}

// Reporter receives operator-facing messages.
type Reporter interface {
	Note(format string, args ...interface{})
	Progress(format string, args ...interface{})
	Patch(path string)
}

type nopReporter struct{}

func (nopReporter) Note(string, ...interface{})     {}
func (nopReporter) Progress(string, ...interface{}) {}
func (nopReporter) Patch(string)                    {}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
