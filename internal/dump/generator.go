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

package dump

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirseerhq/commit-dump/internal/metadata"
	"github.com/sirseerhq/commit-dump/internal/naming"
	"github.com/sirseerhq/commit-dump/internal/output"
	"github.com/sirseerhq/commit-dump/internal/state"
	"github.com/sirseerhq/commit-dump/internal/vcs"
)

// subjectLine is the line of "git show" output holding the subject.
const subjectLine = 4

// Generator writes rendered commits to patch files.
type Generator struct {
	repo       vcs.Repository
	store      *state.Store
	maxNameLen int
	manifest   output.RecordWriter
	tracker    *metadata.Tracker
	reporter   Reporter
	logger     *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithMaxNameLength fixes the maximum file name length instead of asking
// the filesystem of each target directory.
func WithMaxNameLength(n int) GeneratorOption {
	return func(g *Generator) { g.maxNameLen = n }
}

// WithManifest emits a record for every written patch.
func WithManifest(w output.RecordWriter) GeneratorOption {
	return func(g *Generator) { g.manifest = w }
}

// WithTracker counts written patches for the run record.
func WithTracker(t *metadata.Tracker) GeneratorOption {
	return func(g *Generator) { g.tracker = t }
}

// WithReporter sets where per-patch lines go.
func WithReporter(r Reporter) GeneratorOption {
	return func(g *Generator) { g.reporter = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator returns a Generator rendering from repo.
func NewGenerator(repo vcs.Repository, store *state.Store, opts ...GeneratorOption) *Generator {
	g := &Generator{
		repo:     repo,
		store:    store,
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = orDiscard(g.logger)
	return g
}

// Subject extracts the commit subject from "git show" output. Bytes that
// are not valid UTF-8 are dropped.
func Subject(rendered []byte) string {
	lines := strings.SplitN(string(rendered), "\n", subjectLine+2)
	if len(lines) <= subjectLine {
		return ""
	}
	return strings.TrimSpace(strings.ToValidUTF8(lines[subjectLine], ""))
}

// Dump renders commits into t.Dir, numbering them from start, and returns
// the number of files written. The target state is saved once after the
// last file. A failure to render or write stops the batch and leaves the
// state untouched.
func (g *Generator) Dump(ctx context.Context, t Target, commits []string, start int) (int, error) {
	if len(commits) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create target directory %s: %w", t.Dir, err)
	}

	maxLen := g.maxNameLen
	if maxLen <= 0 {
		maxLen = naming.MaxNameLength(t.Dir)
	}

	offset := start
	written := 0
	for _, id := range commits {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		rendered, err := g.repo.RenderCommit(ctx, id)
		if err != nil {
			return written, fmt.Errorf("dump %s at offset %d: %w", t.Key, offset, err)
		}

		subject := Subject(rendered)
		name := naming.Sanitize(subject, offset, t.Width, maxLen)
		path := filepath.Join(t.Dir, name)
		if err := os.WriteFile(path, rendered, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}

		if err := g.record(t, offset, id, subject, path, len(rendered)); err != nil {
			return written, err
		}
		offset++
		written++
	}

	st := &state.DumpState{
		LastCommitID: commits[len(commits)-1],
		NextOffset:   offset,
		DigitWidth:   t.Width,
		LastSeenTag:  t.Range.Start,
	}
	if err := g.store.Save(t.Key, st); err != nil {
		return written, err
	}
	g.logger.Debug("target saved", "target", t.Key, "next_offset", offset, "written", written)
	return written, nil
}

func (g *Generator) record(t Target, offset int, id, subject, path string, size int) error {
	rel, err := filepath.Rel(g.store.Root(), path)
	if err != nil {
		rel = path
	}
	g.reporter.Patch(rel)
	if g.tracker != nil {
		g.tracker.RecordPatch(size)
	}
	if g.manifest == nil {
		return nil
	}
	err = g.manifest.Write(output.PatchRecord{
		Target:    t.Key,
		Range:     t.Range.String(),
		Offset:    offset,
		CommitID:  id,
		Subject:   subject,
		File:      rel,
		Bytes:     size,
		WrittenAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}
