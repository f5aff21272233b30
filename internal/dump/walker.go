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
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/sirseerhq/commit-dump/internal/metadata"
	"github.com/sirseerhq/commit-dump/internal/naming"
	"github.com/sirseerhq/commit-dump/internal/release"
	"github.com/sirseerhq/commit-dump/internal/state"
	"github.com/sirseerhq/commit-dump/internal/vcs"
)

// WalkOptions selects and orders the tags a Walker visits.
type WalkOptions struct {
	// Pattern is a path.Match glob tags must match. Empty matches all.
	Pattern string

	// VersionOrder re-sorts tags by version instead of keeping the order
	// the repository lists them in.
	VersionOrder bool
}

// Walker drives the export of a whole repository.
type Walker struct {
	repo      vcs.Repository
	store     *state.Store
	planner   *Planner
	generator *Generator
	tracker   *metadata.Tracker
	reporter  Reporter
	logger    *slog.Logger
	opts      WalkOptions
}

// WalkerConfig holds the collaborators of a Walker. Repo, Store and
// Generator are required.
type WalkerConfig struct {
	Repo      vcs.Repository
	Store     *state.Store
	Generator *Generator
	Tracker   *metadata.Tracker
	Reporter  Reporter
	Logger    *slog.Logger
	Options   WalkOptions
}

// NewWalker returns a Walker.
func NewWalker(cfg WalkerConfig) *Walker {
	w := &Walker{
		repo:      cfg.Repo,
		store:     cfg.Store,
		generator: cfg.Generator,
		tracker:   cfg.Tracker,
		reporter:  cfg.Reporter,
		logger:    orDiscard(cfg.Logger),
		opts:      cfg.Options,
	}
	if w.reporter == nil {
		w.reporter = nopReporter{}
	}
	if w.tracker == nil {
		w.tracker = metadata.New()
	}
	w.planner = NewPlanner(cfg.Store, w.logger)
	return w
}

// Tags lists the tags the walk visits, oldest first, without HEAD.
func (w *Walker) Tags(ctx context.Context) ([]string, error) {
	all, err := w.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, tag := range all {
		if w.opts.Pattern != "" {
			ok, err := path.Match(w.opts.Pattern, tag)
			if err != nil {
				return nil, fmt.Errorf("tag pattern %q: %w", w.opts.Pattern, err)
			}
			if !ok {
				continue
			}
		}
		tags = append(tags, tag)
	}

	if w.opts.VersionOrder {
		release.SortByVersion(tags)
	}
	return tags, nil
}

// Run exports every tag range and the range from the newest tag to HEAD.
// Consecutive tags (a, b) produce the target of b holding a..b; the first
// tag only marks where the walk starts. Without any tags the whole history
// of HEAD is exported, as RunFlat does.
func (w *Walker) Run(ctx context.Context) error {
	tags, err := w.Tags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		w.reporter.Note("no tags found, dumping the whole history into %s", state.HeadKey)
		return w.RunFlat(ctx)
	}

	previous, err := w.store.LatestTag()
	if err != nil {
		return err
	}
	latest := tags[len(tags)-1]
	if previous != "" && previous != latest {
		w.reporter.Note("new tag %s since the last run (was %s)", latest, previous)
	}

	seq := append(tags, vcs.Head)
	for i := 1; i < len(seq); i++ {
		if err := w.visit(ctx, seq[i-1], seq[i]); err != nil {
			return err
		}
	}

	return w.store.SaveLatestTag(latest)
}

// RunFlat exports the whole history of HEAD into the HEAD target.
func (w *Walker) RunFlat(ctx context.Context) error {
	return w.export(ctx, state.HeadKey, release.Dir(w.store.Root(), release.Head), vcs.Range{End: vcs.Head})
}

// visit exports the range from prev to cur into cur's target.
func (w *Walker) visit(ctx context.Context, prev, cur string) error {
	key := release.Key(cur)
	dir := release.Dir(w.store.Root(), cur)

	if cur != vcs.Head && w.store.Exists(key) {
		reason := w.damage(key, dir, prev)
		if reason == "" {
			if preRelease, _ := release.Classify(cur); preRelease {
				w.reporter.Note("%s already dumped, skipping", cur)
			} else {
				w.logger.Debug("target already dumped", "tag", cur)
			}
			w.tracker.RecordSkip()
			return nil
		}
		w.logger.Debug("dumped target no longer matches its state", "tag", cur, "reason", reason)
	}

	return w.export(ctx, key, dir, vcs.Range{Start: prev, End: cur})
}

// damage checks a target recorded as dumped against its directory, using
// the width it was written with. It returns why the target cannot be
// trusted, or "" when it is intact.
func (w *Walker) damage(key, dir, rangeStart string) string {
	st, err := w.store.Load(key)
	if err != nil {
		return err.Error()
	}
	if v := w.store.Inspect(key, dir, st.DigitWidth, rangeStart); !v.Consistent() {
		return v.Reason
	}
	return ""
}

func (w *Walker) export(ctx context.Context, key, dir string, r vcs.Range) error {
	commits, err := w.repo.ListCommits(ctx, r)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		w.reporter.Note("no commits in %s, nothing to dump into %s", r, key)
		return w.clearStale(key, dir, r)
	}

	t := Target{
		Key:   key,
		Dir:   dir,
		Range: r,
		Width: naming.DigitWidth(len(commits)),
	}

	plan, err := w.planner.Plan(t, commits)
	if err != nil {
		return err
	}
	if plan.Redo != "" {
		w.reporter.Note("re-dumping %s: %s", key, plan.Redo)
	}
	if plan.Empty() {
		w.logger.Debug("target up to date", "target", key, "commits", len(commits))
		return nil
	}

	w.reporter.Progress("dumping %d commits of %s into %s", len(plan.Commits), r, key)
	n, err := w.generator.Dump(ctx, t, plan.Commits, plan.StartOffset)
	if err != nil {
		return err
	}
	w.tracker.RecordTarget(key, r.String(), plan.StartOffset, n, plan.Redo)
	return nil
}

// clearStale empties a target whose range became empty but which still
// holds patches dumped against another range start, e.g. HEAD once a new
// tag lands on it.
func (w *Walker) clearStale(key, dir string, r vcs.Range) error {
	st, err := w.store.Load(key)
	if errors.Is(err, state.ErrNotFound) {
		return nil
	}
	var reason string
	switch {
	case err != nil:
		reason = err.Error()
	case st.LastSeenTag != r.Start:
		reason = fmt.Sprintf("range start changed from %q to %q", st.LastSeenTag, r.Start)
	default:
		return nil
	}

	if err := w.store.Reinitialize(key, dir); err != nil {
		return fmt.Errorf("reinitialize %s: %w", key, err)
	}
	w.reporter.Note("clearing %s: %s", key, reason)
	return nil
}
