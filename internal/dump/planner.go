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
	"fmt"
	"log/slog"
	"slices"

	"github.com/sirseerhq/commit-dump/internal/state"
)

// Plan is the work left for a target.
type Plan struct {
	// Commits to dump, oldest first.
	Commits []string

	// StartOffset is the offset of the first commit in Commits.
	StartOffset int

	// Redo explains why the target was wiped and is dumped from scratch.
	// Empty for a first dump and for a resumed one.
	Redo string

	// Fresh is set when the target had never been dumped.
	Fresh bool
}

// Empty reports whether the target is already up to date.
func (p Plan) Empty() bool {
	return len(p.Commits) == 0
}

// Planner trims a freshly listed range against the recorded state.
type Planner struct {
	store  *state.Store
	logger *slog.Logger
}

// NewPlanner returns a Planner using store.
func NewPlanner(store *state.Store, logger *slog.Logger) *Planner {
	return &Planner{store: store, logger: orDiscard(logger)}
}

// Plan decides what to dump into t given the full, ordered commit list of
// its range. Only a recorded state whose last commit sits exactly at its
// recorded offset in commits is resumed; anything else wipes the target
// and dumps the whole list. The only errors are filesystem failures while
// wiping.
func (p *Planner) Plan(t Target, commits []string) (Plan, error) {
	verdict := p.store.Inspect(t.Key, t.Dir, t.Width, t.Range.Start)
	if !verdict.Consistent() {
		return p.restart(t, commits, verdict.Reason, verdict.Missing)
	}
	st := verdict.State

	index := slices.Index(commits, st.LastCommitID)
	if index < 0 {
		return p.restart(t, commits, fmt.Sprintf("last dumped commit %s is not in %s", st.LastCommitID, t.Range), false)
	}
	if index+1 != st.LastOffset() {
		return p.restart(t, commits, fmt.Sprintf("last dumped commit %s is at position %d, state records offset %d",
			st.LastCommitID, index+1, st.LastOffset()), false)
	}

	plan := Plan{Commits: commits[index+1:], StartOffset: st.NextOffset}
	if plan.Empty() {
		plan.Commits = nil
	}
	p.logger.Debug("resuming target", "target", t.Key, "next_offset", st.NextOffset, "new_commits", len(plan.Commits))
	return plan, nil
}

func (p *Planner) restart(t Target, commits []string, reason string, fresh bool) (Plan, error) {
	if err := p.store.Reinitialize(t.Key, t.Dir); err != nil {
		return Plan{}, fmt.Errorf("reinitialize %s: %w", t.Key, err)
	}
	plan := Plan{Commits: commits, StartOffset: 1, Fresh: fresh}
	if !fresh {
		plan.Redo = reason
	}
	p.logger.Debug("starting target from scratch", "target", t.Key, "reason", reason)
	return plan, nil
}
