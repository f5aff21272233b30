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

package github

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sirseerhq/commit-dump/internal/vcs"
)

// Repository implements vcs.Repository for a repository hosted on GitHub.
type Repository struct {
	client Client
	owner  string
	name   string
	logger *slog.Logger
}

var (
	_ vcs.Repository   = (*Repository)(nil)
	_ vcs.RemoteLister = (*Repository)(nil)
)

// NewRepository returns a Repository reading owner/name through client.
func NewRepository(client Client, owner, name string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{client: client, owner: owner, name: name, logger: logger}
}

// ListTags returns every tag, ordered by the date of the tagged commit.
func (r *Repository) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	after := ""
	for {
		page, err := r.client.ListTags(ctx, r.owner, r.name, after)
		if err != nil {
			return nil, fmt.Errorf("list tags: %w", err)
		}
		tags = append(tags, page.Tags...)
		if !page.HasNextPage {
			break
		}
		after = page.EndCursor
	}
	r.logger.Debug("listed tags", "repository", r.owner+"/"+r.name, "count", len(tags))
	return tags, nil
}

// walk calls fn for every commit reachable from rev, newest first.
func (r *Repository) walk(ctx context.Context, rev string, fn func(HistoryCommit)) error {
	after := ""
	for {
		page, err := r.client.CommitHistory(ctx, r.owner, r.name, rev, after)
		if err != nil {
			return err
		}
		for _, c := range page.Commits {
			fn(c)
		}
		if !page.HasNextPage {
			return nil
		}
		after = page.EndCursor
	}
}

// ListCommits returns the non-merge commits reachable from rg.End and not
// from rg.Start, oldest first.
func (r *Repository) ListCommits(ctx context.Context, rg vcs.Range) ([]string, error) {
	exclude := make(map[string]bool)
	if rg.Start != "" {
		err := r.walk(ctx, rg.Start, func(c HistoryCommit) { exclude[c.OID] = true })
		if err != nil {
			return nil, fmt.Errorf("list commits %s: %w", rg, err)
		}
	}

	var ids []string
	err := r.walk(ctx, rg.End, func(c HistoryCommit) {
		if exclude[c.OID] || c.Parents > 1 {
			return
		}
		ids = append(ids, c.OID)
	})
	if err != nil {
		return nil, fmt.Errorf("list commits %s: %w", rg, err)
	}

	slices.Reverse(ids)
	r.logger.Debug("listed commits", "range", rg.String(), "count", len(ids))
	return ids, nil
}

// RenderCommit assembles "git show" output from the commit metadata and
// its REST diff.
func (r *Repository) RenderCommit(ctx context.Context, id string) ([]byte, error) {
	info, err := r.client.GetCommit(ctx, r.owner, r.name, id)
	if err != nil {
		return nil, fmt.Errorf("render commit %s: %w", id, err)
	}
	diff, err := r.client.GetCommitDiff(ctx, r.owner, r.name, id)
	if err != nil {
		return nil, fmt.Errorf("render commit %s: %w", id, err)
	}

	header := vcs.CommitHeader{
		ID:          info.OID,
		AuthorName:  info.AuthorName,
		AuthorEmail: info.AuthorEmail,
		Date:        info.AuthoredDate,
		Message:     info.Message,
	}
	return vcs.FormatShow(header, diff), nil
}

// Remotes reports the clone URL of the repository.
func (r *Repository) Remotes(ctx context.Context) ([]string, error) {
	return []string{fmt.Sprintf("https://github.com/%s/%s.git", r.owner, r.name)}, nil
}
