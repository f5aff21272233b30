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

// Package gogit implements vcs.Repository in-process with go-git, for
// hosts that have no git executable. Rendered commits follow the layout
// of "git show" closely enough for file naming; the diff text is go-git's
// own unified diff and may differ cosmetically from git's.
package gogit

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/sirseerhq/commit-dump/internal/giterror"
	"github.com/sirseerhq/commit-dump/internal/release"
	"github.com/sirseerhq/commit-dump/internal/vcs"
)

// Repository wraps a go-git repository opened from disk.
type Repository struct {
	repo      *git.Repository
	logger    *slog.Logger
	inspector giterror.Inspector
}

var (
	_ vcs.Repository   = (*Repository)(nil)
	_ vcs.RemoteLister = (*Repository)(nil)
)

// Open opens the repository containing dir. Parent directories are
// searched for .git the way the git executable does.
func Open(dir string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Repository{
		logger:    logger,
		inspector: giterror.NewErrorChainInspector(giterror.NewInspector()),
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, r.wrap("open "+dir, err)
	}
	r.repo = repo
	return r, nil
}

// wrap attaches the matching sentinel while keeping go-git's message.
func (r *Repository) wrap(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, giterror.Sentinel(r.inspector, err), err)
}

type datedTag struct {
	name string
	when time.Time
}

// ListTags returns tags ordered by creation date, oldest first. The date
// of an annotated tag is its tagger date, that of a lightweight tag the
// committer date of its commit. Ties are broken by version order.
func (r *Repository) ListTags(ctx context.Context) ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, r.wrap("list tags", err)
	}
	defer iter.Close()

	var tags []datedTag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		when, err := r.tagDate(ref.Hash())
		if err != nil {
			r.logger.Debug("skipping tag without commit", "tag", ref.Name().Short(), "error", err)
			return nil
		}
		tags = append(tags, datedTag{name: ref.Name().Short(), when: when})
		return nil
	})
	if err != nil {
		return nil, r.wrap("list tags", err)
	}

	sort.SliceStable(tags, func(i, j int) bool {
		if !tags[i].when.Equal(tags[j].when) {
			return tags[i].when.Before(tags[j].when)
		}
		return release.Compare(tags[i].name, tags[j].name) < 0
	})

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.name
	}
	return names, nil
}

func (r *Repository) tagDate(h plumbing.Hash) (time.Time, error) {
	if tag, err := r.repo.TagObject(h); err == nil {
		return tag.Tagger.When, nil
	}
	c, err := r.repo.CommitObject(h)
	if err != nil {
		return time.Time{}, err
	}
	return c.Committer.When, nil
}

// resolve peels rev (HEAD, a tag name or a full hash) to a commit.
func (r *Repository) resolve(rev string) (*object.Commit, error) {
	var h plumbing.Hash
	switch {
	case rev == vcs.Head:
		ref, err := r.repo.Head()
		if err != nil {
			return nil, err
		}
		h = ref.Hash()
	case isHash(rev):
		h = plumbing.NewHash(rev)
	default:
		ref, err := r.repo.Reference(plumbing.NewTagReferenceName(rev), true)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rev, err)
		}
		h = ref.Hash()
	}

	if tag, err := r.repo.TagObject(h); err == nil {
		return tag.Commit()
	}
	return r.repo.CommitObject(h)
}

// ancestors returns every commit reachable from c, c included.
func (r *Repository) ancestors(ctx context.Context, c *object.Commit) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	iter := object.NewCommitPreorderIter(c, nil, nil)
	defer iter.Close()
	err := iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = true
		return nil
	})
	return seen, err
}

// ListCommits returns the non-merge commits of rg, oldest first.
func (r *Repository) ListCommits(ctx context.Context, rg vcs.Range) ([]string, error) {
	end, err := r.resolve(rg.End)
	if err != nil {
		return nil, r.wrap("list commits "+rg.String(), err)
	}

	var exclude map[plumbing.Hash]bool
	if rg.Start != "" {
		start, err := r.resolve(rg.Start)
		if err != nil {
			return nil, r.wrap("list commits "+rg.String(), err)
		}
		if exclude, err = r.ancestors(ctx, start); err != nil {
			return nil, r.wrap("list commits "+rg.String(), err)
		}
	}

	iter := object.NewCommitIterCTime(end, exclude, nil)
	defer iter.Close()

	var ids []string
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.NumParents() > 1 {
			return nil
		}
		ids = append(ids, c.Hash.String())
		return nil
	})
	if err != nil {
		return nil, r.wrap("list commits "+rg.String(), err)
	}

	slices.Reverse(ids)
	r.logger.Debug("listed commits", "range", rg.String(), "count", len(ids))
	return ids, nil
}

// RenderCommit returns the commit header, message and patch against its
// first parent (or the empty tree for a root commit).
func (r *Repository) RenderCommit(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := r.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return nil, r.wrap("render commit "+id, err)
	}

	patch, err := r.patch(ctx, c)
	if err != nil {
		return nil, r.wrap("render commit "+id, err)
	}

	header := vcs.CommitHeader{
		ID:          c.Hash.String(),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		Date:        c.Author.When,
		Message:     c.Message,
	}
	return vcs.FormatShow(header, patch.String()), nil
}

func (r *Repository) patch(ctx context.Context, c *object.Commit) (*object.Patch, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeContext(ctx, parentTree, tree)
	if err != nil {
		return nil, err
	}
	return changes.PatchContext(ctx)
}

// Remotes returns the URLs of every configured remote.
func (r *Repository) Remotes(ctx context.Context) ([]string, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, r.wrap("list remotes", err)
	}
	var urls []string
	for _, remote := range remotes {
		urls = append(urls, remote.Config().URLs...)
	}
	return urls, nil
}

func isHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
