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

package gogit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	dumperrors "github.com/sirseerhq/commit-dump/internal/errors"
	"github.com/sirseerhq/commit-dump/internal/vcs"
)

type fixture struct {
	t       *testing.T
	dir     string
	repo    *git.Repository
	clock   time.Time
	commits []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	return &fixture{
		t:     t,
		dir:   dir,
		repo:  repo,
		clock: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) commit(subject string, parents ...plumbing.Hash) plumbing.Hash {
	f.t.Helper()
	f.clock = f.clock.Add(time.Minute)

	wt, err := f.repo.Worktree()
	if err != nil {
		f.t.Fatal(err)
	}
	name := strings.ReplaceAll(strings.ToLower(subject), " ", "-") + ".txt"
	if err := os.WriteFile(filepath.Join(f.dir, name), []byte(subject+"\n"), 0o644); err != nil {
		f.t.Fatal(err)
	}
	if _, err := wt.Add(name); err != nil {
		f.t.Fatal(err)
	}
	sig := &object.Signature{Name: "A U Thor", Email: "author@example.com", When: f.clock}
	h, err := wt.Commit(subject+"\n\nBody of "+subject+".\n", &git.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   parents,
	})
	if err != nil {
		f.t.Fatal(err)
	}
	f.commits = append(f.commits, h.String())
	return h
}

func (f *fixture) tag(name string) {
	f.t.Helper()
	head, err := f.repo.Head()
	if err != nil {
		f.t.Fatal(err)
	}
	if _, err := f.repo.CreateTag(name, head.Hash(), nil); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) open() *Repository {
	f.t.Helper()
	r, err := Open(f.dir, nil)
	if err != nil {
		f.t.Fatalf("Open() error = %v", err)
	}
	return r
}

func TestRepository_ListTagsAndCommits(t *testing.T) {
	f := newFixture(t)
	f.commit("First")
	f.tag("v1.0")
	f.commit("Second")
	f.commit("Third")
	f.tag("v1.1-rc1")
	f.commit("Fourth")

	r := f.open()
	ctx := context.Background()

	tags, err := r.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if want := []string{"v1.0", "v1.1-rc1"}; !reflect.DeepEqual(tags, want) {
		t.Errorf("ListTags() = %v, want %v", tags, want)
	}

	tests := []struct {
		name string
		r    vcs.Range
		want []string
	}{
		{"whole history", vcs.Range{End: vcs.Head}, f.commits},
		{"between tags", vcs.Range{Start: "v1.0", End: "v1.1-rc1"}, f.commits[1:3]},
		{"tag to head", vcs.Range{Start: "v1.1-rc1", End: vcs.Head}, f.commits[3:]},
		{"empty range", vcs.Range{Start: "v1.1-rc1", End: "v1.1-rc1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ListCommits(ctx, tt.r)
			if err != nil {
				t.Fatalf("ListCommits() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ListCommits() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepository_ListCommitsSkipsMerges(t *testing.T) {
	f := newFixture(t)
	base := f.commit("Base")
	f.commit("Mainline")
	head, err := f.repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	f.commit("Merge side", head.Hash(), base)

	got, err := f.open().ListCommits(context.Background(), vcs.Range{End: vcs.Head})
	if err != nil {
		t.Fatal(err)
	}
	if want := f.commits[:2]; !reflect.DeepEqual(got, want) {
		t.Errorf("ListCommits() = %v, want %v", got, want)
	}
}

func TestRepository_RenderCommit(t *testing.T) {
	f := newFixture(t)
	f.commit("First")
	second := f.commit("Fix a weird bug")

	r := f.open()
	for _, id := range []string{f.commits[0], second.String()} {
		out, err := r.RenderCommit(context.Background(), id)
		if err != nil {
			t.Fatalf("RenderCommit(%s) error = %v", id, err)
		}
		lines := strings.Split(string(out), "\n")
		if lines[0] != "commit "+id {
			t.Errorf("line 0 = %q, want commit %s", lines[0], id)
		}
		if !strings.Contains(string(out), "diff --git") {
			t.Errorf("RenderCommit(%s) has no diff:\n%s", id, out)
		}
	}

	out, _ := r.RenderCommit(context.Background(), second.String())
	if line := strings.Split(string(out), "\n")[4]; line != "    Fix a weird bug" {
		t.Errorf("subject line = %q", line)
	}
	if !strings.Contains(string(out), "+Fix a weird bug") {
		t.Errorf("diff does not add the new file content:\n%s", out)
	}
}

func TestRepository_Remotes(t *testing.T) {
	f := newFixture(t)
	f.commit("First")
	_, err := f.repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://git.kernel.org/pub/scm/linux/kernel/git/torvalds/linux-2.6.git"},
	})
	if err != nil {
		t.Fatal(err)
	}

	urls, err := f.open().Remotes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || !strings.HasSuffix(urls[0], "torvalds/linux-2.6.git") {
		t.Errorf("Remotes() = %v", urls)
	}
}

func TestRepository_Errors(t *testing.T) {
	if _, err := Open(t.TempDir(), nil); !errors.Is(err, dumperrors.ErrNotRepository) {
		t.Errorf("Open(empty dir) error = %v, want ErrNotRepository", err)
	}

	f := newFixture(t)
	f.commit("First")
	_, err := f.open().ListCommits(context.Background(), vcs.Range{Start: "v9.9", End: vcs.Head})
	if !errors.Is(err, dumperrors.ErrUnknownRevision) {
		t.Errorf("ListCommits(unknown tag) error = %v, want ErrUnknownRevision", err)
	}
}
