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

package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// GitRepo is a throwaway repository driven through the git executable.
// Every commit gets a distinct, increasing date so tag order is stable.
type GitRepo struct {
	t     *testing.T
	Dir   string
	clock int
}

// NewGitRepo initialises an empty repository in a temp directory. The test
// is skipped when git is not installed. HOME is pointed at a temp directory
// so neither git nor commit-dump pick up the user's configuration.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("HOME", t.TempDir())

	r := &GitRepo{t: t, Dir: dir}
	r.Git("init", "-q")
	r.Git("config", "user.name", "A U Thor")
	r.Git("config", "user.email", "author@example.com")
	r.Git("config", "commit.gpgsign", "false")
	r.Git("config", "tag.gpgsign", "false")
	return r
}

// Git runs git in the repository and returns its trimmed output
func (r *GitRepo) Git(args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	date := fmt.Sprintf("2020-01-01T%02d:%02d:00Z", r.clock/60, r.clock%60)
	cmd.Env = append(os.Environ(), "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)

	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// Commit records a change with the given subject and returns its ID
func (r *GitRepo) Commit(subject string) string {
	r.t.Helper()

	r.clock++
	name := fmt.Sprintf("file-%04d.txt", r.clock)
	if err := os.WriteFile(filepath.Join(r.Dir, name), []byte(subject+"\n"), 0o644); err != nil {
		r.t.Fatalf("Failed to write %s: %v", name, err)
	}
	r.Git("add", name)
	r.Git("commit", "-q", "-m", subject)
	return r.Git("rev-parse", "HEAD")
}

// Commits records one commit per subject
func (r *GitRepo) Commits(subjects ...string) {
	r.t.Helper()
	for _, s := range subjects {
		r.Commit(s)
	}
}

// Tag creates a lightweight tag at HEAD
func (r *GitRepo) Tag(name string) {
	r.t.Helper()
	r.Git("tag", name)
}

// AddRemote registers a remote without fetching it
func (r *GitRepo) AddRemote(name, url string) {
	r.t.Helper()
	r.Git("remote", "add", name, url)
}
