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

// Package vcs defines the version-control collaborator the dump engine
// reads history from. Backends live in sub-packages (gitcli, gogit) and in
// internal/github.
package vcs

import "context"

// Head names the tip of the current branch as a range end.
const Head = "HEAD"

// Range selects the commits reachable from End but not from Start.
// An empty Start selects the whole history of End.
type Range struct {
	Start string
	End   string
}

// String renders the range the way git spells it.
func (r Range) String() string {
	if r.Start == "" {
		return r.End
	}
	return r.Start + ".." + r.End
}

// Repository is the read-only view of a repository the dump engine needs.
// Every error returned is fatal for the run.
type Repository interface {
	// ListTags returns tag names ordered oldest first. The synthetic HEAD
	// entry is not included.
	ListTags(ctx context.Context) ([]string, error)

	// ListCommits returns the IDs of the non-merge commits in r, oldest first.
	ListCommits(ctx context.Context, r Range) ([]string, error)

	// RenderCommit returns the commit in "git show" layout: the first line
	// is "commit <id>" and line index 4 holds the subject.
	RenderCommit(ctx context.Context, id string) ([]byte, error)
}

// RemoteLister is implemented by backends that know the remote URLs of the
// repository.
type RemoteLister interface {
	Remotes(ctx context.Context) ([]string, error)
}
