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

import "context"

// Client defines the interface for interacting with GitHub's API.
// This interface allows for easy mocking in tests.
type Client interface {
	// ListTags retrieves a page of tag names ordered by the date of the
	// tagged commit, oldest first. Pass the EndCursor of the previous page
	// as after; an empty after starts from the beginning.
	ListTags(ctx context.Context, owner, repo, after string) (*TagPage, error)

	// CommitHistory retrieves a page of the history reachable from rev,
	// newest first, the way "git log" walks it.
	CommitHistory(ctx context.Context, owner, repo, rev, after string) (*HistoryPage, error)

	// GetCommit retrieves author, date and message of a single commit.
	GetCommit(ctx context.Context, owner, repo, oid string) (*CommitInfo, error)

	// GetCommitDiff retrieves the unified diff of a commit against its
	// first parent.
	GetCommitDiff(ctx context.Context, owner, repo, oid string) (string, error)
}
