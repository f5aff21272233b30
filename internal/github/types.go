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

import "time"

// TagPage is one page of tag names.
type TagPage struct {
	Tags        []string
	HasNextPage bool
	EndCursor   string
}

// HistoryCommit is a commit as seen while walking history. Only the
// parent count is needed, to leave out merges.
type HistoryCommit struct {
	OID     string
	Parents int
}

// HistoryPage is one page of commit history, newest first.
type HistoryPage struct {
	Commits     []HistoryCommit
	HasNextPage bool
	EndCursor   string
}

// CommitInfo holds the metadata rendered in the header of an exported
// patch.
type CommitInfo struct {
	OID          string
	AuthorName   string
	AuthorEmail  string
	AuthoredDate time.Time
	Message      string
}

// pageSize is the number of items requested per GraphQL page, the
// maximum GitHub allows.
const pageSize = 100

// maxResponseSize bounds a single API response. Large kernel merges can
// produce diffs of several megabytes.
const maxResponseSize = 64 * 1024 * 1024
