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
	"time"

	dumperrors "github.com/sirseerhq/commit-dump/internal/errors"
)

// MockClient is a mock implementation of the GitHub Client interface for testing.
// History is linear: Commits lists commit IDs oldest first, and Tags maps
// a tag name to the index of the tagged commit.
type MockClient struct {
	Commits  []string
	Merges   map[string]bool
	TagOrder []string
	Tags     map[string]int
	PageSize int
	Diff     string
	Error    error

	// Behavior flags
	ShouldFailAuth     bool
	ShouldFailNetwork  bool
	ShouldFailNotFound bool

	// Track calls for verification
	CallCount   int
	HistoryRevs []string
}

// NewMockClient creates a mock client with n commits named c1..cn.
func NewMockClient(n int) *MockClient {
	m := &MockClient{
		Merges:   make(map[string]bool),
		Tags:     make(map[string]int),
		PageSize: 2,
		Diff:     "diff --git a/file b/file\n",
	}
	for i := 1; i <= n; i++ {
		m.Commits = append(m.Commits, fmt.Sprintf("c%d", i))
	}
	return m
}

// Tag tags the commit at index i.
func (m *MockClient) Tag(name string, i int) {
	m.TagOrder = append(m.TagOrder, name)
	m.Tags[name] = i
}

func (m *MockClient) fail(ctx context.Context) error {
	m.CallCount++
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if m.ShouldFailAuth {
		return fmt.Errorf("authentication failed: %w", dumperrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return fmt.Errorf("network timeout: %w", dumperrors.ErrNetworkFailure)
	}
	if m.ShouldFailNotFound {
		return fmt.Errorf("repository not found: %w", dumperrors.ErrRepoNotFound)
	}
	return m.Error
}

// page slices items by the numeric cursor after.
func page[T any](items []T, after string, size int) ([]T, bool, string) {
	start := 0
	if after != "" {
		fmt.Sscanf(after, "%d", &start)
	}
	end := min(start+size, len(items))
	if start > end {
		start = end
	}
	return items[start:end], end < len(items), fmt.Sprintf("%d", end)
}

// ListTags implements the Client interface.
func (m *MockClient) ListTags(ctx context.Context, owner, repo, after string) (*TagPage, error) {
	if err := m.fail(ctx); err != nil {
		return nil, err
	}
	tags, next, cursor := page(m.TagOrder, after, m.PageSize)
	return &TagPage{Tags: tags, HasNextPage: next, EndCursor: cursor}, nil
}

// CommitHistory implements the Client interface.
func (m *MockClient) CommitHistory(ctx context.Context, owner, repo, rev, after string) (*HistoryPage, error) {
	if err := m.fail(ctx); err != nil {
		return nil, err
	}
	m.HistoryRevs = append(m.HistoryRevs, rev)

	tip := len(m.Commits) - 1
	if rev != "HEAD" {
		i, ok := m.Tags[rev]
		if !ok {
			return nil, fmt.Errorf("revision %q: %w", rev, dumperrors.ErrUnknownRevision)
		}
		tip = i
	}

	history := make([]HistoryCommit, 0, tip+1)
	for i := tip; i >= 0; i-- {
		parents := 1
		if i == 0 {
			parents = 0
		}
		if m.Merges[m.Commits[i]] {
			parents = 2
		}
		history = append(history, HistoryCommit{OID: m.Commits[i], Parents: parents})
	}

	commits, next, cursor := page(history, after, m.PageSize)
	return &HistoryPage{Commits: commits, HasNextPage: next, EndCursor: cursor}, nil
}

// GetCommit implements the Client interface.
func (m *MockClient) GetCommit(ctx context.Context, owner, repo, oid string) (*CommitInfo, error) {
	if err := m.fail(ctx); err != nil {
		return nil, err
	}
	return &CommitInfo{
		OID:          oid,
		AuthorName:   "A U Thor",
		AuthorEmail:  "author@example.com",
		AuthoredDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Message:      "Subject of " + oid + "\n",
	}, nil
}

// GetCommitDiff implements the Client interface.
func (m *MockClient) GetCommitDiff(ctx context.Context, owner, repo, oid string) (string, error) {
	if err := m.fail(ctx); err != nil {
		return "", err
	}
	return m.Diff, nil
}
