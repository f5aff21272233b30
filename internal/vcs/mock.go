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

package vcs

import (
	"context"
	"fmt"
	"time"

	dumperrors "github.com/sirseerhq/commit-dump/internal/errors"
)

// MockCommit is a commit known to MockRepository.
type MockCommit struct {
	ID      string
	Subject string
	Body    string
}

// MockRepository is an in-memory Repository for tests. Commits form a single
// line of history; tags point at commit IDs.
type MockRepository struct {
	// Commits in history order, oldest first.
	Commits []MockCommit

	// Tags in the order ListTags returns them.
	Tags []string

	// TagTargets maps tag name to commit ID.
	TagTargets map[string]string

	// URLs returned by Remotes.
	URLs []string

	// Error injection
	FailRender map[string]bool
	ListError  error

	// Track calls for verification
	RenderCalls []string
	ListCalls   []Range
}

// NewMockRepository creates a mock with the given commits and no tags.
func NewMockRepository(commits ...MockCommit) *MockRepository {
	return &MockRepository{
		Commits:    commits,
		TagTargets: make(map[string]string),
		FailRender: make(map[string]bool),
	}
}

// Append adds commits to the tip of history.
func (m *MockRepository) Append(commits ...MockCommit) {
	m.Commits = append(m.Commits, commits...)
}

// Tag points name at the current tip.
func (m *MockRepository) Tag(name string) {
	m.Tags = append(m.Tags, name)
	m.TagTargets[name] = m.Commits[len(m.Commits)-1].ID
}

// ListTags implements Repository.
func (m *MockRepository) ListTags(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ListError != nil {
		return nil, m.ListError
	}
	return append([]string(nil), m.Tags...), nil
}

// ListCommits implements Repository.
func (m *MockRepository) ListCommits(ctx context.Context, r Range) ([]string, error) {
	m.ListCalls = append(m.ListCalls, r)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ListError != nil {
		return nil, m.ListError
	}

	end, err := m.position(r.End)
	if err != nil {
		return nil, err
	}
	start := -1
	if r.Start != "" {
		if start, err = m.position(r.Start); err != nil {
			return nil, err
		}
	}

	var ids []string
	for i := start + 1; i <= end; i++ {
		ids = append(ids, m.Commits[i].ID)
	}
	return ids, nil
}

// RenderCommit implements Repository.
func (m *MockRepository) RenderCommit(ctx context.Context, id string) ([]byte, error) {
	m.RenderCalls = append(m.RenderCalls, id)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FailRender[id] {
		return nil, fmt.Errorf("git show %s: %w", id, dumperrors.ErrVCSFailure)
	}
	for _, c := range m.Commits {
		if c.ID == id {
			return []byte(Render(c)), nil
		}
	}
	return nil, fmt.Errorf("git show %s: %w", id, dumperrors.ErrUnknownRevision)
}

// Remotes implements RemoteLister.
func (m *MockRepository) Remotes(ctx context.Context) ([]string, error) {
	return m.URLs, nil
}

func (m *MockRepository) position(rev string) (int, error) {
	if rev == Head {
		return len(m.Commits) - 1, nil
	}
	target, ok := m.TagTargets[rev]
	if !ok {
		target = rev
	}
	for i, c := range m.Commits {
		if c.ID == target {
			return i, nil
		}
	}
	return 0, fmt.Errorf("revision %s: %w", rev, dumperrors.ErrUnknownRevision)
}

// Render formats a mock commit in git show layout.
func Render(c MockCommit) string {
	message := c.Subject
	if c.Body != "" {
		message += "\n\n" + c.Body
	}
	header := CommitHeader{
		ID:          c.ID,
		AuthorName:  "A U Thor",
		AuthorEmail: "author@example.com",
		Date:        time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600)),
		Message:     message,
	}
	diff := fmt.Sprintf("diff --git a/%[1]s b/%[1]s\n", c.ID)
	return string(FormatShow(header, diff))
}
