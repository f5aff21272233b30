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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shurcooL/graphql"

	dumperrors "github.com/sirseerhq/commit-dump/internal/errors"
	"github.com/sirseerhq/commit-dump/internal/giterror"
)

// diffMediaType asks the REST commits endpoint for a unified diff.
const diffMediaType = "application/vnd.github.v3.diff"

// GraphQLClient implements Client with the GraphQL API for listings and
// metadata and the REST API for diffs, which GraphQL does not expose.
type GraphQLClient struct {
	client      *graphql.Client
	httpClient  *http.Client
	apiEndpoint string
	inspector   giterror.Inspector
}

// NewGraphQLClient creates a client authenticated with token. graphqlEndpoint
// is the GraphQL URL and apiEndpoint the REST base URL; both differ on
// GitHub Enterprise.
func NewGraphQLClient(token, graphqlEndpoint, apiEndpoint string) *GraphQLClient {
	httpClient := newHTTPClient(token)
	return &GraphQLClient{
		client:      graphql.NewClient(graphqlEndpoint, httpClient),
		httpClient:  httpClient,
		apiEndpoint: strings.TrimRight(apiEndpoint, "/"),
		inspector:   giterror.NewErrorChainInspector(giterror.NewInspector()),
	}
}

func cursor(after string) *graphql.String {
	if after == "" {
		return nil
	}
	s := graphql.String(after)
	return &s
}

// ListTags fetches a page of tags.
func (c *GraphQLClient) ListTags(ctx context.Context, owner, repo, after string) (*TagPage, error) {
	var query struct {
		Repository struct {
			Refs struct {
				PageInfo struct {
					HasNextPage graphql.Boolean
					EndCursor   graphql.String
				}
				Nodes []struct {
					Name graphql.String
				}
			} `graphql:"refs(refPrefix: \"refs/tags/\", first: $first, after: $after, orderBy: {field: TAG_COMMIT_DATE, direction: ASC})"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]interface{}{
		"owner": graphql.String(owner),
		"repo":  graphql.String(repo),
		"first": graphql.Int(pageSize),
		"after": cursor(after),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, owner, repo)
	}

	refs := query.Repository.Refs
	page := &TagPage{
		HasNextPage: bool(refs.PageInfo.HasNextPage),
		EndCursor:   string(refs.PageInfo.EndCursor),
		Tags:        make([]string, 0, len(refs.Nodes)),
	}
	for _, node := range refs.Nodes {
		page.Tags = append(page.Tags, string(node.Name))
	}
	return page, nil
}

// CommitHistory fetches a page of the history of rev.
func (c *GraphQLClient) CommitHistory(ctx context.Context, owner, repo, rev, after string) (*HistoryPage, error) {
	var query struct {
		Repository struct {
			Object *struct {
				Commit struct {
					History struct {
						PageInfo struct {
							HasNextPage graphql.Boolean
							EndCursor   graphql.String
						}
						Nodes []struct {
							OID     graphql.String `graphql:"oid"`
							Parents struct {
								TotalCount graphql.Int
							}
						}
					} `graphql:"history(first: $first, after: $after)"`
				} `graphql:"... on Commit"`
			} `graphql:"object(expression: $expression)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]interface{}{
		"owner":      graphql.String(owner),
		"repo":       graphql.String(repo),
		"expression": graphql.String(rev),
		"first":      graphql.Int(pageSize),
		"after":      cursor(after),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, owner, repo)
	}
	if query.Repository.Object == nil {
		return nil, fmt.Errorf("revision %q not found in %s/%s: %w", rev, owner, repo, dumperrors.ErrUnknownRevision)
	}

	history := query.Repository.Object.Commit.History
	page := &HistoryPage{
		HasNextPage: bool(history.PageInfo.HasNextPage),
		EndCursor:   string(history.PageInfo.EndCursor),
		Commits:     make([]HistoryCommit, 0, len(history.Nodes)),
	}
	for _, node := range history.Nodes {
		page.Commits = append(page.Commits, HistoryCommit{
			OID:     string(node.OID),
			Parents: int(node.Parents.TotalCount),
		})
	}
	return page, nil
}

// GetCommit fetches the metadata of a single commit.
func (c *GraphQLClient) GetCommit(ctx context.Context, owner, repo, oid string) (*CommitInfo, error) {
	var query struct {
		Repository struct {
			Object *struct {
				Commit struct {
					OID     graphql.String `graphql:"oid"`
					Message graphql.String
					Author  struct {
						Name  graphql.String
						Email graphql.String
						Date  time.Time
					}
				} `graphql:"... on Commit"`
			} `graphql:"object(expression: $expression)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]interface{}{
		"owner":      graphql.String(owner),
		"repo":       graphql.String(repo),
		"expression": graphql.String(oid),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, owner, repo)
	}
	if query.Repository.Object == nil {
		return nil, fmt.Errorf("commit %s not found in %s/%s: %w", oid, owner, repo, dumperrors.ErrUnknownRevision)
	}

	commit := query.Repository.Object.Commit
	return &CommitInfo{
		OID:          string(commit.OID),
		AuthorName:   string(commit.Author.Name),
		AuthorEmail:  string(commit.Author.Email),
		AuthoredDate: commit.Author.Date,
		Message:      string(commit.Message),
	}, nil
}

// GetCommitDiff fetches the unified diff of a commit from the REST API.
func (c *GraphQLClient) GetCommitDiff(ctx context.Context, owner, repo, oid string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits/%s",
		c.apiEndpoint, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(oid))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build diff request: %w", err)
	}
	req.Header.Set("Accept", diffMediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.mapError(err, owner, repo)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.mapError(err, owner, repo)
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return "", fmt.Errorf("commit %s not found in %s/%s: %w", oid, owner, repo, dumperrors.ErrUnknownRevision)
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.mapError(fmt.Errorf("commit diff: %s: %s", resp.Status, strings.TrimSpace(string(body))), owner, repo)
	}
	return string(body), nil
}

// mapError maps API errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error, owner, repo string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before running again: %w", dumperrors.ErrRateLimit)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via --token flag or GITHUB_TOKEN environment variable: %w", dumperrors.ErrInvalidToken)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("repository '%s/%s' not found. Please check the repository name and your access permissions: %w", owner, repo, dumperrors.ErrRepoNotFound)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to GitHub API: %v: %w", err, dumperrors.ErrNetworkFailure)
	}

	return fmt.Errorf("GitHub API request failed: %v: %w", err, dumperrors.ErrVCSFailure)
}
