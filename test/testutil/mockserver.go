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

// Package testutil provides common test helpers for commit-dump
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

// MockCommit is a commit served by GitHubServer
type MockCommit struct {
	OID     string
	Subject string
	Merge   bool
}

// GitHubServer serves the GraphQL and REST endpoints the github backend
// uses, backed by a linear in-memory history.
type GitHubServer struct {
	*httptest.Server

	// Token is the expected bearer token; empty accepts any request.
	Token string

	commits      []MockCommit
	tags         []string
	tagTargets   map[string]int
	requestCount int32
}

// NewGitHubServer creates a mock GitHub API. Point the github backend at
// URL+"/graphql" and URL.
func NewGitHubServer(t *testing.T) *GitHubServer {
	t.Helper()

	s := &GitHubServer{tagTargets: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", s.serveGraphQL)
	mux.HandleFunc("/repos/", s.serveDiff)
	s.Server = httptest.NewServer(s.authorize(mux))
	t.Cleanup(s.Close)
	return s
}

// Commit appends a commit with the given subject and returns its OID
func (s *GitHubServer) Commit(subject string) string {
	oid := fmt.Sprintf("%040x", len(s.commits)+1)
	s.commits = append(s.commits, MockCommit{OID: oid, Subject: subject})
	return oid
}

// Merge appends a merge commit
func (s *GitHubServer) Merge(subject string) string {
	oid := s.Commit(subject)
	s.commits[len(s.commits)-1].Merge = true
	return oid
}

// Tag tags the newest commit
func (s *GitHubServer) Tag(name string) {
	s.tags = append(s.tags, name)
	s.tagTargets[name] = len(s.commits) - 1
}

// RequestCount returns the number of requests served
func (s *GitHubServer) RequestCount() int {
	return int(atomic.LoadInt32(&s.requestCount))
}

func (s *GitHubServer) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.requestCount, 1)
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (s *GitHubServer) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var repository map[string]interface{}
	switch {
	case strings.Contains(req.Query, "refs("):
		repository = map[string]interface{}{"refs": s.tagPage(req.Variables)}
	case strings.Contains(req.Query, "history("):
		repository = map[string]interface{}{"object": s.historyPage(req.Variables)}
	default:
		repository = map[string]interface{}{"object": s.commitObject(req.Variables)}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{"repository": repository},
	})
}

// window returns the [start, end) slice of n items for a page request,
// using decimal offsets as cursors.
func window(vars map[string]interface{}, n int) (start, end int) {
	if after, ok := vars["after"].(string); ok && after != "" {
		start, _ = strconv.Atoi(after)
	}
	size := 100
	if first, ok := vars["first"].(float64); ok && first > 0 {
		size = int(first)
	}
	end = start + size
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return start, end
}

func pageInfo(end, n int) map[string]interface{} {
	return map[string]interface{}{
		"hasNextPage": end < n,
		"endCursor":   strconv.Itoa(end),
	}
}

func (s *GitHubServer) tagPage(vars map[string]interface{}) map[string]interface{} {
	start, end := window(vars, len(s.tags))
	nodes := make([]interface{}, 0, end-start)
	for _, name := range s.tags[start:end] {
		nodes = append(nodes, map[string]interface{}{"name": name})
	}
	return map[string]interface{}{"pageInfo": pageInfo(end, len(s.tags)), "nodes": nodes}
}

// resolve maps an expression to a commit index, or -1.
func (s *GitHubServer) resolve(vars map[string]interface{}) int {
	expr, _ := vars["expression"].(string)
	if expr == "HEAD" {
		return len(s.commits) - 1
	}
	if idx, ok := s.tagTargets[expr]; ok {
		return idx
	}
	for i, c := range s.commits {
		if c.OID == expr {
			return i
		}
	}
	return -1
}

func (s *GitHubServer) historyPage(vars map[string]interface{}) interface{} {
	tip := s.resolve(vars)
	if tip < 0 {
		return nil
	}

	// History is served newest first.
	var history []MockCommit
	for i := tip; i >= 0; i-- {
		history = append(history, s.commits[i])
	}

	start, end := window(vars, len(history))
	nodes := make([]interface{}, 0, end-start)
	for _, c := range history[start:end] {
		parents := 1
		if c.Merge {
			parents = 2
		}
		nodes = append(nodes, map[string]interface{}{
			"oid":     c.OID,
			"parents": map[string]interface{}{"totalCount": parents},
		})
	}
	return map[string]interface{}{
		"history": map[string]interface{}{"pageInfo": pageInfo(end, len(history)), "nodes": nodes},
	}
}

func (s *GitHubServer) commitObject(vars map[string]interface{}) interface{} {
	idx := s.resolve(vars)
	if idx < 0 {
		return nil
	}
	c := s.commits[idx]
	return map[string]interface{}{
		"oid":     c.OID,
		"message": c.Subject + "\n",
		"author": map[string]interface{}{
			"name":  "A U Thor",
			"email": "author@example.com",
			"date":  fmt.Sprintf("2020-01-01T00:%02d:00Z", idx%60),
		},
	}
}

func (s *GitHubServer) serveDiff(w http.ResponseWriter, r *http.Request) {
	oid := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	for _, c := range s.commits {
		if c.OID == oid {
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprintf(w, "diff --git a/%[1]s b/%[1]s\n", c.OID)
			return
		}
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	_, _ = w.Write([]byte(`{"message": "No commit found for SHA"}`))
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	}))
	t.Cleanup(server.Close)
	return server
}
