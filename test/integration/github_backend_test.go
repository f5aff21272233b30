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

package integration

import (
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirseerhq/commit-dump/test/testutil"
)

func githubEnv(t *testing.T, url string) map[string]string {
	env := isolated(t)
	env["GITHUB_GRAPHQL_ENDPOINT"] = url + "/graphql"
	env["GITHUB_API_ENDPOINT"] = url
	env["GITHUB_TOKEN"] = "test-token"
	return env
}

func TestGitHubBackend_Flat(t *testing.T) {
	server := testutil.NewGitHubServer(t)
	server.Token = "test-token"
	server.Commit("Initial import")
	server.Merge("Merge pull request #1")
	server.Commit("Fix a weird bug")

	out := t.TempDir()
	args := []string{"--github-repo", "torvalds/linux", "--output", out}

	result := testutil.RunCLI(t, args, githubEnv(t, server.URL))
	testutil.AssertCLISuccess(t, result)

	want := []string{"0001-Initial-import.patch", "0002-Fix-a-weird-bug.patch"}
	head := filepath.Join(out, "HEAD")
	if got := testutil.PatchFiles(t, head); !reflect.DeepEqual(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	patch := testutil.ReadFile(t, filepath.Join(head, want[1]))
	if !strings.Contains(patch, "Author: A U Thor <author@example.com>") || !strings.Contains(patch, "diff --git") {
		t.Errorf("unexpected patch:\n%s", patch)
	}

	server.Commit("Follow-up")
	result = testutil.RunCLI(t, args, githubEnv(t, server.URL))
	testutil.AssertCLISuccess(t, result)
	want = append(want, "0003-Follow-up.patch")
	if got := testutil.PatchFiles(t, head); !reflect.DeepEqual(got, want) {
		t.Errorf("files after resume = %v, want %v", got, want)
	}
}

func TestGitHubBackend_TokenFlag(t *testing.T) {
	server := testutil.NewGitHubServer(t)
	server.Token = "flag-token"
	server.Commit("Only")

	out := t.TempDir()
	result := testutil.RunCLI(t,
		[]string{"--github-repo", "torvalds/linux", "--output", out, "--token", "flag-token"},
		githubEnv(t, server.URL))
	testutil.AssertCLISuccess(t, result)
	testutil.AssertFileExists(t, filepath.Join(out, "HEAD", "0001-Only.patch"))
}

func TestGitHubBackend_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantErr  string
		wantCode int
	}{
		{"bad credentials", http.StatusUnauthorized, "authentication failed", 2},
		{"not found", http.StatusNotFound, "not found", 2},
		{"rate limited", http.StatusTooManyRequests, "rate limit", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewErrorServer(t, tt.status)
			result := testutil.RunCLI(t,
				[]string{"--github-repo", "torvalds/linux", "--output", t.TempDir(), "--mode", "flat"},
				githubEnv(t, server.URL))
			testutil.AssertCLIError(t, result, tt.wantErr)
			testutil.AssertExitCode(t, result, tt.wantCode)
		})
	}
}

func TestGitHubBackend_NetworkFailure(t *testing.T) {
	server := testutil.NewErrorServer(t, http.StatusOK)
	url := server.URL
	server.Close()

	result := testutil.RunCLI(t,
		[]string{"--github-repo", "torvalds/linux", "--output", t.TempDir(), "--mode", "flat"},
		githubEnv(t, url))
	testutil.AssertCLIError(t, result, "network error")
	testutil.AssertExitCode(t, result, 3)
}
