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

// Package github reads repository history from the GitHub API, for
// exporting a repository that has no local clone. It has two layers:
//
//   - Client, the thin API surface: tag and commit-history pages and commit
//     metadata over GraphQL (shurcooL/graphql), and commit diffs over REST.
//   - Repository, which implements vcs.Repository on top of a Client by
//     walking the pages and assembling "git show" style output.
//
// Basic usage:
//
//	client := github.NewGraphQLClient(token, "https://api.github.com/graphql", "https://api.github.com")
//	repo := github.NewRepository(client, "torvalds", "linux", logger)
//	tags, err := repo.ListTags(ctx)
//
// Every call is made exactly once. Rate limiting and network failures are
// reported as errors and end the run.
package github
