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

// Package main implements the commit-dump command-line interface.
// The tool exports every non-merge commit of a git repository as one
// patch file, numbered in history order, and resumes where the previous
// run stopped.
//
// The CLI supports:
//   - Flat mode: the whole history of HEAD in one directory
//   - Tags mode: one directory per release tag, pre-releases nested in
//     the directory of the release they precede
//   - Auto mode: tags mode for known upstream kernel remotes, flat otherwise
//   - Three backends: the git binary, an in-process go-git reader, and
//     the GitHub API
//
// Usage:
//
//	commit-dump [flags]
//
// Example:
//
//	commit-dump --mode tags --tags 'v6.*' --output /srv/linux-patches
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Version control, authentication or rate limit error
//   - 3: Network error
package main
