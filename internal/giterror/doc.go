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

// Package giterror classifies failures reported by the version-control
// backends. git writes its diagnostics to stderr, go-git returns plain
// error values and the GitHub API answers with status codes and GraphQL
// messages; the inspector folds all three onto the sentinel errors in
// internal/errors so callers never match on strings themselves.
package giterror
