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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrVCSFailure indicates a version-control command or query failed.
	// It is always fatal for the run. Maps to exit code 2.
	ErrVCSFailure = errors.New("version control operation failed")

	// ErrNotRepository indicates the working directory is not inside a repository.
	// Maps to exit code 2.
	ErrNotRepository = errors.New("not a git repository")

	// ErrUnknownRevision indicates a tag or revision could not be resolved.
	// Maps to exit code 2.
	ErrUnknownRevision = errors.New("unknown revision")

	// ErrInvalidToken indicates GitHub authentication failed.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrRepoNotFound indicates the remote repository does not exist or is not accessible.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrInvalidConfig indicates the effective configuration failed validation.
	// Maps to exit code 1.
	ErrInvalidConfig = errors.New("invalid configuration")
)
