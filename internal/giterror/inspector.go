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

package giterror

import (
	"errors"
	"strings"

	dumperrors "github.com/sirseerhq/commit-dump/internal/errors"
)

// Inspector provides methods for analyzing backend errors.
type Inspector interface {
	// IsNotRepositoryError returns true if the working directory is not inside a repository.
	IsNotRepositoryError(err error) bool

	// IsUnknownRevisionError returns true if a tag or commit could not be resolved.
	IsUnknownRevisionError(err error) bool

	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool
}

// MessageInspector implements Inspector by matching the text git, go-git
// and the GitHub API put in their errors.
type MessageInspector struct{}

// NewInspector creates a new MessageInspector.
func NewInspector() Inspector {
	return &MessageInspector{}
}

func contains(err error, needles ...string) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(errStr, n) {
			return true
		}
	}
	return false
}

// IsNotRepositoryError checks for git's "not a git repository" and go-git's
// ErrRepositoryNotExists.
func (i *MessageInspector) IsNotRepositoryError(err error) bool {
	return contains(err,
		"not a git repository",
		"repository does not exist")
}

// IsUnknownRevisionError checks for the ways git and go-git report an
// unresolvable revision.
func (i *MessageInspector) IsUnknownRevisionError(err error) bool {
	return contains(err,
		"unknown revision",
		"bad revision",
		"bad object",
		"invalid object name",
		"needed a single revision",
		"reference not found",
		"object not found")
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *MessageInspector) IsAuthError(err error) bool {
	return contains(err,
		"401 ",
		"403 ",
		"unauthorized",
		"forbidden",
		"bad credentials",
		"authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *MessageInspector) IsNotFoundError(err error) bool {
	return contains(err,
		"404 ",
		"not found",
		"could not resolve to a repository")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *MessageInspector) IsRateLimitError(err error) bool {
	return contains(err,
		"rate limit",
		"429 ")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *MessageInspector) IsNetworkError(err error) bool {
	return contains(err,
		"connection refused",
		"no such host",
		"timeout",
		"temporary failure",
		"dial tcp",
		"tls handshake",
		"network is unreachable")
}

// ErrorChainInspector wraps a base inspector and adds support for checking errors
// in the error chain using errors.Is and errors.As.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates a new ErrorChainInspector that checks both
// the error chain and falls back to string-based inspection.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

func (e *ErrorChainInspector) IsNotRepositoryError(err error) bool {
	if errors.Is(err, dumperrors.ErrNotRepository) {
		return true
	}
	return e.base.IsNotRepositoryError(err)
}

func (e *ErrorChainInspector) IsUnknownRevisionError(err error) bool {
	if errors.Is(err, dumperrors.ErrUnknownRevision) {
		return true
	}
	return e.base.IsUnknownRevisionError(err)
}

// IsAuthError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsAuthError(err error) bool {
	var authErr interface{ IsAuthError() bool }
	if errors.As(err, &authErr) && authErr.IsAuthError() {
		return true
	}
	if errors.Is(err, dumperrors.ErrInvalidToken) {
		return true
	}
	return e.base.IsAuthError(err)
}

// IsNotFoundError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNotFoundError(err error) bool {
	var notFoundErr interface{ IsNotFoundError() bool }
	if errors.As(err, &notFoundErr) && notFoundErr.IsNotFoundError() {
		return true
	}
	if errors.Is(err, dumperrors.ErrRepoNotFound) {
		return true
	}
	return e.base.IsNotFoundError(err)
}

// IsRateLimitError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsRateLimitError(err error) bool {
	var rateLimitErr interface{ IsRateLimitError() bool }
	if errors.As(err, &rateLimitErr) && rateLimitErr.IsRateLimitError() {
		return true
	}
	if errors.Is(err, dumperrors.ErrRateLimit) {
		return true
	}
	return e.base.IsRateLimitError(err)
}

// IsNetworkError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNetworkError(err error) bool {
	var networkErr interface{ IsNetworkError() bool }
	if errors.As(err, &networkErr) && networkErr.IsNetworkError() {
		return true
	}
	if errors.Is(err, dumperrors.ErrNetworkFailure) {
		return true
	}
	return e.base.IsNetworkError(err)
}

// Sentinel returns the internal/errors sentinel that best describes err.
// Local repository problems are checked before remote ones because go-git
// reports a missing reference as "reference not found", which would
// otherwise read as a missing GitHub repository. Anything unrecognised is
// ErrVCSFailure.
func Sentinel(i Inspector, err error) error {
	switch {
	case err == nil:
		return nil
	case i.IsNotRepositoryError(err):
		return dumperrors.ErrNotRepository
	case i.IsUnknownRevisionError(err):
		return dumperrors.ErrUnknownRevision
	case i.IsRateLimitError(err):
		return dumperrors.ErrRateLimit
	case i.IsAuthError(err):
		return dumperrors.ErrInvalidToken
	case i.IsNotFoundError(err):
		return dumperrors.ErrRepoNotFound
	case i.IsNetworkError(err):
		return dumperrors.ErrNetworkFailure
	default:
		return dumperrors.ErrVCSFailure
	}
}
