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

// Package gitcli implements vcs.Repository by running the git executable.
// Output of "git show" is passed through byte for byte.
package gitcli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	dumperrors "github.com/sirseerhq/commit-dump/internal/errors"
	"github.com/sirseerhq/commit-dump/internal/giterror"
	"github.com/sirseerhq/commit-dump/internal/vcs"
)

// Executor runs a prepared command and returns its standard output.
type Executor interface {
	Output(cmd *exec.Cmd) ([]byte, error)
}

// ExecExecutor is the default Executor, delegating to os/exec.
type ExecExecutor struct {
	inspector giterror.Inspector
}

// NewExecExecutor creates a new ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{inspector: giterror.NewErrorChainInspector(giterror.NewInspector())}
}

// Output implements Executor. A failing command yields a
// *dumperrors.CommandError carrying stderr verbatim and wrapping the
// sentinel that stderr maps to.
func (e *ExecExecutor) Output(cmd *exec.Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var args []string
		if len(cmd.Args) > 1 {
			args = cmd.Args[1:]
		}
		sentinel := giterror.Sentinel(e.inspector, fmt.Errorf("%s: %w", stderr.String(), err))
		return nil, &dumperrors.CommandError{
			Command: cmd.Args[0],
			Args:    args,
			Stderr:  stderr.String(),
			Err:     fmt.Errorf("%w: %v", sentinel, err),
		}
	}
	return stdout.Bytes(), nil
}

// Repository reads history from a working copy through git.
type Repository struct {
	dir      string
	gitPath  string
	executor Executor
	logger   *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithExecutor replaces the command executor.
func WithExecutor(e Executor) Option {
	return func(r *Repository) { r.executor = e }
}

// WithGitPath overrides the git executable.
func WithGitPath(path string) Option {
	return func(r *Repository) { r.gitPath = path }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// New returns a Repository for the working copy at dir.
func New(dir string, opts ...Option) *Repository {
	r := &Repository{
		dir:      dir,
		gitPath:  "git",
		executor: NewExecExecutor(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	_ vcs.Repository   = (*Repository)(nil)
	_ vcs.RemoteLister = (*Repository)(nil)
)

func (r *Repository) git(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = r.dir
	r.logger.Debug("running git", "args", args, "dir", r.dir)
	out, err := r.executor.Output(cmd)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return out, nil
}

// ListTags returns tags ordered by creation date, oldest first.
func (r *Repository) ListTags(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "for-each-ref", "--sort=creatordate", "--format=%(refname:short)", "refs/tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return lines(out), nil
}

// ListCommits returns the non-merge commits of rg, oldest first.
func (r *Repository) ListCommits(ctx context.Context, rg vcs.Range) ([]string, error) {
	out, err := r.git(ctx, "log", "--no-merges", "--pretty=format:%H", "--reverse", rg.String(), "--")
	if err != nil {
		return nil, fmt.Errorf("list commits %s: %w", rg, err)
	}
	return lines(out), nil
}

// RenderCommit returns "git show" output for id.
func (r *Repository) RenderCommit(ctx context.Context, id string) ([]byte, error) {
	out, err := r.git(ctx, "show", id, "--")
	if err != nil {
		return nil, fmt.Errorf("render commit %s: %w", id, err)
	}
	return out, nil
}

// Remotes returns the fetch URLs of every configured remote.
func (r *Repository) Remotes(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "remote", "-v")
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	var urls []string
	for _, line := range lines(out) {
		fields := strings.Fields(line)
		if len(fields) == 3 && fields[2] == "(fetch)" {
			urls = append(urls, fields[1])
		}
	}
	return urls, nil
}

func lines(out []byte) []string {
	var result []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			result = append(result, line)
		}
	}
	return result
}
