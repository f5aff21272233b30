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

package testutil

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// BinaryVersion is stamped into the binary the integration tests run.
const BinaryVersion = "integration"

var (
	buildOnce sync.Once
	binary    string
	buildErr  error
)

// BuildBinary compiles cmd/commit-dump once per test process and returns
// the path of the executable.
func BuildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		// Outlives the first test so later tests can reuse the binary.
		dir, err := os.MkdirTemp("", "commit-dump-bin")
		if err != nil {
			buildErr = err
			return
		}
		binary = filepath.Join(dir, "commit-dump")

		cmd := exec.Command("go", "build",
			"-ldflags", "-X github.com/sirseerhq/commit-dump/pkg/version.Version="+BinaryVersion,
			"-o", binary, "./cmd/commit-dump")
		cmd.Dir = moduleRoot()
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = errors.New(err.Error() + ": " + string(out))
		}
	})

	if buildErr != nil {
		t.Fatalf("building commit-dump: %v", buildErr)
	}
	return binary
}

// CLIResult is the outcome of one invocation of the binary.
type CLIResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// RunCLI runs the binary in the test's working directory. env is added on
// top of the inherited environment.
func RunCLI(t *testing.T, args []string, env map[string]string) CLIResult {
	t.Helper()
	return RunCLIIn(t, "", args, env)
}

// RunCLIIn runs the binary with dir as its working directory.
func RunCLIIn(t *testing.T, dir string, args []string, env map[string]string) CLIResult {
	t.Helper()

	cmd := exec.Command(BuildBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := CLIResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		t.Fatalf("running commit-dump %s: %v", strings.Join(args, " "), err)
	}
	return result
}

// AssertCLISuccess fails the test unless the binary exited with 0.
func AssertCLISuccess(t *testing.T, result CLIResult) {
	t.Helper()
	if result.ExitCode != 0 {
		t.Fatalf("commit-dump exited with %d\nstderr: %s", result.ExitCode, result.Stderr)
	}
}

// AssertCLIError fails the test unless the binary exited non-zero with
// wantErr somewhere on stderr.
func AssertCLIError(t *testing.T, result CLIResult, wantErr string) {
	t.Helper()
	if result.ExitCode == 0 {
		t.Fatalf("commit-dump succeeded, want an error containing %q", wantErr)
	}
	if !strings.Contains(result.Stderr, wantErr) {
		t.Errorf("stderr = %q, want it to contain %q", result.Stderr, wantErr)
	}
}

// AssertExitCode checks the exit status.
func AssertExitCode(t *testing.T, result CLIResult, want int) {
	t.Helper()
	if result.ExitCode != want {
		t.Errorf("exit code = %d, want %d\nstderr: %s", result.ExitCode, want, result.Stderr)
	}
}

// moduleRoot is two levels above this file.
func moduleRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}
