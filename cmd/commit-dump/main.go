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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dumperrors "github.com/sirseerhq/commit-dump/internal/errors"
	"github.com/sirseerhq/commit-dump/pkg/version"
)

func main() {
	rootCmd := newRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	var opts dumpOptions

	cmd := &cobra.Command{
		Use:   "commit-dump",
		Short: "Export the commits of a git repository as numbered patch files",
		Long: `commit-dump writes every non-merge commit of a repository as a patch
file named <offset>-<subject>.patch, oldest first. Re-running it only
writes commits that appeared since the previous run.

Configuration is read from --config, .commit-dump.yaml in the working
directory, or ~/.commit-dump/config.yaml. Environment variables override
the file and flags override both.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeDump(cmd, &opts)
		},
	}

	opts.register(cmd)
	return cmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, dumperrors.ErrNetworkFailure) {
		return 3
	}

	if errors.Is(err, dumperrors.ErrVCSFailure) ||
		errors.Is(err, dumperrors.ErrNotRepository) ||
		errors.Is(err, dumperrors.ErrUnknownRevision) ||
		errors.Is(err, dumperrors.ErrInvalidToken) ||
		errors.Is(err, dumperrors.ErrRepoNotFound) ||
		errors.Is(err, dumperrors.ErrRateLimit) {
		return 2
	}

	return 1
}
