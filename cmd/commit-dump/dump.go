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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sirseerhq/commit-dump/internal/config"
	"github.com/sirseerhq/commit-dump/internal/console"
	"github.com/sirseerhq/commit-dump/internal/dump"
	"github.com/sirseerhq/commit-dump/internal/github"
	"github.com/sirseerhq/commit-dump/internal/metadata"
	"github.com/sirseerhq/commit-dump/internal/output"
	"github.com/sirseerhq/commit-dump/internal/state"
	"github.com/sirseerhq/commit-dump/internal/vcs"
	"github.com/sirseerhq/commit-dump/internal/vcs/gitcli"
	"github.com/sirseerhq/commit-dump/internal/vcs/gogit"
	"github.com/sirseerhq/commit-dump/pkg/version"
)

// dumpOptions holds the raw flag values. Only flags the user actually set
// override the configuration.
type dumpOptions struct {
	configPath string
	outputDir  string
	repoPath   string
	mode       string
	backend    string
	tagPattern string
	tagOrder   string
	manifest   string
	githubRepo string
	token      string
	verbose    bool
}

func (o *dumpOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.configPath, "config", "", "Path to configuration file")
	flags.StringVarP(&o.outputDir, "output", "o", "", "Export root directory (default DUMP-COMMIT)")
	flags.StringVar(&o.repoPath, "repo", "", "Path of the local repository (default .)")
	flags.StringVar(&o.mode, "mode", "", "Dump mode: flat, tags or auto (default auto)")
	flags.StringVar(&o.backend, "backend", "", "Repository backend: git, gogit or github (default git)")
	flags.StringVar(&o.tagPattern, "tags", "", "Only walk tags matching this glob, e.g. 'v6.*'")
	flags.StringVar(&o.tagOrder, "tag-order", "", "Tag order: date or version (default date)")
	flags.StringVar(&o.manifest, "manifest", "", "Append an NDJSON record per written patch to this file")
	flags.StringVar(&o.githubRepo, "github-repo", "", "Repository for the github backend, as owner/name")
	flags.StringVar(&o.token, "token", "", "GitHub personal access token (overrides the token_env variable)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Print every written patch and debug diagnostics")
}

// apply copies the flags that were set on the command line into cfg.
func (o *dumpOptions) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	set := func(name string, dst *string, val string) {
		if flags.Changed(name) {
			*dst = val
		}
	}
	set("output", &cfg.OutputDir, o.outputDir)
	set("repo", &cfg.RepoPath, o.repoPath)
	set("mode", &cfg.Mode, o.mode)
	set("backend", &cfg.Backend, o.backend)
	set("tags", &cfg.TagPattern, o.tagPattern)
	set("tag-order", &cfg.TagOrder, o.tagOrder)

	if flags.Changed("github-repo") {
		if err := cfg.SetGitHubRepo(o.githubRepo); err != nil {
			return err
		}
		if !flags.Changed("backend") {
			cfg.Backend = config.BackendGitHub
		}
	}
	return nil
}

func executeDump(cmd *cobra.Command, opts *dumpOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := opts.apply(cmd.Flags(), cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr, opts.verbose)

	repo, err := openRepository(cfg, opts.token, logger)
	if err != nil {
		return err
	}

	return runDump(ctx, cfg, repo, runOptions{
		manifest: opts.manifest,
		verbose:  opts.verbose,
		stderr:   stderr,
		logger:   logger,
	})
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openRepository constructs the backend named by cfg.Backend.
func openRepository(cfg *config.Config, tokenFlag string, logger *slog.Logger) (vcs.Repository, error) {
	switch cfg.Backend {
	case config.BackendGoGit:
		return gogit.Open(cfg.RepoPath, logger)
	case config.BackendGitHub:
		token := tokenFlag
		if token == "" {
			token = cfg.Token()
		}
		if token == "" {
			return nil, fmt.Errorf("GitHub token not found. Set %s or use --token flag", cfg.GitHub.TokenEnv)
		}
		client := github.NewGraphQLClient(token, cfg.GitHub.GraphQLEndpoint, cfg.GitHub.APIEndpoint)
		return github.NewRepository(client, cfg.GitHub.Owner, cfg.GitHub.Repo, logger), nil
	default:
		return gitcli.New(cfg.RepoPath, gitcli.WithLogger(logger)), nil
	}
}

type runOptions struct {
	manifest string
	verbose  bool
	stderr   io.Writer
	logger   *slog.Logger
}

// resolveMode turns auto mode into flat or tags by looking at the
// repository's remotes.
func resolveMode(ctx context.Context, cfg *config.Config, repo vcs.Repository) (string, error) {
	if cfg.Mode != config.ModeAuto {
		return cfg.Mode, nil
	}
	lister, ok := repo.(vcs.RemoteLister)
	if !ok {
		return config.ModeFlat, nil
	}
	remotes, err := lister.Remotes(ctx)
	if err != nil {
		return "", err
	}
	if cfg.WantsTags(remotes) {
		return config.ModeTags, nil
	}
	return config.ModeFlat, nil
}

func repositoryName(cfg *config.Config) string {
	if cfg.Backend == config.BackendGitHub {
		return cfg.GitHub.Owner + "/" + cfg.GitHub.Repo
	}
	return cfg.RepoPath
}

// runDump exports repo into cfg.OutputDir and records the run metadata.
func runDump(ctx context.Context, cfg *config.Config, repo vcs.Repository, run runOptions) error {
	con := console.New(run.stderr, run.verbose)

	mode, err := resolveMode(ctx, cfg, repo)
	if err != nil {
		return fmt.Errorf("failed to detect dump mode: %w", err)
	}
	run.logger.Debug("dump mode resolved", "configured", cfg.Mode, "mode", mode)

	store := state.NewStore(cfg.OutputDir)
	previous, err := metadata.LoadMetadata(store.MetaDir())
	if err != nil {
		run.logger.Warn("ignoring unreadable run metadata", "error", err)
		previous = nil
	}

	tracker := metadata.New()
	genOpts := []dump.GeneratorOption{
		dump.WithTracker(tracker),
		dump.WithReporter(con),
		dump.WithLogger(run.logger),
	}
	if cfg.MaxNameLength > 0 {
		genOpts = append(genOpts, dump.WithMaxNameLength(cfg.MaxNameLength))
	}
	if run.manifest != "" {
		manifest, err := output.NewFileWriter(run.manifest)
		if err != nil {
			return fmt.Errorf("failed to open manifest: %w", err)
		}
		defer manifest.Close()
		genOpts = append(genOpts, dump.WithManifest(manifest))
	}

	walker := dump.NewWalker(dump.WalkerConfig{
		Repo:      repo,
		Store:     store,
		Generator: dump.NewGenerator(repo, store, genOpts...),
		Tracker:   tracker,
		Reporter:  con,
		Logger:    run.logger,
		Options: dump.WalkOptions{
			Pattern:      cfg.TagPattern,
			VersionOrder: cfg.TagOrder == config.OrderVersion,
		},
	})

	if mode == config.ModeTags {
		err = walker.Run(ctx)
	} else {
		err = walker.RunFlat(ctx)
	}
	if err != nil {
		return err
	}

	meta := tracker.GenerateMetadata(version.Version, metadata.RunParams{
		Repository: repositoryName(cfg),
		Backend:    cfg.Backend,
		Mode:       mode,
		OutputDir:  cfg.OutputDir,
		TagPattern: cfg.TagPattern,
		TagOrder:   cfg.TagOrder,
	}, previous.Ref())
	if err := metadata.SaveMetadata(meta, store.MetaDir()); err != nil {
		return err
	}

	r := meta.Results
	if r.PatchesWritten == 0 {
		con.Done("%s is up to date", cfg.OutputDir)
	} else {
		con.Done("wrote %d patches to %s (%d targets dumped, %d skipped)",
			r.PatchesWritten, cfg.OutputDir, r.TargetsDumped, r.TargetsSkipped)
	}
	return nil
}
