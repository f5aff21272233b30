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

// Package config provides configuration management for commit-dump with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// Flags are applied by the command itself; this package handles the rest.
package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	dumperrors "github.com/sirseerhq/commit-dump/internal/errors"
)

// minNameLength leaves room for an offset prefix, one subject character
// and the extension.
const minNameLength = 16

// LoadConfig loads configuration from the defaults, a YAML file and the
// environment. If configPath is provided, it loads from that specific file.
// Otherwise, it searches standard locations:
//   - .commit-dump.yaml (current directory)
//   - .commit-dump.yml (current directory)
//   - ~/.commit-dump/config.yaml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(expandPath(configPath), cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".commit-dump.yaml",
			".commit-dump.yml",
			filepath.Join(os.Getenv("HOME"), ".commit-dump", "config.yaml"),
		}

		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				if err := loadConfigFile(p, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", p, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.OutputDir = expandPath(cfg.OutputDir)
	cfg.RepoPath = expandPath(cfg.RepoPath)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(p string, cfg *Config) error {
	data, err := os.ReadFile(p)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", p, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w: %v", p, dumperrors.ErrInvalidConfig, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_API_ENDPOINT"); endpoint != "" {
		cfg.GitHub.APIEndpoint = endpoint
	}
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}

	if dir := os.Getenv("COMMIT_DUMP_OUTPUT_DIR"); dir != "" {
		cfg.OutputDir = dir
	}
	if backend := os.Getenv("COMMIT_DUMP_BACKEND"); backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}
	if mode := os.Getenv("COMMIT_DUMP_MODE"); mode != "" {
		cfg.Mode = strings.ToLower(mode)
	}
	if pattern := os.Getenv("COMMIT_DUMP_TAG_PATTERN"); pattern != "" {
		cfg.TagPattern = pattern
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		p = filepath.Join(home, p[2:])
	}
	return os.ExpandEnv(p)
}

// SetGitHubRepo splits an "owner/name" reference into the GitHub settings.
func (c *Config) SetGitHubRepo(ref string) error {
	ref = strings.TrimSuffix(strings.TrimSpace(ref), ".git")
	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: repository must be in owner/name format, got %q", dumperrors.ErrInvalidConfig, ref)
	}
	c.GitHub.Owner, c.GitHub.Repo = parts[0], parts[1]
	return nil
}

// Token returns the GitHub token from the environment variable named by
// token_env.
func (c *Config) Token() string {
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.GitHub.TokenEnv)
}

// WantsTags reports whether auto mode should walk tags for a repository
// with the given remote URLs.
func (c *Config) WantsTags(remotes []string) bool {
	for _, url := range remotes {
		for _, needle := range c.TagModeRemotes {
			if needle != "" && strings.Contains(url, needle) {
				return true
			}
		}
	}
	return false
}

// Validate checks if the configuration contains valid values. This should
// be called after flags have been applied to catch invalid settings early.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", dumperrors.ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeFlat, ModeTags, ModeAuto:
	default:
		return fmt.Errorf("unknown mode %q (want flat, tags or auto)", c.Mode)
	}
	switch c.Backend {
	case BackendGit, BackendGoGit, BackendGitHub:
	default:
		return fmt.Errorf("unknown backend %q (want git, gogit or github)", c.Backend)
	}
	switch c.TagOrder {
	case OrderDate, OrderVersion:
	default:
		return fmt.Errorf("unknown tag order %q (want date or version)", c.TagOrder)
	}
	if c.TagPattern != "" {
		if _, err := path.Match(c.TagPattern, ""); err != nil {
			return fmt.Errorf("invalid tag pattern %q: %v", c.TagPattern, err)
		}
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.MaxNameLength != 0 && c.MaxNameLength < minNameLength {
		return fmt.Errorf("max name length must be 0 or at least %d, got: %d", minNameLength, c.MaxNameLength)
	}

	if c.Backend == BackendGitHub {
		if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
			return fmt.Errorf("github backend requires github.owner and github.repo")
		}
		if c.GitHub.APIEndpoint == "" {
			return fmt.Errorf("GitHub API endpoint cannot be empty")
		}
		if c.GitHub.GraphQLEndpoint == "" {
			return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
		}
	} else if c.RepoPath == "" {
		return fmt.Errorf("repository path cannot be empty")
	}
	return nil
}
