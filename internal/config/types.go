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

// Package config types define the configuration structures used throughout
// commit-dump. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

// Dump modes.
const (
	ModeFlat = "flat"
	ModeTags = "tags"
	ModeAuto = "auto"
)

// Backends that can read a repository.
const (
	BackendGit    = "git"
	BackendGoGit  = "gogit"
	BackendGitHub = "github"
)

// Tag orders.
const (
	OrderDate    = "date"
	OrderVersion = "version"
)

// Config represents the complete configuration for commit-dump.
type Config struct {
	OutputDir      string       `yaml:"output_dir"`
	RepoPath       string       `yaml:"repo_path"`
	Mode           string       `yaml:"mode"`
	Backend        string       `yaml:"backend"`
	TagPattern     string       `yaml:"tag_pattern"`
	TagOrder       string       `yaml:"tag_order"`
	MaxNameLength  int          `yaml:"max_name_length"`
	TagModeRemotes []string     `yaml:"tag_mode_remotes"`
	GitHub         GitHubConfig `yaml:"github"`
}

// GitHubConfig contains settings for the github backend. Custom endpoints
// allow GitHub Enterprise deployments.
type GitHubConfig struct {
	Owner           string `yaml:"owner"`
	Repo            string `yaml:"repo"`
	APIEndpoint     string `yaml:"api_endpoint"`
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "DUMP-COMMIT",
		RepoPath:  ".",
		Mode:      ModeAuto,
		Backend:   BackendGit,
		TagOrder:  OrderDate,
		TagModeRemotes: []string{
			"torvalds/linux-2.6.git",
			"github.com/mirrors/linux.git",
		},
		GitHub: GitHubConfig{
			APIEndpoint:     "https://api.github.com",
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
		},
	}
}
