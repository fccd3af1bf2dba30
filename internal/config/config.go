// Package config holds the typed view of the viper configuration: which
// external repositories are tracked and how storage is laid out. Repo
// entries only decide which issues are in scope for a sync; the sync itself
// lives outside this tool.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// RepoConfig describes one tracked external repository.
type RepoConfig struct {
	Owner            string   `mapstructure:"owner" yaml:"owner"`
	Repo             string   `mapstructure:"repo" yaml:"repo"`
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	Labels           []string `mapstructure:"labels" yaml:"labels,omitempty"`
	DefaultIteration string   `mapstructure:"default_iteration" yaml:"default_iteration,omitempty"`
}

// FullName returns "owner/repo".
func (r RepoConfig) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
}

// Config is the effective tracker configuration.
type Config struct {
	StateDir     string
	DBPath       string
	SyncInterval int // minutes between syncs, 0 = manual only
	Repos        []RepoConfig
}

// FromViper reads the effective configuration from the initialized viper
// instance.
func FromViper() (*Config, error) {
	cfg := &Config{
		StateDir:     viper.GetString("state_dir"),
		DBPath:       viper.GetString("db_path"),
		SyncInterval: viper.GetInt("sync_interval"),
	}
	if err := viper.UnmarshalKey("repos", &cfg.Repos); err != nil {
		return nil, fmt.Errorf("parse repos config: %w", err)
	}
	return cfg, nil
}

// EnabledRepos returns the repos with tracking enabled.
func (c *Config) EnabledRepos() []RepoConfig {
	var out []RepoConfig
	for _, r := range c.Repos {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// GetRepo finds a repo config by owner/name.
func (c *Config) GetRepo(owner, repo string) (RepoConfig, bool) {
	full := owner + "/" + repo
	for _, r := range c.Repos {
		if r.FullName() == full {
			return r, true
		}
	}
	return RepoConfig{}, false
}
