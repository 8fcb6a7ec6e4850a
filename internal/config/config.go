package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/domain"
)

// AgentsConfig configures how commits are attributed to coding agents
type AgentsConfig struct {
	// Authors are case-insensitive substrings matched against commit
	// author names
	Authors []string `yaml:"authors,omitempty"`

	// BranchPatterns are case-insensitive branch name prefixes
	BranchPatterns []string `yaml:"branch_patterns,omitempty"`
}

// LLMConfig selects the provider behind the ai commands
type LLMConfig struct {
	// Provider is one of: anthropic, openai, gemini
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the provider's default model
	Model string `yaml:"model,omitempty"`

	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// Config holds the application configuration
type Config struct {
	// Directories are the scan roots, searched up to ScanDepth levels deep
	Directories []string `yaml:"directories"`

	// Author filters "commits today"; empty shows no commits
	Author string `yaml:"author,omitempty"`

	// ScanDepth is the maximum directory depth below each root
	ScanDepth int `yaml:"scan_depth"`

	// RecentDays is the lookback window for branches and agent activity
	RecentDays int `yaml:"recent_days"`

	// Jobs caps how many repositories are scanned concurrently
	Jobs int `yaml:"jobs,omitempty"`

	// UntrackedStats enables line counting for untracked files
	UntrackedStats bool `yaml:"untracked_stats,omitempty"`

	// DBPath overrides the worklist database location
	DBPath string `yaml:"db_path,omitempty"`

	// Agents configures agent attribution
	Agents AgentsConfig `yaml:"agents,omitempty"`

	// LLM configures the ai commands
	LLM LLMConfig `yaml:"llm,omitempty"`

	// configPath is the path this config was loaded from (not serialized)
	configPath string `yaml:"-"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	return &Config{
		ScanDepth:  constants.DefaultScanDepth,
		RecentDays: constants.DefaultRecentDays,
		Jobs:       constants.DefaultScanJobs,
		Agents: AgentsConfig{
			Authors:        append([]string(nil), constants.DefaultAgentAuthors...),
			BranchPatterns: append([]string(nil), constants.DefaultAgentBranchPatterns...),
		},
	}
}

// Load reads configuration from the specified path
func Load(path string) (*Config, error) {
	if path == "" {
		path = getConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.Errorf(domain.ErrNotConfigured, "config file not found at %s", path)
		}
		return nil, domain.Errorf(domain.ErrInvalidConfig, "failed to read config: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, domain.Errorf(domain.ErrInvalidConfig, "failed to parse config: %v", err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills unset fields. A zero depth or window means the
// field was omitted, since validation rejects non-positive values.
func (c *Config) applyDefaults() {
	if c.ScanDepth == 0 {
		c.ScanDepth = constants.DefaultScanDepth
	}
	if c.RecentDays == 0 {
		c.RecentDays = constants.DefaultRecentDays
	}
	if c.Jobs == 0 {
		c.Jobs = constants.DefaultScanJobs
	}
	if len(c.Agents.Authors) == 0 {
		c.Agents.Authors = append([]string(nil), constants.DefaultAgentAuthors...)
	}
	if len(c.Agents.BranchPatterns) == 0 {
		c.Agents.BranchPatterns = append([]string(nil), constants.DefaultAgentBranchPatterns...)
	}
}

// Save writes the configuration to the specified path using atomic write
func (c *Config) Save(path string) error {
	if path == "" {
		path = getConfigPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return domain.Errorf(domain.ErrInvalidConfig, "failed to create config directory: %v", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return domain.Errorf(domain.ErrInvalidConfig, "failed to marshal config: %v", err)
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return domain.Errorf(domain.ErrInvalidConfig, "failed to write config: %v", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) // Clean up on failure
		return domain.Errorf(domain.ErrInvalidConfig, "failed to save config: %v", err)
	}

	c.configPath = path
	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.ScanDepth < 1 {
		return domain.Errorf(domain.ErrInvalidConfig, "scan_depth must be positive, got %d", c.ScanDepth)
	}
	if c.RecentDays < 1 {
		return domain.Errorf(domain.ErrInvalidConfig, "recent_days must be positive, got %d", c.RecentDays)
	}
	if c.Jobs < 1 {
		return domain.Errorf(domain.ErrInvalidConfig, "jobs must be positive, got %d", c.Jobs)
	}

	switch c.LLM.Provider {
	case "", "anthropic", "openai", "gemini":
	default:
		return domain.Errorf(domain.ErrInvalidConfig, "unknown llm provider %q", c.LLM.Provider)
	}

	// Directories may be empty: commands that need them report it at
	// run time with a pointer to `wip config init`
	return nil
}

// Path returns the path this config was loaded from
func (c *Config) Path() string {
	return c.configPath
}

// WorklistPath returns the configured worklist database path or the
// default next to the config file
func (c *Config) WorklistPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return constants.DefaultWorklistPath()
}

// getConfigPath returns the config path from env var or default
func getConfigPath() string {
	if path := os.Getenv(constants.ConfigEnvVar); path != "" {
		return path
	}
	return constants.DefaultConfigPath()
}

// Exists checks if a config file exists at the default or specified path
func Exists(path string) bool {
	if path == "" {
		path = getConfigPath()
	}
	_, err := os.Stat(path)
	return err == nil
}

// ConfigPath returns the path that would be used for config
func ConfigPath(override string) string {
	if override != "" {
		return override
	}
	return getConfigPath()
}

// String returns a string representation for debugging
func (c *Config) String() string {
	return fmt.Sprintf("Config{Directories: %d, Author: %q, ScanDepth: %d, RecentDays: %d, LLM: %q}",
		len(c.Directories), c.Author, c.ScanDepth, c.RecentDays, c.LLM.Provider)
}
