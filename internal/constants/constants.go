package constants

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the default config file name
	ConfigFileName = "config.yaml"

	// WipDir is the directory name for wip data
	WipDir = ".wip"

	// WorklistFileName is the worklist database file name
	WorklistFileName = "worklist.db"

	// ConfigEnvVar is the environment variable to override config path
	ConfigEnvVar = "WIP_CONFIG"

	// DebugEnvVar enables debug logging when set to "1"
	DebugEnvVar = "WIP_DEBUG"

	// DebugFileEnvVar overrides the debug log file path
	DebugFileEnvVar = "WIP_DEBUG_FILE"

	// MaxLogFilesEnvVar overrides how many debug log files are kept
	MaxLogFilesEnvVar = "WIP_MAX_LOG_FILES"

	// LLMKeyEnvVar is the generic fallback environment variable for LLM API keys
	LLMKeyEnvVar = "WIP_LLM_API_KEY"

	// DefaultScanDepth is how many directory levels below each root are searched
	DefaultScanDepth = 3

	// DefaultRecentDays is the lookback window in days for recent branches
	// and agent activity
	DefaultRecentDays = 14

	// DefaultScanJobs is the number of repositories scanned concurrently
	DefaultScanJobs = 4

	// DefaultMaxLogFiles is the default number of debug log files kept
	DefaultMaxLogFiles = 20

	// RepoScanTimeout bounds the git work for a single repository
	RepoScanTimeout = 30 * time.Second

	// RecentCommitWindow bounds the "commits today" list
	RecentCommitWindow = 24 * time.Hour

	// RecentCommitWalkLimit caps how many commits are examined when
	// collecting recent commits
	RecentCommitWalkLimit = 50

	// AgentCommitWalkLimit caps how many commits per branch are examined
	// during agent detection
	AgentCommitWalkLimit = 100

	// CommitBodyMaxLines caps the commit message body carried per commit
	CommitBodyMaxLines = 3

	// CommitFilesMax caps the changed-file list carried per commit
	CommitFilesMax = 20

	// MaxUntrackedScanSize is the largest untracked file measured when
	// untracked line counting is enabled (1 MB)
	MaxUntrackedScanSize = 1 * 1024 * 1024

	// ShortHashLength is the number of characters in a short commit hash
	ShortHashLength = 7

	// SubjectDisplayLength is where commit subjects are truncated in the
	// briefing view
	SubjectDisplayLength = 60
)

// Default agent detection patterns. Authors are matched as case-insensitive
// substrings of the commit author name; branch patterns are prefixes.
var (
	DefaultAgentAuthors = []string{
		"claude", "copilot", "cursor", "devin", "codex", "github-actions", "bot",
	}

	DefaultAgentBranchPatterns = []string{
		"agent/", "claude/", "copilot/", "devin/", "cursor/",
	}
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitNotConfigured = 1
	ExitInvalidConfig = 2
	ExitGitError      = 3
	ExitItemNotFound  = 4
	ExitStorageError  = 5
	ExitLLMError      = 6
	ExitUserCancelled = 7
	ExitInvalidArgs   = 8
	ExitUnknownError  = 99
)

// DefaultConfigDir returns the default configuration directory path
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, WipDir)
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigFileName)
}

// DefaultWorklistPath returns the default worklist database path
func DefaultWorklistPath() string {
	return filepath.Join(DefaultConfigDir(), WorklistFileName)
}
