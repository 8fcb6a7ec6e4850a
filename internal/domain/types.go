package domain

import "time"

// DetachedBranch is the branch sentinel reported when HEAD does not point
// at a branch
const DetachedBranch = "detached HEAD"

// Change stages within a working tree
const (
	StageStaged    = "staged"
	StageUnstaged  = "unstaged"
	StageUntracked = "untracked"
)

// Change kinds
const (
	ChangeModified   = "modified"
	ChangeAdded      = "added"
	ChangeDeleted    = "deleted"
	ChangeRenamed    = "renamed"
	ChangeCopied     = "copied"
	ChangeConflicted = "conflicted"
	ChangeUntracked  = "untracked"
)

// Work item statuses
const (
	ItemOpen = "open"
	ItemDone = "done"
)

// Freshness classifies how recently an agent session produced a commit
type Freshness string

const (
	// FreshnessActive means the newest commit is less than an hour old
	FreshnessActive Freshness = "active"
	// FreshnessRecent means the newest commit is less than a day old
	FreshnessRecent Freshness = "recent"
	// FreshnessStale means the newest commit is a day old or more
	FreshnessStale Freshness = "stale"
)

// FileChange is one changed path in a repository's working tree
type FileChange struct {
	// Path is relative to the repository root; renames carry the new name
	Path string `json:"path"`
	// Kind is the change kind (modified, added, deleted, renamed, untracked, ...)
	Kind string `json:"kind"`
	// Stage is where the change lives: staged, unstaged, or untracked
	Stage string `json:"stage"`
	// Insertions is the added line count, zero when not computed
	Insertions int `json:"insertions"`
	// Deletions is the removed line count, zero when not computed
	Deletions int `json:"deletions"`
}

// BranchInfo is a local branch with recent activity
type BranchInfo struct {
	// Name is the short branch name
	Name string `json:"name"`
	// LastCommitAgo is the human-readable age of the branch tip
	LastCommitAgo string `json:"last_commit_ago"`
	// LastCommitAt is the raw tip commit timestamp
	LastCommitAt time.Time `json:"last_commit_at"`
}

// CommitInfo is a single commit carried in scan results
type CommitInfo struct {
	// ShortHash is the abbreviated commit hash
	ShortHash string `json:"sha"`
	// Subject is the first line of the commit message
	Subject string `json:"subject"`
	// Ago is the human-readable commit age
	Ago string `json:"ago"`
	// Timestamp is the raw commit time
	Timestamp time.Time `json:"timestamp"`
	// Body is the commit message body, truncated to a few lines
	Body string `json:"body,omitempty"`
	// Files lists paths changed by the commit, truncated
	Files []string `json:"files,omitempty"`
}

// AgentSession is a burst of commits on one branch attributed to one
// coding agent
type AgentSession struct {
	// Agent is the normalized agent label (e.g. "claude")
	Agent string `json:"agent"`
	// Branch is the branch the commits landed on
	Branch string `json:"branch"`
	// Commits is the number of attributed commits
	Commits int `json:"commits"`
	// FilesChanged is the count of distinct files across the session
	FilesChanged int `json:"files_changed"`
	// FirstCommitAt and LastCommitAt bound the session in time
	FirstCommitAt time.Time `json:"first_commit_at"`
	LastCommitAt  time.Time `json:"last_commit_at"`
	// FirstCommitAgo and LastCommitAgo are the human-readable bounds
	FirstCommitAgo string `json:"first_commit_ago"`
	LastCommitAgo  string `json:"last_commit_ago"`
	// Freshness classifies the session by the age of its newest commit
	Freshness Freshness `json:"freshness"`
}

// RepoStatus is the full scan snapshot of one repository
type RepoStatus struct {
	// Path is the absolute repository path
	Path string `json:"path"`
	// Name is the last path segment, used for display
	Name string `json:"name"`
	// Branch is the checked-out branch, or DetachedBranch
	Branch string `json:"branch"`
	// IsDetached is true when HEAD does not point at a branch
	IsDetached bool `json:"is_detached,omitempty"`

	// DirtyFiles counts tracked files with unstaged modifications
	DirtyFiles int `json:"dirty_files"`
	// StagedFiles counts files with staged changes
	StagedFiles int `json:"staged_files"`
	// UntrackedFiles counts untracked files
	UntrackedFiles int `json:"untracked_files"`

	// StashCount is the number of stash entries
	StashCount int `json:"stash_count"`
	// StashEntries holds the raw stash descriptions
	StashEntries []string `json:"stash_entries,omitempty"`

	// Upstream is the tracking ref of the current branch (e.g. "origin/main"),
	// empty when none is configured
	Upstream string `json:"upstream,omitempty"`
	// Ahead and Behind are commit counts relative to Upstream
	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`

	// LastCommitAgo is the human-readable age of the newest commit on HEAD,
	// empty when the repository has no commits
	LastCommitAgo string `json:"last_commit_ago,omitempty"`

	// RecentBranches lists other branches with activity inside the
	// configured window, newest first
	RecentBranches []BranchInfo `json:"recent_branches,omitempty"`
	// RecentCommits lists the configured author's commits from the last
	// day, newest first
	RecentCommits []CommitInfo `json:"recent_commits,omitempty"`
	// AgentSessions lists detected coding-agent activity
	AgentSessions []AgentSession `json:"agent_sessions,omitempty"`
	// ChangedFiles is the flat list of working tree changes
	ChangedFiles []FileChange `json:"changed_files,omitempty"`

	// Degraded names the facets that could not be collected, keeping
	// "could not determine" distinguishable from a confirmed zero
	Degraded []string `json:"degraded,omitempty"`
}

// IsDirty reports whether the working tree has any uncommitted changes
func (r RepoStatus) IsDirty() bool {
	return r.DirtyFiles > 0 || r.StagedFiles > 0 || r.UntrackedFiles > 0
}

// DirtyTotal is the combined count of all working tree changes
func (r RepoStatus) DirtyTotal() int {
	return r.DirtyFiles + r.StagedFiles + r.UntrackedFiles
}

// Item is a work-in-progress note, optionally tied to a repository
type Item struct {
	// ID is the stable numeric identifier
	ID uint `json:"id"`
	// Description is the free-form item text
	Description string `json:"description"`
	// Status is ItemOpen or ItemDone
	Status string `json:"status"`
	// Repo is the absolute path of the associated repository, if any
	Repo string `json:"repo,omitempty"`
	// CreatedAt is when the item was added
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the item was marked done
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Done reports whether the item has been completed
func (i Item) Done() bool {
	return i.Status == ItemDone
}

// ScanReport is the machine-readable output of a full scan
type ScanReport struct {
	// Repos holds one status per scanned repository, in discovery order
	Repos []RepoStatus `json:"repos"`
	// WorkItems holds the open work-in-progress items
	WorkItems []Item `json:"work_items"`
}
