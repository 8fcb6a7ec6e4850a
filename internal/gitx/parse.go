package gitx

import (
	"strconv"
	"strings"
	"time"
)

// Field and record separators used in log formats. Control characters
// cannot appear in ref names and are vanishingly rare in commit
// messages, unlike pipes and tabs.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// logFormat is the --pretty format for commit walks. Each record starts
// and ends with recordSep so that interleaved --numstat output lands in
// its own chunk after the commit it belongs to.
const logFormat = "%x1e%H%x1f%h%x1f%an%x1f%at%x1f%s%x1f%b%x1e"

// branchFormat is the --format for for-each-ref. Tabs cannot appear in
// ref names.
const branchFormat = "%(refname:short)%09%(committerdate:unix)"

// StatusEntry is one parsed line of `git status --porcelain`.
type StatusEntry struct {
	// Staged and Worktree are the X and Y status letters
	Staged   byte
	Worktree byte
	// Path is relative to the repository root; renames carry the new name
	Path string
}

// LineStats holds per-file diff line counts.
type LineStats struct {
	Insertions int
	Deletions  int
}

// BranchHead is a local branch tip.
type BranchHead struct {
	Name        string
	CommittedAt time.Time
}

// Commit is one commit from a log walk.
type Commit struct {
	Hash      string
	ShortHash string
	Author    string
	When      time.Time
	Subject   string
	Body      string
	Files     []string
}

// ParseStatusPorcelain parses `git status --porcelain` v1 output.
func ParseStatusPorcelain(out string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		path := line[3:]
		// Renames and copies are reported as "old -> new"
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		entries = append(entries, StatusEntry{
			Staged:   line[0],
			Worktree: line[1],
			Path:     unquotePath(path),
		})
	}
	return entries
}

// ParseNumstat parses `git diff --numstat` output into per-path line
// counts. Binary files report "-" counts and are recorded as zeros.
func ParseNumstat(out string) map[string]LineStats {
	stats := make(map[string]LineStats)
	for _, line := range strings.Split(out, "\n") {
		path, ls, ok := parseNumstatLine(line)
		if !ok {
			continue
		}
		stats[path] = ls
	}
	return stats
}

func parseNumstatLine(line string) (string, LineStats, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 || parts[2] == "" {
		return "", LineStats{}, false
	}

	var ls LineStats
	if parts[0] != "-" {
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return "", LineStats{}, false
		}
		ls.Insertions = n
	}
	if parts[1] != "-" {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", LineStats{}, false
		}
		ls.Deletions = n
	}
	return normalizeRename(unquotePath(parts[2])), ls, true
}

// normalizeRename resolves numstat rename notation ("old => new" or
// "dir/{old => new}/file") to the new path.
func normalizeRename(path string) string {
	if !strings.Contains(path, " => ") {
		return path
	}
	start := strings.Index(path, "{")
	end := strings.Index(path, "}")
	if start >= 0 && end > start {
		inner := path[start+1 : end]
		if idx := strings.Index(inner, " => "); idx >= 0 {
			replaced := path[:start] + inner[idx+4:] + path[end+1:]
			return strings.ReplaceAll(replaced, "//", "/")
		}
		return path
	}
	if idx := strings.Index(path, " => "); idx >= 0 {
		return path[idx+4:]
	}
	return path
}

// ParseAheadBehind parses `git rev-list --left-right --count A...B`
// output: two tab-separated counts.
func ParseAheadBehind(out string) (ahead, behind int, err error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return 0, 0, strconv.ErrSyntax
	}
	ahead, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	behind, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// ParseBranchHeads parses for-each-ref output in branchFormat. The order
// of the input (newest first when sorted by committerdate) is preserved.
func ParseBranchHeads(out string) []BranchHead {
	var heads []BranchHead
	for _, line := range strings.Split(out, "\n") {
		name, ts, ok := strings.Cut(line, "\t")
		if !ok || name == "" {
			continue
		}
		unix, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
		if err != nil {
			continue
		}
		heads = append(heads, BranchHead{
			Name:        name,
			CommittedAt: time.Unix(unix, 0),
		})
	}
	return heads
}

// ParseCommitLog parses `git log` output produced with logFormat plus
// --numstat. Chunks between record separators alternate between commit
// headers and the numstat lines of the preceding commit.
func ParseCommitLog(out string) []Commit {
	var commits []Commit
	for _, chunk := range strings.Split(out, recordSep) {
		fields := strings.Split(chunk, fieldSep)
		if len(fields) == 6 {
			unix, err := strconv.ParseInt(fields[3], 10, 64)
			if err != nil {
				continue
			}
			hash := strings.TrimSpace(fields[0])
			short := fields[1]
			if short == "" {
				short = shortHash(hash)
			}
			commits = append(commits, Commit{
				Hash:      hash,
				ShortHash: short,
				Author:    fields[2],
				When:      time.Unix(unix, 0),
				Subject:   fields[4],
				Body:      strings.TrimRight(fields[5], "\n"),
			})
			continue
		}
		if len(commits) == 0 {
			continue
		}
		last := &commits[len(commits)-1]
		for _, line := range strings.Split(chunk, "\n") {
			if path, _, ok := parseNumstatLine(line); ok {
				last.Files = append(last.Files, path)
			}
		}
	}
	return commits
}

// ParseLines splits output into trimmed non-empty lines.
func ParseLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// unquotePath undoes git's C-style quoting of paths with special
// characters.
func unquotePath(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		if unquoted, err := strconv.Unquote(path); err == nil {
			return unquoted
		}
	}
	return path
}
