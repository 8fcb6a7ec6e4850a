package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/timeago"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// compactListLimit caps list sections in the non-verbose briefing
const compactListLimit = 5

// Briefing renders the scan results as the terminal briefing. Items
// attached to a scanned repository appear under it; the rest are listed
// at the end.
func (o *Output) Briefing(repos []domain.RepoStatus, items []domain.Item, repoItems map[string][]domain.Item) {
	plural := "repos"
	if len(repos) == 1 {
		plural = "repo"
	}
	fmt.Fprintf(o.out, "%s%s\n\n",
		headerStyle.Render(" wip"),
		dimStyle.Render(fmt.Sprintf(" — %d %s scanned", len(repos), plural)))

	shown := make(map[uint]bool)
	for _, repo := range repos {
		o.printRepo(repo, repoItems[repo.Path], shown)
	}

	var rest []domain.Item
	for _, item := range items {
		if !shown[item.ID] {
			rest = append(rest, item)
		}
	}
	if len(rest) > 0 {
		fmt.Fprintln(o.out, "wip items:")
		for _, item := range rest {
			o.printItem(item, time.Now())
		}
	}
}

func (o *Output) printRepo(repo domain.RepoStatus, items []domain.Item, shown map[uint]bool) {
	icon, color := repoIcon(repo)
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(color)

	fmt.Fprintf(o.out, "%s %s %s\n",
		nameStyle.Render(repo.Name),
		dimStyle.Render("("+repo.Branch+")"),
		lipgloss.NewStyle().Foreground(color).Render(icon))

	var parts []string
	if repo.IsDirty() {
		parts = append(parts, fmt.Sprintf("%d dirty", repo.DirtyTotal()))
	} else {
		parts = append(parts, "clean")
	}
	if repo.StashCount > 0 {
		noun := "stashes"
		if repo.StashCount == 1 {
			noun = "stash"
		}
		parts = append(parts, fmt.Sprintf("%d %s", repo.StashCount, noun))
	}
	if repo.LastCommitAgo != "" {
		parts = append(parts, "last commit "+repo.LastCommitAgo)
	}
	fmt.Fprintf(o.out, "  %s\n", dimStyle.Render(strings.Join(parts, " · ")))

	if repo.Ahead > 0 || repo.Behind > 0 {
		ahead := dimStyle.Render(fmt.Sprintf("%d ahead", repo.Ahead))
		if repo.Ahead > 0 {
			ahead = greenStyle.Render(fmt.Sprintf("%d ahead", repo.Ahead))
		}
		behind := dimStyle.Render(fmt.Sprintf("%d behind", repo.Behind))
		if repo.Behind > 0 {
			behind = redStyle.Render(fmt.Sprintf("%d behind", repo.Behind))
		}
		fmt.Fprintf(o.out, "  %s, %s %s\n", ahead, behind, dimStyle.Render(repo.Upstream))
	}

	o.printBranches(repo.RecentBranches)
	o.printCommits(repo.RecentCommits)
	o.printSessions(repo.AgentSessions)
	if o.verbose {
		o.printChanges(repo.ChangedFiles)
		if len(repo.Degraded) > 0 {
			fmt.Fprintf(o.out, "  %s\n",
				dimStyle.Render("unavailable: "+strings.Join(repo.Degraded, ", ")))
		}
	}

	if len(items) > 0 {
		fmt.Fprintln(o.out, "  wip:")
		for _, item := range items {
			fmt.Fprintf(o.out, "    #%d %s\n", item.ID, item.Description)
			shown[item.ID] = true
		}
	}

	fmt.Fprintln(o.out)
}

func (o *Output) printBranches(branches []domain.BranchInfo) {
	if len(branches) == 0 {
		return
	}
	if o.verbose {
		fmt.Fprintln(o.out, "  recent:")
		for _, b := range branches {
			fmt.Fprintf(o.out, "    %s %s\n", b.Name, dimStyle.Render("("+b.LastCommitAgo+")"))
		}
		return
	}

	entries := make([]string, 0, len(branches))
	for i, b := range branches {
		if i == compactListLimit {
			entries = append(entries, fmt.Sprintf("+%d more", len(branches)-compactListLimit))
			break
		}
		entries = append(entries, fmt.Sprintf("%s (%s)", b.Name, b.LastCommitAgo))
	}
	fmt.Fprintf(o.out, "  %s\n", dimStyle.Render("recent: "+strings.Join(entries, ", ")))
}

func (o *Output) printCommits(commits []domain.CommitInfo) {
	if len(commits) == 0 {
		return
	}
	fmt.Fprintln(o.out, "  commits today:")
	for i, c := range commits {
		if !o.verbose && i == compactListLimit {
			fmt.Fprintf(o.out, "    %s\n", dimStyle.Render(fmt.Sprintf("+%d more", len(commits)-compactListLimit)))
			break
		}
		subject := c.Subject
		if !o.verbose {
			subject = truncate(subject, constants.SubjectDisplayLength)
		}
		fmt.Fprintf(o.out, "    %s %s %s\n",
			yellowStyle.Render(c.ShortHash), subject, dimStyle.Render("("+c.Ago+")"))
		if o.verbose {
			for _, line := range splitLines(c.Body) {
				fmt.Fprintf(o.out, "      %s\n", dimStyle.Render(line))
			}
			if len(c.Files) > 0 {
				fmt.Fprintf(o.out, "      %s\n",
					dimStyle.Render("files: "+strings.Join(c.Files, ", ")))
			}
		}
	}
}

func (o *Output) printSessions(sessions []domain.AgentSession) {
	if len(sessions) == 0 {
		return
	}
	fmt.Fprintln(o.out, "  agents:")
	for _, s := range sessions {
		noun := "commits"
		if s.Commits == 1 {
			noun = "commit"
		}
		fmt.Fprintf(o.out, "    %s on %s: %d %s, %d files, last commit %s %s\n",
			s.Agent, s.Branch, s.Commits, noun, s.FilesChanged, s.LastCommitAgo,
			freshnessStyle(s.Freshness).Render("("+string(s.Freshness)+")"))
	}
}

func (o *Output) printChanges(changes []domain.FileChange) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintln(o.out, "  changes:")
	for _, fc := range changes {
		line := fmt.Sprintf("[%s] %s (%s)", fc.Stage, fc.Path, fc.Kind)
		if fc.Insertions > 0 || fc.Deletions > 0 {
			line += fmt.Sprintf(" +%d/-%d", fc.Insertions, fc.Deletions)
		}
		fmt.Fprintf(o.out, "    %s\n", dimStyle.Render(line))
	}
}

func (o *Output) printItem(item domain.Item, now time.Time) {
	meta := []string{timeago.Format(now, item.CreatedAt)}
	if item.Repo != "" {
		meta = append([]string{filepath.Base(item.Repo)}, meta...)
	}
	line := fmt.Sprintf("  #%d %s %s", item.ID, item.Description,
		dimStyle.Render("("+strings.Join(meta, ", ")+")"))
	if item.Done() {
		line = dimStyle.Render(fmt.Sprintf("  ✓ #%d %s", item.ID, item.Description))
	}
	fmt.Fprintln(o.out, line)
}

// Worklist renders `wip list` output.
func (o *Output) Worklist(items []domain.Item) {
	now := time.Now()
	for _, item := range items {
		o.printItem(item, now)
	}
}

// repoIcon picks the status icon and its color: dirty wins, then
// behind, then clean.
func repoIcon(repo domain.RepoStatus) (string, lipgloss.Color) {
	switch {
	case repo.IsDirty():
		return "⚠", lipgloss.Color("3")
	case repo.Behind > 0:
		return "↓", lipgloss.Color("1")
	default:
		return "✓", lipgloss.Color("2")
	}
}

func freshnessStyle(f domain.Freshness) lipgloss.Style {
	switch f {
	case domain.FreshnessActive:
		return greenStyle
	case domain.FreshnessRecent:
		return yellowStyle
	default:
		return dimStyle
	}
}

// truncate shortens s to max runes, ending with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
