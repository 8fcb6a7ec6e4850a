package llm

import (
	"fmt"
	"strings"

	"github.com/charliek/wip/internal/domain"
)

// Caps applied when formatting a repository for the model. The scan
// already caps what it carries; these bound the prompt itself.
const (
	promptBranchesMax    = 5
	promptCommitsMax     = 5
	promptCommitBodyMax  = 3
	promptCommitFilesMax = 10
)

const systemPrompt = `You are wip, a developer assistant that gives concise briefings.
You analyze git repository state and work-in-progress items to help developers
understand where they left off and what to focus on next.

Rules:
- Be concise and direct. No filler.
- Use plain language, not raw git output.
- When suggesting priorities, explain WHY (staleness, risk, dependencies).
- If there's nothing notable, say so briefly.
`

const briefingTemplate = `Here is the current state of my repositories and work items.
Give me a briefing — what should I know, and what should I focus on first?

%s`

const standupTemplate = `Based on my git activity and work items, draft a standup update.
Use this format:
- Yesterday: (what I worked on)
- Today: (what I should focus on)
- Blockers: (anything stuck or at risk)

%s`

const queryTemplate = `Here is the current state of my repositories and work items.

%s

My question: %s`

// BuildBriefingPrompt returns the (system, user) pair for a narrative
// briefing.
func BuildBriefingPrompt(repos []domain.RepoStatus, items []domain.Item) (string, string) {
	return systemPrompt, fmt.Sprintf(briefingTemplate, BuildContext(repos, items))
}

// BuildStandupPrompt returns the (system, user) pair for a standup
// draft.
func BuildStandupPrompt(repos []domain.RepoStatus, items []domain.Item) (string, string) {
	return systemPrompt, fmt.Sprintf(standupTemplate, BuildContext(repos, items))
}

// BuildQueryPrompt returns the (system, user) pair for a free-form
// question about the scanned state.
func BuildQueryPrompt(query string, repos []domain.RepoStatus, items []domain.Item) (string, string) {
	return systemPrompt, fmt.Sprintf(queryTemplate, BuildContext(repos, items), query)
}

// BuildContext assembles scan results and work items into the markdown
// block every prompt shares.
func BuildContext(repos []domain.RepoStatus, items []domain.Item) string {
	var parts []string

	if len(items) > 0 {
		parts = append(parts, "## Work-in-progress items")
		for _, item := range items {
			status := "OPEN"
			if item.Done() {
				status = "DONE"
			}
			line := fmt.Sprintf("- [%s] #%d: %s", status, item.ID, item.Description)
			if item.Repo != "" {
				line += fmt.Sprintf(" (repo: %s)", item.Repo)
			}
			parts = append(parts, line)
		}
		parts = append(parts, "")
	}

	if len(repos) > 0 {
		parts = append(parts, "## Repositories")
		for _, repo := range repos {
			parts = append(parts, formatRepo(repo))
		}
	}

	return strings.Join(parts, "\n")
}

// formatRepo renders one repository's state as plain text for the model.
func formatRepo(repo domain.RepoStatus) string {
	lines := []string{fmt.Sprintf("### %s (branch: %s)", repo.Name, repo.Branch)}

	var status []string
	if total := repo.DirtyTotal(); total > 0 {
		status = append(status, fmt.Sprintf("%d uncommitted changes", total))
	} else {
		status = append(status, "clean")
	}
	if repo.StashCount > 0 {
		status = append(status, fmt.Sprintf("%d stash(es)", repo.StashCount))
	}
	if repo.LastCommitAgo != "" {
		status = append(status, "last commit "+repo.LastCommitAgo)
	}
	lines = append(lines, "Status: "+strings.Join(status, ", "))

	if len(repo.ChangedFiles) > 0 {
		lines = append(lines, "Changed files:")
		for _, f := range repo.ChangedFiles {
			var stat string
			if f.Insertions > 0 || f.Deletions > 0 {
				stat = fmt.Sprintf(" (+%d/-%d)", f.Insertions, f.Deletions)
			}
			lines = append(lines, fmt.Sprintf("  - [%s] %s (%s)%s", f.Stage, f.Path, f.Kind, stat))
		}
	}

	if len(repo.StashEntries) > 0 {
		lines = append(lines, "Stashes:")
		for _, entry := range repo.StashEntries {
			lines = append(lines, "  - "+entry)
		}
	}

	if repo.Ahead > 0 || repo.Behind > 0 {
		lines = append(lines, fmt.Sprintf("Remote: %d ahead, %d behind", repo.Ahead, repo.Behind))
	}

	if len(repo.RecentBranches) > 0 {
		names := make([]string, 0, promptBranchesMax)
		for i, b := range repo.RecentBranches {
			if i == promptBranchesMax {
				break
			}
			names = append(names, fmt.Sprintf("%s (%s)", b.Name, b.LastCommitAgo))
		}
		lines = append(lines, "Other branches: "+strings.Join(names, ", "))
	}

	if len(repo.RecentCommits) > 0 {
		lines = append(lines, "Recent commits:")
		for i, c := range repo.RecentCommits {
			if i == promptCommitsMax {
				break
			}
			lines = append(lines, fmt.Sprintf("  - %s %s (%s)", c.ShortHash, c.Subject, c.Ago))
			if c.Body != "" {
				body := strings.Split(c.Body, "\n")
				if len(body) > promptCommitBodyMax {
					body = body[:promptCommitBodyMax]
				}
				for _, bl := range body {
					lines = append(lines, "      "+bl)
				}
			}
			if len(c.Files) > 0 {
				shown := c.Files
				var more string
				if len(shown) > promptCommitFilesMax {
					more = fmt.Sprintf(" +%d more", len(shown)-promptCommitFilesMax)
					shown = shown[:promptCommitFilesMax]
				}
				lines = append(lines, "      files: "+strings.Join(shown, ", ")+more)
			}
		}
	}

	if len(repo.AgentSessions) > 0 {
		lines = append(lines, "Agent activity:")
		for _, s := range repo.AgentSessions {
			lines = append(lines, fmt.Sprintf(
				"  - %s on %s: %d commits, %d files changed, last commit %s (%s)",
				s.Agent, s.Branch, s.Commits, s.FilesChanged, s.LastCommitAgo, s.Freshness))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
