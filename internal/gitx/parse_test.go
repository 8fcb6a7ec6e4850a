package gitx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseStatusPorcelain(t *testing.T) {
	out := "M  staged.go\n" +
		" M worktree.go\n" +
		"MM both.go\n" +
		"A  added.go\n" +
		" D deleted.go\n" +
		"R  old.go -> new.go\n" +
		"?? junk.txt\n"

	entries := ParseStatusPorcelain(out)
	require.Len(t, entries, 7)

	require.Equal(t, StatusEntry{Staged: 'M', Worktree: ' ', Path: "staged.go"}, entries[0])
	require.Equal(t, StatusEntry{Staged: ' ', Worktree: 'M', Path: "worktree.go"}, entries[1])
	require.Equal(t, StatusEntry{Staged: 'M', Worktree: 'M', Path: "both.go"}, entries[2])
	require.Equal(t, StatusEntry{Staged: 'A', Worktree: ' ', Path: "added.go"}, entries[3])
	require.Equal(t, StatusEntry{Staged: ' ', Worktree: 'D', Path: "deleted.go"}, entries[4])
	require.Equal(t, StatusEntry{Staged: 'R', Worktree: ' ', Path: "new.go"}, entries[5])
	require.Equal(t, StatusEntry{Staged: '?', Worktree: '?', Path: "junk.txt"}, entries[6])
}

func TestParseStatusPorcelainQuotedPath(t *testing.T) {
	out := "?? \"caf\\303\\251.txt\"\n"

	entries := ParseStatusPorcelain(out)
	require.Len(t, entries, 1)
	require.Equal(t, "café.txt", entries[0].Path)
}

func TestParseStatusPorcelainEmpty(t *testing.T) {
	require.Empty(t, ParseStatusPorcelain(""))
	require.Empty(t, ParseStatusPorcelain("\n\n"))
}

func TestParseNumstat(t *testing.T) {
	out := "3\t1\tmain.go\n" +
		"0\t12\tinternal/server.go\n" +
		"-\t-\tassets/logo.png\n"

	stats := ParseNumstat(out)
	require.Len(t, stats, 3)
	require.Equal(t, LineStats{Insertions: 3, Deletions: 1}, stats["main.go"])
	require.Equal(t, LineStats{Insertions: 0, Deletions: 12}, stats["internal/server.go"])
	require.Equal(t, LineStats{}, stats["assets/logo.png"])
}

func TestParseNumstatRenames(t *testing.T) {
	out := "2\t2\told.go => new.go\n" +
		"1\t0\tpkg/{before => after}/util.go\n"

	stats := ParseNumstat(out)
	require.Len(t, stats, 2)
	require.Contains(t, stats, "new.go")
	require.Contains(t, stats, "pkg/after/util.go")
}

func TestParseAheadBehind(t *testing.T) {
	ahead, behind, err := ParseAheadBehind("2\t5\n")
	require.NoError(t, err)
	require.Equal(t, 2, ahead)
	require.Equal(t, 5, behind)

	ahead, behind, err = ParseAheadBehind("0\t0\n")
	require.NoError(t, err)
	require.Zero(t, ahead)
	require.Zero(t, behind)

	_, _, err = ParseAheadBehind("nonsense")
	require.Error(t, err)
}

func TestParseBranchHeads(t *testing.T) {
	out := "main\t1700000000\n" +
		"feature/api\t1699990000\n" +
		"\n"

	heads := ParseBranchHeads(out)
	require.Len(t, heads, 2)
	require.Equal(t, "main", heads[0].Name)
	require.Equal(t, time.Unix(1700000000, 0), heads[0].CommittedAt)
	require.Equal(t, "feature/api", heads[1].Name)
}

func TestParseCommitLog(t *testing.T) {
	hash1 := "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"
	hash2 := "ffffffffffffffffffffffffffffffffffffffff"

	out := recordSep +
		hash1 + fieldSep + "a1b2c3d" + fieldSep + "Alice" + fieldSep + "1700000000" +
		fieldSep + "Add scanning" + fieldSep + "First body line\nSecond body line\n" +
		recordSep + "\n\n3\t1\tmain.go\n0\t2\tpkg/util.go\n" +
		recordSep +
		hash2 + fieldSep + "fffffff" + fieldSep + "Bob" + fieldSep + "1699990000" +
		fieldSep + "Fix tests" + fieldSep + "" +
		recordSep + "\n"

	commits := ParseCommitLog(out)
	require.Len(t, commits, 2)

	require.Equal(t, hash1, commits[0].Hash)
	require.Equal(t, "a1b2c3d", commits[0].ShortHash)
	require.Equal(t, "Alice", commits[0].Author)
	require.Equal(t, time.Unix(1700000000, 0), commits[0].When)
	require.Equal(t, "Add scanning", commits[0].Subject)
	require.Equal(t, "First body line\nSecond body line", commits[0].Body)
	require.Equal(t, []string{"main.go", "pkg/util.go"}, commits[0].Files)

	require.Equal(t, "Fix tests", commits[1].Subject)
	require.Empty(t, commits[1].Body)
	require.Empty(t, commits[1].Files)
}

func TestParseCommitLogSubjectWithSeparators(t *testing.T) {
	// Pipes and tabs are legal in commit subjects and must not split fields
	out := recordSep +
		"abc" + fieldSep + "abc" + fieldSep + "Carol" + fieldSep + "1700000000" +
		fieldSep + "feat: a | b\tc" + fieldSep + "" +
		recordSep

	commits := ParseCommitLog(out)
	require.Len(t, commits, 1)
	require.Equal(t, "feat: a | b\tc", commits[0].Subject)
}

func TestParseLines(t *testing.T) {
	out := "stash@{0}: WIP on main: 1a2b3c4 message\n" +
		"stash@{1}: On feature: experiment\n" +
		"\n"

	lines := ParseLines(out)
	require.Len(t, lines, 2)
	require.Equal(t, "stash@{0}: WIP on main: 1a2b3c4 message", lines[0])
}
