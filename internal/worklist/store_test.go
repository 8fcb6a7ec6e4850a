package worklist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charliek/wip/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "worklist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, "review auth PR", "/repos/api")
	require.NoError(t, err)
	require.Equal(t, uint(1), first.ID)
	require.Equal(t, domain.ItemOpen, first.Status)
	require.False(t, first.CreatedAt.IsZero())

	second, err := store.Add(ctx, "untangle migrations", "")
	require.NoError(t, err)
	require.Equal(t, uint(2), second.ID)
	require.Empty(t, second.Repo)
}

func TestComplete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "ship it", "")
	require.NoError(t, err)

	done, err := store.Complete(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ItemDone, done.Status)
	require.NotNil(t, done.CompletedAt)
	require.True(t, done.Done())
}

func TestCompleteMissingOrAlreadyDone(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Complete(ctx, 42)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	item, err := store.Add(ctx, "once only", "")
	require.NoError(t, err)
	_, err = store.Complete(ctx, item.ID)
	require.NoError(t, err)

	// Completing twice reports not found, same as a missing id
	_, err = store.Complete(ctx, item.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestItemsFiltersDone(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	a, err := store.Add(ctx, "first", "")
	require.NoError(t, err)
	_, err = store.Add(ctx, "second", "")
	require.NoError(t, err)
	_, err = store.Complete(ctx, a.ID)
	require.NoError(t, err)

	open, err := store.Items(ctx, false)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "second", open[0].Description)

	all, err := store.Items(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, uint(1), all[0].ID, "items come back ordered by id")
}

func TestItemsForRepo(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	repo := t.TempDir()
	other := t.TempDir()

	_, err := store.Add(ctx, "in repo", repo)
	require.NoError(t, err)
	_, err = store.Add(ctx, "elsewhere", other)
	require.NoError(t, err)
	_, err = store.Add(ctx, "unattached", "")
	require.NoError(t, err)

	items, err := store.ItemsForRepo(ctx, repo)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "in repo", items[0].Description)
}

func TestItemsForRepoResolvesSymlinks(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	repo := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(repo, link))

	_, err := store.Add(ctx, "through the link", link)
	require.NoError(t, err)

	items, err := store.ItemsForRepo(ctx, repo)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestStorePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worklist.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	_, err = store.Add(context.Background(), "durable", "")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.Items(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "durable", items[0].Description)
}
