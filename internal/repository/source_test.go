//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/pagination"
	"github.com/inkstand-ai/inkstand/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSource(ctx context.Context, t *testing.T, repo *SourceRepository, title string) *domain.Source {
	t.Helper()

	src := &domain.Source{
		ID:        uuid.NewString(),
		Title:     title,
		FullText:  "Full text for " + title,
		FilePath:  "docs/" + title + ".md",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, src))
	return src
}

func TestSourceRepository_Create(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	src := &domain.Source{
		ID:        uuid.NewString(),
		Title:     "Attention Is All You Need",
		FullText:  "# Abstract\n\nThe dominant sequence transduction models...",
		FilePath:  "papers/attention.md",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	err := repo.Create(ctx, src)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, src.ID, retrieved.ID)
	assert.Equal(t, src.Title, retrieved.Title)
	assert.Equal(t, src.FullText, retrieved.FullText)
	assert.Equal(t, src.FilePath, retrieved.FilePath)
	assert.Equal(t, src.CreatedAt, retrieved.CreatedAt)
}

func TestSourceRepository_Create_WithoutFilePath(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	src := &domain.Source{
		ID:        uuid.NewString(),
		Title:     "Pasted Text",
		FullText:  "Some pasted content without a file.",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, src))

	retrieved, err := repo.GetByID(ctx, src.ID)
	require.NoError(t, err)
	assert.Empty(t, retrieved.FilePath)
}

func TestSourceRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestSourceRepository_List_OrderedByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	older := &domain.Source{
		ID:        uuid.NewString(),
		Title:     "Older",
		FullText:  "older text",
		CreatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, older))

	newer := &domain.Source{
		ID:        uuid.NewString(),
		Title:     "Newer",
		FullText:  "newer text",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, newer))

	sources, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, newer.ID, sources[0].ID)
	assert.Equal(t, older.ID, sources[1].ID)
}

func TestSourceRepository_ListWithCursor_Paginates(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		src := &domain.Source{
			ID:        uuid.NewString(),
			Title:     fmt.Sprintf("Source %d", i),
			FullText:  "text",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, src))
	}

	page1, err := repo.ListWithCursor(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	assert.NotEmpty(t, page1.NextCursor)
	assert.Equal(t, "Source 4", page1.Items[0].Title)
	assert.Equal(t, "Source 3", page1.Items[1].Title)

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.True(t, page2.HasMore)
	assert.Equal(t, "Source 2", page2.Items[0].Title)
	assert.Equal(t, "Source 1", page2.Items[1].Title)

	cursor, err = pagination.DecodeCursor(page2.NextCursor)
	require.NoError(t, err)

	page3, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
	assert.Equal(t, "Source 0", page3.Items[0].Title)
}

func TestSourceRepository_ListWithCursor_TiesBrokenByID(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	ts := time.Now().UTC().Truncate(time.Microsecond)
	ids := []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
		"33333333-3333-4333-8333-333333333333",
	}
	for _, id := range ids {
		src := &domain.Source{
			ID:        id,
			Title:     "Same timestamp",
			FullText:  "text",
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		require.NoError(t, repo.Create(ctx, src))
	}

	page1, err := repo.ListWithCursor(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.Equal(t, ids[2], page1.Items[0].ID)
	assert.Equal(t, ids[1], page1.Items[1].ID)

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, ids[0], page2.Items[0].ID)
}

func TestSourceRepository_Update(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	src := createTestSource(ctx, t, repo, "original")
	originalUpdatedAt := src.UpdatedAt

	src.Title = "Updated Title"
	src.FullText = "Updated full text."
	err := repo.Update(ctx, src)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", retrieved.Title)
	assert.Equal(t, "Updated full text.", retrieved.FullText)
	assert.True(t, retrieved.UpdatedAt.After(originalUpdatedAt))
}

func TestSourceRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	src := &domain.Source{
		ID:       uuid.NewString(),
		Title:    "Ghost",
		FullText: "text",
	}
	err := repo.Update(ctx, src)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestSourceRepository_Delete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	src := createTestSource(ctx, t, repo, "doomed")
	require.NoError(t, repo.Delete(ctx, src.ID))

	_, err := repo.GetByID(ctx, src.ID)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestSourceRepository_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewSourceRepository(pool)

	err := repo.Delete(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}
