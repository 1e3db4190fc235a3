package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movies-api/internal/model"
)

func TestMemoryMovieRepo_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryMovieRepo()

	a := model.NewMovie(1, map[string]any{"title": "Arrival"})
	b := model.NewMovie(2, map[string]any{"title": "Heat"})
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Arrival", got.Fields["title"])

	require.NoError(t, repo.Delete(ctx, got))
	got, err = repo.FindByID(ctx, a.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, repo.Len())
}

func TestMemoryMovieRepo_FindByIDInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryMovieRepo().FindByID(context.Background(), "507f")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestMemoryMovieRepo_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryMovieRepo()

	m := model.NewMovie(1, map[string]any{"title": "Arrival"})
	require.NoError(t, repo.Create(ctx, m))
	m.Fields["title"] = "changed"

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arrival", got.Fields["title"])
}

func TestMemoryMovieRepo_ConcurrentCreates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryMovieRepo()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(ctx, model.NewMovie(uint64(i), map[string]any{"n": i}))
		}(i)
	}
	wg.Wait()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
