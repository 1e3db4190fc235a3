package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movies-api/internal/model"
)

// MemoryMovieRepo is an in-process MovieStore used for local runs
// (MOVIE_STORE=memory) and handler tests.  Ids are UUIDs, as in MovieRepo.
type MemoryMovieRepo struct {
	mu     sync.RWMutex
	movies map[string]*model.Movie
	seq    int64
	order  map[string]int64
}

// NewMemoryMovieRepo returns an empty store.
func NewMemoryMovieRepo() *MemoryMovieRepo {
	return &MemoryMovieRepo{
		movies: map[string]*model.Movie{},
		order:  map[string]int64{},
	}
}

var _ MovieStore = (*MemoryMovieRepo)(nil)

// FindAll returns copies of every movie in insertion order.
func (r *MemoryMovieRepo) FindAll(_ context.Context) ([]*model.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		out = append(out, cloneMovie(m))
	}
	sort.Slice(out, func(i, j int) bool { return r.order[out[i].ID] < r.order[out[j].ID] })
	return out, nil
}

// FindByID returns (nil, nil) for unknown ids and ErrInvalidID for non-UUIDs.
func (r *MemoryMovieRepo) FindByID(_ context.Context, id string) (*model.Movie, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.movies[id]
	if !ok {
		return nil, nil
	}
	return cloneMovie(m), nil
}

// Create stores a copy of m and populates its ID and timestamps.
func (r *MemoryMovieRepo) Create(_ context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Fields == nil {
		m.Fields = map[string]any{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.order[m.ID] = r.seq
	r.movies[m.ID] = cloneMovie(m)
	return nil
}

// Delete removes m; deleting an absent movie is a no-op.
func (r *MemoryMovieRepo) Delete(_ context.Context, m *model.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.movies, m.ID)
	delete(r.order, m.ID)
	return nil
}

// Len reports how many movies are stored.
func (r *MemoryMovieRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.movies)
}

// cloneMovie copies the top-level field map so callers cannot mutate stored
// state; nested values are shared, they are never modified in place.
func cloneMovie(m *model.Movie) *model.Movie {
	c := *m
	c.Fields = make(map[string]any, len(m.Fields))
	for k, v := range m.Fields {
		c.Fields[k] = v
	}
	return &c
}
