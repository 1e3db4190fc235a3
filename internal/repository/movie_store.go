package repository

import (
	"context"

	"github.com/iliyamo/movies-api/internal/model"
)

// MovieStore is the persistence contract the movie handlers depend on.
//
// FindByID returns (nil, nil) when no movie has the given id; callers decide
// how to treat absence.  A malformed id yields ErrInvalidID.  Create assigns
// ID and timestamps on the passed movie and stores Fields verbatim.
type MovieStore interface {
	FindAll(ctx context.Context) ([]*model.Movie, error)
	FindByID(ctx context.Context, id string) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, m *model.Movie) error
}
