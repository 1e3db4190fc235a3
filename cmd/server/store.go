package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/movies-api/internal/config"
	"github.com/iliyamo/movies-api/internal/database"
	"github.com/iliyamo/movies-api/internal/repository"
)

// openMovieStore builds the store named by MOVIE_STORE.  The returned close
// func is always non-nil.
func openMovieStore(ctx context.Context, cfg config.Config, db *sql.DB) (repository.MovieStore, func(), error) {
	noop := func() {}
	switch cfg.MovieStore {
	case config.StoreMySQL:
		return repository.NewMovieRepo(db), noop, nil
	case config.StoreMemory:
		return repository.NewMemoryMovieRepo(), noop, nil
	case config.StoreMongo:
		client, err := database.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, noop, fmt.Errorf("open mongo: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return repository.NewMongoMovieRepo(client.Database(cfg.MongoDB)), closeFn, nil
	default:
		return nil, noop, fmt.Errorf("unknown movie store %q", cfg.MovieStore)
	}
}
