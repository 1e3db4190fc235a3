// Package repository contains data access logic separated from HTTP handlers.
// This file implements MovieStore on MySQL.  Each movie is stored as one row
// whose `document` column holds the client fields as JSON, so documents
// keep their shape without a schema per field.
package repository

import (
	"context"      // context carries deadlines and cancellation to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movies-api/internal/model"
)

// MovieRepo encapsulates all database queries related to movies.  It
// depends on a sql.DB connection which should be configured elsewhere.
type MovieRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

var _ MovieStore = (*MovieRepo)(nil)

const movieColumns = "id, owner_id, document, created_at, updated_at"

// FindAll returns every movie regardless of owner, oldest first.
func (r *MovieRepo) FindAll(ctx context.Context) ([]*model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	out := []*model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return out, nil
}

// FindByID fetches a movie by id.  It returns (nil, nil) when no row matches
// and ErrInvalidID when id is not a UUID.
func (r *MovieRepo) FindByID(ctx context.Context, id string) (*model.Movie, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	row := r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts m, populating its ID and timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if m.Fields == nil {
		m.Fields = map[string]any{}
	}
	doc, err := json.Marshal(m.Fields)
	if err != nil {
		return fmt.Errorf("encode movie document: %w", err)
	}
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	const q = "INSERT INTO movies (" + movieColumns + ") VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, id, m.Owner, doc, now, now); err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// Delete removes m.  Deleting a row that is already gone is not an error.
func (r *MovieRepo) Delete(ctx context.Context, m *model.Movie) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", m.ID); err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	var (
		m   model.Movie
		doc []byte
	)
	if err := s.Scan(&m.ID, &m.Owner, &doc, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan movie: %w", err)
	}
	m.Fields = map[string]any{}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &m.Fields); err != nil {
			return nil, fmt.Errorf("decode movie %s: %w", m.ID, err)
		}
	}
	return &m, nil
}
