package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movies-api/internal/config"
	"github.com/iliyamo/movies-api/internal/repository"
	"github.com/iliyamo/movies-api/internal/service"
	"github.com/iliyamo/movies-api/internal/utils"
)

func TestNewServerWiring(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")

	cfg := config.Config{JWTSecret: "wiring-secret", AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4, MovieStore: config.StoreMemory}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := newServer(cfg, log, repository.NewMemoryMovieRepo(), service.NopPublisher{}, nil,
		repository.NewUserRepo(nil), repository.NewTokenRepo(nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewAccessToken(cfg.JWTSecret, 9, 5)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/movies", strings.NewReader(`{"movie":{"title":"Arrival","tagline":""}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"owner":9`)
	assert.NotContains(t, rec.Body.String(), "tagline")
}

func TestOpenMovieStoreMemory(t *testing.T) {
	t.Parallel()

	store, closeFn, err := openMovieStore(context.Background(), config.Config{MovieStore: config.StoreMemory}, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &repository.MemoryMovieRepo{}, store)

	_, closeFn, err = openMovieStore(context.Background(), config.Config{MovieStore: "sqlite"}, nil)
	assert.Error(t, err)
	closeFn()
}
