package handler

import (
    "context"
    "log/slog"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/apperr"
    "github.com/iliyamo/movies-api/internal/middleware"
    "github.com/iliyamo/movies-api/internal/model"
    "github.com/iliyamo/movies-api/internal/queue"
    "github.com/iliyamo/movies-api/internal/repository"
)

// EventPublisher delivers movie events.  Failures never fail the request.
type EventPublisher interface {
    PublishMovieEvent(ctx context.Context, event queue.MovieEvent) error
}

// MovieHandler serves the /movies resource.  It holds no per-request state.
type MovieHandler struct {
    Store  repository.MovieStore
    Events EventPublisher

    // publishTimeout bounds one background publish.
    publishTimeout time.Duration
}

func NewMovieHandler(store repository.MovieStore, events EventPublisher) *MovieHandler {
    return &MovieHandler{Store: store, Events: events, publishTimeout: 5 * time.Second}
}

type movieReq struct {
    Movie any `json:"movie"`
}

type movieResp struct {
    Movie *model.Movie `json:"movie"`
}

type moviesResp struct {
    Movies []*model.Movie `json:"movies"`
}

// List returns every stored movie, unfiltered.
func (h *MovieHandler) List(c echo.Context) error {
    movies, err := h.Store.FindAll(c.Request().Context())
    if err != nil {
        return err
    }
    if movies == nil {
        movies = []*model.Movie{}
    }
    return c.JSON(http.StatusOK, moviesResp{Movies: movies})
}

// Get returns one movie or NotFound.
func (h *MovieHandler) Get(c echo.Context) error {
    m, err := handle404(h.Store.FindByID(c.Request().Context(), c.Param("id")))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, movieResp{Movie: m})
}

// Create stores the "movie" object of the body.  owner always comes from
// the token, never from the client.
func (h *MovieHandler) Create(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return apperr.Unauthorized("authentication required")
    }

    var req movieReq
    if err := c.Bind(&req); err != nil {
        return apperr.Wrap(apperr.KindBadParams, err, "malformed request body")
    }
    doc, ok := req.Movie.(map[string]any)
    if !ok {
        return apperr.BadParams("movie must be a JSON object")
    }

    m := model.NewMovie(p.ID, doc)
    if err := h.Store.Create(c.Request().Context(), m); err != nil {
        return err
    }
    h.publish(c.Request().Context(), queue.MovieCreated, m, p)
    return c.JSON(http.StatusCreated, movieResp{Movie: m})
}

// Delete removes a movie the caller owns.  A missing movie is NotFound; a
// movie owned by someone else is an Ownership error and storage is left
// untouched.
func (h *MovieHandler) Delete(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return apperr.Unauthorized("authentication required")
    }
    ctx := c.Request().Context()

    m, err := handle404(h.Store.FindByID(ctx, c.Param("id")))
    if err != nil {
        return err
    }
    if !model.IsOwner(p, m) {
        return apperr.Ownership("only the owner may delete this movie")
    }
    if err := h.Store.Delete(ctx, m); err != nil {
        return err
    }
    h.publish(ctx, queue.MovieDeleted, m, p)
    return c.NoContent(http.StatusNoContent)
}

// handle404 turns the store's (nil, nil) absence result into NotFound.
func handle404(m *model.Movie, err error) (*model.Movie, error) {
    if err != nil {
        return nil, err
    }
    if m == nil {
        return nil, apperr.NotFound("movie not found")
    }
    return m, nil
}

// publish sends the event in the background so a slow or absent broker
// never delays the response.
func (h *MovieHandler) publish(ctx context.Context, typ string, m *model.Movie, actor model.Principal) {
    if h.Events == nil {
        return
    }
    ev := queue.MovieEvent{
        Type:       typ,
        MovieID:    m.ID,
        OwnerID:    m.Owner,
        ActorID:    actor.ID,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
    if title, ok := m.Fields["title"].(string); ok {
        ev.Title = title
    }
    timeout := h.publishTimeout
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    ctx = context.WithoutCancel(ctx)
    go func() {
        ctx, cancel := context.WithTimeout(ctx, timeout)
        defer cancel()
        if err := h.Events.PublishMovieEvent(ctx, ev); err != nil {
            slog.WarnContext(ctx, "movie event not published", "type", typ, "movie_id", ev.MovieID, "error", err)
        }
    }()
}
