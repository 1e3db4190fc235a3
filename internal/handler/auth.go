package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // errors.Is against repository sentinels
    "fmt"      // wrapping internal failures
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/movies-api/internal/apperr"     // error kinds for the HTTP error handler
    "github.com/iliyamo/movies-api/internal/config"     // app configuration
    "github.com/iliyamo/movies-api/internal/middleware" // authenticated principal
    "github.com/iliyamo/movies-api/internal/model"      // user records
    "github.com/iliyamo/movies-api/internal/repository" // repository sentinels
    "github.com/iliyamo/movies-api/internal/utils"      // helper functions (hashing, token issuing)
)

// dbTimeout bounds the database work of one auth request.
const dbTimeout = 5 * time.Second

// UserStore is the subset of repository.UserRepo the auth endpoints use.
type UserStore interface {
    Create(ctx context.Context, email, password string, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
    UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
}

// TokenStore is the subset of repository.TokenRepo the auth endpoints use.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  UserStore
    Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type credentials struct {
    Email                string `json:"email" validate:"required,email,max=255"`
    Password             string `json:"password" validate:"required,min=8,max=72"`
    PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}
type registerReq struct {
    Credentials credentials `json:"credentials"`
}

type loginCredentials struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}
type loginReq struct {
    Credentials loginCredentials `json:"credentials"`
}

type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type passwords struct {
    Old string `json:"old" validate:"required"`
    New string `json:"new" validate:"required,min=8,max=72,nefield=Old"`
}
type changePasswordReq struct {
    Passwords passwords `json:"passwords"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// bindValid binds the body into req and runs the registered validator.
func bindValid(c echo.Context, req any) error {
    if err := c.Bind(req); err != nil {
        return apperr.Wrap(apperr.KindBadParams, err, "malformed request body")
    }
    return c.Validate(req)
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := bindValid(c, &req); err != nil {
        return err
    }
    email := strings.ToLower(strings.TrimSpace(req.Credentials.Email))

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    uid, err := h.Users.Create(ctx, email, req.Credentials.Password, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return err
        }
        return fmt.Errorf("create user: %w", err)
    }

    resp, err := h.issuePair(ctx, model.User{ID: uid, Email: email})
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, resp)
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bindValid(c, &req); err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Credentials.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return apperr.Unauthorized("invalid credentials")
        }
        return fmt.Errorf("load user: %w", err)
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Credentials.Password) {
        return apperr.Unauthorized("invalid credentials")
    }

    resp, err := h.issuePair(ctx, u)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
    hash, err := refreshHash(c)
    if err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.userForRefresh(ctx, hash)
    if err != nil {
        return err
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return fmt.Errorf("revoke refresh: %w", err)
    }

    resp, err := h.issuePair(ctx, u)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, resp)
}

// RefreshAccess: validate a refresh token and return a new access token WITHOUT rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
    hash, err := refreshHash(c)
    if err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.userForRefresh(ctx, hash)
    if err != nil {
        return err
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
    if err != nil {
        return fmt.Errorf("issue access: %w", err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// ChangePassword verifies the old password, stores the new one and signs
// the user out of every session.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return apperr.Unauthorized("authentication required")
    }
    var req changePasswordReq
    if err := bindValid(c, &req); err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByID(ctx, p.ID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return apperr.Unauthorized("invalid credentials")
        }
        return fmt.Errorf("load user: %w", err)
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Passwords.Old) {
        return apperr.Unauthorized("invalid credentials")
    }
    if err := h.Users.UpdatePassword(ctx, u.ID, req.Passwords.New, h.Cfg.BcryptCost); err != nil {
        return fmt.Errorf("update password: %w", err)
    }
    if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
        return fmt.Errorf("revoke sessions: %w", err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Logout revokes the refresh token in the body, or every refresh token of
// the authenticated user when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return apperr.Unauthorized("authentication required")
    }
    var req refreshReq
    // An empty or non-JSON body simply means "all sessions".
    _ = c.Bind(&req)
    raw := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if raw == "" {
        if err := h.Tokens.RevokeAllForUser(ctx, p.ID); err != nil {
            return fmt.Errorf("logout: %w", err)
        }
        return c.NoContent(http.StatusNoContent)
    }

    hash := utils.HashRefreshRaw(raw)
    owner, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if errors.Is(err, repository.ErrInvalidRefresh) {
            return err
        }
        return fmt.Errorf("validate refresh: %w", err)
    }
    // A session can only be ended by the user it belongs to.
    if owner != p.ID {
        return repository.ErrInvalidRefresh
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return fmt.Errorf("logout: %w", err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return apperr.Unauthorized("authentication required")
    }
    return c.JSON(http.StatusOK, echo.Map{"user_id": p.ID})
}

func refreshHash(c echo.Context) (string, error) {
    var req refreshReq
    if err := c.Bind(&req); err != nil {
        return "", apperr.Wrap(apperr.KindBadParams, err, "malformed request body")
    }
    raw := strings.TrimSpace(req.RefreshToken)
    if raw == "" {
        return "", apperr.New(apperr.KindValidation, "refresh_token is required")
    }
    return utils.HashRefreshRaw(raw), nil
}

// userForRefresh resolves a refresh token hash to an active user.
func (h *AuthHandler) userForRefresh(ctx context.Context, hash string) (model.User, error) {
    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if errors.Is(err, repository.ErrInvalidRefresh) {
            return model.User{}, err
        }
        return model.User{}, fmt.Errorf("validate refresh: %w", err)
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return model.User{}, repository.ErrInvalidRefresh
        }
        return model.User{}, fmt.Errorf("load user: %w", err)
    }
    if !u.IsActive {
        return model.User{}, repository.ErrInvalidRefresh
    }
    return u, nil
}

// issuePair signs an access token and stores a fresh refresh token for u.
func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, fmt.Errorf("issue access: %w", err)
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, fmt.Errorf("issue refresh: %w", err)
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, fmt.Errorf("save refresh: %w", err)
    }
    return authResp{
        User:    userPart{ID: u.ID, Email: u.Email},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}
