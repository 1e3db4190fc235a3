// Package repository defines error types that are reused across multiple
// repositories. These sentinel values are classified through apperr so
// that the HTTP error handler can translate them without knowing about
// the repository layer. Compare with errors.Is; stores wrap them with
// context using fmt.Errorf("...: %w").
package repository

import "github.com/iliyamo/movies-api/internal/apperr"

// ErrInvalidID is returned when an identifier is not in the store's id
// format (a 24 character hex ObjectID for Mongo, a UUID otherwise).
var ErrInvalidID = apperr.New(apperr.KindInvalidID, "invalid movie id")

// ErrEmailExists is returned when registering an email that is already taken.
var ErrEmailExists = apperr.New(apperr.KindConflict, "email already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = apperr.New(apperr.KindNotFound, "user not found")

// ErrInvalidRefresh is returned for unknown, expired or revoked refresh tokens.
var ErrInvalidRefresh = apperr.New(apperr.KindUnauthorized, "invalid refresh token")
