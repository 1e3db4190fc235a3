package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestUserRepo_CreateNormalizesEmail(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (email, password_hash) VALUES (?,?)")).
		WithArgs("ada@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := NewUserRepo(db).Create(context.Background(), "  Ada@Example.com ", "secret123", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := NewUserRepo(db).Create(context.Background(), "ada@example.com", "secret123", 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_GetByEmailNotFound(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery("SELECT id,email").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "is_active", "created_at", "updated_at"}))

	_, err := NewUserRepo(db).GetByEmail(context.Background(), "Nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenRepo_ValidateRefresh(t *testing.T) {
	cols := []string{"user_id", "expires_at", "revoked_at"}

	t.Run("valid", func(t *testing.T) {
		db, mock := newSQLMock(t)
		mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
			WithArgs("h").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(uint64(5), time.Now().Add(time.Hour), nil))

		uid, err := NewTokenRepo(db).ValidateRefresh(context.Background(), "h")
		require.NoError(t, err)
		assert.Equal(t, uint64(5), uid)
	})

	t.Run("expired", func(t *testing.T) {
		db, mock := newSQLMock(t)
		mock.ExpectQuery("SELECT user_id").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(uint64(5), time.Now().Add(-time.Hour), nil))

		_, err := NewTokenRepo(db).ValidateRefresh(context.Background(), "h")
		assert.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("revoked", func(t *testing.T) {
		db, mock := newSQLMock(t)
		mock.ExpectQuery("SELECT user_id").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(uint64(5), time.Now().Add(time.Hour), time.Now()))

		_, err := NewTokenRepo(db).ValidateRefresh(context.Background(), "h")
		assert.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("unknown", func(t *testing.T) {
		db, mock := newSQLMock(t)
		mock.ExpectQuery("SELECT user_id").WillReturnRows(sqlmock.NewRows(cols))

		_, err := NewTokenRepo(db).ValidateRefresh(context.Background(), "h")
		assert.ErrorIs(t, err, ErrInvalidRefresh)
	})
}
