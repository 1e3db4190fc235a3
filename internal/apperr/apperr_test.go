package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want int
	}{
		{KindInternal, http.StatusInternalServerError},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindOwnership, http.StatusUnauthorized},
		{KindValidation, http.StatusUnprocessableEntity},
		{KindBadParams, http.StatusUnprocessableEntity},
		{KindInvalidID, http.StatusUnprocessableEntity},
		{KindConflict, http.StatusConflict},
		{Kind(99), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.kind))
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
	assert.Equal(t, KindNotFound, KindOf(NotFound("movie not found")))

	wrapped := fmt.Errorf("find movie: %w", New(KindInvalidID, "invalid movie id"))
	assert.Equal(t, KindInvalidID, KindOf(wrapped))
}

func TestMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "internal server error", Message(errors.New("dial tcp: refused")))
	assert.Equal(t, "internal server error", Message(Wrap(KindInternal, errors.New("x"), "secret")))
	assert.Equal(t, "movie not found", Message(NotFound("movie not found")))
	assert.Equal(t, "ownership", Message(&Error{Kind: KindOwnership}))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Wrap(KindConflict, nil, "ignored"))

	root := errors.New("duplicate entry")
	err := Wrap(KindConflict, root, "email already exists")
	assert.ErrorIs(t, err, root)
	assert.Equal(t, "email already exists: duplicate entry", err.Error())
	assert.Equal(t, KindConflict, KindOf(err))
}
