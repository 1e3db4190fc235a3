package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMovieDropsReservedKeys(t *testing.T) {
	t.Parallel()

	m := NewMovie(7, map[string]any{
		"title":     "Arrival",
		"owner":     "forged",
		"_id":       "abc",
		"id":        "def",
		"createdAt": "yesterday",
	})

	assert.Equal(t, uint64(7), m.Owner)
	assert.Equal(t, map[string]any{"title": "Arrival"}, m.Fields)
	assert.Empty(t, m.ID)
}

func TestMovieMarshalJSON(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := Movie{
		ID:        "507f1f77bcf86cd799439011",
		Owner:     1,
		Fields:    map[string]any{"title": "Arrival", "year": 2016},
		CreatedAt: created,
		UpdatedAt: created,
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "507f1f77bcf86cd799439011", got["id"])
	assert.Equal(t, float64(1), got["owner"])
	assert.Equal(t, "Arrival", got["title"])
	assert.Equal(t, float64(2016), got["year"])
	assert.Equal(t, "2024-05-01T12:00:00Z", got["createdAt"])
}

func TestMovieMarshalJSONServerFieldsWin(t *testing.T) {
	t.Parallel()

	m := Movie{ID: "x", Owner: 2, Fields: map[string]any{"owner": "forged"}}
	raw, err := json.Marshal(&m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","owner":2}`, string(raw))
}

func TestIsOwner(t *testing.T) {
	t.Parallel()

	m := &Movie{ID: "x", Owner: 1}
	assert.True(t, IsOwner(Principal{ID: 1}, m))
	assert.False(t, IsOwner(Principal{ID: 2}, m))
	assert.False(t, IsOwner(Principal{ID: 1}, nil))
}
