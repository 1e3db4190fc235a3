package model

import (
	"encoding/json"
	"time"
)

// Movie is a document in the movies collection.  The persistence layer owns
// ID and the timestamps; Owner is stamped from the authenticated principal
// on create and never changes afterwards.  Everything the client sends
// (title, director, ...) lives in Fields and is stored verbatim.
//
// Fields:
//  ID        – store-assigned identifier (hex ObjectID or UUID).
//  Owner     – users.id of the principal that created the movie.
//  Fields    – arbitrary client-supplied document members.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last modification timestamp.
type Movie struct {
    ID        string
    Owner     uint64
    Fields    map[string]any
    CreatedAt time.Time
    UpdatedAt time.Time
}

// reservedKeys are document members that only the server may set.
var reservedKeys = map[string]bool{
    "id":        true,
    "_id":       true,
    "owner":     true,
    "createdAt": true,
    "updatedAt": true,
}

// IsReservedKey reports whether key is a server-managed member.
func IsReservedKey(key string) bool { return reservedKeys[key] }

// NewMovie builds an unsaved movie for owner from a client document.  Any
// client-supplied reserved member (including owner) is discarded.
func NewMovie(owner uint64, doc map[string]any) *Movie {
    fields := make(map[string]any, len(doc))
    for k, v := range doc {
        if reservedKeys[k] {
            continue
        }
        fields[k] = v
    }
    return &Movie{Owner: owner, Fields: fields}
}

// MarshalJSON renders the movie as a single flat object: server-managed
// members plus every stored field.
func (m Movie) MarshalJSON() ([]byte, error) {
    out := make(map[string]any, len(m.Fields)+5)
    for k, v := range m.Fields {
        out[k] = v
    }
    out["id"] = m.ID
    out["owner"] = m.Owner
    if !m.CreatedAt.IsZero() {
        out["createdAt"] = m.CreatedAt.UTC()
    }
    if !m.UpdatedAt.IsZero() {
        out["updatedAt"] = m.UpdatedAt.UTC()
    }
    return json.Marshal(out)
}

// IsOwner reports whether p owns m.  A nil movie is owned by nobody.
func IsOwner(p Principal, m *Movie) bool {
    return m != nil && m.Owner == p.ID
}
