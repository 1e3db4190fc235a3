// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// MovieEventsQueue is the durable queue movie events are published to.
const MovieEventsQueue = "movie.events"

// Event types carried in MovieEvent.Type.
const (
    MovieCreated = "movie.created"
    MovieDeleted = "movie.deleted"
)

// MovieEvent is published after a movie is created or deleted.  It carries
// enough for downstream consumers to log or index the change without
// reading the movie store.
type MovieEvent struct {
    Type       string `json:"type"`
    MovieID    string `json:"movie_id"`
    OwnerID    uint64 `json:"owner_id"`
    ActorID    uint64 `json:"actor_id"`
    Title      string `json:"title,omitempty"`
    OccurredAt string `json:"occurred_at"` // RFC 3339, UTC
}
