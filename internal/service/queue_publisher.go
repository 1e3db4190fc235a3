// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/movies-api/internal/queue"
)

// AMQPPublisher publishes movie events to the durable movie.events queue.
// Each publish opens its own connection, so the zero value with URL set is
// ready to use and safe for concurrent callers.
type AMQPPublisher struct {
    URL string
    Log *slog.Logger
}

// PublishMovieEvent sends event as a persistent JSON message.  Any error is
// logged and returned so the caller can choose to ignore it.
func (p *AMQPPublisher) PublishMovieEvent(ctx context.Context, event queue.MovieEvent) error {
    log := p.Log
    if log == nil {
        log = slog.Default()
    }
    pub, err := NewPublishing(event)
    if err != nil {
        log.ErrorContext(ctx, "rabbitmq: marshal event failed", "error", err)
        return err
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.WarnContext(ctx, "rabbitmq: dial failed", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.WarnContext(ctx, "rabbitmq: channel open failed", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queue.MovieEventsQueue, // name
        true,                   // durable
        false,                  // autoDelete
        false,                  // exclusive
        false,                  // noWait
        nil,                    // args
    ); err != nil {
        log.WarnContext(ctx, "rabbitmq: queue declare failed", "error", err)
        return err
    }

    if err := ch.PublishWithContext(ctx,
        "",                     // default exchange
        queue.MovieEventsQueue, // routing key = queue name
        false,                  // mandatory
        false,                  // immediate
        pub,
    ); err != nil {
        log.WarnContext(ctx, "rabbitmq: publish failed", "error", err)
        return err
    }
    return nil
}

// NewPublishing encodes event as a persistent JSON message.
func NewPublishing(event queue.MovieEvent) (amqp.Publishing, error) {
    body, err := json.Marshal(event)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         event.Type,
        Body:         body,
    }, nil
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) PublishMovieEvent(context.Context, queue.MovieEvent) error { return nil }
