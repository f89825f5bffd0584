// Package service provides the RabbitMQ publisher for reservation events.
// Errors are logged and returned so callers can ignore failures without
// interrupting the reservation process.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/bus-seat-reservation/internal/queue"
)

// QueuePublisher publishes events to the durable reservation.events queue.
// The connection is opened on first use and reopened after it breaks.
type QueuePublisher struct {
    url   string
    queue string

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewQueuePublisher returns a publisher for the broker at url.
func NewQueuePublisher(url string) *QueuePublisher {
    return &QueuePublisher{url: url, queue: q.EventsQueue}
}

// Publish sends ev as a persistent JSON message.  On failure the channel is
// dropped so the next call reconnects.
func (p *QueuePublisher) Publish(ctx context.Context, ev q.Event) error {
    pub, err := publishing(ev, time.Now())
    if err != nil {
        log.Printf("rabbitmq: %v", err)
        return err
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel()
    if err != nil {
        log.Printf("rabbitmq: %v", err)
        return err
    }

    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        p.reset()
        return err
    }
    return nil
}

// publishing wraps ev as a persistent JSON message typed by the event type.
func publishing(ev q.Event, at time.Time) (amqp.Publishing, error) {
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    at.UTC(),
        Type:         ev.Type,
        Body:         body,
    }, nil
}

// Close releases the channel and connection.
func (p *QueuePublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.reset()
    return nil
}

func (p *QueuePublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.reset()
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, fmt.Errorf("dial failed: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("channel open failed: %w", err)
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        p.queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, fmt.Errorf("queue declare failed: %w", err)
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *QueuePublisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
