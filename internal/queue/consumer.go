package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartEventConsumer connects to RabbitMQ, declares the reservation.events
// queue (durable), and consumes it until ctx is cancelled.  Each event is
// appended to logDir/reservation.log as one human-friendly line.  Broken
// connections are retried with exponential backoff; a message that cannot
// be handled is rejected without requeue so the loop keeps going.
func StartEventConsumer(ctx context.Context, url, logDir string) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("event-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, logDir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("event-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("event-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, EventsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := HandleMessage(logDir, d.Body); err != nil {
            log.Printf("event-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// HandleMessage decodes one event and appends its log line.
func HandleMessage(logDir string, body []byte) error {
    var ev Event
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, "reservation.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatEvent(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders an event as a single log line ending in a newline.
// Element values are sorted by name so lines are stable.
func FormatEvent(ev Event) string {
    var b strings.Builder
    fmt.Fprintf(&b, "[%s] %s | process_id=%s", ev.OccurredAt, ev.Type, ev.ProcessID)
    if ev.TaskID != "" {
        fmt.Fprintf(&b, " | task_id=%s | code=%s", ev.TaskID, ev.DefinitionCode)
    }
    if len(ev.ElementValues) > 0 {
        keys := make([]string, 0, len(ev.ElementValues))
        for k := range ev.ElementValues {
            keys = append(keys, k)
        }
        sort.Strings(keys)
        pairs := make([]string, 0, len(keys))
        for _, k := range keys {
            pairs = append(pairs, fmt.Sprintf("%s=%q", k, ev.ElementValues[k]))
        }
        fmt.Fprintf(&b, " | values=[%s]", strings.Join(pairs, ","))
    }
    if ev.Message != "" {
        fmt.Fprintf(&b, " | message=%q", ev.Message)
    }
    b.WriteString("\n")
    return b.String()
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-t.C:
        return true
    case <-ctx.Done():
        return false
    }
}
