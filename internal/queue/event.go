// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// EventsQueue is the durable queue every reservation event is published to.
const EventsQueue = "reservation.events"

// Event types.
const (
    EventTaskCreated      = "task.created"
    EventTaskCompleted    = "task.completed"
    EventProcessCompleted = "process.completed"
)

// Event is published when a task is created or completed and when a
// reservation process finishes.  It carries enough context for downstream
// consumers to log or notify without querying the task store.
type Event struct {
    Type           string            `json:"type"`
    ProcessID      string            `json:"process_id"`
    TaskID         string            `json:"task_id,omitempty"`
    DefinitionCode string            `json:"definition_code,omitempty"`
    ElementValues  map[string]string `json:"element_values,omitempty"`
    Message        string            `json:"message,omitempty"`
    OccurredAt     string            `json:"occurred_at"`
}
