package model

import "time"

// Task states.  A task starts READY and becomes COMPLETED once a human (or
// an automated actor) submits it through the task API.
const (
    TaskStateReady     = "READY"
    TaskStateCompleted = "COMPLETED"
)

// MaxProcessIDLen is the width of the tasks.process_id column.
const MaxProcessIDLen = 255

// Task is a unit of human work created by the reservation process and
// awaited until it is completed.
//
// Fields:
//  ID             – task identifier minted by the process (UUID).
//  ProcessID      – process the task belongs to.
//  DefinitionCode – kind of task (form or notification).
//  State          – READY or COMPLETED.
//  ElementValues  – named field values shown to or filled in by the user.
//  ActivityToken  – opaque engine token of the activity waiting on the task.
//  CreatedAt      – creation timestamp.
//  CompletedAt    – completion timestamp, nil while READY.
type Task struct {
    ID             string            `json:"id"`
    ProcessID      string            `json:"process_id"`
    DefinitionCode string            `json:"definition_code"`
    State          string            `json:"state"`
    ElementValues  map[string]string `json:"element_values"`
    ActivityToken  []byte            `json:"-"`
    CreatedAt      time.Time         `json:"created_at"`
    CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// Value returns the named element value, or "" when it is not set.
func (t Task) Value(name string) string {
    if t.ElementValues == nil {
        return ""
    }
    return t.ElementValues[name]
}

// Clone returns a deep copy so callers cannot mutate stored maps and tokens.
func (t Task) Clone() Task {
    c := t
    if t.ElementValues != nil {
        c.ElementValues = make(map[string]string, len(t.ElementValues))
        for k, v := range t.ElementValues {
            c.ElementValues[k] = v
        }
    }
    if t.ActivityToken != nil {
        c.ActivityToken = append([]byte(nil), t.ActivityToken...)
    }
    if t.CompletedAt != nil {
        at := *t.CompletedAt
        c.CompletedAt = &at
    }
    return c
}
