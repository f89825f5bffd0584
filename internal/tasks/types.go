// Package tasks is the task-management collaborator of the reservation
// process.  A task is created by an activity that then parks until a human
// completes the task through the HTTP API; completion resumes the parked
// activity through the workflow engine.
package tasks

import "github.com/iliyamo/bus-seat-reservation/internal/model"

// Task definition codes.
const (
	CodeReservationForm     = "BSR_FRM"
	CodeNoSeatsAvailable    = "NOTIF_NOSEAT"
	CodeReservationComplete = "NOTIF_RSVCP"
)

// Element value names exchanged with tasks.
const (
	ElementSeats     = "seats"
	ElementSeatNo    = "seatNo"
	ElementFirstName = "firstName"
	ElementLastName  = "lastName"
	ElementEmail     = "email"
)

type CreateTaskRequest struct {
	TaskID         string
	ProcessID      string
	DefinitionCode string
	ElementValues  map[string]string
}

type RetrieveTaskRequest struct {
	TaskID string
}

type RetrieveTaskResponse struct {
	Task model.Task
}

type CompleteProcessRequest struct {
	ProcessID string
}

type CompleteProcessResponse struct {
	Message string
}
