// Package repository defines the persistence layer for tasks and the error
// types shared by every task store.  These sentinel values allow higher
// layers such as handlers to distinguish between failure scenarios.
package repository

import "errors"

// ErrTaskNotFound is returned when no task exists with the requested id.
// Handlers should translate this into an HTTP 404 response.
var ErrTaskNotFound = errors.New("task not found")

// ErrConflict is returned when an operation cannot be performed because of
// conflicting state, such as completing a task that is already completed or
// creating a task whose id is taken.  Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")
