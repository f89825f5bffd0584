package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// Activities are the task operations the reservation workflow calls.
type Activities struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	tokenOf   func(ctx context.Context) []byte
}

// NewActivities wires the activities to a store and an event publisher.
// A nil publisher drops events.
func NewActivities(store Store, publisher Publisher, logger *slog.Logger) *Activities {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Activities{
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "tasks"),
		now:       time.Now,
		tokenOf:   func(ctx context.Context) []byte { return activity.GetInfo(ctx).TaskToken },
	}
}

// CreateTaskAndWaitFinished stores the task together with this activity's
// token and leaves the activity pending.  Service.Complete resumes it.  When
// the engine re-delivers the activity the stored token is refreshed; a task
// that was already completed finishes the activity right away.
func (a *Activities) CreateTaskAndWaitFinished(ctx context.Context, req CreateTaskRequest) error {
	token := a.tokenOf(ctx)
	task := model.Task{
		ID:             req.TaskID,
		ProcessID:      req.ProcessID,
		DefinitionCode: req.DefinitionCode,
		State:          model.TaskStateReady,
		ElementValues:  req.ElementValues,
		ActivityToken:  token,
		CreatedAt:      a.now().UTC(),
	}
	err := a.store.Create(ctx, task)
	switch {
	case err == nil:
		a.logger.Info("task created", "task_id", task.ID, "process_id", task.ProcessID, "code", task.DefinitionCode)
		a.publish(ctx, queue.Event{
			Type:           queue.EventTaskCreated,
			ProcessID:      task.ProcessID,
			TaskID:         task.ID,
			DefinitionCode: task.DefinitionCode,
			ElementValues:  task.ElementValues,
		})
	case errors.Is(err, repository.ErrConflict):
		existing, getErr := a.store.Get(ctx, req.TaskID)
		if getErr != nil {
			return fmt.Errorf("load existing task %s: %w", req.TaskID, getErr)
		}
		if existing.State == model.TaskStateCompleted {
			return nil
		}
		switch err := a.store.UpdateToken(ctx, req.TaskID, token); {
		case errors.Is(err, repository.ErrConflict):
			// completed since the lookup above
			return nil
		case err != nil:
			return fmt.Errorf("refresh token of task %s: %w", req.TaskID, err)
		}
		a.logger.Info("task re-delivered, waiting again", "task_id", req.TaskID)
	default:
		return fmt.Errorf("create task %s: %w", req.TaskID, err)
	}
	return activity.ErrResultPending
}

// RetrieveTask loads a task with its element values.
func (a *Activities) RetrieveTask(ctx context.Context, req RetrieveTaskRequest) (RetrieveTaskResponse, error) {
	t, err := a.store.Get(ctx, req.TaskID)
	if err != nil {
		return RetrieveTaskResponse{}, fmt.Errorf("retrieve task %s: %w", req.TaskID, err)
	}
	t.ActivityToken = nil
	return RetrieveTaskResponse{Task: t}, nil
}

// CompleteProcess announces the end of a process and returns the message
// handed back to the engine.
func (a *Activities) CompleteProcess(ctx context.Context, req CompleteProcessRequest) (CompleteProcessResponse, error) {
	msg := fmt.Sprintf("Process %s completed", req.ProcessID)
	a.publish(ctx, queue.Event{Type: queue.EventProcessCompleted, ProcessID: req.ProcessID, Message: msg})
	return CompleteProcessResponse{Message: msg}, nil
}

func (a *Activities) publish(ctx context.Context, ev queue.Event) {
	ev.OccurredAt = a.now().UTC().Format(time.RFC3339)
	if err := a.publisher.Publish(ctx, ev); err != nil {
		a.logger.Warn("publish event failed", "type", ev.Type, "process_id", ev.ProcessID, "error", err)
	}
}
