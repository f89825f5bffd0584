package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// ActivityCompleter resumes a pending activity.  client.Client from the
// Temporal SDK satisfies it.
type ActivityCompleter interface {
	CompleteActivity(ctx context.Context, taskToken []byte, result interface{}, err error) error
}

// Service is used by the task API to inspect and complete tasks.
type Service struct {
	store     Store
	completer ActivityCompleter
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService returns a Service.  A nil publisher drops events.
func NewService(store Store, completer ActivityCompleter, publisher Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		completer: completer,
		publisher: publisher,
		logger:    logger.With("component", "tasks"),
		now:       time.Now,
	}
}

// Get returns one task.
func (s *Service) Get(ctx context.Context, id string) (model.Task, error) {
	return s.store.Get(ctx, id)
}

// List returns tasks matching the filter.
func (s *Service) List(ctx context.Context, f repository.TaskFilter) ([]model.Task, error) {
	return s.store.List(ctx, f)
}

// Complete merges the submitted values, marks the task COMPLETED and
// resumes the activity waiting on it.  If the engine cannot be reached the
// task stays completed; the activity times out, is retried and then finds
// the completed task.
func (s *Service) Complete(ctx context.Context, id string, values map[string]string) (model.Task, error) {
	t, err := s.store.Complete(ctx, id, values, s.now())
	if err != nil {
		return model.Task{}, err
	}
	if len(t.ActivityToken) > 0 {
		if err := s.completer.CompleteActivity(ctx, t.ActivityToken, nil, nil); err != nil {
			s.logger.Warn("resume waiting activity failed", "task_id", t.ID, "error", err)
		}
	}
	s.logger.Info("task completed", "task_id", t.ID, "process_id", t.ProcessID, "code", t.DefinitionCode)
	ev := queue.Event{
		Type:           queue.EventTaskCompleted,
		ProcessID:      t.ProcessID,
		TaskID:         t.ID,
		DefinitionCode: t.DefinitionCode,
		ElementValues:  t.ElementValues,
		OccurredAt:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish event failed", "type", ev.Type, "error", err)
	}
	t.ActivityToken = nil
	return t, nil
}
