package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// Store persists tasks.  repository.TaskRepo (MySQL) and MemoryStore
// implement it; both report repository.ErrTaskNotFound and
// repository.ErrConflict.
type Store interface {
	Create(ctx context.Context, t model.Task) error
	UpdateToken(ctx context.Context, id string, token []byte) error
	Get(ctx context.Context, id string) (model.Task, error)
	Complete(ctx context.Context, id string, values map[string]string, at time.Time) (model.Task, error)
	List(ctx context.Context, f repository.TaskFilter) ([]model.Task, error)
}

var _ Store = (*repository.TaskRepo)(nil)

// MemoryStore keeps tasks in process memory.  It backs TASK_STORE=memory
// and the tests; tasks do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]model.Task
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]model.Task)}
}

func (s *MemoryStore) Create(_ context.Context, t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; ok {
		return repository.ErrConflict
	}
	s.tasks[t.ID] = t.Clone()
	return nil
}

func (s *MemoryStore) UpdateToken(_ context.Context, id string, token []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return repository.ErrTaskNotFound
	}
	if t.State != model.TaskStateReady {
		return repository.ErrConflict
	}
	t.ActivityToken = append([]byte(nil), token...)
	s.tasks[id] = t
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, repository.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryStore) Complete(_ context.Context, id string, values map[string]string, at time.Time) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, repository.ErrTaskNotFound
	}
	if t.State == model.TaskStateCompleted {
		return model.Task{}, repository.ErrConflict
	}
	t = t.Clone()
	if t.ElementValues == nil {
		t.ElementValues = make(map[string]string, len(values))
	}
	for k, v := range values {
		t.ElementValues[k] = v
	}
	done := at.UTC()
	t.State = model.TaskStateCompleted
	t.CompletedAt = &done
	s.tasks[id] = t
	return t.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, f repository.TaskFilter) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Task{}
	for _, t := range s.tasks {
		if f.ProcessID != "" && t.ProcessID != f.ProcessID {
			continue
		}
		if f.State != "" && t.State != f.State {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
