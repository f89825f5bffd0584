package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// TaskFilter narrows List results.  Empty fields match everything.
type TaskFilter struct {
	ProcessID string
	State     string
}

// TaskRepo persists tasks in the MySQL tasks table.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo returns a new TaskRepo bound to the provided database.
func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

// Create inserts a new task.  A duplicate id yields ErrConflict.
func (r *TaskRepo) Create(ctx context.Context, t model.Task) error {
	values, err := encodeValues(t.ElementValues)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, process_id, definition_code, state, element_values, activity_token, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProcessID, t.DefinitionCode, t.State, values, t.ActivityToken, t.CreatedAt.UTC())
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrConflict
	}
	return err
}

// UpdateToken replaces the activity token of a READY task.  It is used when
// the engine re-delivers the activity that created the task.  A task that
// is already COMPLETED is left alone and ErrConflict is returned.
func (r *TaskRepo) UpdateToken(ctx context.Context, id string, token []byte) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET activity_token = ? WHERE id = ? AND state = ?`,
		token, id, model.TaskStateReady)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// MySQL reports 0 rows for an unchanged value too, so look at the row.
	var state string
	err = r.db.QueryRowContext(ctx, `SELECT state FROM tasks WHERE id = ?`, id).Scan(&state)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrTaskNotFound
	case err != nil:
		return err
	case state != model.TaskStateReady:
		return ErrConflict
	}
	return nil
}

// Get loads a task by id.
func (r *TaskRepo) Get(ctx context.Context, id string) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, selectTask+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrTaskNotFound
	}
	return t, err
}

// Complete merges the submitted element values into the task and marks it
// COMPLETED inside one transaction.  Completing a task twice yields
// ErrConflict.  The updated task is returned.
func (r *TaskRepo) Complete(ctx context.Context, id string, values map[string]string, at time.Time) (model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := scanTask(tx.QueryRowContext(ctx, selectTask+` WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return model.Task{}, err
	}
	if t.State == model.TaskStateCompleted {
		return model.Task{}, ErrConflict
	}

	if t.ElementValues == nil {
		t.ElementValues = make(map[string]string, len(values))
	}
	for k, v := range values {
		t.ElementValues[k] = v
	}
	encoded, err := encodeValues(t.ElementValues)
	if err != nil {
		return model.Task{}, err
	}
	completedAt := at.UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET state = ?, element_values = ?, completed_at = ? WHERE id = ?`,
		model.TaskStateCompleted, encoded, completedAt, id); err != nil {
		return model.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}
	committed = true

	t.State = model.TaskStateCompleted
	t.CompletedAt = &completedAt
	return t, nil
}

// List returns tasks matching the filter, oldest first.
func (r *TaskRepo) List(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.ProcessID != "" {
		where = append(where, "process_id = ?")
		args = append(args, f.ProcessID)
	}
	if f.State != "" {
		where = append(where, "state = ?")
		args = append(args, f.State)
	}
	q := selectTask
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

const selectTask = `SELECT id, process_id, definition_code, state, element_values, activity_token, created_at, completed_at FROM tasks`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(s rowScanner) (model.Task, error) {
	var (
		t           model.Task
		values      []byte
		completedAt sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.ProcessID, &t.DefinitionCode, &t.State, &values, &t.ActivityToken, &t.CreatedAt, &completedAt); err != nil {
		return model.Task{}, err
	}
	if len(values) > 0 {
		if err := json.Unmarshal(values, &t.ElementValues); err != nil {
			return model.Task{}, fmt.Errorf("decode element values of task %s: %w", t.ID, err)
		}
	}
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	return t, nil
}

func encodeValues(values map[string]string) ([]byte, error) {
	if values == nil {
		values = map[string]string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode element values: %w", err)
	}
	return b, nil
}
