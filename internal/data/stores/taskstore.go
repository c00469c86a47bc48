package stores

import (
	"context"
	"fmt"

	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/internal/data/db"
)

// TaskStore implements reminder.Store using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ reminder.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Insert(ctx context.Context, owner, description, timeOfDay string) (int64, error) {
	id, err := s.db.Queries().InsertTask(ctx, db.InsertTaskParams{
		Owner:       owner,
		Description: description,
		Time:        timeOfDay,
	})
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

func (s *TaskStore) ListByOwner(ctx context.Context, owner string) ([]reminder.Task, error) {
	rows, err := s.db.Queries().ListTasksByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks for %q: %w", owner, err)
	}
	return toTasks(rows), nil
}

// Update rewrites description and time in place. A missing id is not an error.
func (s *TaskStore) Update(ctx context.Context, id int64, description, timeOfDay string) error {
	err := s.db.Queries().UpdateTask(ctx, db.UpdateTaskParams{
		Description: description,
		Time:        timeOfDay,
		ID:          id,
	})
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return nil
}

// Delete removes a task. A missing id is not an error.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	if err := s.db.Queries().DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (s *TaskStore) ListAll(ctx context.Context) ([]reminder.Task, error) {
	rows, err := s.db.Queries().ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return toTasks(rows), nil
}

// Get returns a single task. Missing ids return an error wrapping sql.ErrNoRows.
func (s *TaskStore) Get(ctx context.Context, id int64) (reminder.Task, error) {
	row, err := s.db.Queries().GetTask(ctx, id)
	if err != nil {
		return reminder.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return toTask(row), nil
}

func toTasks(rows []db.Task) []reminder.Task {
	tasks := make([]reminder.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, toTask(row))
	}
	return tasks
}

func toTask(row db.Task) reminder.Task {
	return reminder.Task{
		ID:          row.ID,
		Owner:       row.Owner,
		Description: row.Description,
		Time:        row.Time,
	}
}
