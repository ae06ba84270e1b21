package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdesk/internal/apierr"
	"taskdesk/internal/models"
	"taskdesk/internal/query"
)

const taskColumns = "id, user_id, title, description, is_complete, date, priority, created_at, updated_at"

// TaskFields are the client-mutable attributes of a task. The completion
// flag is only honored on update; create always persists false.
type TaskFields struct {
	Title       string
	Description *string
	IsComplete  bool
	Date        *time.Time
	Priority    int
}

// TaskRepository persists tasks. Every operation takes the owner's user id
// and folds it into the WHERE clause, so a task owned by someone else is
// indistinguishable from a missing one.
type TaskRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTaskRepository(db *sql.DB, timeout time.Duration) *TaskRepository {
	return &TaskRepository{db: db, timeout: timeout}
}

func (r *TaskRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// storage maps unexpected database failures (timeouts, lost connections) to
// the transient storage-unavailable kind.
func storage(err error) error {
	return apierr.StorageUnavailable(err)
}

func validateSchedule(date *time.Time) error {
	if date != nil && !date.After(time.Now()) {
		return apierr.InvalidSchedule()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.IsComplete, &task.Date, &task.Priority, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Create persists a new task for ownerID. The completion flag is forced to
// false regardless of what the client sent.
func (r *TaskRepository) Create(ctx context.Context, ownerID int, fields TaskFields) (*models.Task, error) {
	if err := validateSchedule(fields.Date); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		"INSERT INTO tasks (user_id, title, description, is_complete, date, priority) VALUES ($1, $2, $3, FALSE, $4, $5) RETURNING "+taskColumns,
		ownerID, fields.Title, fields.Description, fields.Date, fields.Priority)
	task, err := scanTask(row)
	if err != nil {
		return nil, storage(err)
	}
	return task, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, ownerID, taskID int) (*models.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND user_id = $2",
		taskID, ownerID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("Task")
	}
	if err != nil {
		return nil, storage(err)
	}
	return task, nil
}

// List executes a validated query spec for ownerID. The owner filter is
// always present, and id ASC is appended as a tie-break so pagination stays
// stable when sort key values collide.
func (r *TaskRepository) List(ctx context.Context, ownerID int, spec query.Spec) ([]models.Task, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + taskColumns + " FROM tasks WHERE user_id = $1")
	args := []interface{}{ownerID}

	if spec.Title != nil {
		args = append(args, "%"+*spec.Title+"%")
		fmt.Fprintf(&sb, " AND title ILIKE $%d", len(args))
	}
	if spec.IsComplete != nil {
		args = append(args, *spec.IsComplete)
		fmt.Fprintf(&sb, " AND is_complete = $%d", len(args))
	}

	// spec.SortColumn comes from the builder's allow-list, never from the
	// client.
	direction := "ASC"
	if spec.Descending {
		direction = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", spec.SortColumn, direction)
	if spec.SortColumn != "id" {
		sb.WriteString(", id ASC")
	}

	args = append(args, spec.Limit, spec.Skip)
	fmt.Fprintf(&sb, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, storage(err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, storage(err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, storage(err)
	}
	return tasks, nil
}

// Update replaces every mutable field. The existence check and the write
// run in one transaction with the row locked, so concurrent updates to the
// same task serialize.
func (r *TaskRepository) Update(ctx context.Context, ownerID, taskID int, fields TaskFields) (*models.Task, error) {
	if err := validateSchedule(fields.Date); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storage(err)
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE",
		taskID, ownerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("Task")
	}
	if err != nil {
		return nil, storage(err)
	}

	row := tx.QueryRowContext(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, is_complete = $3, date = $4,
		     priority = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6 AND user_id = $7
		 RETURNING `+taskColumns,
		fields.Title, fields.Description, fields.IsComplete, fields.Date,
		fields.Priority, taskID, ownerID)
	task, err := scanTask(row)
	if err != nil {
		return nil, storage(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storage(err)
	}
	return task, nil
}

// Delete removes the task permanently. A single statement keeps the
// existence check and the removal atomic.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID int) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2",
		taskID, ownerID)
	if err != nil {
		return storage(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage(err)
	}
	if affected == 0 {
		return apierr.NotFound("Task")
	}
	return nil
}
