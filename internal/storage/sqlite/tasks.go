package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planboard/internal/models"
)

const taskColumns = `id, project_id, sprint_id, assigned_user_id, title, description, status, priority,
        start_date, due_date, end_date, locked, completed, created_at, updated_at`

// CreateTask inserts a new task for a project.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return models.Task{}, fmt.Errorf("task title must not be empty")
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if _, ok := models.ValidTaskStatuses[t.Status]; !ok {
		return models.Task{}, fmt.Errorf("invalid task status %q", t.Status)
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	if _, ok := models.ValidTaskPriorities[t.Priority]; !ok {
		return models.Task{}, fmt.Errorf("invalid task priority %q", t.Priority)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(project_id, sprint_id, assigned_user_id, title, description, status, priority, start_date, due_date, end_date, locked, completed)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.SprintID, t.AssignedUserID, strings.TrimSpace(t.Title), strings.TrimSpace(t.Description),
		t.Status, t.Priority, dateArg(t.StartDate), dateArg(t.DueDate), dateArg(t.EndDate),
		t.Locked, t.Status == models.StatusDone)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// GetTask retrieves a task by id with its subtasks attached.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task: %w", ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}

	subtasks, err := s.ListSubtasks(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	t.Subtasks = subtasks
	return t, nil
}

// ListTasks returns all tasks of a project ordered by status and
// creation, each with its subtasks loaded.
func (s *Store) ListTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY status, created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		subtasks, err := s.ListSubtasks(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Subtasks = subtasks
	}
	return tasks, nil
}

// ListSprintTasks returns the tasks attached to one sprint.
func (s *Store) ListSprintTasks(ctx context.Context, sprintID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE sprint_id = ? ORDER BY created_at, id`, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list sprint tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(scan func(...any) error) (models.Task, error) {
	var (
		t                        models.Task
		startRaw, dueRaw, endRaw sql.NullString
	)
	err := scan(&t.ID, &t.ProjectID, &t.SprintID, &t.AssignedUserID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &startRaw, &dueRaw, &endRaw, &t.Locked, &t.Completed,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if t.StartDate, err = scanDate(startRaw); err != nil {
		return models.Task{}, err
	}
	if t.DueDate, err = scanDate(dueRaw); err != nil {
		return models.Task{}, err
	}
	if t.EndDate, err = scanDate(endRaw); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// UpdateTask rewrites the mutable task fields. The completed flag is
// kept in lockstep with the status.
func (s *Store) UpdateTask(ctx context.Context, id int64, t models.Task) (models.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return models.Task{}, fmt.Errorf("task title must not be empty")
	}
	if _, ok := models.ValidTaskStatuses[t.Status]; !ok {
		return models.Task{}, fmt.Errorf("invalid task status %q", t.Status)
	}
	if _, ok := models.ValidTaskPriorities[t.Priority]; !ok {
		return models.Task{}, fmt.Errorf("invalid task priority %q", t.Priority)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
            sprint_id = ?, assigned_user_id = ?, start_date = ?, due_date = ?, end_date = ?, completed = ?
        WHERE id = ?`,
		strings.TrimSpace(t.Title), strings.TrimSpace(t.Description), t.Status, t.Priority,
		t.SprintID, t.AssignedUserID, dateArg(t.StartDate), dateArg(t.DueDate), dateArg(t.EndDate),
		t.Status == models.StatusDone, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

// SetTaskStatus moves a task between board columns.
func (s *Store) SetTaskStatus(ctx context.Context, id int64, status string) (models.Task, error) {
	if _, ok := models.ValidTaskStatuses[status]; !ok {
		return models.Task{}, fmt.Errorf("invalid task status %q", status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ?, completed = ? WHERE id = ?`,
		status, status == models.StatusDone, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("set task status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

// ToggleTaskLock flips the lock flag and returns the new value.
func (s *Store) ToggleTaskLock(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET locked = NOT locked WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("toggle lock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}

	var locked bool
	if err := s.db.QueryRowContext(ctx, `SELECT locked FROM tasks WHERE id = ?`, id).Scan(&locked); err != nil {
		return false, fmt.Errorf("read lock: %w", err)
	}
	return locked, nil
}

// DeleteTask removes a task; its subtasks cascade away with it.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}
