package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planboard/internal/models"
)

// CreateSubtask appends a checklist item to a task.
func (s *Store) CreateSubtask(ctx context.Context, taskID int64, title string) (models.Subtask, error) {
	if strings.TrimSpace(title) == "" {
		return models.Subtask{}, fmt.Errorf("subtask title must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO subtasks(task_id, title) VALUES(?, ?)`,
		taskID, strings.TrimSpace(title))
	if err != nil {
		return models.Subtask{}, fmt.Errorf("insert subtask: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Subtask{}, fmt.Errorf("subtask id: %w", err)
	}
	return s.GetSubtask(ctx, id)
}

// GetSubtask fetches a single subtask by id.
func (s *Store) GetSubtask(ctx context.Context, id int64) (models.Subtask, error) {
	var st models.Subtask
	err := s.db.QueryRowContext(ctx, `SELECT id, task_id, title, completed, created_at FROM subtasks WHERE id = ?`, id).
		Scan(&st.ID, &st.TaskID, &st.Title, &st.Completed, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subtask{}, fmt.Errorf("subtask: %w", ErrNotFound)
	}
	if err != nil {
		return models.Subtask{}, fmt.Errorf("get subtask: %w", err)
	}
	return st, nil
}

// ListSubtasks returns a task's subtasks in creation order.
func (s *Store) ListSubtasks(ctx context.Context, taskID int64) ([]models.Subtask, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, task_id, title, completed, created_at FROM subtasks WHERE task_id = ? ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []models.Subtask
	for rows.Next() {
		var st models.Subtask
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.Completed, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}

// ToggleSubtask flips the completed flag and returns the updated row.
func (s *Store) ToggleSubtask(ctx context.Context, id int64) (models.Subtask, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE subtasks SET completed = NOT completed WHERE id = ?`, id)
	if err != nil {
		return models.Subtask{}, fmt.Errorf("toggle subtask: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Subtask{}, err
	}
	if affected == 0 {
		return models.Subtask{}, fmt.Errorf("subtask %d: %w", id, ErrNotFound)
	}
	return s.GetSubtask(ctx, id)
}

// DeleteSubtask removes a checklist item.
func (s *Store) DeleteSubtask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("subtask %d: %w", id, ErrNotFound)
	}
	return nil
}
