package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planboard/internal/models"
	"planboard/internal/sprint"
)

// ListSprints returns a project's sprints ordered by start date.
func (s *Store) ListSprints(ctx context.Context, projectID int64) ([]models.Sprint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, project_id, name, start_date, end_date, description, created_at
        FROM sprints WHERE project_id = ? ORDER BY start_date, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	defer rows.Close()

	var sprints []models.Sprint
	for rows.Next() {
		var sp models.Sprint
		if err := rows.Scan(&sp.ID, &sp.ProjectID, &sp.Name, &sp.StartDate, &sp.EndDate,
			&sp.Description, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sprint: %w", err)
		}
		sprints = append(sprints, sp)
	}
	return sprints, rows.Err()
}

// GetSprint fetches a single sprint by id.
func (s *Store) GetSprint(ctx context.Context, id int64) (models.Sprint, error) {
	var sp models.Sprint
	err := s.db.QueryRowContext(ctx, `SELECT id, project_id, name, start_date, end_date, description, created_at
        FROM sprints WHERE id = ?`, id).
		Scan(&sp.ID, &sp.ProjectID, &sp.Name, &sp.StartDate, &sp.EndDate, &sp.Description, &sp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sprint{}, fmt.Errorf("sprint: %w", ErrNotFound)
	}
	if err != nil {
		return models.Sprint{}, fmt.Errorf("get sprint: %w", err)
	}
	return sp, nil
}

// UpdateSprint renames a sprint and replaces its description.
func (s *Store) UpdateSprint(ctx context.Context, id int64, name, description string) (models.Sprint, error) {
	if strings.TrimSpace(name) == "" {
		return models.Sprint{}, fmt.Errorf("sprint name must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `UPDATE sprints SET name = ?, description = ? WHERE id = ?`,
		strings.TrimSpace(name), strings.TrimSpace(description), id)
	if err != nil {
		return models.Sprint{}, fmt.Errorf("update sprint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Sprint{}, err
	}
	if affected == 0 {
		return models.Sprint{}, fmt.Errorf("sprint %d: %w", id, ErrNotFound)
	}
	return s.GetSprint(ctx, id)
}

// RegenerateSprints atomically replaces a project's sprint plan: tasks
// are detached from their sprints, the old sprints deleted and the new
// spans inserted. Either all of it applies or none.
func (s *Store) RegenerateSprints(ctx context.Context, projectID int64, spans []sprint.Span) ([]models.Sprint, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin regenerate: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET sprint_id = NULL WHERE project_id = ?`, projectID); err != nil {
		return nil, fmt.Errorf("detach tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sprints WHERE project_id = ?`, projectID); err != nil {
		return nil, fmt.Errorf("delete sprints: %w", err)
	}

	for _, span := range spans {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sprints(project_id, name, start_date, end_date) VALUES(?, ?, ?, ?)`,
			projectID, span.Name, span.Start.String(), span.End.String()); err != nil {
			return nil, fmt.Errorf("insert sprint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit regenerate: %w", err)
	}
	return s.ListSprints(ctx, projectID)
}
