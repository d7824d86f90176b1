package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planboard/internal/models"
)

// ProjectSummary is a dashboard row: the project plus task counters.
type ProjectSummary struct {
	models.Project
	TaskCount int64 `json:"task_count"`
	DoneCount int64 `json:"done_count"`
}

// CreateProject persists a new project owned by p.OwnerID.
func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return models.Project{}, fmt.Errorf("project name must not be empty")
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if _, ok := models.ValidProjectStatuses[p.Status]; !ok {
		return models.Project{}, fmt.Errorf("invalid project status %q", p.Status)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO projects(owner_id, name, description, start_date, end_date, sprint_length_days, status)
        VALUES(?, ?, ?, ?, ?, ?, ?)`,
		p.OwnerID, strings.TrimSpace(p.Name), strings.TrimSpace(p.Description),
		dateArg(p.StartDate), dateArg(p.EndDate), p.SprintLengthDays, p.Status)
	if err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Project{}, fmt.Errorf("project id: %w", err)
	}
	return s.GetProject(ctx, id)
}

// GetProject fetches a project by id together with its member list and
// their permissions.
func (s *Store) GetProject(ctx context.Context, id int64) (models.Project, error) {
	p, err := s.scanProjectRow(s.db.QueryRowContext(ctx, `SELECT id, owner_id, name, description, start_date, end_date, sprint_length_days, status, created_at, updated_at
        FROM projects WHERE id = ?`, id))
	if err != nil {
		return models.Project{}, err
	}

	members, err := s.listMembers(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	p.Members = members
	return p, nil
}

func (s *Store) scanProjectRow(row *sql.Row) (models.Project, error) {
	var (
		p                models.Project
		startRaw, endRaw sql.NullString
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &startRaw, &endRaw,
		&p.SprintLengthDays, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("project: %w", ErrNotFound)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	if p.StartDate, err = scanDate(startRaw); err != nil {
		return models.Project{}, err
	}
	if p.EndDate, err = scanDate(endRaw); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// UpdateProject rewrites the mutable project fields.
func (s *Store) UpdateProject(ctx context.Context, id int64, p models.Project) (models.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return models.Project{}, fmt.Errorf("project name must not be empty")
	}
	if _, ok := models.ValidProjectStatuses[p.Status]; !ok {
		return models.Project{}, fmt.Errorf("invalid project status %q", p.Status)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ?, sprint_length_days = ?, status = ? WHERE id = ?`,
		strings.TrimSpace(p.Name), strings.TrimSpace(p.Description),
		dateArg(p.StartDate), dateArg(p.EndDate), p.SprintLengthDays, p.Status, id)
	if err != nil {
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Project{}, err
	}
	if affected == 0 {
		return models.Project{}, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project; tasks, sprints, memberships and
// permissions cascade away with it.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListProjectsForUser returns every project the user owns or is a
// member of, newest first, with task counters for the dashboard.
func (s *Store) ListProjectsForUser(ctx context.Context, userID int64) ([]ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.id, p.owner_id, p.name, p.description, p.start_date, p.end_date, p.sprint_length_days, p.status, p.created_at, p.updated_at,
            COUNT(t.id), COALESCE(SUM(CASE WHEN t.status = 'done' THEN 1 ELSE 0 END), 0)
        FROM projects p
        LEFT JOIN tasks t ON t.project_id = p.id
        WHERE p.owner_id = ? OR p.id IN (SELECT project_id FROM project_members WHERE user_id = ?)
        GROUP BY p.id
        ORDER BY p.created_at DESC, p.id DESC`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var summaries []ProjectSummary
	for rows.Next() {
		var (
			ps               ProjectSummary
			startRaw, endRaw sql.NullString
		)
		if err := rows.Scan(&ps.ID, &ps.OwnerID, &ps.Name, &ps.Description, &startRaw, &endRaw,
			&ps.SprintLengthDays, &ps.Status, &ps.CreatedAt, &ps.UpdatedAt,
			&ps.TaskCount, &ps.DoneCount); err != nil {
			return nil, fmt.Errorf("scan project summary: %w", err)
		}
		if ps.StartDate, err = scanDate(startRaw); err != nil {
			return nil, err
		}
		if ps.EndDate, err = scanDate(endRaw); err != nil {
			return nil, err
		}
		summaries = append(summaries, ps)
	}
	return summaries, rows.Err()
}
