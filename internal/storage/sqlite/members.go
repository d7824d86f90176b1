package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"planboard/internal/models"
)

// listMembers loads a project's members joined with their permission
// rows, ordered by join time (rowid).
func (s *Store) listMembers(ctx context.Context, projectID int64) ([]models.ProjectMember, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT u.id, u.username, u.email, u.password_hash, u.created_at,
            COALESCE(mp.can_edit_tasks, 0)
        FROM project_members pm
        JOIN users u ON u.id = pm.user_id
        LEFT JOIN member_permissions mp ON mp.project_id = pm.project_id AND mp.user_id = pm.user_id
        WHERE pm.project_id = ?
        ORDER BY pm.rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []models.ProjectMember
	for rows.Next() {
		var m models.ProjectMember
		if err := rows.Scan(&m.User.ID, &m.User.Username, &m.User.Email, &m.User.PasswordHash,
			&m.User.CreatedAt, &m.CanEditTasks); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddMember invites a user into a project and seeds their permission
// row with editing disabled. The owner cannot be added; re-adding an
// existing member yields ErrConflict.
func (s *Store) AddMember(ctx context.Context, projectID, userID int64) error {
	var ownerID int64
	if err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM projects WHERE id = ?`, projectID).Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return fmt.Errorf("look up project owner: %w", err)
	}
	if ownerID == userID {
		return fmt.Errorf("owner cannot be added as a member")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add member: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO project_members(project_id, user_id) VALUES(?, ?)`, projectID, userID)
	if isUniqueViolation(err) {
		return fmt.Errorf("member: %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}

	// A fresh permission row, never the one from a prior membership.
	if _, err := tx.ExecContext(ctx, `INSERT INTO member_permissions(project_id, user_id, can_edit_tasks) VALUES(?, ?, 0)`,
		projectID, userID); err != nil {
		return fmt.Errorf("insert permission: %w", err)
	}

	return tx.Commit()
}

// RemoveMember drops a user from a project along with their permission
// row.
func (s *Store) RemoveMember(ctx context.Context, projectID, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove member: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("member: %w", ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM member_permissions WHERE project_id = ? AND user_id = ?`, projectID, userID); err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}

	return tx.Commit()
}

// SetMemberPermission flips the task-editing flag for a member.
func (s *Store) SetMemberPermission(ctx context.Context, projectID, userID int64, canEdit bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE member_permissions SET can_edit_tasks = ? WHERE project_id = ? AND user_id = ?`,
		canEdit, projectID, userID)
	if err != nil {
		return fmt.Errorf("set permission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("permission: %w", ErrNotFound)
	}
	return nil
}
