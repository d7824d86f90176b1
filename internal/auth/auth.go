// Package auth holds the access decisions for projects and tasks. The
// functions are pure: they look only at the entities passed in and
// never touch the store, so every write path can be gated through one
// auditable place.
package auth

import "planboard/internal/models"

// IsMember reports whether the user may see the project: either as its
// owner or as an invited member.
func IsMember(p *models.Project, userID int64) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.User.ID == userID {
			return true
		}
	}
	return false
}

// CanEditTasks reports whether the user may create, edit or assign
// tasks in the project. The owner always can; members need their
// permission flag set; everyone else cannot.
func CanEditTasks(p *models.Project, userID int64) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.User.ID == userID {
			return m.CanEditTasks
		}
	}
	return false
}

// CanModifyTask reports whether the user may change the given task.
// The project owner bypasses the lock; a locked task is immutable for
// everyone else regardless of their permissions.
func CanModifyTask(t *models.Task, p *models.Project, userID int64) bool {
	if p.OwnerID == userID {
		return true
	}
	if t.Locked {
		return false
	}
	return CanEditTasks(p, userID)
}
