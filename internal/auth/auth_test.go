package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"planboard/internal/models"
)

const (
	ownerID    = int64(1)
	editorID   = int64(2)
	viewerID   = int64(3)
	strangerID = int64(9)
)

func testProject() *models.Project {
	return &models.Project{
		ID:      10,
		OwnerID: ownerID,
		Members: []models.ProjectMember{
			{User: models.User{ID: editorID}, CanEditTasks: true},
			{User: models.User{ID: viewerID}, CanEditTasks: false},
		},
	}
}

func TestIsMember(t *testing.T) {
	p := testProject()

	assert.True(t, IsMember(p, ownerID), "owner counts as member")
	assert.True(t, IsMember(p, editorID))
	assert.True(t, IsMember(p, viewerID))
	assert.False(t, IsMember(p, strangerID))
}

func TestCanEditTasks(t *testing.T) {
	p := testProject()

	assert.True(t, CanEditTasks(p, ownerID), "owner can always edit")
	assert.True(t, CanEditTasks(p, editorID))
	assert.False(t, CanEditTasks(p, viewerID), "member without flag cannot edit")
	assert.False(t, CanEditTasks(p, strangerID), "non-member can never edit")
}

func TestCanEditTasksNoMembers(t *testing.T) {
	p := &models.Project{ID: 11, OwnerID: ownerID}

	assert.True(t, CanEditTasks(p, ownerID))
	assert.False(t, CanEditTasks(p, editorID))
}

func TestCanModifyTaskUnlocked(t *testing.T) {
	p := testProject()
	task := &models.Task{ID: 100, ProjectID: p.ID}

	assert.True(t, CanModifyTask(task, p, ownerID))
	assert.True(t, CanModifyTask(task, p, editorID))
	assert.False(t, CanModifyTask(task, p, viewerID))
	assert.False(t, CanModifyTask(task, p, strangerID))
}

func TestCanModifyTaskLocked(t *testing.T) {
	p := testProject()
	task := &models.Task{ID: 100, ProjectID: p.ID, Locked: true}

	assert.True(t, CanModifyTask(task, p, ownerID), "owner bypasses the lock")
	assert.False(t, CanModifyTask(task, p, editorID), "lock beats edit permission")
	assert.False(t, CanModifyTask(task, p, viewerID))
	assert.False(t, CanModifyTask(task, p, strangerID))
}
