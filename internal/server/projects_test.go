package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectVisibility(t *testing.T) {
	owner := newTestClient(t)
	owner.signup("alice")
	projectID := owner.createProject(gin.H{"name": "Website"})

	member := owner.fork()
	memberID := member.signup("bob")
	stranger := owner.fork()
	stranger.signup("carol")

	owner.addMember(projectID, memberID, false)

	path := fmt.Sprintf("/api/projects/%d", projectID)
	assert.Equal(t, http.StatusOK, owner.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusOK, member.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusForbidden, stranger.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, owner.do(http.MethodGet, "/api/projects/999", nil).Code)
}

func TestProjectDetailPayload(t *testing.T) {
	owner := newTestClient(t)
	owner.signup("alice")
	projectID := owner.createProject(gin.H{
		"name":               "Website",
		"start_date":         "2025-01-01",
		"end_date":           "2025-01-10",
		"sprint_length_days": 7,
	})
	owner.createTask(projectID, gin.H{"title": "design", "status": "done"})
	owner.createTask(projectID, gin.H{"title": "build"})

	rec := owner.do(http.MethodGet, fmt.Sprintf("/api/projects/%d", projectID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := owner.decode(rec)

	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 2, stats["total"])
	assert.EqualValues(t, 1, stats["done"])
	assert.EqualValues(t, 1, stats["todo"])

	caller := body["caller"].(map[string]any)
	assert.Equal(t, true, caller["is_owner"])
	assert.Equal(t, true, caller["can_edit_tasks"])

	project := body["project"].(map[string]any)
	assert.Equal(t, "2025-01-01", project["start_date"])
}

// A status outside the enum can only exist through manual edits; the
// detail view must still answer instead of panicking on it.
func TestProjectDetailToleratesUnknownStatus(t *testing.T) {
	owner := newTestClient(t)
	owner.signup("alice")
	projectID := owner.createProject(gin.H{"name": "Website"})
	owner.createTask(projectID, gin.H{"title": "design", "status": "done"})
	taskID := owner.createTask(projectID, gin.H{"title": "build"})
	owner.execSQL(`UPDATE tasks SET status = 'blocked' WHERE id = ?`, taskID)

	rec := owner.do(http.MethodGet, fmt.Sprintf("/api/projects/%d", projectID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stats := owner.decode(rec)["stats"].(map[string]any)
	assert.EqualValues(t, 2, stats["total"])
	assert.EqualValues(t, 1, stats["done"])
	assert.EqualValues(t, 0, stats["todo"])
}

func TestUpdateProjectOwnerOnly(t *testing.T) {
	owner := newTestClient(t)
	owner.signup("alice")
	projectID := owner.createProject(gin.H{"name": "Website"})

	member := owner.fork()
	memberID := member.signup("bob")
	owner.addMember(projectID, memberID, true)

	path := fmt.Sprintf("/api/projects/%d", projectID)
	update := gin.H{"name": "Renamed", "status": "archived"}

	rec := member.do(http.MethodPut, path, update)
	assert.Equal(t, http.StatusForbidden, rec.Code, "edit permission does not cover project settings")

	rec = owner.do(http.MethodPut, path, update)
	require.Equal(t, http.StatusOK, rec.Code)
	project := owner.decode(rec)["project"].(map[string]any)
	assert.Equal(t, "Renamed", project["name"])
	assert.Equal(t, "archived", project["status"])

	rec = owner.do(http.MethodPut, path, gin.H{"name": "x", "status": "paused"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProjectOwnerOnly(t *testing.T) {
	owner := newTestClient(t)
	owner.signup("alice")
	projectID := owner.createProject(gin.H{"name": "Website"})

	member := owner.fork()
	memberID := member.signup("bob")
	owner.addMember(projectID, memberID, true)

	path := fmt.Sprintf("/api/projects/%d", projectID)
	assert.Equal(t, http.StatusForbidden, member.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusOK, owner.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, owner.do(http.MethodGet, path, nil).Code)
}

func TestDashboardListsOwnedAndMemberProjects(t *testing.T) {
	alice := newTestClient(t)
	aliceID := alice.signup("alice")
	bob := alice.fork()
	bob.signup("bob")

	alice.createProject(gin.H{"name": "Owned"})
	sharedID := bob.createProject(gin.H{"name": "Shared"})
	bob.createProject(gin.H{"name": "Private"})
	bob.addMember(sharedID, aliceID, false)

	rec := alice.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := alice.decode(rec)["projects"].([]any)
	require.Len(t, projects, 2)

	names := map[string]bool{}
	for _, p := range projects {
		names[p.(map[string]any)["name"].(string)] = true
	}
	assert.True(t, names["Owned"])
	assert.True(t, names["Shared"])
}

func TestSearchUsers(t *testing.T) {
	tc := newTestClient(t)
	tc.signup("alice")
	tc.fork().signup("alicia")
	tc.fork().signup("bob")

	rec := tc.do(http.MethodGet, "/api/search-users?q=ali", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Contains(t, results[0], "id")
	assert.Contains(t, results[0], "username")
	assert.Contains(t, results[0], "email")
	assert.NotContains(t, results[0], "password_hash")

	rec = tc.do(http.MethodGet, "/api/search-users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}
