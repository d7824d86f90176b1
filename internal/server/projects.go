package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard/internal/auth"
	"planboard/internal/models"
)

type projectRequest struct {
	Name             string       `json:"name" binding:"required,max=200"`
	Description      string       `json:"description"`
	StartDate        *models.Date `json:"start_date"`
	EndDate          *models.Date `json:"end_date"`
	SprintLengthDays int          `json:"sprint_length_days" binding:"omitempty,min=1"`
	Status           string       `json:"status"`
}

// loadProject fetches the project from the path id, answering 404 when
// it does not exist.
func (s *Server) loadProject(c *gin.Context) (models.Project, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return models.Project{}, false
	}
	project, err := s.store.GetProject(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return models.Project{}, false
	}
	return project, true
}

// memberProject loads the project and rejects callers who are neither
// owner nor member.
func (s *Server) memberProject(c *gin.Context) (models.Project, bool) {
	project, ok := s.loadProject(c)
	if !ok {
		return models.Project{}, false
	}
	if !auth.IsMember(&project, currentUser(c).ID) {
		respondDenied(c)
		return models.Project{}, false
	}
	return project, true
}

// ownedProject loads the project and rejects everyone but the owner.
func (s *Server) ownedProject(c *gin.Context) (models.Project, bool) {
	project, ok := s.loadProject(c)
	if !ok {
		return models.Project{}, false
	}
	if project.OwnerID != currentUser(c).ID {
		respondDenied(c)
		return models.Project{}, false
	}
	return project, true
}

// handleDashboard lists the caller's projects with task counters.
func (s *Server) handleDashboard(c *gin.Context) {
	summaries, err := s.store.ListProjectsForUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": summaries})
}

// handleCreateProject creates a project owned by the caller.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req projectRequest
	if !s.bind(c, &req) {
		return
	}
	if req.Status == "" {
		req.Status = "active"
	}
	if _, ok := models.ValidProjectStatuses[req.Status]; !ok {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid project status %q", req.Status))
		return
	}

	project, err := s.store.CreateProject(c.Request.Context(), models.Project{
		OwnerID:          currentUser(c).ID,
		Name:             req.Name,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		SprintLengthDays: req.SprintLengthDays,
		Status:           req.Status,
	})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// handleGetProject returns the project detail: tasks with completion,
// members, sprints and status counters.
func (s *Server) handleGetProject(c *gin.Context) {
	project, ok := s.memberProject(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	tasks, err := s.store.ListTasks(ctx, project.ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	sprints, err := s.store.ListSprints(ctx, project.ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	stats := gin.H{"total": len(tasks), "todo": 0, "in_progress": 0, "done": 0}
	taskViews := make([]gin.H, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		// Statuses outside the enum can only come from manual edits;
		// count them in the total but not in a bucket.
		if n, counted := stats[t.Status].(int); counted {
			stats[t.Status] = n + 1
		}
		taskViews = append(taskViews, gin.H{
			"task":                  t,
			"completion_percentage": t.CompletionPercentage(),
		})
	}

	userID := currentUser(c).ID
	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"tasks":   taskViews,
		"sprints": sprints,
		"stats":   stats,
		"caller": gin.H{
			"is_owner":       project.OwnerID == userID,
			"can_edit_tasks": auth.CanEditTasks(&project, userID),
		},
	})
}

// handleUpdateProject rewrites the project settings, owner only.
func (s *Server) handleUpdateProject(c *gin.Context) {
	project, ok := s.ownedProject(c)
	if !ok {
		return
	}

	var req projectRequest
	if !s.bind(c, &req) {
		return
	}
	if req.Status == "" {
		req.Status = project.Status
	}
	if _, ok := models.ValidProjectStatuses[req.Status]; !ok {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid project status %q", req.Status))
		return
	}

	updated, err := s.store.UpdateProject(c.Request.Context(), project.ID, models.Project{
		Name:             req.Name,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		SprintLengthDays: req.SprintLengthDays,
		Status:           req.Status,
	})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": updated})
}

// handleDeleteProject removes the project and everything under it,
// owner only.
func (s *Server) handleDeleteProject(c *gin.Context) {
	project, ok := s.ownedProject(c)
	if !ok {
		return
	}
	if err := s.store.DeleteProject(c.Request.Context(), project.ID); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
