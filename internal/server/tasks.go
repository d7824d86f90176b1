package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard/internal/auth"
	"planboard/internal/models"
	"planboard/internal/storage/sqlite"
)

type taskRequest struct {
	Title          string       `json:"title" binding:"required,max=200"`
	Description    string       `json:"description"`
	Status         string       `json:"status"`
	Priority       string       `json:"priority"`
	StartDate      *models.Date `json:"start_date"`
	DueDate        *models.Date `json:"due_date"`
	EndDate        *models.Date `json:"end_date"`
	AssignedUserID *int64       `json:"assigned_user_id"`
	SprintID       *int64       `json:"sprint_id"`
}

// loadTask fetches the task and its project from the path id. The
// caller must at least see the project.
func (s *Server) loadTask(c *gin.Context) (models.Task, models.Project, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return models.Task{}, models.Project{}, false
	}
	task, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return models.Task{}, models.Project{}, false
	}
	project, err := s.store.GetProject(c.Request.Context(), task.ProjectID)
	if err != nil {
		s.respondStoreError(c, err)
		return models.Task{}, models.Project{}, false
	}
	if !auth.IsMember(&project, currentUser(c).ID) {
		respondDenied(c)
		return models.Task{}, models.Project{}, false
	}
	return task, project, true
}

// checkTaskReferences validates that an assignee belongs to the project
// and a sprint reference stays inside it.
func (s *Server) checkTaskReferences(c *gin.Context, project *models.Project, req *taskRequest) bool {
	if req.AssignedUserID != nil && !auth.IsMember(project, *req.AssignedUserID) {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("assignee is not a project member"))
		return false
	}
	if req.SprintID != nil {
		sprint, err := s.store.GetSprint(c.Request.Context(), *req.SprintID)
		switch {
		case errors.Is(err, sqlite.ErrNotFound):
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("sprint does not belong to this project"))
			return false
		case err != nil:
			s.respondError(c, http.StatusInternalServerError, err)
			return false
		case sprint.ProjectID != project.ID:
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("sprint does not belong to this project"))
			return false
		}
	}
	return true
}

func (s *Server) validTaskEnums(c *gin.Context, status, priority string) bool {
	if status != "" {
		if _, ok := models.ValidTaskStatuses[status]; !ok {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid status %q", status))
			return false
		}
	}
	if priority != "" {
		if _, ok := models.ValidTaskPriorities[priority]; !ok {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid priority %q", priority))
			return false
		}
	}
	return true
}

// handleCreateTask adds a task to a project; the caller needs task
// editing rights there.
func (s *Server) handleCreateTask(c *gin.Context) {
	project, ok := s.memberProject(c)
	if !ok {
		return
	}
	if !auth.CanEditTasks(&project, currentUser(c).ID) {
		respondDenied(c)
		return
	}

	var req taskRequest
	if !s.bind(c, &req) {
		return
	}
	if !s.validTaskEnums(c, req.Status, req.Priority) {
		return
	}
	if !s.checkTaskReferences(c, &project, &req) {
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), models.Task{
		ProjectID:      project.ID,
		SprintID:       req.SprintID,
		AssignedUserID: req.AssignedUserID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// handleGetTask returns one task with its subtasks and completion.
func (s *Server) handleGetTask(c *gin.Context) {
	task, project, ok := s.loadTask(c)
	if !ok {
		return
	}
	userID := currentUser(c).ID
	c.JSON(http.StatusOK, gin.H{
		"task":                  task,
		"completion_percentage": task.CompletionPercentage(),
		"can_modify":            auth.CanModifyTask(&task, &project, userID),
	})
}

// handleUpdateTask rewrites a task. Locked tasks only yield to the
// project owner.
func (s *Server) handleUpdateTask(c *gin.Context) {
	task, project, ok := s.loadTask(c)
	if !ok {
		return
	}
	if !auth.CanModifyTask(&task, &project, currentUser(c).ID) {
		respondDenied(c)
		return
	}

	var req taskRequest
	if !s.bind(c, &req) {
		return
	}
	if req.Status == "" {
		req.Status = task.Status
	}
	if req.Priority == "" {
		req.Priority = task.Priority
	}
	if !s.validTaskEnums(c, req.Status, req.Priority) {
		return
	}
	if !s.checkTaskReferences(c, &project, &req) {
		return
	}

	updated, err := s.store.UpdateTask(c.Request.Context(), task.ID, models.Task{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		SprintID:       req.SprintID,
		AssignedUserID: req.AssignedUserID,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": updated})
}

// handleDeleteTask removes a task and its subtasks.
func (s *Server) handleDeleteTask(c *gin.Context) {
	task, project, ok := s.loadTask(c)
	if !ok {
		return
	}
	if !auth.CanModifyTask(&task, &project, currentUser(c).ID) {
		respondDenied(c)
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), task.ID); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// handleToggleTaskLock flips the lock flag, owner only.
func (s *Server) handleToggleTaskLock(c *gin.Context) {
	task, project, ok := s.loadTask(c)
	if !ok {
		return
	}
	if project.OwnerID != currentUser(c).ID {
		respondDenied(c)
		return
	}

	locked, err := s.store.ToggleTaskLock(c.Request.Context(), task.ID)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "locked": locked})
}

// handleSetTaskStatus moves a task between board columns and keeps the
// completed flag in lockstep.
func (s *Server) handleSetTaskStatus(c *gin.Context) {
	task, project, ok := s.loadTask(c)
	if !ok {
		return
	}

	status := c.Param("status")
	if _, valid := models.ValidTaskStatuses[status]; !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if !auth.CanModifyTask(&task, &project, currentUser(c).ID) {
		respondDenied(c)
		return
	}

	updated, err := s.store.SetTaskStatus(c.Request.Context(), task.ID, status)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": updated.Status})
}
