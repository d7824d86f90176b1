package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard/internal/auth"
	"planboard/internal/models"
)

type subtaskRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// loadSubtask resolves a subtask id to the subtask, its parent task and
// project, enforcing CanModifyTask on the way.
func (s *Server) loadSubtask(c *gin.Context) (models.Subtask, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return models.Subtask{}, false
	}
	subtask, err := s.store.GetSubtask(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return models.Subtask{}, false
	}
	task, err := s.store.GetTask(c.Request.Context(), subtask.TaskID)
	if err != nil {
		s.respondStoreError(c, err)
		return models.Subtask{}, false
	}
	project, err := s.store.GetProject(c.Request.Context(), task.ProjectID)
	if err != nil {
		s.respondStoreError(c, err)
		return models.Subtask{}, false
	}
	if !auth.CanModifyTask(&task, &project, currentUser(c).ID) {
		respondDenied(c)
		return models.Subtask{}, false
	}
	return subtask, true
}

// handleCreateSubtask appends a checklist item to a task.
func (s *Server) handleCreateSubtask(c *gin.Context) {
	task, project, ok := s.loadTask(c)
	if !ok {
		return
	}
	if !auth.CanModifyTask(&task, &project, currentUser(c).ID) {
		respondDenied(c)
		return
	}

	var req subtaskRequest
	if !s.bind(c, &req) {
		return
	}

	subtask, err := s.store.CreateSubtask(c.Request.Context(), task.ID, req.Title)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subtask": subtask})
}

// handleToggleSubtask flips the completed flag of a checklist item.
func (s *Server) handleToggleSubtask(c *gin.Context) {
	subtask, ok := s.loadSubtask(c)
	if !ok {
		return
	}

	toggled, err := s.store.ToggleSubtask(c.Request.Context(), subtask.ID)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "completed": toggled.Completed})
}

// handleDeleteSubtask removes a checklist item.
func (s *Server) handleDeleteSubtask(c *gin.Context) {
	subtask, ok := s.loadSubtask(c)
	if !ok {
		return
	}
	if err := s.store.DeleteSubtask(c.Request.Context(), subtask.ID); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
