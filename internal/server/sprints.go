package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard/internal/sprint"
)

type sprintRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

// handleGenerateSprints replaces the project's sprint plan with one
// derived from its date range, owner only. Projects without the
// required dates or sprint length cannot generate.
func (s *Server) handleGenerateSprints(c *gin.Context) {
	project, ok := s.ownedProject(c)
	if !ok {
		return
	}

	spans := sprint.Generate(project.StartDate, project.EndDate, project.SprintLengthDays)
	if len(spans) == 0 {
		s.respondError(c, http.StatusBadRequest,
			fmt.Errorf("project needs a start date, an end date and a sprint length to generate sprints"))
		return
	}

	sprints, err := s.store.RegenerateSprints(c.Request.Context(), project.ID, spans)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprints": sprints})
}

// handleUpdateSprint renames or describes a sprint, owner only. The
// sprint must belong to the project in the path.
func (s *Server) handleUpdateSprint(c *gin.Context) {
	project, ok := s.ownedProject(c)
	if !ok {
		return
	}
	sprintID, ok := parseID(c, "sprintID")
	if !ok {
		return
	}

	existing, err := s.store.GetSprint(c.Request.Context(), sprintID)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if existing.ProjectID != project.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req sprintRequest
	if !s.bind(c, &req) {
		return
	}

	updated, err := s.store.UpdateSprint(c.Request.Context(), sprintID, req.Name, req.Description)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprint": updated})
}
