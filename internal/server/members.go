package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const searchUserLimit = 10

type addMemberRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type permissionRequest struct {
	CanEditTasks *bool `json:"can_edit_tasks" binding:"required"`
}

// handleSearchUsers finds users by username or email fragment for the
// member picker. Always returns an array, capped at ten entries.
func (s *Server) handleSearchUsers(c *gin.Context) {
	users, err := s.store.SearchUsers(c.Request.Context(), c.Query("q"), searchUserLimit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	results := make([]gin.H, 0, len(users))
	for _, u := range users {
		results = append(results, gin.H{"id": u.ID, "username": u.Username, "email": u.Email})
	}
	c.JSON(http.StatusOK, results)
}

// handleAddMember invites a user into the project, owner only. The new
// member starts without edit rights.
func (s *Server) handleAddMember(c *gin.Context) {
	project, ok := s.ownedProject(c)
	if !ok {
		return
	}

	var req addMemberRequest
	if !s.bind(c, &req) {
		return
	}

	if _, err := s.store.GetUser(c.Request.Context(), req.UserID); err != nil {
		s.respondStoreError(c, err)
		return
	}
	if err := s.store.AddMember(c.Request.Context(), project.ID, req.UserID); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "member added"})
}

// handleRemoveMember drops a member and their permissions, owner only.
func (s *Server) handleRemoveMember(c *gin.Context) {
	project, ok := s.ownedProject(c)
	if !ok {
		return
	}
	userID, ok := parseID(c, "userID")
	if !ok {
		return
	}

	if err := s.store.RemoveMember(c.Request.Context(), project.ID, userID); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "member removed"})
}

// handleSetMemberPermission flips a member's task-editing flag, owner
// only. The owner has no permission row to flip.
func (s *Server) handleSetMemberPermission(c *gin.Context) {
	project, ok := s.ownedProject(c)
	if !ok {
		return
	}
	userID, ok := parseID(c, "userID")
	if !ok {
		return
	}
	if userID == project.OwnerID {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("cannot set permissions for the project owner"))
		return
	}

	var req permissionRequest
	if !s.bind(c, &req) {
		return
	}

	if err := s.store.SetMemberPermission(c.Request.Context(), project.ID, userID, *req.CanEditTasks); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "permissions updated", "can_edit_tasks": *req.CanEditTasks})
}
