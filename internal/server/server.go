package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"planboard/internal/storage/sqlite"
)

// Server provides the HTTP handlers for the Planboard backend.
type Server struct {
	engine    *gin.Engine
	store     *sqlite.Store
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:    router,
		store:     store,
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/signup", s.handleSignup)
		api.POST("/login", s.handleLogin)

		authed := api.Group("", s.requireAuth)
		{
			authed.POST("/logout", s.handleLogout)
			authed.GET("/me", s.handleMe)
			authed.GET("/dashboard", s.handleDashboard)
			authed.GET("/search-users", s.handleSearchUsers)

			authed.POST("/projects", s.handleCreateProject)
			authed.GET("/projects/:id", s.handleGetProject)
			authed.PUT("/projects/:id", s.handleUpdateProject)
			authed.DELETE("/projects/:id", s.handleDeleteProject)
			authed.GET("/projects/:id/calendar", s.handleProjectCalendar)
			authed.POST("/projects/:id/sprints/generate", s.handleGenerateSprints)
			authed.PUT("/projects/:id/sprints/:sprintID", s.handleUpdateSprint)
			authed.POST("/projects/:id/tasks", s.handleCreateTask)
			authed.POST("/projects/:id/members", s.handleAddMember)
			authed.DELETE("/projects/:id/members/:userID", s.handleRemoveMember)
			authed.PUT("/projects/:id/members/:userID/permissions", s.handleSetMemberPermission)

			authed.GET("/tasks/:id", s.handleGetTask)
			authed.PUT("/tasks/:id", s.handleUpdateTask)
			authed.DELETE("/tasks/:id", s.handleDeleteTask)
			authed.POST("/tasks/:id/lock", s.handleToggleTaskLock)
			authed.PUT("/tasks/:id/status/:status", s.handleSetTaskStatus)
			authed.POST("/tasks/:id/subtasks", s.handleCreateSubtask)

			authed.POST("/subtasks/:id/toggle", s.handleToggleSubtask)
			authed.DELETE("/subtasks/:id", s.handleDeleteSubtask)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// bind decodes the JSON body into req. Validation failures are
// translated into a per-field error map and answered with 400.
func (s *Server) bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "eqfield":
		return "must match " + fe.Param()
	default:
		return "invalid value"
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondStoreError maps store sentinels onto HTTP statuses.
func (s *Server) respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, sqlite.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.respondError(c, http.StatusInternalServerError, err)
	}
}

func respondDenied(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
}
