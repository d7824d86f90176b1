package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"planboard/internal/calendar"
	"planboard/internal/models"
)

// handleProjectCalendar renders the project's month view: a map from
// ISO date to the sprint and task events on that day. An invalid or
// missing month query falls back to the project's reference month.
func (s *Server) handleProjectCalendar(c *gin.Context) {
	project, ok := s.memberProject(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	year, month := 0, 0
	if q := c.Query("month"); q != "" {
		if y, m, err := calendar.ParseMonth(q); err == nil {
			year, month = y, m
		}
	}

	ref := models.DateOf(time.Now())
	if project.StartDate != nil {
		ref = *project.StartDate
	}
	year, month = calendar.Resolve(ref, year, month)

	sprints, err := s.store.ListSprints(ctx, project.ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	tasks, err := s.store.ListTasks(ctx, project.ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	events := calendar.MonthEvents(year, month, sprints, tasks)
	prevYear, prevMonth := calendar.Prev(year, month)
	nextYear, nextMonth := calendar.Next(year, month)

	c.JSON(http.StatusOK, gin.H{
		"year":       year,
		"month":      month,
		"events":     events,
		"prev_month": fmt.Sprintf("%04d-%02d", prevYear, prevMonth),
		"next_month": fmt.Sprintf("%04d-%02d", nextYear, nextMonth),
	})
}
