package httpserver

import (
	"net/http"

	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// summarize is the manual trigger. The body may carry the tasks the client
// sees; an empty or unreadable body falls back to the active tasks in the DB.
func (s *HTTPServer) summarize(c *gin.Context) {
	var req services.SummaryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.logger.Warn(c.Request.Context(), "summary body unreadable, using stored tasks", "error", err)
			req = services.SummaryRequest{}
		}
	}
	s.runSummary(c, req)
}

// summarizeScheduled is the entry point for an external scheduler; it always
// reads tasks from the DB.
func (s *HTTPServer) summarizeScheduled(c *gin.Context) {
	s.runSummary(c, services.SummaryRequest{Scheduled: true})
}

func (s *HTTPServer) runSummary(c *gin.Context, req services.SummaryRequest) {
	res, err := s.svc.Summary.Run(c.Request.Context(), req)
	if err != nil {
		s.logger.Error(c.Request.Context(), "summary failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusOK
	if res.EmailError != "" {
		status = http.StatusMultiStatus
	}
	c.JSON(status, res)
}
