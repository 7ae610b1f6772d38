package httpserver

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

type updateNoteRequest struct {
	Content *string `json:"content"`
}

func noteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) getStickyNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}

	n, err := s.svc.Notes.Get(c.Request.Context(), id)
	s.writeNote(c, n, err)
}

func (s *HTTPServer) getDefaultStickyNote(c *gin.Context) {
	n, err := s.svc.Notes.GetDefault(c.Request.Context())
	s.writeNote(c, n, err)
}

func (s *HTTPServer) writeNote(c *gin.Context, n *models.StickyNote, err error) {
	if err != nil {
		s.logger.Error(c.Request.Context(), "sticky note read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *HTTPServer) updateStickyNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}

	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	n, err := s.svc.Notes.Update(c.Request.Context(), id, *req.Content)
	if err != nil {
		s.logger.Error(c.Request.Context(), "sticky note update failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, n)
}
