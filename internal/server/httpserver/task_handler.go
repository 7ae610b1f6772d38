package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Text     string `json:"text"`
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Notes    string `json:"notes"`
	Status   string `json:"status"`
	DueDate  string `json:"due_date"`
}

// updateTaskRequest keeps due_date raw so that an explicit null (clear) can be
// told apart from an absent field (leave unchanged).
type updateTaskRequest struct {
	Text     *string         `json:"text"`
	Name     *string         `json:"name"`
	Priority *string         `json:"priority"`
	Notes    *string         `json:"notes"`
	Status   *string         `json:"status"`
	DueDate  json.RawMessage `json:"due_date"`
}

func (r updateTaskRequest) toUpdate() (models.TaskUpdate, error) {
	u := models.TaskUpdate{
		Text:     r.Text,
		Name:     r.Name,
		Priority: r.Priority,
		Notes:    r.Notes,
		Status:   r.Status,
	}
	if len(r.DueDate) == 0 {
		return u, nil
	}
	if bytes.Equal(bytes.TrimSpace(r.DueDate), []byte("null")) {
		u.ClearDueDate = true
		return u, nil
	}

	var v string
	if err := json.Unmarshal(r.DueDate, &v); err != nil {
		return u, common.ErrMalformedInput
	}
	if strings.TrimSpace(v) == "" {
		u.ClearDueDate = true
		return u, nil
	}
	d, err := parseDue(v)
	if err != nil {
		return u, err
	}
	u.DueDate = &d
	return u, nil
}

func parseDue(v string) (time.Time, error) {
	d, ok := services.ParseDueDate(v)
	if !ok {
		return time.Time{}, common.ErrMalformedInput
	}
	return d, nil
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

// taskError writes the response for a task service error.
func (s *HTTPServer) taskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		s.logger.Error(c.Request.Context(), "task operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *HTTPServer) listTasks(c *gin.Context) {
	tasks, err := s.svc.Tasks.List(c.Request.Context())
	if err != nil {
		s.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *HTTPServer) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	nt := services.NewTask{
		Text:     req.Text,
		Name:     req.Name,
		Priority: req.Priority,
		Notes:    req.Notes,
		Status:   req.Status,
	}
	if strings.TrimSpace(req.DueDate) != "" {
		d, err := parseDue(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
			return
		}
		nt.DueDate = &d
	}

	t, err := s.svc.Tasks.Create(c.Request.Context(), nt)
	if err != nil {
		s.taskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *HTTPServer) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	u, err := req.toUpdate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
		return
	}

	t, err := s.svc.Tasks.Update(c.Request.Context(), id, u)
	if err != nil {
		s.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *HTTPServer) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := s.svc.Tasks.Delete(c.Request.Context(), id); err != nil {
		s.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully."})
}

// emailToTask handles the mail relay's inbound webhook. Nothing is written
// unless the signature checks out.
func (s *HTTPServer) emailToTask(c *gin.Context) {
	ctx := c.Request.Context()

	if !s.svc.Webhook.Configured() {
		s.logger.Error(ctx, "email webhook called without a signing key configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error."})
		return
	}

	if !s.svc.Webhook.Authenticate(c.PostForm("timestamp"), c.PostForm("token"), c.PostForm("signature")) {
		s.logger.Warn(ctx, "email webhook rejected: invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature. Request rejected."})
		return
	}

	sender := c.PostForm("sender")
	if sender == "" {
		sender = c.PostForm("From")
	}

	if _, err := s.svc.Tasks.CreateFromEmail(ctx, sender, c.PostForm("subject")); err != nil {
		s.logger.Error(ctx, "email task insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save task to database"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task created successfully from email."})
}

func (s *HTTPServer) automationTask(c *gin.Context) {
	ctx := c.Request.Context()

	var req services.AutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format."})
		return
	}

	t, err := s.svc.Tasks.CreateFromAutomation(ctx, req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "Task added successfully", "task": t})
	case errors.Is(err, common.ErrNotConfigured):
		s.logger.Error(ctx, "automation hook called without a secret key configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error (Security)."})
	case errors.Is(err, common.ErrAuthenticationFailed):
		s.logger.Warn(ctx, "automation hook rejected: invalid secret key")
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: Invalid secret key."})
	case errors.Is(err, common.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid 'task_title'."})
	default:
		s.logger.Error(ctx, "automation task insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add task to database."})
	}
}
