package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/gin-gonic/gin"
)

type checkPinRequest struct {
	EnteredPin string `json:"enteredPin"`
}

type checkPinResponse struct {
	Valid bool   `json:"valid"`
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

type updatePinRequest struct {
	CurrentPin string `json:"currentPin"`
	NewPin     string `json:"newPin"`
}

func (s *HTTPServer) checkPin(c *gin.Context) {
	ctx := c.Request.Context()

	var req checkPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_input"})
		return
	}

	valid, err := s.svc.Pins.Verify(ctx, req.EnteredPin)
	switch {
	case errors.Is(err, common.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_input"})
		return
	case errors.Is(err, common.ErrNotConfigured):
		s.logger.Warn(ctx, "pin check while no pin is configured")
		c.JSON(http.StatusOK, checkPinResponse{Valid: false, Error: "not_configured"})
		return
	case err != nil:
		s.logger.Error(ctx, "pin check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage_unavailable"})
		return
	}

	resp := checkPinResponse{Valid: valid}
	if valid {
		tok, err := s.svc.Pins.IssueUnlockToken()
		if err != nil {
			s.logger.Error(ctx, "unlock token", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		resp.Token = tok
	}

	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) updatePin(c *gin.Context) {
	ctx := c.Request.Context()

	var req updatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_input"})
		return
	}

	err := s.svc.Pins.Rotate(ctx, req.CurrentPin, req.NewPin)
	switch {
	case err == nil:
		s.logger.Info(ctx, "pin rotated")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, common.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_input"})
	case errors.Is(err, common.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect_current_pin"})
	case errors.Is(err, common.ErrNotConfigured):
		c.JSON(http.StatusConflict, gin.H{"error": "not_configured"})
	case errors.Is(err, common.ErrStorageUnavailable):
		s.logger.Error(ctx, "pin rotation failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage_unavailable"})
	default:
		s.logger.Error(ctx, "pin rotation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
