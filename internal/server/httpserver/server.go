// Package httpserver exposes the todokeeper services as a JSON API.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type PinService interface {
	Verify(ctx context.Context, candidate string) (bool, error)
	Rotate(ctx context.Context, current, newPin string) error
	IssueUnlockToken() (string, error)
	CheckUnlockToken(token string) error
}

type TaskService interface {
	List(ctx context.Context) ([]*models.Task, error)
	Create(ctx context.Context, t services.NewTask) (*models.Task, error)
	Update(ctx context.Context, id int64, u models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	CreateFromEmail(ctx context.Context, sender, subject string) (*models.Task, error)
	CreateFromAutomation(ctx context.Context, req services.AutomationRequest) (*models.Task, error)
}

type StickyNoteService interface {
	Get(ctx context.Context, id int64) (*models.StickyNote, error)
	GetDefault(ctx context.Context) (*models.StickyNote, error)
	Update(ctx context.Context, id int64, content string) (*models.StickyNote, error)
}

type SummaryService interface {
	Run(ctx context.Context, req services.SummaryRequest) (*services.SummaryResult, error)
}

type WebhookAuthenticator interface {
	Configured() bool
	Authenticate(timestamp, token, signature string) bool
}

// Services groups the collaborators the handlers call into.
type Services struct {
	Pins    PinService
	Tasks   TaskService
	Notes   StickyNoteService
	Summary SummaryService
	Webhook WebhookAuthenticator
}

type HTTPServer struct {
	address       string
	svc           Services
	logger        logging.Logger
	requireUnlock bool
}

func NewHTTPServer(address string, l logging.Logger, svc Services, requireUnlock bool) *HTTPServer {
	return &HTTPServer{
		address:       address,
		svc:           svc,
		logger:        l.With("module", "http_server"),
		requireUnlock: requireUnlock,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Handler returns the routed gin engine.
func (s *HTTPServer) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	{
		api.GET("/ping", s.ping)

		api.GET("/tasks", s.listTasks)
		api.POST("/tasks", s.createTask)
		api.PATCH("/tasks/:id", s.updateTask)
		api.DELETE("/tasks/:id", s.unlockRequired(), s.deleteTask)
		api.POST("/tasks/email", s.emailToTask)
		api.POST("/tasks/automation", s.automationTask)

		api.GET("/sticky-notes", s.getDefaultStickyNote)
		api.GET("/sticky-notes/:id", s.getStickyNote)
		api.PUT("/sticky-notes/:id", s.unlockRequired(), s.updateStickyNote)

		api.POST("/pin/check", s.checkPin)
		api.POST("/pin/update", s.updatePin)

		api.POST("/summary", s.summarize)
		api.POST("/summary/scheduled", s.summarizeScheduled)
	}

	return r
}

func (s *HTTPServer) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
