// Package server wires configuration, storage, services and the HTTP API
// into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/archive"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/httpserver"
	"github.com/dmitrijs2005/todokeeper/internal/server/llm"
	"github.com/dmitrijs2005/todokeeper/internal/server/mail"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// seams for tests
var (
	openDB                         = repomanager.Open
	newRepositoryManager           = repomanager.NewPostgresRepositoryManager
	newGeminiClient                = llm.NewGeminiClient
	logOutput            io.Writer = os.Stdout
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpserver.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(logOutput, slog.LevelInfo)
	gin.SetMode(gin.ReleaseMode)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var generator services.Generator
	if c.GeminiAPIKey != "" {
		g, err := newGeminiClient(ctx, c.GeminiAPIKey, c.GeminiModel)
		if err != nil {
			logger.Warn(ctx, "summary generator unavailable", "error", err)
		} else {
			generator = g
		}
	} else {
		logger.Warn(ctx, "no generator API key configured, summaries will carry a placeholder text")
	}

	if c.MailgunSigningKey == "" {
		logger.Warn(ctx, "no webhook signing key configured, inbound email will be refused")
	}

	svc := httpserver.Services{
		Pins:  services.NewPinService(db, rm, c),
		Tasks: services.NewTaskService(db, rm, c, logger),
		Notes: services.NewStickyNoteService(db, rm, c),
		Summary: services.NewSummaryService(db, rm, c,
			generator, mail.NewSMTPSender(c), archive.NewS3Archive(c), logger),
		Webhook: auth.NewWebhookAuthenticator(c.MailgunSigningKey, c.WebhookMaxAge),
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpserver.NewHTTPServer(c.EndpointAddrHTTP, logger, svc, c.RequireUnlockToken),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
