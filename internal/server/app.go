// Package server wires the application together: configuration, database,
// services, the background janitor and the HTTP server, with graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/opavlenko/taskhub/internal/logging"
	"github.com/opavlenko/taskhub/internal/server/config"
	"github.com/opavlenko/taskhub/internal/server/httpapi"
	"github.com/opavlenko/taskhub/internal/server/repositories/repomanager"
	"github.com/opavlenko/taskhub/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	auth    *services.AuthService
	todos   *services.TodoService
	janitor *services.Janitor
	server  *http.Server
	closeDB func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(slog.LevelInfo)

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	auth := services.NewAuthService(db, rm, cfg, logger)
	todos := services.NewTodoService(db, rm, logger)
	janitor := services.NewJanitor(db, rm, cfg.JanitorInterval, logger)

	api := httpapi.NewServer(auth, todos, db, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		auth:    auth,
		todos:   todos,
		janitor: janitor,
		server: &http.Server{
			Addr:    cfg.EndpointAddrHTTP,
			Handler: api.Handler(),
		},
		closeDB: db.Close,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.janitor.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}

	wg.Wait()

	if err := app.closeDB(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
