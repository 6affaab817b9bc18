package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"liveblog/internal/config"
	"liveblog/internal/content"
	"liveblog/internal/handlers"
	"liveblog/internal/middleware"
	"liveblog/internal/reload"
	"liveblog/internal/router"
	"liveblog/internal/watcher"
)

type App struct {
	Server  *http.Server
	Logger  *slog.Logger
	Config  *config.Config
	Watcher *watcher.Watcher
}

func NewApp(cfg *config.Config, logger *slog.Logger, w *watcher.Watcher, handler http.Handler) *App {
	server := &http.Server{
		Addr:        fmt.Sprintf("0.0.0.0:%d", cfg.HTTP.Port),
		Handler:     handler,
		ReadTimeout: cfg.HTTP.Timeouts.Read,
		IdleTimeout: cfg.HTTP.Timeouts.Idle,
		// WriteTimeout stays zero: reload subscriptions block for as long as
		// the browser keeps the tab open
	}

	return &App{
		Server:  server,
		Logger:  logger,
		Config:  cfg,
		Watcher: w,
	}
}

func (a *App) Run(ctx context.Context) error {
	if a.Watcher != nil {
		go a.Watcher.Start(ctx)
	}

	srvErrChan := make(chan error, 1)

	go func() {
		a.Logger.Info("server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErrChan <- err
		}
	}()

	select {
	case err := <-srvErrChan:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	}

	// attempt clean shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.Timeouts.Shutdown)
	defer cancel()

	a.Logger.Info("draining connections...")
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		// graceful shutdown timed out
		if closeErr := a.Server.Close(); closeErr != nil {
			return fmt.Errorf("graceful shutdown failed: %w", errors.Join(err, closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.Logger.Info("server stopped")
	return nil
}

func main() {
	cfg := config.LoadWithDefaults()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Logger.Level})
	logger := slog.New(logHandler).With("app", cfg.App.Name)

	logger.Info("application starting", "pid", os.Getpid())
	logger.Info("configuration loaded",
		"name", cfg.App.Name,
		"content", cfg.App.ContentDir,
		"env", cfg.App.Environment,
		"port", cfg.HTTP.Port,
		"development", cfg.IsDevelopment(),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer := content.NewMarkDownRenderer()
	loader := content.NewLoader(cfg.App.ContentDir, renderer, logger)

	// a site that cannot load its fragments has nothing to serve
	snap, err := loader.Load(rootCtx)
	if err != nil {
		logger.Error("initial content load failed", "dir", cfg.App.ContentDir, "err", err)
		os.Exit(1)
	}
	logger.Info("content loaded", "posts", len(snap.Posts))

	store := content.NewStore(snap, cfg.IsDevelopment())
	broadcaster := reload.NewBroadcaster()

	var contentWatcher *watcher.Watcher
	if cfg.IsDevelopment() {
		logger.Info("hot reload enabled, watching for content changes")
		contentWatcher, err = watcher.New(cfg.App.ContentDir, cfg.Watch.Debounce,
			func(ctx context.Context) {
				// the swap happens strictly before the broadcast so a client
				// that reloads immediately sees the new snapshot; the signal
				// still fires on a failed refresh since serving the previous
				// content is correct
				loader.Refresh(ctx, store)
				broadcaster.Notify()
			}, logger)
		if err != nil {
			logger.Error("could not start content watcher", "err", err)
			os.Exit(1)
		}
	}

	limiter := middleware.NewIPRateLimiter(rootCtx, cfg.Limiter.RPS, cfg.Limiter.Burst)
	blogHandler := handlers.NewBlogHandler(store, renderer, loader.PostsDir(), logger)

	routes := router.NewRouter(router.RouterDependencies{
		Logger:      logger,
		BlogHandler: blogHandler,
		Reload:      &reload.Handler{Broadcaster: broadcaster, Logger: logger},
		Limiter:     limiter,
		StaticDir:   filepath.Join(cfg.App.ContentDir, "static"),
	})

	app := NewApp(cfg, logger, contentWatcher, routes)

	if err := app.Run(rootCtx); err != nil {
		logger.Error("server crashed", "err", err)
		os.Exit(1)
	}

	logger.Info("application exited successfully")
	os.Exit(0)
}
