package router

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"liveblog/internal/handlers"
	"liveblog/internal/middleware"
	"liveblog/internal/reload"
)

// RouterDependencies holds everything needed to register routes.
type RouterDependencies struct {
	Logger      *slog.Logger
	BlogHandler *handlers.BlogHandler
	Reload      *reload.Handler
	Limiter     *middleware.IPRateLimiter
	StaticDir   string
}

func NewRouter(deps RouterDependencies) http.Handler {
	appMux := http.NewServeMux()

	// static files served as-is from content/static
	fs := http.FileServer(http.Dir(deps.StaticDir))
	appMux.Handle("GET /static/", http.StripPrefix("/static/", fs))
	appMux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(deps.StaticDir, "favicon.ico"))
	})
	appMux.HandleFunc("GET /favicon.png", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(deps.StaticDir, "favicon.png"))
	})

	appMux.Handle("GET /{$}", deps.BlogHandler.HandleHome())
	appMux.Handle("GET /posts/{slug}", deps.BlogHandler.HandlePost())

	appHandler := middleware.Chain(appMux,
		middleware.Recover(deps.Logger),
		deps.Limiter.Middleware(deps.Logger),
		middleware.Logger(deps.Logger),
	)

	rootMux := http.NewServeMux()

	// The reload socket stays outside the chain: the logging wrapper would
	// hide the http.Hijacker the upgrade needs, and a session that sits open
	// for hours is meaningless in a latency log anyway.
	rootMux.Handle("GET /ws", deps.Reload)

	// lightweight for docker keepalive
	rootMux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	rootMux.Handle("/", appHandler)

	return rootMux
}
