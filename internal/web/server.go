package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hpungsan/docmint/internal/config"
	"github.com/hpungsan/docmint/internal/metrics"
	"github.com/hpungsan/docmint/internal/session"
	"github.com/hpungsan/docmint/internal/tool"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Deps are the collaborators the web UI is built from.
type Deps struct {
	Config   *config.Config
	Registry *tool.Registry
	Executor *tool.Executor
	Sessions *session.Store
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Version  string
}

// NewServer creates and configures the HTTP server for the DocMint web UI.
func NewServer(d Deps) (*http.Server, error) {
	h, err := newHandlers(d)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              d.Config.Addr(),
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func newHandlers(d Deps) (*Handlers, error) {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if d.Metrics != nil {
		d.Metrics.TrackSessions(d.Sessions.Len)
	}
	return &Handlers{
		cfg:      d.Config,
		reg:      d.Registry,
		exec:     d.Executor,
		sessions: d.Sessions,
		metrics:  d.Metrics,
		logger:   logger,
		renderer: NewRenderer(templateSub, d.Version, logger),
	}, nil
}

func (h *Handlers) routes() http.Handler {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded at build time
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.instrument)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/", h.HandleHome)
	r.Get("/tools/{id}", h.HandleTool)
	r.Post("/tools/{id}/run", h.HandleRun)
	r.Get("/api/tools", h.HandleAPITools)
	r.Get("/healthz", h.HandleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticSub)))
	return r
}

// instrument logs every request and counts it by route pattern.
func (h *Handlers) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		if h.metrics != nil {
			h.metrics.ObserveRequest(route, status)
		}
		h.logger.Debug("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and shuts it down gracefully on SIGINT/SIGTERM
// or when ctx is cancelled.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("DocMint UI running", "url", "http://"+srv.Addr)
	if strings.HasPrefix(srv.Addr, "0.0.0.0:") || strings.HasPrefix(srv.Addr, "[::]:") || strings.HasPrefix(srv.Addr, ":") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
