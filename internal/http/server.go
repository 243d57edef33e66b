package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Clark-Hu/mytv-catalog/internal/catalog"
	"github.com/Clark-Hu/mytv-catalog/internal/config"
	"github.com/Clark-Hu/mytv-catalog/internal/domain"
)

// Catalog is the catalog surface served over HTTP.
type Catalog interface {
	Browse(ctx context.Context) (domain.Pass, catalog.Listing)
	Section(ctx context.Context, key string) (catalog.Listing, error)
	Sections() []domain.SectionDescriptor
	Genres(ctx context.Context) domain.GenreTable
	Search(ctx context.Context, query string) ([]domain.Movie, error)
}

// PassHistory reads recorded aggregation passes.
type PassHistory interface {
	List(ctx context.Context, limit int) ([]domain.Pass, error)
	GetByID(ctx context.Context, id string) (domain.Pass, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps carries the collaborators of a Server. Passes and Health are nil when
// no database is configured.
type Deps struct {
	Catalog Catalog
	Passes  PassHistory
	Health  HealthChecker
	Logger  *zap.Logger
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	catalog Catalog
	passes  PassHistory
	health  HealthChecker
	logger  *zap.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s := &Server{
		cfg:     cfg,
		catalog: deps.Catalog,
		passes:  deps.Passes,
		health:  deps.Health,
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/sections", s.handleBrowse)
		r.Get("/sections/{section}", s.handleSection)
		r.Get("/search", s.handleSearch)
	})
	s.router.Get("/genres", s.handleGenres)
	s.router.Route("/passes", func(r chi.Router) {
		r.Get("/", s.handleListPasses)
		r.Get("/{id}", s.handleGetPass)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "disabled"}
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health.HealthCheck(ctx); err != nil {
			s.logger.Warn("healthz: database unreachable", zap.Error(err))
			s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unreachable")
			return
		}
		status["database"] = "ok"
	}
	s.respondJSON(w, http.StatusOK, status)
}

// requestLogger writes one line per request once the handler returns.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
