// Package server exposes the corpus over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/logger"
	"github.com/matheuskafuri/blogsearch/internal/metrics"
	"github.com/matheuskafuri/blogsearch/internal/search"
	"github.com/matheuskafuri/blogsearch/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Searcher answers /search. Both the in-memory engine and Meilisearch
// implement it.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]article.Article, error)
}

// EngineSearcher adapts a search.Engine to Searcher.
type EngineSearcher struct {
	Engine *search.Engine
}

func (s EngineSearcher) Search(_ context.Context, query string, limit int) ([]article.Article, error) {
	return s.Engine.Search(query, limit)
}

type Options struct {
	Corpus       []article.Article
	Searcher     Searcher
	Backend      string // metrics label
	DefaultLimit int
	CORSOrigins  []string
	RateLimit    float64 // per client; zero disables
	LastUpdated  string  // reported by /stats; now when empty
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Log          *slog.Logger
}

type Server struct {
	echo         *echo.Echo
	corpus       []article.Article
	searcher     Searcher
	backend      string
	defaultLimit int
	lastUpdated  string
	metrics      *metrics.Metrics
	log          *slog.Logger
}

func New(opts Options) *Server {
	s := &Server{
		corpus:       opts.Corpus,
		searcher:     opts.Searcher,
		backend:      opts.Backend,
		defaultLimit: opts.DefaultLimit,
		lastUpdated:  opts.LastUpdated,
		metrics:      opts.Metrics,
		log:          opts.Log,
	}
	if s.corpus == nil {
		s.corpus = []article.Article{}
	}
	if s.searcher == nil {
		s.searcher = EngineSearcher{Engine: search.NewEngine(s.corpus)}
	}
	if s.backend == "" {
		s.backend = metrics.BackendMemory
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = search.DefaultLimit
	}
	if s.log == nil {
		s.log = logger.Discard()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				s.log.Info("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				s.log.Error("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	if opts.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(opts.RateLimit))))
	}

	e.GET("/search", s.handleSearch)
	e.GET("/stats", s.handleStats)
	e.GET("/random", s.handleRandom)
	e.GET("/blogs", s.handleBlogs)
	e.GET("/health", s.handleHealth)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	s.echo = e
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "address", addr, "articles", len(s.corpus), "backend", s.backend)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))

	limit := s.defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}
	limit = min(max(limit, 0), search.MaxLimit)

	if query == "" {
		return c.JSON(http.StatusOK, []article.Article{})
	}

	start := time.Now()
	results, err := s.searcher.Search(c.Request().Context(), query, limit)
	if s.metrics != nil {
		s.metrics.ObserveSearch(s.backend, time.Since(start).Seconds(), len(results), err)
	}
	if errors.Is(err, search.ErrInvalidLimit) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		s.log.Error("search failed", "query", query, "backend", s.backend, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleStats(c echo.Context) error {
	summary := stats.Summarize(s.corpus)
	summary.LastUpdated = s.lastUpdated
	if summary.LastUpdated == "" {
		summary.LastUpdated = time.Now().UTC().Format(article.TimestampLayout)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) handleRandom(c echo.Context) error {
	if len(s.corpus) == 0 {
		return c.JSON(http.StatusOK, struct{}{})
	}
	return c.JSON(http.StatusOK, s.corpus[rand.IntN(len(s.corpus))])
}

func (s *Server) handleBlogs(c echo.Context) error {
	return c.JSON(http.StatusOK, stats.Blogs(s.corpus))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"articles": len(s.corpus),
		"backend":  s.backend,
	})
}
