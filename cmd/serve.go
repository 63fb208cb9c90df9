package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/config"
	"github.com/matheuskafuri/blogsearch/internal/logger"
	"github.com/matheuskafuri/blogsearch/internal/meili"
	"github.com/matheuskafuri/blogsearch/internal/metrics"
	"github.com/matheuskafuri/blogsearch/internal/search"
	"github.com/matheuskafuri/blogsearch/internal/server"
	"github.com/matheuskafuri/blogsearch/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	flagAddr    string
	flagBackend string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Long: `Load the stored corpus into memory and serve /search, /stats, /random,
/blogs, /health and /metrics. With the meilisearch backend, /search is
answered by the configured Meilisearch index instead of the in-memory engine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.FromEnv()

		db, err := openStore()
		if err != nil {
			return err
		}
		corpus, err := loadCorpus(db, "")
		if err != nil {
			db.Close()
			return err
		}
		lastUpdated := lastUpdated(db, log)
		db.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New()
		if err := m.Register(reg); err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}

		start := time.Now()
		engine := search.NewEngine(corpus)
		m.SetCorpus(engine.Len(), engine.Index().Len())
		log.Info("index built",
			"articles", engine.Len(),
			"tokens", engine.Index().Len(),
			"duration_ms", time.Since(start).Milliseconds())

		backend := cfg.SearchBackend()
		if flagBackend != "" {
			backend = flagBackend
		}
		searcher, err := newSearcher(backend, cfg, engine, log)
		if err != nil {
			return err
		}

		addr := cfg.ServerAddr()
		if flagAddr != "" {
			addr = flagAddr
		}

		srv := server.New(server.Options{
			Corpus:       corpus,
			Searcher:     searcher,
			Backend:      backend,
			DefaultLimit: cfg.DefaultLimit(),
			CORSOrigins:  cfg.CORSOrigins(),
			RateLimit:    cfg.RateLimit(),
			LastUpdated:  lastUpdated,
			Metrics:      m,
			Gatherer:     reg,
			Log:          log,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default from config, :5050)")
	serveCmd.Flags().StringVar(&flagBackend, "backend", "", "search backend: memory or meilisearch")
}

func newSearcher(backend string, cfg *config.Config, engine *search.Engine, log *slog.Logger) (server.Searcher, error) {
	switch backend {
	case config.BackendMemory:
		return server.EngineSearcher{Engine: engine}, nil
	case config.BackendMeilisearch:
		return meili.New(cfg.MeilisearchHost(), cfg.MeilisearchKey(), cfg.MeilisearchIndex(), log), nil
	default:
		return nil, fmt.Errorf("unknown search backend %q (valid: %s, %s)", backend, config.BackendMemory, config.BackendMeilisearch)
	}
}

// lastUpdated returns when the corpus was last fetched, or "" when no
// fetch has been recorded.
func lastUpdated(db *store.Store, log *slog.Logger) string {
	md, err := db.Metadata()
	if errors.Is(err, store.ErrNotFound) {
		return ""
	}
	if err != nil {
		log.Warn("reading metadata", "error", err)
		return ""
	}
	return md.LastUpdated
}

// indexCmd pushes the stored corpus into Meilisearch.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the Meilisearch index from the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		corpus, err := loadCorpus(db, "")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := meili.New(cfg.MeilisearchHost(), cfg.MeilisearchKey(), cfg.MeilisearchIndex(), cliLogger())
		if err := client.Reindex(ctx, corpus); err != nil {
			return fmt.Errorf("indexing: %w", err)
		}
		fmt.Printf("Indexed %d article(s) into %s/%s.\n", len(corpus), cfg.MeilisearchHost(), cfg.MeilisearchIndex())
		return nil
	},
}
