package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/calliope-labs/cratematch/internal/adapters/beatport"
	"github.com/calliope-labs/cratematch/internal/adapters/rest"
	"github.com/calliope-labs/cratematch/internal/adapters/sqlite"
	"github.com/calliope-labs/cratematch/internal/core/match"
	"github.com/calliope-labs/cratematch/internal/metrics"
	"github.com/calliope-labs/cratematch/internal/worker"

	"github.com/calliope-labs/cratematch/internal/core/services"
)

// config is populated from CRATEMATCH_* environment variables.
type config struct {
	Addr             string  `default:":8080"`
	CachePath        string  `split_words:"true" default:"cratematch.db"`
	BeatportAPIURL   string  `envconfig:"BEATPORT_API_URL"`
	BeatportSiteURL  string  `envconfig:"BEATPORT_SITE_URL"`
	BeatportClientID string  `envconfig:"BEATPORT_CLIENT_ID"`
	BeatportSecret   string  `envconfig:"BEATPORT_CLIENT_SECRET"`
	MatchWorkers     int     `split_words:"true" default:"2"`
	BatchQueueSize   int     `split_words:"true" default:"100"`
	TitleWeight      float64 `split_words:"true"`
	ArtistWeight     float64 `split_words:"true"`
	EarlyExitScore   float64 `split_words:"true"`
	EarlyExitQueries int     `split_words:"true"`
	RunAllQueries    bool    `split_words:"true"`
}

func main() {
	// 1. Configuration (Environment Variables)
	var cfg config
	if err := envconfig.Process("cratematch", &cfg); err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	// 2. Initialize "Driven" Adapters (The Tools)
	// -- Cache Adapter
	cache, err := sqlite.NewAdapter(cfg.CachePath)
	if err != nil {
		log.Fatalf("FATAL: failed to initialize cache database: %v", err)
	}
	defer cache.Close()

	// -- Catalog Adapter
	var catalog *beatport.Client
	if cfg.BeatportClientID != "" && cfg.BeatportSecret != "" {
		catalog = beatport.NewAuthenticatedClient(context.Background(),
			cfg.BeatportClientID, cfg.BeatportSecret, cfg.BeatportAPIURL, cfg.BeatportSiteURL)
	} else {
		log.Println("WARN main: no catalog credentials set, using unauthenticated client")
		catalog = beatport.NewClient(nil, cfg.BeatportAPIURL, cfg.BeatportSiteURL)
	}

	// 3. Initialize Core Logic (The Driver)
	// We inject the specific adapters into the agnostic service. The
	// compiler guarantees the catalog client implements both the
	// search-provider and page-parser ports.
	met := metrics.New()

	matchCfg := match.DefaultConfig()
	if cfg.TitleWeight > 0 {
		matchCfg.TitleWeight = cfg.TitleWeight
	}
	if cfg.ArtistWeight > 0 {
		matchCfg.ArtistWeight = cfg.ArtistWeight
	}
	if cfg.EarlyExitScore > 0 {
		matchCfg.EarlyExitScore = cfg.EarlyExitScore
	}
	if cfg.EarlyExitQueries > 0 {
		matchCfg.EarlyExitMinQueries = cfg.EarlyExitQueries
	}
	matchCfg.RunAllQueries = cfg.RunAllQueries

	svc := services.NewMatchService(catalog, catalog, cache, met, matchCfg)

	// 4. Initialize "Driving" Adapter (The Interface)
	pool := worker.NewPool(svc, met, cfg.BatchQueueSize)
	pool.Start(cfg.MatchWorkers)
	defer pool.Stop()

	handler := rest.NewHandler(svc, pool, cache, met)

	// 5. Start the Server
	log.Printf("cratematch API is running on %s", cfg.Addr)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
