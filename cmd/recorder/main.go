package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"plenty-analytics-indexer/internal/blockwatch"
	"plenty-analytics-indexer/internal/checkpoint"
	"plenty-analytics-indexer/internal/config"
	"plenty-analytics-indexer/internal/heartbeat"
	"plenty-analytics-indexer/internal/indexer"
	"plenty-analytics-indexer/internal/observability"
	"plenty-analytics-indexer/internal/registry"
	"plenty-analytics-indexer/internal/storage/migrations"
	pgstore "plenty-analytics-indexer/internal/storage/postgres"
	"plenty-analytics-indexer/internal/tzkt"
)

func main() {
	logger := log.New(os.Stdout, "[recorder] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("received signal %v, shutting down...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("received second signal %v, forcing exit", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	metrics := observability.NewMetrics("")
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("starting metrics server on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server error: %v", err)
			}
		}()
	}

	if err := run(ctx, cfg, metrics, logger); err != nil && err != context.Canceled {
		logger.Fatalf("error: %v", err)
	}

	logger.Println("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *log.Logger) error {
	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return err
	}

	provider := tzkt.NewHTTPClient(cfg.TzktURL, tzkt.WithPageLimit(cfg.TzktPageLimit))

	txnStore := pgstore.NewTransactionStore(pool)
	engine := indexer.NewEngine(
		txnStore,
		pgstore.NewPoolAggregateStore(pool),
		pgstore.NewTokenAggregateStore(pool),
		pgstore.NewPlentyAggregateStore(pool),
	)
	resolver := indexer.NewResolver(pgstore.NewSpotPriceStore(pool), nil)
	classifier := indexer.NewClassifier(provider, cfg.TezCtezPool)
	pools := registry.NewCache(pgstore.NewPoolStore(pool), cfg.RegistryTTL)

	processor := indexer.NewProcessor(indexer.ProcessorOptions{
		Provider:    provider,
		Pools:       pools,
		Classifier:  classifier,
		Resolver:    resolver,
		Engine:      engine,
		Txns:        txnStore,
		LastIndexed: pgstore.NewLastIndexedStore(pool),
		Checkpoint:  checkpoint.NewStore(cfg.CheckpointPath),
		StartLevel:  cfg.IndexingStart - cfg.ReorgLag,
		Logger:      logger,
		Metrics:     metrics,
	})

	go heartbeat.NewPinger(cfg.HeartbeatURL, 0, logger).Run(ctx)

	// At most one pipeline pass runs at a time. A notification arriving
	// mid-pass is dropped; the next one covers the skipped range since every
	// pass processes up to the latest known level.
	var inFlight atomic.Bool
	process := func(level int64) {
		metrics.BlocksReceived.Inc()
		if !inFlight.CompareAndSwap(false, true) {
			metrics.RunsSkipped.Inc()
			return
		}
		go func() {
			defer inFlight.Store(false)
			upTo := level - cfg.ReorgLag
			logger.Printf("processing up to level %d", upTo)
			if err := processor.Process(ctx, upTo); err != nil {
				logger.Printf("pipeline run failed: %v", err)
			}
		}()
	}

	// Catch up once on startup so a long outage is not waiting on the next
	// datagram to recover.
	if head, err := provider.GetHead(ctx); err != nil {
		logger.Printf("unable to fetch head for initial catch-up: %v", err)
	} else {
		process(head)
	}

	listener := blockwatch.NewListener(cfg.BlockPort, logger)
	return listener.Listen(ctx, func(n blockwatch.Notification) {
		process(n.Level)
	})
}
