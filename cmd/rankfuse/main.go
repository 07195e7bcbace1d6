// Command rankfuse provisions a MongoDB Atlas hybrid-search setup and runs
// one $rankFusion query over it: seed sample records with embeddings, create
// the lexical and vector search indexes, wait until they are queryable, then
// query and print the fused ranking. With -serve it keeps running and exposes
// the query over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/config"
	"github.com/skald-io/rankfuse/internal/db/atlas"
	dbRedis "github.com/skald-io/rankfuse/internal/db/redis"
	"github.com/skald-io/rankfuse/internal/domain"
	"github.com/skald-io/rankfuse/internal/logger"
	"github.com/skald-io/rankfuse/internal/metrics"
	"github.com/skald-io/rankfuse/internal/repository/catalog"
	"github.com/skald-io/rankfuse/internal/repository/embcache"
	"github.com/skald-io/rankfuse/internal/repository/hybrid"
	"github.com/skald-io/rankfuse/internal/repository/searchindex"
	chiTransport "github.com/skald-io/rankfuse/internal/transport/chi"
	openaiEmb "github.com/skald-io/rankfuse/internal/transport/openai"
	"github.com/skald-io/rankfuse/internal/usecase/demo"
	"github.com/skald-io/rankfuse/internal/version"
)

// Exit codes per error kind, so operators and scripts can tell a missing
// secret from an engine-capability mismatch.
const (
	exitOK            = 0
	exitUnknown       = 1
	exitConfiguration = 2
	exitConnectivity  = 3
	exitEmbedding     = 4
	exitIndexCreation = 5
	exitIndexTimeout  = 6
	exitQuery         = 7
)

func main() {
	os.Exit(run())
}

func run() int {
	query := flag.String("query", "space galaxy adventure", "query text for the hybrid search")
	dropFlag := flag.String("drop", "ask", "drop the seeded collection on exit: ask, yes or no")
	serve := flag.Bool("serve", false, "after setup, serve the hybrid query over HTTP")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rankfuse %s (%s)\n", version.Version, version.Commit)
		return exitOK
	}

	// .env is optional; exported variables win either way.
	_ = godotenv.Load()

	dropMode, err := demo.ParseDropMode(*dropFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfiguration
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return exitCode(err)
	}

	log, err := logger.New(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		return exitConfiguration
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting rankfuse",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("database", cfg.Mongo.Database),
		zap.String("collection", cfg.Mongo.Collection),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	metrics.Register()

	ctx := context.Background()

	store, err := atlas.NewStore(ctx, atlas.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		Collection:     cfg.Mongo.Collection,
		ConnectTimeout: time.Duration(cfg.Mongo.ConnectTimeoutSec) * time.Second,
	})
	if err != nil {
		log.Error("Failed to connect to Atlas", zap.Error(err))
		return exitCode(err)
	}
	// Released on every control path from here on.
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn("Error closing Atlas connection", zap.Error(err))
		} else {
			log.Info("Atlas connection closed")
		}
	}()
	log.Info("Connected to Atlas")

	embedder := buildEmbedder(cfg, log)

	seeder := catalog.NewSeeder(store, embedder, log)
	provisioner := searchindex.NewProvisioner(
		store,
		time.Duration(cfg.Search.IndexTimeoutSec)*time.Second,
		time.Duration(cfg.Search.PollIntervalSec)*time.Second,
		log,
	)
	runner := hybrid.NewRunner(store, log)

	svc := demo.New(seeder, provisioner, runner, embedder, demo.Params{
		TextIndex:     cfg.Search.TextIndex,
		VectorIndex:   cfg.Search.VectorIndex,
		TextFields:    cfg.Search.TextFields,
		Dimensions:    cfg.Embedding.Dimensions,
		NumCandidates: cfg.Search.NumCandidates,
		PipelineLimit: cfg.Search.PipelineLimit,
		Limit:         cfg.Search.Limit,
		VectorWeight:  cfg.Search.VectorWeight,
		TextWeight:    cfg.Search.TextWeight,
		ScoreDetails:  true,
	}, log)

	results, runErr := svc.Run(ctx, *query)
	if runErr == nil {
		demo.NewPresenter(os.Stdout).Present(*query, results)

		if *serve {
			if err := serveHTTP(cfg, svc, store, embedder, log); err != nil {
				log.Error("HTTP server error", zap.Error(err))
				runErr = err
			}
		}
	}

	if err := demo.Teardown(ctx, dropMode, os.Stdin, os.Stdout, cfg.Mongo.Collection, store, log); err != nil {
		log.Error("Teardown failed", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	if runErr != nil {
		log.Error("Run failed", zap.Error(runErr))
		return exitCode(runErr)
	}
	return exitOK
}

// buildEmbedder assembles the embedder chain: provider -> optional Redis cache.
func buildEmbedder(cfg config.Config, log *zap.Logger) domain.Embedder {
	var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		Provider:   cfg.Embedding.Provider,
		APIKey:     cfg.Embedding.APIKey,
		Endpoint:   cfg.Embedding.Endpoint,
		APIVersion: cfg.Embedding.APIVersion,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     log,
	})

	if len(cfg.Cache.Addrs) == 0 {
		return embedder
	}

	cache, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		log.Warn("Embedding cache unavailable, continuing without it", zap.Error(err))
		return embedder
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		log.Warn("Embedding cache unreachable, continuing without it", zap.Error(err))
		cache.Close()
		return embedder
	}
	log.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))

	return embcache.New(embedder, cache, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, log)
}

// serveHTTP runs the search endpoint until SIGINT/SIGTERM.
func serveHTTP(cfg config.Config, svc *demo.Service, store *atlas.Store, embedder domain.Embedder, log *zap.Logger) error {
	metrics.RegisterHTTP()

	server := chiTransport.NewServer(svc, store, embedder, log)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
		log.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server stopped gracefully")
	return nil
}

// exitCode maps the error taxonomy to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, domain.ErrConnectivity):
		return exitConnectivity
	case errors.Is(err, domain.ErrEmbeddingProvider):
		return exitEmbedding
	case errors.Is(err, domain.ErrIndexCreation):
		return exitIndexCreation
	case errors.Is(err, domain.ErrIndexTimeout):
		return exitIndexTimeout
	case errors.Is(err, domain.ErrQueryExecution):
		return exitQuery
	default:
		return exitUnknown
	}
}
