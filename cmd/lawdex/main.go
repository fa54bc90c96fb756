package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/config"
	dbRedis "github.com/civic-ai/lawdex/internal/db/redis"
	"github.com/civic-ai/lawdex/internal/domain"
	logpkg "github.com/civic-ai/lawdex/internal/logger"
	"github.com/civic-ai/lawdex/internal/metrics"
	"github.com/civic-ai/lawdex/internal/registry"
	"github.com/civic-ai/lawdex/internal/repository/embcache"
	chiTransport "github.com/civic-ai/lawdex/internal/transport/chi"
	openaiTransport "github.com/civic-ai/lawdex/internal/transport/openai"
	askuc "github.com/civic-ai/lawdex/internal/usecase/ask"
	healthuc "github.com/civic-ai/lawdex/internal/usecase/health"
	searchuc "github.com/civic-ai/lawdex/internal/usecase/search"
	"github.com/civic-ai/lawdex/internal/version"
)

func main() {
	// .env is optional; the config layer resolves ${VAR} references itself.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lawdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("vectorstore_path", cfg.Vectorstore.Path),
		zap.Strings("collections", cfg.Vectorstore.Collections),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	// Embedder chain, composed here at the root
	providerEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	var embedder domain.Embedder = providerEmbedder

	var cacheStore *dbRedis.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		embedder = embcache.New(
			embedder, cacheStore,
			cfg.Cache.KeyPrefix, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Collection registry — lazy, loads on first query
	paths := make(map[string]registry.CollectionPaths, len(cfg.Vectorstore.Collections))
	for _, name := range cfg.Vectorstore.Collections {
		paths[name] = registry.CollectionPaths{
			Index:    cfg.Vectorstore.IndexPath(name),
			Metadata: cfg.Vectorstore.MetadataPath(name),
		}
	}
	reg := registry.New(paths, registry.NewFileLoader(logger), logger)

	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		Logger:  logger,
	})

	// Use case services
	searchSvc := searchuc.New(searchuc.NewRegistryCollections(reg), embedder, logger)
	askSvc := askuc.New(askuc.Config{
		Classifier:    askuc.NewClassifier(completer, logger),
		Multi:         askuc.NewMultiQueryRetriever(searchSvc, completer, cfg.Ask.MinSimilarity, logger),
		Search:        searchSvc,
		Complete:      completer,
		TopK:          cfg.Ask.TopK,
		MinSimilarity: cfg.Ask.MinSimilarity,
		Logger:        logger,
	})

	var cachePinger healthuc.CachePinger
	if cacheStore != nil {
		cachePinger = cacheStore
	}
	healthSvc := healthuc.New(providerEmbedder, cachePinger)

	server := chiTransport.NewServer(askSvc, searchSvc, reg, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
