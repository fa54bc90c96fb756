// Command lawdex-ingest builds a collection's on-disk index/metadata pair
// from a JSON Lines document dump.
//
// Usage:
//
//	lawdex-ingest -collection law -input law.jsonl
//
// Each input line is one document:
//
//	{"content": "...", "title": "...", "type": "law", "metadata": {"source": "..."}}
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/config"
	dbRedis "github.com/civic-ai/lawdex/internal/db/redis"
	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/index"
	logpkg "github.com/civic-ai/lawdex/internal/logger"
	"github.com/civic-ai/lawdex/internal/metrics"
	"github.com/civic-ai/lawdex/internal/repository/embcache"
	openaiTransport "github.com/civic-ai/lawdex/internal/transport/openai"
)

const embedBatchSize = 64

func main() {
	_ = godotenv.Load()

	collection := flag.String("collection", "", "collection name (e.g. law, press_release)")
	input := flag.String("input", "", "JSON Lines file with documents")
	flag.Parse()

	if *collection == "" || *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterEmbeddingMetrics()

	if err := run(cfg, *collection, *input, logger); err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}
}

func run(cfg config.Config, collection, input string, logger *zap.Logger) error {
	records, err := readDocuments(input)
	if err != nil {
		return fmt.Errorf("read documents: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no documents in %s", input)
	}
	logger.Info("Documents read", zap.String("input", input), zap.Int("count", len(records)))

	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	// With a cache configured, re-running ingestion reuses cached embeddings.
	if len(cfg.Cache.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return fmt.Errorf("create cache store: %w", err)
		}
		defer store.Close()
		embedder = embcache.New(
			embedder, store,
			cfg.Cache.KeyPrefix, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	vectors, err := embedAll(context.Background(), embedder, records, logger)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	// Normalize up front so the index only ever holds unit vectors.
	for i, v := range vectors {
		vectors[i] = index.Normalize(v)
	}

	if err := os.MkdirAll(cfg.Vectorstore.Path, 0o750); err != nil {
		return fmt.Errorf("create vectorstore dir: %w", err)
	}

	indexPath := cfg.Vectorstore.IndexPath(collection)
	if err := index.WriteVectors(indexPath, vectors, len(vectors[0])); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}

	metaPath := cfg.Vectorstore.MetadataPath(collection)
	if err := writeMetadata(metaPath, records); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	logger.Info("Collection written",
		zap.String("collection", collection),
		zap.String("index", indexPath),
		zap.String("metadata", metaPath),
		zap.Int("documents", len(records)),
		zap.Int("dimension", len(vectors[0])),
	)
	return nil
}

func readDocuments(path string) ([]map[string]any, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if content, _ := rec["content"].(string); content == "" {
			return nil, fmt.Errorf("line %d: empty content", line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func embedAll(
	ctx context.Context, embedder domain.Embedder, records []map[string]any, logger *zap.Logger,
) ([][]float32, error) {
	vectors := make([][]float32, 0, len(records))

	for start := 0; start < len(records); start += embedBatchSize {
		end := min(start+embedBatchSize, len(records))

		texts := make([]string, 0, end-start)
		for _, rec := range records[start:end] {
			content, _ := rec["content"].(string)
			texts = append(texts, content)
		}

		var res domain.BatchEmbeddingResult
		var err error
		if be, ok := embedder.(domain.BatchEmbedder); ok {
			res, err = be.BatchEmbed(ctx, texts)
		} else {
			res, err = domain.BatchFallback(ctx, embedder, texts)
		}
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		vectors = append(vectors, res.Embeddings...)

		logger.Info("Batch embedded",
			zap.Int("done", end),
			zap.Int("total", len(records)),
			zap.Int("tokens", res.TotalTokens),
		)
	}

	return vectors, nil
}

func writeMetadata(path string, records []map[string]any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return os.WriteFile(filepath.Clean(path), data, 0o640)
}
