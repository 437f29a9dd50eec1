// Command loader pushes a prepared corpus file into a Qdrant collection.
// The corpus is expected to carry precomputed embeddings; records without
// one are embedded through the configured embedding service first.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"kaspabot/internal/config"
	"kaspabot/internal/llm"
	"kaspabot/internal/vectorstore"
)

func main() {
	corpusPath := flag.String("corpus", "", "corpus JSON file (defaults to CORPUS_PATH)")
	batchSize := flag.Int("batch", 64, "upsert batch size")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	path := *corpusPath
	if path == "" {
		path = cfg.CorpusPath
	}

	records, err := vectorstore.ReadCorpus(path)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	slog.Info("Corpus loaded", "path", path, "records", len(records))

	ctx := context.Background()

	qdrantIndex, err := vectorstore.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := qdrantIndex.EnsureCollection(ctx, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.QdrantVectorSize)

	for start := 0; start < len(records); start += *batchSize {
		end := start + *batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		for i := range batch {
			if len(batch[i].Embedding) > 0 {
				continue
			}
			vec, err := embedder.EmbedText(ctx, batch[i].Content)
			if err != nil {
				log.Fatalf("Failed to embed record %s: %v", batch[i].ID, err)
			}
			batch[i].Embedding = vec
		}

		if err := qdrantIndex.Upsert(ctx, batch); err != nil {
			log.Fatalf("Failed to upsert batch at %d: %v", start, err)
		}
		slog.Info("Batch upserted", "from", start, "to", end)
	}

	slog.Info("Corpus upload complete", "collection", cfg.QdrantCollection, "records", len(records))
}
