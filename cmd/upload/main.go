// Command upload embeds a knowledge file and inserts it into a tenant's
// knowledge base. Each blank-line-separated paragraph becomes one row.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/247convo/convo-backend/internal/chat"
	appconfig "github.com/247convo/convo-backend/internal/config"
	"github.com/247convo/convo-backend/internal/knowledge"
	"github.com/247convo/convo-backend/internal/tenancy"
	"github.com/247convo/convo-backend/pkg/logging"
)

func main() {
	clientID := flag.String("client", "", "client id to upload for (required)")
	file := flag.String("file", "knowledge.txt", "knowledge text file")
	whole := flag.Bool("whole", false, "embed the whole file as a single row instead of per paragraph")
	flag.Parse()

	if *clientID == "" {
		log.Fatal("-client is required")
	}

	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	chunks := []string{strings.TrimSpace(string(raw))}
	if !*whole {
		chunks = splitParagraphs(string(raw))
	}
	if len(chunks) == 0 {
		log.Fatal("no content to upload")
	}

	ctx := tenancy.WithClientID(context.Background(), *clientID)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("postgres pool: %v", err)
	}
	defer pool.Close()

	embedder, err := chat.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel)
	if err != nil {
		log.Fatalf("openai client: %v", err)
	}
	repo := knowledge.NewPostgresRepository(pool, logger)

	for i, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk)
		if err != nil {
			log.Fatalf("embed chunk %d: %v", i+1, err)
		}
		row := knowledge.Row{Content: chunk, Embedding: knowledge.EncodeEmbedding(vec)}
		if err := repo.InsertRow(ctx, *clientID, row); err != nil {
			log.Fatalf("insert chunk %d: %v", i+1, err)
		}
		fmt.Printf("uploaded chunk %d/%d (%d chars)\n", i+1, len(chunks), len(chunk))
	}
	fmt.Printf("done: %d rows for %s\n", len(chunks), *clientID)
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
