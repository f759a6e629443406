package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/davem/rfpdesk/internal/ai"
	"github.com/davem/rfpdesk/internal/config"
	"github.com/davem/rfpdesk/internal/db"
	"github.com/davem/rfpdesk/internal/mail"
)

// Runs one saved .eml file through the same parse/extract/resolve/persist
// path the mailbox watcher uses. Useful for replaying a reply that was
// skipped, without touching the mailbox.
func main() {
	path := flag.String("file", "", "Path to a raw RFC 5322 message (.eml)")
	flag.Parse()

	if *path == "" {
		log.Fatal("Please provide a message file using -file flag")
	}

	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found, using environment as-is")
	}
	cfg := config.Load()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read message: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store := db.NewStore(pool)
	aiClient := ai.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel)
	watcher := mail.NewWatcher("manual", nil, aiClient, mail.NewResolver(store), store)

	if err := watcher.Process(ctx, raw); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	log.Print("Message ingested")
}
