package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/davem/rfpdesk/internal/ai"
	"github.com/davem/rfpdesk/internal/api"
	"github.com/davem/rfpdesk/internal/config"
	"github.com/davem/rfpdesk/internal/db"
	"github.com/davem/rfpdesk/internal/mail"
	"github.com/davem/rfpdesk/internal/mailer"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found, using environment as-is")
	}
	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	aiClient := ai.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel)
	sender := &mailer.SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	store := db.NewStore(pool)
	resolver := mail.NewResolver(store)

	registry, err := config.LoadRegistry("internal/config/config/mailboxes.yaml")
	if err != nil {
		log.Fatalf("Failed to load mailbox registry: %v", err)
	}

	// One watcher per configured mailbox, plus a scheduled unseen sweep as
	// a fallback for events missed while disconnected. The sweep uses its
	// own mailbox connection so it never interleaves with the idle loop.
	sweeps := cron.New()
	for _, mc := range registry.Mailboxes {
		if mc.Username == "" || mc.Password == "" {
			log.Printf("[%s] mailbox credentials not set; skipping watcher", mc.ID)
			continue
		}

		watcher := mail.NewWatcher(mc.ID, &mail.IMAPMailbox{
			Host:     mc.Host,
			Port:     mc.Port,
			Username: mc.Username,
			Password: mc.Password,
			Folder:   mc.Folder,
		}, aiClient, resolver, store)

		go func(w *mail.Watcher) {
			if err := w.Run(ctx); err != nil {
				log.Printf("[%s] watcher stopped: %v", w.ID, err)
			}
		}(watcher)

		if mc.Schedule != "" {
			sweep := mail.NewWatcher(mc.ID+"-sweep", &mail.IMAPMailbox{
				Host:     mc.Host,
				Port:     mc.Port,
				Username: mc.Username,
				Password: mc.Password,
				Folder:   mc.Folder,
			}, aiClient, resolver, store)

			if _, err := sweeps.AddFunc(mc.Schedule, func() {
				if err := sweep.SweepUnseen(ctx); err != nil {
					log.Printf("[%s] sweep failed: %v", sweep.ID, err)
				}
			}); err != nil {
				log.Fatalf("[%s] invalid sweep schedule %q: %v", mc.ID, mc.Schedule, err)
			}
		}
	}
	sweeps.Start()
	defer sweeps.Stop()

	srv := api.NewServer(pool, aiClient, sender)
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := srv.Start(cfg.Port); err != nil {
		log.Fatal(err)
	}
}
