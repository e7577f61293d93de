package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-jobalert/internal/app"
	"go-jobalert/internal/config"
)

func main() {
	//load config
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("🔧 Config loaded. Roster: %s, fetcher: %s, recency: %s", cfg.RosterPath, cfg.Fetcher, cfg.RecencyWindow)

	//stop between employers on Ctrl+C, the partial report is still delivered and saved
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init pipeline: %v", err)
	}
	defer a.Close()

	if _, err := a.RunOnce(ctx); err != nil {
		log.Printf("❌ Run failed: %v", err)
		a.Close()
		os.Exit(1)
	}

	log.Println("🏁 Execution finished.")
}
