package main

import (
	"context"
	"log"
	"os"

	"go-jobalert/internal/app"
	"go-jobalert/internal/config"
	"go-jobalert/internal/server"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	addr := cfg.ServerAddr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to init pipeline: %v", err)
	}
	defer a.Close()

	r := server.NewRouter(a)

	log.Printf("Server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
