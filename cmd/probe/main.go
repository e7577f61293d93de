// Command probe runs the search pipeline for one employer and prints the
// accepted links. Nothing is persisted and no notification is sent.
//
//	go run ./cmd/probe "Acme Corp"
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go-jobalert/internal/app"
	"go-jobalert/internal/browser"
	"go-jobalert/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: probe <employer name>")
	}
	employer := strings.Join(os.Args[1:], " ")

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if cfg.CookiesPath != "" {
		cookies, err := browser.LoadCookies(cfg.CookiesPath)
		if err != nil {
			log.Printf("⚠️ Could not load cookies: %v", err)
		} else {
			fmt.Printf("🍪 Loaded %d cookies from %s\n", len(cookies), cfg.CookiesPath)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init pipeline: %v", err)
	}
	defer a.Close()

	fmt.Printf("🔍 Probing %q with the %s fetcher...\n", employer, cfg.Fetcher)
	res := a.Probe(ctx, employer)

	fmt.Printf("Query (%s): %s\n", res.Query.Kind, res.Query.Text)
	if res.Err != nil {
		fmt.Printf("❌ %v\n", res.Err)
		return
	}
	if len(res.Links) == 0 {
		fmt.Println("No links accepted.")
		return
	}
	for _, l := range res.Links {
		fmt.Printf("→ %s\n", l)
	}
	fmt.Println("✨ Probe complete!")
}
