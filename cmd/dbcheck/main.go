package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go-jobalert/internal/dedup"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		godotenv.Load("../../.env")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set. Please check your .env file.")
	}

	fmt.Println("Attempting to connect to PostgreSQL...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to the database. Error: %v", err)
	}
	defer conn.Close(context.Background())

	var version string
	if err := conn.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}
	fmt.Println("🚀 Database Version:", version)

	//creates the seen_links table when missing
	store, err := dedup.NewPostgresStore(ctx, dbURL)
	if err != nil {
		log.Fatalf("❌ Failed to open seen store: %v", err)
	}
	defer store.Close()

	seen := store.Load(ctx)
	fmt.Printf("📦 Seen links stored: %d\n", seen.Len())
	fmt.Println("✅ Successfully connected to the database!")
}
