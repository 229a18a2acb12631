package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"cinetic/internal/ingest"
	"cinetic/internal/tmdb"
	"cinetic/pkg/database"
)

func main() {
	_ = godotenv.Load()

	token := os.Getenv("TMDB_TOKEN")
	if token == "" {
		log.Fatal("TMDB_TOKEN is required")
	}

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	// Ensure schema exists
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	client := tmdb.NewClient(token)
	store := ingest.NewStore(db)
	seeder := ingest.NewSeeder(client, store)

	if err := seeder.Run(context.Background()); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	log.Println("finished seeding database")
}
