// Command provision applies the StackIt schema to the Supabase project's
// Postgres database: tables, indexes and the answer-count RPC function.
// Run once per project, with SUPABASE_DB_URL set to the direct connection
// string from the project settings.
package main

import (
	"log"

	"stackit/internal/config"
	"stackit/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()
	if cfg.Supabase.DatabaseURL == "" {
		log.Fatal("SUPABASE_DB_URL is required")
	}

	db, err := database.NewConnection(cfg.Supabase.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	log.Println("Supabase project provisioned")
}
