// Command migrate creates the database schema and exits. The server also
// initializes the schema on boot; this binary exists for CI and fresh
// environments where the schema must be in place before traffic.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/gestaozap/backoffice/internal/config"
	"github.com/gestaozap/backoffice/internal/db"
	"github.com/gestaozap/backoffice/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	cfg := config.Load()

	bunDB := db.NewBunPostgresClient(cfg.DatabaseURL)
	defer bunDB.Close()

	importStore := store.NewPostgresStore(bunDB)
	if err := importStore.InitializeDatabase(context.Background()); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
	if err := db.InitializeSchema(context.Background(), bunDB); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	log.Println("Database schema up to date")
}
