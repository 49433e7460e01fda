package main

import (
	"context"
	"log"

	"healthcorr/adapters/sqlstore"
	"healthcorr/internal/config"
	"healthcorr/internal/migration"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !appConfig.Database.Enabled() {
		log.Fatal("DATABASE_URL is empty; nothing to migrate")
	}

	ctx := context.Background()
	db, err := sqlstore.Open(ctx, appConfig.Database.Driver, appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	log.Printf("Applying schema %s to %s database", runner.Version(), appConfig.Database.Driver)
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migration complete")
}
