package main

import (
	"context"
	"log"

	"healthcorr/adapters/codebook"
	"healthcorr/adapters/excel"
	"healthcorr/adapters/sqlstore"
	"healthcorr/adapters/stats/engine"
	"healthcorr/app"
	"healthcorr/internal"
	"healthcorr/internal/config"
	"healthcorr/internal/dataset"
	"healthcorr/internal/errors"
	"healthcorr/internal/migration"
	"healthcorr/ports"
	"healthcorr/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

// initDatabase opens snapshot storage and applies the schema
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlstore.Open(ctx, appConfig.Database.Driver, appConfig.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	logger := internal.NewDefaultLogger()
	internal.DefaultLogger = logger

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := appConfig.RequireDataFile(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	if err := run(context.Background(), appConfig, logger); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// run wires storage, data and servers, and blocks until the API listener fails.
// Deferred cleanup runs before the error reaches main.
func run(ctx context.Context, appConfig *config.Config, logger *internal.Logger) error {
	var repo ports.MatrixRepository
	if appConfig.Database.Enabled() {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			return errors.Wrap(err, "failed to initialize database")
		}
		defer db.Close()
		repo = sqlstore.NewMatrixRepository(db)
		logger.Info("snapshot storage: %s", appConfig.Database.Driver)
	} else {
		logger.Info("snapshot storage disabled (DATABASE_URL is empty)")
	}

	cb, err := codebook.Load(appConfig.Data.CodebookFile)
	if err != nil {
		return errors.Wrap(err, "failed to load codebook")
	}

	scheme, err := app.ParseColorScheme(appConfig.View.Scheme)
	if err != nil {
		return errors.Wrap(err, "invalid COLOR_SCHEME")
	}

	service := app.NewHeatmapService(
		excel.NewDataReader(appConfig.Data.File, appConfig.Data.Sheet, logger),
		dataset.NewProcessor(appConfig.Data.MinValidFields, logger),
		engine.NewStatsEngine(engine.Options{Workers: appConfig.Engine.Workers}),
		repo,
		logger,
	)

	session, err := service.Load(ctx, cb, scheme)
	if err != nil {
		return errors.Wrap(err, "failed to load survey data")
	}

	// Start the ops listener (health + pprof)
	ops := ui.NewOpsServer(appConfig.Profiling.Enabled, logger)
	go func() {
		if appConfig.Profiling.Enabled {
			logger.Info("view profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Profiling.Port)
		}
		if err := ops.Start(":" + appConfig.Profiling.Port); err != nil {
			logger.Error("ops server failed: %v", err)
		}
	}()

	server := ui.NewServer(service, session, logger)
	return server.Start(":" + appConfig.Server.Port)
}
