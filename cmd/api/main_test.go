package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"healthcorr/internal"
	"healthcorr/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Data: config.DataConfig{
			File:           filepath.Join(dir, "missing.csv"),
			Sheet:          "Sheet1",
			MinValidFields: 5,
		},
		Engine:   config.EngineConfig{Workers: 1},
		Server:   config.ServerConfig{Port: "0", GinMode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite3", URL: filepath.Join(dir, "snapshots.db")},
		View:     config.ViewConfig{Scheme: "RdBu"},
	}
}

func TestRun_ReturnsLoadErrorAfterClosingStorage(t *testing.T) {
	cfg := testConfig(t)
	logger := internal.NewLoggerTo(io.Discard, internal.LogLevelError)

	err := run(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load survey data")

	// The schema was applied and the file is free to reopen once run has returned.
	db, err := sqlx.Open("sqlite3", cfg.Database.URL)
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM matrix_snapshots`))
	assert.Equal(t, 0, count)
}

func TestRun_InvalidScheme(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.URL = ""
	cfg.View.Scheme = "Jet"

	err := run(context.Background(), cfg, internal.NewLoggerTo(io.Discard, internal.LogLevelError))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid COLOR_SCHEME")
}
