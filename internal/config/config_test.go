package config

import (
	"testing"

	"healthcorr/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"DATA_FILE", "DATA_SHEET", "CODEBOOK_FILE", "MIN_VALID_FIELDS", "ENGINE_WORKERS",
	"PORT", "GIN_MODE", "DB_DRIVER", "PPROF_PORT", "PPROF_ENABLED", "COLOR_SCHEME",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Data.File)
	assert.Equal(t, "Sheet1", cfg.Data.Sheet)
	assert.Equal(t, 5, cfg.Data.MinValidFields)
	assert.Equal(t, 1, cfg.Engine.Workers)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "6060", cfg.Profiling.Port)
	assert.False(t, cfg.Profiling.Enabled)
	assert.Equal(t, "RdBu", cfg.View.Scheme)

	err = cfg.RequireDataFile()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_FILE", "brfss.xlsx")
	t.Setenv("MIN_VALID_FIELDS", "3")
	t.Setenv("ENGINE_WORKERS", "4")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/health")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "brfss.xlsx", cfg.Data.File)
	assert.Equal(t, 3, cfg.Data.MinValidFields)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Database.Enabled())
	assert.True(t, cfg.Profiling.Enabled)
	assert.NoError(t, cfg.RequireDataFile())
}

func TestLoad_EmptyDatabaseURLDisablesStorage(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"workers":   {"ENGINE_WORKERS", "0"},
		"min valid": {"MIN_VALID_FIELDS", "-2"},
		"driver":    {"DB_DRIVER", "mysql"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
