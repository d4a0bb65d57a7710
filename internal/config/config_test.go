package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	require.Equal(t, BlobBackendDisk, cfg.Blob.Backend)
	require.Equal(t, "./uploads", cfg.Blob.Dir)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, "/metrics", cfg.Metrics.PrometheusPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ARCHIVE_API_PORT", "9090")
	t.Setenv("ARCHIVE_BLOB_BACKEND", "minio")
	t.Setenv("ARCHIVE_AUTH_TOKEN_TTL", "1h")
	t.Setenv("POSTGRES_SSL_MODE", "REQUIRE")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, BlobBackendMinIO, cfg.Blob.Backend)
	require.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "require", cfg.Postgres.SSLMode)
}

func TestLoadRejectsUnknownBlobBackend(t *testing.T) {
	t.Setenv("ARCHIVE_BLOB_BACKEND", "ftp")

	_, err := Load()
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "db",
		Port:     5433,
		User:     "u",
		Password: "p",
		Database: "archive",
		SSLMode:  "disable",
	}
	require.Equal(t, "postgres://u:p@db:5433/archive?sslmode=disable", p.DSN())
}
