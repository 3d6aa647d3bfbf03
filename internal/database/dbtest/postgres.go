//go:build integration

// Package dbtest starts disposable PostgreSQL containers for integration tests.
package dbtest

import (
	"context"
	"net/url"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/nexus/paper-discovery-service/internal/config"
)

// Image is the PostgreSQL image used by integration tests.
const Image = "postgres:16-alpine"

// StartPostgres runs a PostgreSQL container for the lifetime of t and
// returns a database config pointing at it.
func StartPostgres(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, Image,
		postgres.WithDatabase("nexus"),
		postgres.WithUsername("nexus"),
		postgres.WithPassword("nexus"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	password, _ := u.User.Password()

	return &config.DatabaseConfig{
		Enabled:           true,
		Host:              u.Hostname(),
		Port:              port,
		User:              u.User.Username(),
		Password:          password,
		Name:              "nexus",
		SSLMode:           config.SSLModeDisable,
		MaxConns:          5,
		MinConns:          1,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
		ConnectTimeout:    10 * time.Second,
		MigrationPath:     MigrationsPath(t),
	}
}

// MigrationsPath returns the absolute path of the repository migrations.
func MigrationsPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
