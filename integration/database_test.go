//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCalheatWithMySQL tests the calheat CLI with a MySQL backend.
func TestCalheatWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "calheat",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/calheat", host, port.Port())
	exerciseRunsBackend(t, "mysql", connStr)
}

// TestCalheatWithPostgres tests the calheat CLI with a PostgreSQL backend.
func TestCalheatWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseRunsBackend(t, "postgresql", connStr)
}

// exerciseRunsBackend runs the full runs lifecycle against a SQL server.
func exerciseRunsBackend(t *testing.T, backend, connStr string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("CALHEAT_RUNS_BACKEND", backend)
	t.Setenv("CALHEAT_RUNS_DB_CONNECT", connStr)
	input := writeObservations(t, dir)

	// Start from a clean schema managed by migrations
	_, err := runCalheatCommand(t, dir, "runs", "clear")
	require.NoError(t, err)
	_, err = runCalheatCommand(t, dir, "runs", "migrate")
	require.NoError(t, err)

	_, err = runCalheatCommand(t, dir, "heatmap", input, "--timezone", "UTC", "--output", "csv")
	require.NoError(t, err)

	out, err := runCalheatCommand(t, dir, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")
	assert.Contains(t, out, "Total Runs: 1")
	assert.Contains(t, out, "Total Days Recorded: 2")

	_, err = runCalheatCommand(t, dir, "runs", "export", "--output-file", dir+"/history")
	require.NoError(t, err)

	// Roll back and clear
	_, err = runCalheatCommand(t, dir, "runs", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, err = runCalheatCommand(t, dir, "runs", "clear")
	require.NoError(t, err)
}
