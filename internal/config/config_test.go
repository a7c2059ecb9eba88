package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigWithEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", `
app:
  name: bluemoon
  port: 9000
jwt:
  secret_key: base-secret
database:
  host: db.internal
  dbname: bluemoon
activity:
  workers: 2
  exclude_paths:
    - /api/health
`)
	writeFile(t, dir, "app.test.yaml", `
app:
  port: 9100
activity:
  log_get_requests: true
`)
	t.Setenv("BLUEMOON_JWT_SECRET_KEY", "env-secret")
	t.Setenv("BLUEMOON_DATABASE_PASSWORD", "pg-pass")

	cfg, err := LoadConfigWithEnv(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, 9100, cfg.App.Port)
	assert.Equal(t, "env-secret", cfg.JWT.SecretKey)
	assert.Equal(t, "pg-pass", cfg.Database.Password)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)

	assert.True(t, cfg.Activity.LogGetRequests)
	assert.Equal(t, 2, cfg.Activity.Workers)
	assert.Equal(t, 1024, cfg.Activity.QueueSize)
	assert.Equal(t, int64(64*1024), cfg.Activity.MaxBodyBytes)
	assert.Equal(t, []string{"/api/health"}, cfg.Activity.ExcludePaths)
	assert.Equal(t, DefaultActivityActions, cfg.Activity.Actions)
	assert.Equal(t, 90*24*time.Hour, cfg.Activity.GetRetention())

	assert.Same(t, cfg, GetConfig())
}

func TestLoadConfigWithEnv_FileArgument(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "custom.yaml", "jwt:\n  secret_key: s\n")

	cfg, err := LoadConfigWithEnv(file, "dev")
	require.NoError(t, err)
	assert.Equal(t, "s", cfg.JWT.SecretKey)
	assert.Equal(t, "bluemoon", cfg.JWT.Issuer)
	assert.Equal(t, time.Hour, cfg.JWT.GetJWTExpiration())
}

func TestLoadConfigWithEnv_Errors(t *testing.T) {
	_, err := LoadConfigWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), "dev")
	assert.Error(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "app:\n  port: 8080\n")
	_, err = LoadConfigWithEnv(dir, "dev")
	assert.Error(t, err, "jwt secret is required")

	writeFile(t, dir, "app.yaml", "jwt:\n  secret_key: s\narchive:\n  enabled: true\n")
	_, err = LoadConfigWithEnv(dir, "dev")
	assert.Error(t, err, "archive needs type and bucket")

	writeFile(t, dir, "app.yaml", "jwt:\n  secret_key: s\n")
	_, err = LoadConfigWithEnv(dir, "staging")
	assert.Error(t, err, "unknown env")
}

func TestDatabaseConfig_URLs(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost", Port: 5432, Username: "u", Password: "p", DBName: "d", SSLMode: "disable"}

	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=d sslmode=disable", cfg.GetDSN())
	assert.Equal(t, "postgres://u:p@localhost:5432/d?sslmode=disable", cfg.GetMigrateURL())
}
