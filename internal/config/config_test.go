package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
environment = "development"
host = "localhost"
port = 8080
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "train_diary"
redis_host = "localhost"
redis_port = "6379"
prom_metrics_host = "localhost"
prom_metrics_port = "2112"
login_rate_limit_allowed_per_min = 15

[production]
environment = "production"
host = ""
port = 9000
log_level = "debug"
logs_path = "/var/log/train-diary/service.log"
postgres_host = "td-db"
postgres_port = "5432"
postgres_db_name = "train_diary"
redis_host = "td-redis"
redis_port = "6379"
prom_metrics_host = ""
prom_metrics_port = "2112"
login_rate_limit_allowed_per_min = 10
`

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigContent), 0o600))

	cfg, err := Load("dev", configPath)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "train_diary", cfg.PostgresDBName)
	assert.True(t, cfg.LogToStdout)
	assert.Equal(t, 15, cfg.LoginRateLimitAllowedPerMin)

	cfg, err = Load("production", configPath)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/var/log/train-diary/service.log", cfg.LogsPath)

	_, err = Load("staging", configPath)
	require.Error(t, err)

	_, err = Load("dev", filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
