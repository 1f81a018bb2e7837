package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "config-test-secret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.OpsPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "credit_db", cfg.DB.DBName)
	assert.Equal(t, "@every 1h", cfg.Scheduler.MaturitySweep)
	assert.Equal(t, 30*time.Minute, cfg.Ingestion.LockTTL)
	assert.Equal(t, []string{"stdout"}, cfg.Log.Output)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8000")
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("DB_NAME", "loans")
	t.Setenv("INGEST_DIR", "/data")
	t.Setenv("INGEST_SCHEDULE", "0 3 * * *")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("LOG_OUTPUT", "stdout, /var/log/credit.log")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, "loans", cfg.DB.DBName)
	assert.Equal(t, "/data", cfg.Ingestion.Dir)
	assert.Equal(t, "0 3 * * *", cfg.Ingestion.Schedule)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"stdout", "/var/log/credit.log"}, cfg.Log.Output)
}

func TestNewConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 7000\ningest:\n  customer_file: customers.csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET_KEY", "config-test-secret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "customers.csv", cfg.Ingestion.CustomerFile)
	assert.Equal(t, "loan_data.xlsx", cfg.Ingestion.LoanFile)
}

func TestNewConfigValidation(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRES_IN", "0")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
	assert.Contains(t, err.Error(), "JWT")
}

func TestDSN(t *testing.T) {
	cfg := &Config{}
	cfg.DB.Host = "db"
	cfg.DB.Port = 5432
	cfg.DB.User = "u"
	cfg.DB.Password = "p"
	cfg.DB.DBName = "credit"
	cfg.DB.SSLMode = "disable"

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=credit sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/credit?sslmode=disable", cfg.MigrationURL())
}

func TestNewConfigRequiresSecretForPostgres(t *testing.T) {
	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")

	t.Setenv("JWT_SECRET_KEY", insecureSecretKey)
	_, err = NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")

	// Хранилище в памяти используется для локального запуска
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err = NewConfig()
	assert.NoError(t, err)
}

func TestMigrationURLEscapesCredentials(t *testing.T) {
	cfg := &Config{}
	cfg.DB.Host = "db"
	cfg.DB.Port = 5432
	cfg.DB.User = "credit"
	cfg.DB.Password = "p@ss/w:rd?"
	cfg.DB.DBName = "credit"
	cfg.DB.SSLMode = "require"

	u, err := url.Parse(cfg.MigrationURL())
	require.NoError(t, err)

	password, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?", password)
	assert.Equal(t, "credit", u.User.Username())
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/credit", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}
