package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"IFS_APP_NAME":                os.Getenv("IFS_APP_NAME"),
		"IFS_APP_ENV":                 os.Getenv("IFS_APP_ENV"),
		"IFS_APP_PORT":                os.Getenv("IFS_APP_PORT"),
		"IFS_DATABASE_DRIVER":         os.Getenv("IFS_DATABASE_DRIVER"),
		"IFS_DATABASE_HOST":           os.Getenv("IFS_DATABASE_HOST"),
		"IFS_DATABASE_PORT":           os.Getenv("IFS_DATABASE_PORT"),
		"IFS_DATABASE_USER":           os.Getenv("IFS_DATABASE_USER"),
		"IFS_DATABASE_PASSWORD":       os.Getenv("IFS_DATABASE_PASSWORD"),
		"IFS_DATABASE_DBNAME":         os.Getenv("IFS_DATABASE_DBNAME"),
		"IFS_DATABASE_SSLMODE":        os.Getenv("IFS_DATABASE_SSLMODE"),
		"IFS_DATABASE_MAX_OPEN_CONNS": os.Getenv("IFS_DATABASE_MAX_OPEN_CONNS"),
		"IFS_DATABASE_MAX_IDLE_CONNS": os.Getenv("IFS_DATABASE_MAX_IDLE_CONNS"),
		"IFS_RETAIL_BASE_URL":         os.Getenv("IFS_RETAIL_BASE_URL"),
		"IFS_RETAIL_API_KEY":          os.Getenv("IFS_RETAIL_API_KEY"),
		"IFS_ACCOUNTING_BASE_URL":     os.Getenv("IFS_ACCOUNTING_BASE_URL"),
		"IFS_ACCOUNTING_PASSWORD":     os.Getenv("IFS_ACCOUNTING_PASSWORD"),
		"IFS_SCHEDULER_SYNC_HOUR":     os.Getenv("IFS_SCHEDULER_SYNC_HOUR"),
		"IFS_BATCH_WORKER_COUNT":      os.Getenv("IFS_BATCH_WORKER_COUNT"),
		"IFS_JWT_SECRET":              os.Getenv("IFS_JWT_SECRET"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "invoiceflow-server", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "invoiceflow", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 2, cfg.Scheduler.SyncHour)
		assert.Equal(t, 1, cfg.Scheduler.LookbackDays)
		assert.Equal(t, 5, cfg.Batch.WorkerCount)
	})

	t.Run("loads values from environment variables with IFS prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("IFS_APP_NAME", "test-app")
		os.Setenv("IFS_APP_ENV", "testing")
		os.Setenv("IFS_APP_PORT", "9000")
		os.Setenv("IFS_DATABASE_HOST", "testdb.local")
		os.Setenv("IFS_DATABASE_PORT", "5433")
		os.Setenv("IFS_DATABASE_USER", "testuser")
		os.Setenv("IFS_DATABASE_PASSWORD", "testpass")
		os.Setenv("IFS_RETAIL_BASE_URL", "http://pos.local")
		os.Setenv("IFS_RETAIL_API_KEY", "pos-key")
		os.Setenv("IFS_ACCOUNTING_BASE_URL", "http://acct.local")
		os.Setenv("IFS_BATCH_WORKER_COUNT", "8")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "http://pos.local", cfg.Retail.BaseURL)
		assert.Equal(t, "pos-key", cfg.Retail.APIKey)
		assert.Equal(t, "http://acct.local", cfg.Accounting.BaseURL)
		assert.Equal(t, 8, cfg.Batch.WorkerCount)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("IFS_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("IFS_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("IFS_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects out-of-range sync hour", func(t *testing.T) {
		clearEnv()
		os.Setenv("IFS_SCHEDULER_SYNC_HOUR", "25")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync_hour")
	})

	t.Run("production requires secrets", func(t *testing.T) {
		clearEnv()
		os.Setenv("IFS_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres dsn escapes credentials", func(t *testing.T) {
		cfg := &DatabaseConfig{
			Driver:   "postgres",
			Host:     "db.local",
			Port:     5432,
			User:     "sync",
			Password: "p@ss:word",
			DBName:   "invoiceflow",
			SSLMode:  "require",
		}
		dsn := cfg.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "db.local:5432")
		assert.Contains(t, dsn, "sslmode=require")
		assert.NotContains(t, dsn, "p@ss:word") // escaped
	})

	t.Run("sqlite dsn is the file path", func(t *testing.T) {
		cfg := &DatabaseConfig{Driver: "sqlite", Path: "/tmp/test.db"}
		assert.Equal(t, "/tmp/test.db", cfg.DSN())
	})
}
