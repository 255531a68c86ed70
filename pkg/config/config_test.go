package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DB.Host)
	assert.NotEmpty(t, cfg.Server.Port)
	assert.NotEmpty(t, cfg.JWT.SigningKey)
	assert.Greater(t, cfg.JWT.ExpirationHours, 0)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "clinic_test")
	t.Setenv("DB_SSL_MODE", "require")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "24")
	t.Setenv("SENTRY_DSN", "https://key@sentry.example/1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "6543", cfg.DB.Port)
	assert.Equal(t, "clinic_test", cfg.DB.DBName)
	assert.Equal(t, "require", cfg.DB.SSLMode)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, "https://key@sentry.example/1", cfg.Sentry.DSN)
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		DBName:   "clinic_db",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=clinic_db sslmode=disable",
		db.GetDSN())
}
