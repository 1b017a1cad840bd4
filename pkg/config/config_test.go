package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  driver: postgres\n"))
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 300, cfg.Scheduler.Interval)
	assert.Equal(t, 600, cfg.Scheduler.LockTTL)
	assert.Equal(t, 10000, cfg.Transfer.BannerTimeout)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.NotEmpty(t, cfg.Security.CredentialKey)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("EXA_SCHEDULER_INTERVAL", "60")

	cfg, err := Parse([]byte("database:\n  host: localhost\n"))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 60, cfg.Scheduler.Interval)
}

func TestParseRejectsRedisWithoutHost(t *testing.T) {
	_, err := Parse([]byte("redis:\n  enabled: true\n"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: "mysql", Host: "h", Port: 3306, User: "u", Password: "p", DBName: "exa"}
	assert.Equal(t, "u:p@tcp(h:3306)/exa?charset=utf8mb4&parseTime=True&loc=Local", mysql.DSN())

	pg := DatabaseConfig{Driver: "postgres", Host: "h", Port: 5432, User: "u", Password: "p", DBName: "exa"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=exa sslmode=disable", pg.DSN())
}
