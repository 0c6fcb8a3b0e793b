package config

import (
	"testing"
	"time"

	"delliapp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ROOT_DOMAIN", "delliapp.com.br")
	t.Setenv("GUARD_COOLDOWN", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "delliapp.com.br", cfg.RootDomain)
	assert.Equal(t, 3*time.Second, cfg.GuardCooldown)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestMigrate_SQLite(t *testing.T) {
	db, err := OpenDB(&Config{DBDriver: DriverSQLite, DBDSN: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
}
