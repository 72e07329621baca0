package cmd

import (
	"bitwise74/shop-api/config"
	"bitwise74/shop-api/db"
	"bitwise74/shop-api/internal/model"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) error {
	t.Helper()

	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCreateAdminAndPurge(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	dsn := filepath.Join(t.TempDir(), "shop.db")

	err := run(t, "create-admin", "--email", "root@example.com", "--password", "hunter22", "--db.dsn", dsn)
	require.NoError(t, err)

	conn, err := db.New(config.Database{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	sqlDB, _ := conn.DB()
	t.Cleanup(func() { sqlDB.Close() })

	var admin model.User
	require.NoError(t, conn.Where("email = ?", "root@example.com").First(&admin).Error)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsVerified)

	// the admin is verified, so nothing is purged
	require.NoError(t, run(t, "purge", "--db.dsn", dsn))

	var n int64
	conn.Model(&model.User{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestCreateAdminRejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	dsn := filepath.Join(t.TempDir(), "shop.db")

	assert.Error(t, run(t, "create-admin", "--email", "nope", "--password", "hunter22", "--db.dsn", dsn))
	assert.Error(t, run(t, "create-admin", "--email", "root@example.com", "--password", "short", "--db.dsn", dsn))
}

func TestMissingSecretSuggestsOne(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	dsn := filepath.Join(t.TempDir(), "shop.db")

	err := run(t, "purge", "--db.dsn", dsn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}
