package db

import (
	"bitwise74/shop-api/config"
	"bitwise74/shop-api/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "database.db?_foreign_keys=on", sqliteDSN("database.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "x.db?_fk=1", sqliteDSN("x.db?_fk=1"))
}

func TestPostgresDSN(t *testing.T) {
	assert.Equal(t, "postgres://x", postgresDSN(config.Database{DSN: "postgres://x"}))
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=shop sslmode=disable",
		postgresDSN(config.Database{Host: "db", Port: 5432, User: "u", Password: "p", Name: "shop", SSLMode: "disable"}),
	)
}

func TestNewSeedsRoles(t *testing.T) {
	conn, err := New(config.Database{Driver: "sqlite", DSN: "file:seed_roles?mode=memory&cache=shared", MaxOpenConns: 1})
	require.NoError(t, err)

	// running it again must not duplicate the seed
	require.NoError(t, Migrate(conn))

	var roles []model.Role
	require.NoError(t, conn.Order("id").Find(&roles).Error)
	assert.Equal(t, model.Roles, roles)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(config.Database{Driver: "oracle"})
	assert.Error(t, err)
}
