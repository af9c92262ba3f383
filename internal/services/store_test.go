package services_test

import (
	"context"
	"testing"

	"wavvly/internal/config"
	"wavvly/internal/db"
	"wavvly/internal/models"
	"wavvly/internal/repositories"

	"github.com/stretchr/testify/require"
)

// newStore returns a fresh in-memory sqlite store per test.
func newStore(t *testing.T) *repositories.Store {
	t.Helper()
	database, err := db.OpenGorm(config.DriverSQLite, "file::memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	t.Cleanup(func() { _ = db.CloseGorm(database) })
	return repositories.NewGORMStore(database)
}

func seedUser(t *testing.T, store *repositories.Store, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		FullName: "Full " + username,
	}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}
