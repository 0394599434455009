package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setpoint-app/setpoint/internal/store"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	database, err := sqlx.Connect("sqlite3", dsn)
	require.NoError(t, err, "Failed to connect to test DB")

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err)

	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "sqlite3", driver)
	require.NoError(t, err)
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err)
	}

	t.Cleanup(func() { database.Close() })
	return database
}

func TestImportCategories(t *testing.T) {
	db := setupTestDB(t)
	teams := store.NewTeamStore(db)
	ctx := context.Background()

	csv := "id,name,order\ncat_a,Category A,1\ncat_b,Category B,2\n"
	created, err := importCategories(ctx, teams, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	categories, err := teams.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "cat_a", categories[0].ID)

	// Re-import updates in place instead of duplicating.
	csv = "cat_a,Category A renamed,5\n"
	created, err = importCategories(ctx, teams, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	categories, err = teams.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Category A renamed", categories[1].Name)
}

func TestImportTeams(t *testing.T) {
	db := setupTestDB(t)
	teams := store.NewTeamStore(db)
	ctx := context.Background()

	_, err := importCategories(ctx, teams, strings.NewReader("cat_a,Category A,1\n"))
	require.NoError(t, err)

	csv := "category_id,name,flag\ncat_a,Los Condores,AR\ncat_a,Las Aguilas,\n"
	result, err := importTeams(ctx, teams, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)

	list, err := teams.ListTeams(ctx, "cat_a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "las_aguilas", list[0].ID)
	assert.Nil(t, list[0].Flag, "empty flag column becomes null")
	assert.Equal(t, "los_condores", list[1].ID)
	require.NotNil(t, list[1].Flag)
	assert.Equal(t, "AR", *list[1].Flag)

	// Second run skips existing teams.
	result, err = importTeams(ctx, teams, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 2, result.Skipped)
}

func TestImportTeamsMissingCategory(t *testing.T) {
	db := setupTestDB(t)
	teams := store.NewTeamStore(db)
	ctx := context.Background()

	_, err := importTeams(ctx, teams, strings.NewReader("cat_zzz,Ghost Team,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cat_zzz")

	list, err := teams.ListTeams(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "los_condores", slug("Los Condores"))
	assert.Equal(t, "team_42", slug("  Team 42! "))
	assert.Equal(t, "a_b", slug("A--B"))
	assert.Equal(t, "", slug("   "))
}
