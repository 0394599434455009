package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setpoint-app/setpoint/internal/scoring"
	"github.com/setpoint-app/setpoint/internal/utils"
)

// setupTestDB creates a file-backed SQLite database and applies migrations.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	database, err := sqlx.Connect("sqlite3", dsn)
	require.NoError(t, err, "Failed to connect to test DB")

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func seedReferenceData(t *testing.T, db *sqlx.DB) {
	t.Helper()
	teams := NewTeamStore(db)
	ctx := context.Background()
	require.NoError(t, teams.UpsertCategory(ctx, &scoring.Category{ID: "cat_a", Name: "Category A", Order: 1}))
	require.NoError(t, teams.CreateTeam(ctx, &scoring.Team{ID: "team_a", Name: "Team A", CategoryID: utils.Ptr("cat_a")}))
	require.NoError(t, teams.CreateTeam(ctx, &scoring.Team{ID: "team_b", Name: "Team B", CategoryID: utils.Ptr("cat_a")}))
}

func insertMatch(t *testing.T, db *sqlx.DB, store *MatchStore, status scoring.MatchStatus) *scoring.Match {
	t.Helper()
	match := &scoring.Match{
		ID:               uuid.NewString(),
		Team1ID:          "team_a",
		Team2ID:          "team_b",
		Team1Name:        "Team A",
		Team2Name:        "Team B",
		Status:           status,
		CreatedAt:        time.Now().UTC(),
		CurrentSetNumber: 1,
	}

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatchTx(ctx, tx, match))
	require.NoError(t, store.CreateSetTx(ctx, tx, &scoring.Set{
		MatchID: match.ID, SetNumber: 1, Status: scoring.SetLive,
	}))
	require.NoError(t, tx.Commit())
	return match
}

func TestMatchRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedReferenceData(t, db)

	store := NewMatchStore(db)
	ctx := context.Background()

	match := insertMatch(t, db, store, scoring.MatchUpcoming)

	got, err := store.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, match.ID, got.ID)
	assert.Equal(t, scoring.MatchUpcoming, got.Status)
	assert.Equal(t, 1, got.CurrentSetNumber)

	got.Status = scoring.MatchLive
	got.CurrentTeam1Score = 5
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.UpdateMatchTx(ctx, tx, got))
	require.NoError(t, tx.Commit())

	updated, err := store.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, scoring.MatchLive, updated.Status)
	assert.Equal(t, 5, updated.CurrentTeam1Score)
}

func TestGetMatch_Missing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewMatchStore(db)
	_, err := store.GetMatch(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListMatchesByStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedReferenceData(t, db)

	store := NewMatchStore(db)
	ctx := context.Background()

	insertMatch(t, db, store, scoring.MatchUpcoming)
	insertMatch(t, db, store, scoring.MatchLive)
	insertMatch(t, db, store, scoring.MatchLive)

	live, err := store.ListMatches(ctx, scoring.MatchLive)
	require.NoError(t, err)
	assert.Len(t, live, 2)

	all, err := store.ListMatches(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPointLogOrdering(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedReferenceData(t, db)

	store := NewMatchStore(db)
	ctx := context.Background()
	match := insertMatch(t, db, store, scoring.MatchLive)

	base := time.Now().UTC().Truncate(time.Millisecond)
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.InsertPointTx(ctx, tx, &scoring.PointEvent{
			ID:              uuid.NewString(),
			MatchID:         match.ID,
			SetNumber:       1,
			Timestamp:       base.Add(time.Duration(i) * time.Millisecond),
			ScoringTeamID:   "team_a",
			Team1ScoreAfter: i + 1,
		}))
	}
	require.NoError(t, tx.Commit())

	points, err := store.ListPoints(ctx, match.ID, 1)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 1, points[0].Team1ScoreAfter)
	assert.Equal(t, 3, points[2].Team1ScoreAfter)

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	latest, err := store.LatestPointsTx(ctx, tx, match.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 3, latest[0].Team1ScoreAfter)
	assert.Equal(t, 2, latest[1].Team1ScoreAfter)

	require.NoError(t, store.DeletePointTx(ctx, tx, latest[0].ID))
	require.NoError(t, tx.Commit())

	points, err = store.ListPoints(ctx, match.ID, 1)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestSetRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedReferenceData(t, db)

	store := NewMatchStore(db)
	ctx := context.Background()
	match := insertMatch(t, db, store, scoring.MatchLive)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	set, err := store.GetSetTx(ctx, tx, match.ID, 1)
	require.NoError(t, err)

	set.Status = scoring.SetFinished
	set.Team1CurrentScore = 25
	set.WinnerID = utils.Ptr("team_a")
	require.NoError(t, store.UpdateSetTx(ctx, tx, set))
	require.NoError(t, store.CreateSetTx(ctx, tx, &scoring.Set{
		MatchID: match.ID, SetNumber: 2, Status: scoring.SetLive,
	}))
	require.NoError(t, tx.Commit())

	sets, err := store.GetSets(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, scoring.SetFinished, sets[0].Status)
	assert.Equal(t, 25, sets[0].Team1CurrentScore)
	require.NotNil(t, sets[0].WinnerID)
	assert.Equal(t, "team_a", *sets[0].WinnerID)
	assert.Equal(t, scoring.SetLive, sets[1].Status)
}
