package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/setpoint-app/setpoint/internal/scoring"
)

// MatchStore is the sqlx query layer for the match aggregate and its
// children. Methods with a Tx suffix run against a caller-owned transaction;
// the rest read from the pool directly.
type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

const (
	insertMatchQuery = `INSERT INTO matches (id, team1_id, team2_id, team1_name, team2_name, team1_flag, team2_flag, category_name,
			status, winner_id, created_at, current_set_number, current_team1_score, current_team2_score, team1_sets_won, team2_sets_won)
		VALUES (:id, :team1_id, :team2_id, :team1_name, :team2_name, :team1_flag, :team2_flag, :category_name,
			:status, :winner_id, :created_at, :current_set_number, :current_team1_score, :current_team2_score, :team1_sets_won, :team2_sets_won)`

	updateMatchQuery = `UPDATE matches SET
			status = :status,
			winner_id = :winner_id,
			current_set_number = :current_set_number,
			current_team1_score = :current_team1_score,
			current_team2_score = :current_team2_score,
			team1_sets_won = :team1_sets_won,
			team2_sets_won = :team2_sets_won
		WHERE id = :id`

	insertSetQuery = `INSERT INTO match_sets (match_id, set_number, status, team1_current_score, team2_current_score, winner_id)
		VALUES (:match_id, :set_number, :status, :team1_current_score, :team2_current_score, :winner_id)`

	updateSetQuery = `UPDATE match_sets SET
			status = :status,
			team1_current_score = :team1_current_score,
			team2_current_score = :team2_current_score,
			winner_id = :winner_id
		WHERE match_id = :match_id AND set_number = :set_number`

	insertPointQuery = `INSERT INTO points (id, match_id, set_number, ts, scoring_team_id, team1_score_after, team2_score_after)
		VALUES (:id, :match_id, :set_number, :ts, :scoring_team_id, :team1_score_after, :team2_score_after)`
)

func (s *MatchStore) CreateMatchTx(ctx context.Context, tx *sqlx.Tx, match *scoring.Match) error {
	_, err := tx.NamedExecContext(ctx, insertMatchQuery, match)
	return err
}

func (s *MatchStore) UpdateMatchTx(ctx context.Context, tx *sqlx.Tx, match *scoring.Match) error {
	_, err := tx.NamedExecContext(ctx, updateMatchQuery, match)
	return err
}

func (s *MatchStore) GetMatch(ctx context.Context, id string) (*scoring.Match, error) {
	var match scoring.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

func (s *MatchStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id string) (*scoring.Match, error) {
	var match scoring.Match
	err := tx.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

// ListMatches returns matches newest first, optionally filtered by status.
func (s *MatchStore) ListMatches(ctx context.Context, status scoring.MatchStatus) ([]scoring.Match, error) {
	matches := []scoring.Match{}
	if status == "" {
		err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches ORDER BY created_at DESC")
		return matches, err
	}
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE status = ? ORDER BY created_at DESC", status)
	return matches, err
}

func (s *MatchStore) CreateSetTx(ctx context.Context, tx *sqlx.Tx, set *scoring.Set) error {
	_, err := tx.NamedExecContext(ctx, insertSetQuery, set)
	return err
}

func (s *MatchStore) UpdateSetTx(ctx context.Context, tx *sqlx.Tx, set *scoring.Set) error {
	_, err := tx.NamedExecContext(ctx, updateSetQuery, set)
	return err
}

func (s *MatchStore) GetSetTx(ctx context.Context, tx *sqlx.Tx, matchID string, setNumber int) (*scoring.Set, error) {
	var set scoring.Set
	err := tx.GetContext(ctx, &set, "SELECT * FROM match_sets WHERE match_id = ? AND set_number = ?", matchID, setNumber)
	return &set, err
}

func (s *MatchStore) GetSets(ctx context.Context, matchID string) ([]scoring.Set, error) {
	sets := []scoring.Set{}
	err := s.db.SelectContext(ctx, &sets, "SELECT * FROM match_sets WHERE match_id = ? ORDER BY set_number ASC", matchID)
	return sets, err
}

func (s *MatchStore) InsertPointTx(ctx context.Context, tx *sqlx.Tx, point *scoring.PointEvent) error {
	_, err := tx.NamedExecContext(ctx, insertPointQuery, point)
	return err
}

func (s *MatchStore) DeletePointTx(ctx context.Context, tx *sqlx.Tx, pointID string) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM points WHERE id = ?", pointID)
	return err
}

// LatestPointsTx returns up to limit events of one set, most recent first.
func (s *MatchStore) LatestPointsTx(ctx context.Context, tx *sqlx.Tx, matchID string, setNumber, limit int) ([]scoring.PointEvent, error) {
	points := []scoring.PointEvent{}
	err := tx.SelectContext(ctx, &points,
		"SELECT * FROM points WHERE match_id = ? AND set_number = ? ORDER BY ts DESC LIMIT ?",
		matchID, setNumber, limit)
	return points, err
}

// ListPoints returns the full event log of one set in scoring order.
func (s *MatchStore) ListPoints(ctx context.Context, matchID string, setNumber int) ([]scoring.PointEvent, error) {
	points := []scoring.PointEvent{}
	err := s.db.SelectContext(ctx, &points,
		"SELECT * FROM points WHERE match_id = ? AND set_number = ? ORDER BY ts ASC",
		matchID, setNumber)
	return points, err
}
