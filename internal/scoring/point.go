package scoring

import "time"

// PointEvent is an append-only log entry carrying a snapshot of the score
// immediately after the point. Timestamps within one set are strictly
// increasing, so the log tail is enough to restore state on undo.
type PointEvent struct {
	ID              string    `db:"id" json:"id"`
	MatchID         string    `db:"match_id" json:"-"`
	SetNumber       int       `db:"set_number" json:"-"`
	Timestamp       time.Time `db:"ts" json:"timestamp"`
	ScoringTeamID   string    `db:"scoring_team_id" json:"scoring_team_id"`
	Team1ScoreAfter int       `db:"team1_score_after" json:"team1_score_after"`
	Team2ScoreAfter int       `db:"team2_score_after" json:"team2_score_after"`
}
