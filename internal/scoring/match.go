package scoring

import "time"

type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "upcoming"
	MatchLive      MatchStatus = "live"
	MatchFinished  MatchStatus = "finished"
	MatchCancelled MatchStatus = "cancelled"
)

// Terminal reports whether a match in this status has been explicitly closed
// by an operator. Terminal statuses are only ever set by FinishMatch and
// CancelMatch, never inferred from set counts.
func (s MatchStatus) Terminal() bool {
	return s == MatchFinished || s == MatchCancelled
}

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchUpcoming, MatchLive, MatchFinished, MatchCancelled:
		return true
	}
	return false
}

// Match is the top-level aggregate. Team names, flags and the category name
// are denormalized at creation time and intentionally never re-synced.
type Match struct {
	ID           string  `db:"id" json:"id"`
	Team1ID      string  `db:"team1_id" json:"team1_id"`
	Team2ID      string  `db:"team2_id" json:"team2_id"`
	Team1Name    string  `db:"team1_name" json:"team1_name"`
	Team2Name    string  `db:"team2_name" json:"team2_name"`
	Team1Flag    *string `db:"team1_flag" json:"team1_flag,omitempty"`
	Team2Flag    *string `db:"team2_flag" json:"team2_flag,omitempty"`
	CategoryName *string `db:"category_name" json:"category_name,omitempty"`

	Status   MatchStatus `db:"status" json:"status"`
	WinnerID *string     `db:"winner_id" json:"winner_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	CurrentSetNumber  int `db:"current_set_number" json:"current_set_number"`
	CurrentTeam1Score int `db:"current_team1_score" json:"current_team1_score"`
	CurrentTeam2Score int `db:"current_team2_score" json:"current_team2_score"`
	Team1SetsWon      int `db:"team1_sets_won" json:"team1_sets_won"`
	Team2SetsWon      int `db:"team2_sets_won" json:"team2_sets_won"`
}

// SideOf resolves a team id to side 1 or 2. The second return is false when
// the team is not part of this match.
func (m *Match) SideOf(teamID string) (int, bool) {
	switch teamID {
	case m.Team1ID:
		return 1, true
	case m.Team2ID:
		return 2, true
	}
	return 0, false
}

func (m *Match) HasTeam(teamID string) bool {
	_, ok := m.SideOf(teamID)
	return ok
}
