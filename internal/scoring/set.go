package scoring

type SetStatus string

const (
	SetLive      SetStatus = "live"
	SetFinished  SetStatus = "finished"
	SetCancelled SetStatus = "cancelled"
)

func (s SetStatus) Terminal() bool {
	return s == SetFinished || s == SetCancelled
}

// Set is a child aggregate of Match, keyed by a contiguous set number
// starting at 1. At most one set per match is live: the one named by the
// match's current_set_number.
type Set struct {
	MatchID           string    `db:"match_id" json:"-"`
	SetNumber         int       `db:"set_number" json:"set_number"`
	Status            SetStatus `db:"status" json:"status"`
	Team1CurrentScore int       `db:"team1_current_score" json:"team1_current_score"`
	Team2CurrentScore int       `db:"team2_current_score" json:"team2_current_score"`
	WinnerID          *string   `db:"winner_id" json:"winner_id,omitempty"`
}

// Score is the pair returned by undo.
type Score struct {
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
}
