package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/setpoint-app/setpoint/internal/db"
	"github.com/setpoint-app/setpoint/internal/fault"
	"github.com/setpoint-app/setpoint/internal/scoring"
	"github.com/setpoint-app/setpoint/internal/store"
)

// MatchService owns the match lifecycle. Every mutating operation runs as a
// single transaction body via db.RunInTx: reads observe one snapshot, writes
// commit together, and validation failures abort with zero writes.
type MatchService struct {
	db      *sqlx.DB
	matches *store.MatchStore
	teams   *store.TeamStore
}

func NewMatchService(database *sqlx.DB, matches *store.MatchStore, teams *store.TeamStore) *MatchService {
	return &MatchService{db: database, matches: matches, teams: teams}
}

// storeFault translates a low-level read error: absent rows become NotFound,
// anything else is a backend failure.
func storeFault(err error, notFoundMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fault.Wrap(fault.NotFound, notFoundMsg, err)
	}
	if db.Retryable(err) {
		return err
	}
	return fault.Wrap(fault.StoreUnavailable, "store read failed", err)
}

// CreateMatch resolves both teams (and the category, if given), freezes their
// names and flags onto the match, and creates the match together with its
// live set 1 in one transaction.
func (s *MatchService) CreateMatch(ctx context.Context, team1ID, team2ID string, categoryID *string) (*scoring.Match, error) {
	if team1ID == team2ID {
		return nil, fault.New(fault.InvalidRequest, "a match needs two different teams")
	}

	var match *scoring.Match
	err := db.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		team1, err := s.teams.GetTeamTx(ctx, tx, team1ID)
		if err != nil {
			return storeFault(err, "team "+team1ID+" not found")
		}
		team2, err := s.teams.GetTeamTx(ctx, tx, team2ID)
		if err != nil {
			return storeFault(err, "team "+team2ID+" not found")
		}

		var categoryName *string
		if categoryID != nil {
			category, err := s.teams.GetCategoryTx(ctx, tx, *categoryID)
			if err != nil {
				return storeFault(err, "category "+*categoryID+" not found")
			}
			categoryName = &category.Name
		}

		match = &scoring.Match{
			ID:               uuid.NewString(),
			Team1ID:          team1.ID,
			Team2ID:          team2.ID,
			Team1Name:        team1.Name,
			Team2Name:        team2.Name,
			Team1Flag:        team1.Flag,
			Team2Flag:        team2.Flag,
			CategoryName:     categoryName,
			Status:           scoring.MatchUpcoming,
			CreatedAt:        time.Now().UTC(),
			CurrentSetNumber: 1,
		}
		if err := s.matches.CreateMatchTx(ctx, tx, match); err != nil {
			return err
		}

		return s.matches.CreateSetTx(ctx, tx, &scoring.Set{
			MatchID:   match.ID,
			SetNumber: 1,
			Status:    scoring.SetLive,
		})
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// RecordPoint appends one point to the named set and rolls the resulting
// score into the set and match aggregates. The event timestamp is
// server-assigned and strictly greater than the previous event's, so the log
// order is unambiguous.
func (s *MatchService) RecordPoint(ctx context.Context, matchID string, setNumber int, scoringTeamID string) (*scoring.PointEvent, error) {
	var point *scoring.PointEvent
	err := db.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		match, err := s.matches.GetMatchTx(ctx, tx, matchID)
		if err != nil {
			return storeFault(err, "match not found")
		}
		set, err := s.matches.GetSetTx(ctx, tx, matchID, setNumber)
		if err != nil {
			return storeFault(err, "set not found")
		}

		side, ok := match.SideOf(scoringTeamID)
		if !ok {
			return fault.Newf(fault.InvalidRequest, "team %s is not playing in this match", scoringTeamID)
		}

		team1Score := set.Team1CurrentScore
		team2Score := set.Team2CurrentScore
		if side == 1 {
			team1Score++
		} else {
			team2Score++
		}

		latest, err := s.matches.LatestPointsTx(ctx, tx, matchID, setNumber, 1)
		if err != nil {
			return storeFault(err, "set not found")
		}
		ts := time.Now().UTC()
		if len(latest) > 0 && !ts.After(latest[0].Timestamp) {
			ts = latest[0].Timestamp.Add(time.Microsecond)
		}

		point = &scoring.PointEvent{
			ID:              uuid.NewString(),
			MatchID:         matchID,
			SetNumber:       setNumber,
			Timestamp:       ts,
			ScoringTeamID:   scoringTeamID,
			Team1ScoreAfter: team1Score,
			Team2ScoreAfter: team2Score,
		}
		if err := s.matches.InsertPointTx(ctx, tx, point); err != nil {
			return err
		}

		set.Team1CurrentScore = team1Score
		set.Team2CurrentScore = team2Score
		set.Status = scoring.SetLive
		if err := s.matches.UpdateSetTx(ctx, tx, set); err != nil {
			return err
		}

		match.CurrentSetNumber = setNumber
		match.CurrentTeam1Score = team1Score
		match.CurrentTeam2Score = team2Score
		match.Status = scoring.MatchLive
		return s.matches.UpdateMatchTx(ctx, tx, match)
	})
	if err != nil {
		return nil, err
	}
	return point, nil
}

// UndoLastPoint deletes the most recent point of the match's current set and
// restores the score recorded on the event before it. The log is
// self-describing, so no replay beyond the tail is needed.
func (s *MatchService) UndoLastPoint(ctx context.Context, matchID string) (*scoring.Score, error) {
	var restored *scoring.Score
	err := db.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		match, err := s.matches.GetMatchTx(ctx, tx, matchID)
		if err != nil {
			return storeFault(err, "match not found")
		}
		set, err := s.matches.GetSetTx(ctx, tx, matchID, match.CurrentSetNumber)
		if err != nil {
			return storeFault(err, "current set not found")
		}

		latest, err := s.matches.LatestPointsTx(ctx, tx, matchID, set.SetNumber, 2)
		if err != nil {
			return storeFault(err, "current set not found")
		}
		if len(latest) == 0 {
			return fault.New(fault.NothingToUndo, "no points recorded in the current set")
		}

		if err := s.matches.DeletePointTx(ctx, tx, latest[0].ID); err != nil {
			return err
		}

		restored = &scoring.Score{}
		if len(latest) > 1 {
			restored.Team1Score = latest[1].Team1ScoreAfter
			restored.Team2Score = latest[1].Team2ScoreAfter
		}

		set.Team1CurrentScore = restored.Team1Score
		set.Team2CurrentScore = restored.Team2Score
		if err := s.matches.UpdateSetTx(ctx, tx, set); err != nil {
			return err
		}

		match.CurrentTeam1Score = restored.Team1Score
		match.CurrentTeam2Score = restored.Team2Score
		return s.matches.UpdateMatchTx(ctx, tx, match)
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// FinishSet closes the named set with a winner, bumps the winner's sets-won
// counter, and opens the next set at 0/0.
func (s *MatchService) FinishSet(ctx context.Context, matchID string, setNumber int, winnerTeamID string) (*scoring.Set, error) {
	return s.advanceSet(ctx, matchID, setNumber, &winnerTeamID)
}

// CancelSet closes the named set without a winner: the set didn't count, so
// no sets-won counter moves, but the match still advances to a fresh set.
func (s *MatchService) CancelSet(ctx context.Context, matchID string, setNumber int) (*scoring.Set, error) {
	return s.advanceSet(ctx, matchID, setNumber, nil)
}

func (s *MatchService) advanceSet(ctx context.Context, matchID string, setNumber int, winnerTeamID *string) (*scoring.Set, error) {
	var next *scoring.Set
	err := db.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		match, err := s.matches.GetMatchTx(ctx, tx, matchID)
		if err != nil {
			return storeFault(err, "match not found")
		}
		set, err := s.matches.GetSetTx(ctx, tx, matchID, setNumber)
		if err != nil {
			return storeFault(err, "set not found")
		}

		if winnerTeamID != nil {
			side, ok := match.SideOf(*winnerTeamID)
			if !ok {
				return fault.Newf(fault.InvalidRequest, "team %s is not playing in this match", *winnerTeamID)
			}
			set.Status = scoring.SetFinished
			set.WinnerID = winnerTeamID
			if side == 1 {
				match.Team1SetsWon++
			} else {
				match.Team2SetsWon++
			}
		} else {
			set.Status = scoring.SetCancelled
		}
		if err := s.matches.UpdateSetTx(ctx, tx, set); err != nil {
			return err
		}

		next = &scoring.Set{
			MatchID:   matchID,
			SetNumber: setNumber + 1,
			Status:    scoring.SetLive,
		}
		if err := s.matches.CreateSetTx(ctx, tx, next); err != nil {
			return err
		}

		match.CurrentSetNumber = next.SetNumber
		match.CurrentTeam1Score = 0
		match.CurrentTeam2Score = 0
		return s.matches.UpdateMatchTx(ctx, tx, match)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// FinishMatch is the operator override that ends a match. It is independent
// of set scores and may be called mid-set.
func (s *MatchService) FinishMatch(ctx context.Context, matchID, winnerTeamID string) (*scoring.Match, error) {
	return s.closeMatch(ctx, matchID, &winnerTeamID)
}

func (s *MatchService) CancelMatch(ctx context.Context, matchID string) (*scoring.Match, error) {
	return s.closeMatch(ctx, matchID, nil)
}

func (s *MatchService) closeMatch(ctx context.Context, matchID string, winnerTeamID *string) (*scoring.Match, error) {
	var match *scoring.Match
	err := db.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		m, err := s.matches.GetMatchTx(ctx, tx, matchID)
		if err != nil {
			return storeFault(err, "match not found")
		}

		if winnerTeamID != nil {
			if !m.HasTeam(*winnerTeamID) {
				return fault.Newf(fault.InvalidRequest, "team %s is not playing in this match", *winnerTeamID)
			}
			m.Status = scoring.MatchFinished
			m.WinnerID = winnerTeamID
		} else {
			m.Status = scoring.MatchCancelled
		}

		match = m
		return s.matches.UpdateMatchTx(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// GetMatch returns one match for the viewer polling loop.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*scoring.Match, error) {
	match, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, storeFault(err, "match not found")
	}
	return match, nil
}

// ListMatches returns matches newest first. An empty status means all.
func (s *MatchService) ListMatches(ctx context.Context, status string) ([]scoring.Match, error) {
	filter := scoring.MatchStatus(status)
	if status != "" && !filter.Valid() {
		return nil, fault.Newf(fault.InvalidRequest, "unknown match status %q", status)
	}
	matches, err := s.matches.ListMatches(ctx, filter)
	if err != nil {
		return nil, fault.Wrap(fault.StoreUnavailable, "store read failed", err)
	}
	return matches, nil
}

func (s *MatchService) GetSets(ctx context.Context, matchID string) ([]scoring.Set, error) {
	if _, err := s.matches.GetMatch(ctx, matchID); err != nil {
		return nil, storeFault(err, "match not found")
	}
	sets, err := s.matches.GetSets(ctx, matchID)
	if err != nil {
		return nil, fault.Wrap(fault.StoreUnavailable, "store read failed", err)
	}
	return sets, nil
}

func (s *MatchService) GetPoints(ctx context.Context, matchID string, setNumber int) ([]scoring.PointEvent, error) {
	if _, err := s.matches.GetMatch(ctx, matchID); err != nil {
		return nil, storeFault(err, "match not found")
	}
	points, err := s.matches.ListPoints(ctx, matchID, setNumber)
	if err != nil {
		return nil, fault.Wrap(fault.StoreUnavailable, "store read failed", err)
	}
	return points, nil
}
