package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/setpoint-app/setpoint/internal/fault"
	"github.com/setpoint-app/setpoint/internal/scoring"
	"github.com/setpoint-app/setpoint/internal/store"
)

// TeamService is the thin read surface over reference data.
type TeamService struct {
	db    *sqlx.DB
	store *store.TeamStore
}

func NewTeamService(database *sqlx.DB, teamStore *store.TeamStore) *TeamService {
	return &TeamService{db: database, store: teamStore}
}

func (s *TeamService) ListTeams(ctx context.Context, categoryID string) ([]scoring.Team, error) {
	teams, err := s.store.ListTeams(ctx, categoryID)
	if err != nil {
		return nil, fault.Wrap(fault.StoreUnavailable, "store read failed", err)
	}
	return teams, nil
}

func (s *TeamService) ListCategories(ctx context.Context) ([]scoring.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.StoreUnavailable, "store read failed", err)
	}
	return categories, nil
}
