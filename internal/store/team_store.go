package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/setpoint-app/setpoint/internal/scoring"
)

type TeamStore struct {
	db *sqlx.DB
}

const (
	createTeamQuery = `INSERT INTO teams (id, name, flag, category_id)
		VALUES (:id, :name, :flag, :category_id)`
	upsertCategoryQuery = `INSERT INTO categories (id, name, sort_order)
		VALUES (:id, :name, :sort_order)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, sort_order = excluded.sort_order`
)

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) GetTeamTx(ctx context.Context, tx *sqlx.Tx, id string) (*scoring.Team, error) {
	var team scoring.Team
	err := tx.GetContext(ctx, &team, "SELECT * FROM teams WHERE id = ?", id)
	return &team, err
}

func (s *TeamStore) GetCategory(ctx context.Context, id string) (*scoring.Category, error) {
	var category scoring.Category
	err := s.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = ?", id)
	return &category, err
}

func (s *TeamStore) GetCategoryTx(ctx context.Context, tx *sqlx.Tx, id string) (*scoring.Category, error) {
	var category scoring.Category
	err := tx.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = ?", id)
	return &category, err
}

func (s *TeamStore) ListTeams(ctx context.Context, categoryID string) ([]scoring.Team, error) {
	teams := []scoring.Team{}
	if categoryID == "" {
		err := s.db.SelectContext(ctx, &teams, "SELECT * FROM teams ORDER BY name ASC")
		return teams, err
	}
	err := s.db.SelectContext(ctx, &teams, "SELECT * FROM teams WHERE category_id = ? ORDER BY name ASC", categoryID)
	return teams, err
}

func (s *TeamStore) ListCategories(ctx context.Context) ([]scoring.Category, error) {
	categories := []scoring.Category{}
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY sort_order ASC, name ASC")
	return categories, err
}

// FindTeamByNameAndCategory is used by the bulk importer to skip duplicates.
// Returns sql.ErrNoRows when no such team exists.
func (s *TeamStore) FindTeamByNameAndCategory(ctx context.Context, name, categoryID string) (*scoring.Team, error) {
	var team scoring.Team
	err := s.db.GetContext(ctx, &team, "SELECT * FROM teams WHERE name = ? AND category_id = ? LIMIT 1", name, categoryID)
	return &team, err
}

func (s *TeamStore) CreateTeam(ctx context.Context, team *scoring.Team) error {
	_, err := s.db.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *TeamStore) UpsertCategory(ctx context.Context, category *scoring.Category) error {
	_, err := s.db.NamedExecContext(ctx, upsertCategoryQuery, category)
	return err
}
