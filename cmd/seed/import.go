package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/setpoint-app/setpoint/internal/scoring"
	"github.com/setpoint-app/setpoint/internal/store"
	"github.com/setpoint-app/setpoint/internal/utils"
)

type importResult struct {
	Created int
	Skipped int
}

// importCategories upserts rows of id,name,order. A header row is detected by
// a non-numeric order column and skipped.
func importCategories(ctx context.Context, teams *store.TeamStore, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	created := 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, err
		}

		order, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			if line == 1 {
				continue // header
			}
			return created, fmt.Errorf("line %d: bad order value %q", line, record[2])
		}

		category := &scoring.Category{
			ID:    strings.TrimSpace(record[0]),
			Name:  strings.TrimSpace(record[1]),
			Order: order,
		}
		if category.ID == "" || category.Name == "" {
			return created, fmt.Errorf("line %d: empty category id or name", line)
		}
		if err := teams.UpsertCategory(ctx, category); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// importTeams inserts rows of category_id,name,flag. The category must
// already exist; a team with the same name and category is skipped.
func importTeams(ctx context.Context, teams *store.TeamStore, r io.Reader) (importResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	var result importResult
	knownCategories := map[string]bool{}

	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, err
		}

		categoryID := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		flag := strings.TrimSpace(record[2])
		if line == 1 && strings.EqualFold(categoryID, "category_id") {
			continue // header
		}
		if categoryID == "" || name == "" {
			return result, fmt.Errorf("line %d: empty category id or team name", line)
		}

		if !knownCategories[categoryID] {
			if _, err := teams.GetCategory(ctx, categoryID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return result, fmt.Errorf("line %d: category %s does not exist, load it first", line, categoryID)
				}
				return result, err
			}
			knownCategories[categoryID] = true
		}

		_, err = teams.FindTeamByNameAndCategory(ctx, name, categoryID)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return result, err
		}

		team := &scoring.Team{
			ID:         slug(name),
			Name:       name,
			Flag:       utils.StringOrNil(flag),
			CategoryID: &categoryID,
		}
		if err := teams.CreateTeam(ctx, team); err != nil {
			return result, err
		}
		result.Created++
	}
	return result, nil
}

// slug derives a stable team id from its name, e.g. "Los Condores" ->
// "los_condores", matching the id style used across the API.
func slug(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
