// Bulk loader for reference data. Reads categories and teams from CSV files
// and inserts them so the manager UI has something to build matches from.
//
//	go run ./cmd/seed -categories categories.csv -teams teams.csv
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/setpoint-app/setpoint/internal/config"
	"github.com/setpoint-app/setpoint/internal/db"
	"github.com/setpoint-app/setpoint/internal/store"
)

func main() {
	categoriesPath := flag.String("categories", "", "CSV file with columns id,name,order")
	teamsPath := flag.String("teams", "", "CSV file with columns category_id,name,flag")
	flag.Parse()

	if *categoriesPath == "" && *teamsPath == "" {
		log.Fatal("Nothing to do: pass -categories and/or -teams")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsURL); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx := context.Background()
	teamStore := store.NewTeamStore(database)

	if *categoriesPath != "" {
		f, err := os.Open(*categoriesPath)
		if err != nil {
			log.Fatal(err)
		}
		created, err := importCategories(ctx, teamStore, f)
		f.Close()
		if err != nil {
			log.Fatal("Category import failed:", err)
		}
		log.Printf("Categories loaded: %d", created)
	}

	if *teamsPath != "" {
		f, err := os.Open(*teamsPath)
		if err != nil {
			log.Fatal(err)
		}
		result, err := importTeams(ctx, teamStore, f)
		f.Close()
		if err != nil {
			log.Fatal("Team import failed:", err)
		}
		log.Printf("Teams loaded: %d, skipped: %d", result.Created, result.Skipped)
	}
}
