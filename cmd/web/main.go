package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/setpoint-app/setpoint/internal/config"
	"github.com/setpoint-app/setpoint/internal/db"
	"github.com/setpoint-app/setpoint/internal/middleware"
)

func main() {
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

	issuer := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	router := newRouter(cfg, database, issuer)

	log.Println("Server starting on", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatal(err)
	}
}
