package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"github.com/setpoint-app/setpoint/internal/config"
	"github.com/setpoint-app/setpoint/internal/httputil"
	"github.com/setpoint-app/setpoint/internal/metrics"
	"github.com/setpoint-app/setpoint/internal/middleware"
	"github.com/setpoint-app/setpoint/internal/service"
	"github.com/setpoint-app/setpoint/internal/store"
)

type createMatchRequest struct {
	Team1ID    string  `json:"team1_id"`
	Team2ID    string  `json:"team2_id"`
	CategoryID *string `json:"category_id"`
}

type recordPointRequest struct {
	SetNumber     int    `json:"set_number"`
	ScoringTeamID string `json:"scoring_team_id"`
}

type finishSetRequest struct {
	SetNumber    int    `json:"set_number"`
	WinnerTeamID string `json:"winner_team_id"`
}

type cancelSetRequest struct {
	SetNumber int `json:"set_number"`
}

type finishMatchRequest struct {
	WinnerTeamID string `json:"winner_team_id"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return false
	}
	return true
}

func newRouter(cfg *config.Config, database *sqlx.DB, issuer *middleware.TokenIssuer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	matchService := service.NewMatchService(database, store.NewMatchStore(database), store.NewTeamStore(database))
	teamService := service.NewTeamService(database, store.NewTeamStore(database))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decode(w, r, &req) {
			return
		}

		// Hash both sides so the comparison is constant-time regardless of
		// credential length.
		userHash := sha256.Sum256([]byte(req.Username))
		passHash := sha256.Sum256([]byte(req.Password))
		wantUser := sha256.Sum256([]byte(cfg.ManagerUser))
		wantPass := sha256.Sum256([]byte(cfg.ManagerPassword))
		userOK := subtle.ConstantTimeCompare(userHash[:], wantUser[:]) == 1
		passOK := subtle.ConstantTimeCompare(passHash[:], wantPass[:]) == 1
		if !userOK || !passOK {
			httputil.Unauthorized(w, "wrong username or password")
			return
		}

		token, expiresAt, err := issuer.Issue(req.Username, time.Now().UTC())
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
	})

	// Viewer routes: polled by the public scoreboard, no auth.
	r.Get("/matches", func(w http.ResponseWriter, r *http.Request) {
		matches, err := matchService.ListMatches(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, matches)
	})

	r.Get("/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		match, err := matchService.GetMatch(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, match)
	})

	r.Get("/matches/{id}/sets", func(w http.ResponseWriter, r *http.Request) {
		sets, err := matchService.GetSets(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, sets)
	})

	r.Get("/matches/{id}/sets/{n}/points", func(w http.ResponseWriter, r *http.Request) {
		setNumber, err := strconv.Atoi(chi.URLParam(r, "n"))
		if err != nil {
			httputil.BadRequest(w, "Invalid set number", err)
			return
		}
		points, err := matchService.GetPoints(r.Context(), chi.URLParam(r, "id"), setNumber)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, points)
	})

	r.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
		categories, err := teamService.ListCategories(r.Context())
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, categories)
	})

	// Manager routes: everything that mutates match state.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireManager(issuer))

		r.Get("/teams", func(w http.ResponseWriter, r *http.Request) {
			teams, err := teamService.ListTeams(r.Context(), r.URL.Query().Get("category_id"))
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, teams)
		})

		r.Post("/matches", func(w http.ResponseWriter, r *http.Request) {
			var req createMatchRequest
			if !decode(w, r, &req) {
				return
			}
			match, err := matchService.CreateMatch(r.Context(), req.Team1ID, req.Team2ID, req.CategoryID)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusCreated, match)
		})

		r.Post("/matches/{id}/points", func(w http.ResponseWriter, r *http.Request) {
			var req recordPointRequest
			if !decode(w, r, &req) {
				return
			}
			point, err := matchService.RecordPoint(r.Context(), chi.URLParam(r, "id"), req.SetNumber, req.ScoringTeamID)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusCreated, point)
		})

		r.Post("/matches/{id}/points/undo", func(w http.ResponseWriter, r *http.Request) {
			score, err := matchService.UndoLastPoint(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, score)
		})

		r.Post("/matches/{id}/sets/finish", func(w http.ResponseWriter, r *http.Request) {
			var req finishSetRequest
			if !decode(w, r, &req) {
				return
			}
			set, err := matchService.FinishSet(r.Context(), chi.URLParam(r, "id"), req.SetNumber, req.WinnerTeamID)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, set)
		})

		r.Post("/matches/{id}/sets/cancel", func(w http.ResponseWriter, r *http.Request) {
			var req cancelSetRequest
			if !decode(w, r, &req) {
				return
			}
			set, err := matchService.CancelSet(r.Context(), chi.URLParam(r, "id"), req.SetNumber)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, set)
		})

		r.Post("/matches/{id}/finish", func(w http.ResponseWriter, r *http.Request) {
			var req finishMatchRequest
			if !decode(w, r, &req) {
				return
			}
			match, err := matchService.FinishMatch(r.Context(), chi.URLParam(r, "id"), req.WinnerTeamID)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, match)
		})

		r.Post("/matches/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
			match, err := matchService.CancelMatch(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"status": string(match.Status)})
		})
	})

	return r
}
