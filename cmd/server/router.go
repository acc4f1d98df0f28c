package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/api"
	apiMiddleware "github.com/Auroral0810/LaTexia-sub000/internal/api/middleware"
	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates the router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	dailyHandler := api.NewDailyHandler(app.selector, app.logger)
	attemptHandler := api.NewAttemptHandler(app.recorder, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviews, app.logger)
	leaderboardHandler := api.NewLeaderboardHandler(app.aggregator, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public reads
		r.Get("/daily-challenge", dailyHandler.GetDailyChallenge)
		r.Get("/leaderboard", leaderboardHandler.GetLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/attempts", attemptHandler.RecordAttempt)

			r.Get("/reviews/due", reviewHandler.ListDue)
			r.Get("/reviews/stats", reviewHandler.GetStats)
			r.Post("/reviews/{problemID}/submit", reviewHandler.SubmitReview)
		})
	})

	r.Get("/health", app.handleHealth)

	return r
}

// handleHealth reports 200 when the database answers a ping.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
