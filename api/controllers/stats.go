package controllers

import (
	"net/http"

	"github.com/Zymart/shopbot-backend/api/responses"
	"github.com/Zymart/shopbot-backend/api/validators"
	statsvc "github.com/Zymart/shopbot-backend/internal/stats"
	usersvc "github.com/Zymart/shopbot-backend/internal/users"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

const (
	defaultSeriesDays     = 30
	defaultLeaderboardLen = 10
)

// StatsReport returns the category trend report plus a daily series
// for the requested window.
func StatsReport(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := validators.ParseQueryInt(r, "days", defaultSeriesDays, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trends, err := svc.TrendReport(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		series, err := svc.DailySeries(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"trends": trends,
			"daily":  series,
		})
	}
}

// Leaderboard returns the top sellers ranked by completed sales.
func Leaderboard(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultLeaderboardLen, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sellers, err := svc.TopSellers(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sellers)
	}
}
