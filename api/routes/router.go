package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zymart/shopbot-backend/api/controllers"
	"github.com/Zymart/shopbot-backend/api/middleware"
	authzsvc "github.com/Zymart/shopbot-backend/internal/authz"
	disputesvc "github.com/Zymart/shopbot-backend/internal/disputes"
	escrowsvc "github.com/Zymart/shopbot-backend/internal/escrow"
	listingsvc "github.com/Zymart/shopbot-backend/internal/listings"
	reportsvc "github.com/Zymart/shopbot-backend/internal/reports"
	statsvc "github.com/Zymart/shopbot-backend/internal/stats"
	usersvc "github.com/Zymart/shopbot-backend/internal/users"
	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/db"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Listings listingsvc.Service
	Escrow   escrowsvc.Service
	Disputes disputesvc.Service
	Reports  reportsvc.Service
	Stats    statsvc.Service
	Users    usersvc.Service
	Authz    authzsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Bot-facing surface. The gateway worker mints a service token per
	// acting Discord user; every handler trusts the user id from it.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", controllers.BrowseListings(svcs.Listings, logg))
			r.Post("/", controllers.CreateListing(svcs.Listings, logg))
			r.Get("/{listingId}", controllers.GetListing(svcs.Listings, logg))
			r.Post("/{listingId}/restock", controllers.RestockListing(svcs.Listings, logg))
			r.Post("/{listingId}/needs-repost", controllers.MarkListingNeedsRepost(svcs.Listings, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.StartPurchase(svcs.Escrow, logg))
			r.Get("/active", controllers.ListActiveTransactions(svcs.Escrow, logg))
			r.Post("/{transactionId}/payment", controllers.ConfirmPayment(svcs.Escrow, logg))
			r.Post("/{transactionId}/proof", controllers.SubmitProof(svcs.Escrow, logg))
			r.Post("/{transactionId}/delivery", controllers.ConfirmDelivery(svcs.Escrow, logg))
			r.Post("/{transactionId}/dispute", controllers.OpenDispute(svcs.Escrow, logg))
			r.Post("/{transactionId}/cancel", controllers.CancelPurchase(svcs.Escrow, logg))
			r.Post("/{transactionId}/rating", controllers.RateTransaction(svcs.Escrow, logg))
		})

		r.Post("/reports", controllers.FileReport(svcs.Reports, logg))
		r.Get("/leaderboard", controllers.Leaderboard(svcs.Users, logg))
	})

	// Staff surface. Roles resolve against the grants table on every
	// request, so a revoked grant locks out immediately.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(svcs.Authz, enums.AdminRoleModerator, logg))
			r.Post("/listings/{listingId}/approve", controllers.ApproveListing(svcs.Listings, logg))
			r.Post("/listings/{listingId}/reject", controllers.RejectListing(svcs.Listings, logg))
			r.Get("/disputes", controllers.ListOpenDisputes(svcs.Disputes, logg))
			r.Get("/reports", controllers.ListOpenReports(svcs.Reports, logg))
			r.Post("/reports/{reportId}/review", controllers.ReviewReport(svcs.Reports, logg))
			r.Post("/reports/{reportId}/dismiss", controllers.DismissReport(svcs.Reports, logg))
			r.Get("/stats", controllers.StatsReport(svcs.Stats, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(svcs.Authz, enums.AdminRoleAdmin, logg))
			r.Post("/disputes/{disputeId}/resolve", controllers.ResolveDispute(svcs.Disputes, logg))
			r.Post("/transactions/{transactionId}/emergency-stop", controllers.EmergencyStopTransaction(svcs.Escrow, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(svcs.Authz, enums.AdminRoleOwner, logg))
			r.Get("/grants", controllers.ListGrants(svcs.Authz, logg))
			r.Post("/grants", controllers.GrantRole(svcs.Authz, logg))
			r.Delete("/grants/{userId}", controllers.RevokeRole(svcs.Authz, logg))
		})
	})

	return r
}
