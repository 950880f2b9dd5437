// Package api wires the HTTP surface: routing, middleware, and handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/gfranca/b3-ledger-backend/internal/api/handlers"
	"github.com/gfranca/b3-ledger-backend/internal/api/middleware"
	"github.com/gfranca/b3-ledger-backend/internal/config"
	"github.com/gfranca/b3-ledger-backend/internal/jobs"
	"github.com/gfranca/b3-ledger-backend/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	System    *service.SystemService
	Trades    *service.TradeService
	Positions *service.PositionService
	Realized  *service.RealizedPnLService
	Dividends *service.DividendService
	Portfolio *service.PortfolioService
	Runner    *jobs.Runner
	Logger    *logrus.Logger
	Config    *config.Config
}

// NewRouter creates and configures the HTTP router. System endpoints are
// open; everything under the ledger requires a valid tenant header, and
// mutating endpoints additionally require an API key when one is
// configured.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(chimiddleware.Recoverer)

	corsMiddleware := middleware.NewCORS(deps.Config.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	apiKey := middleware.APIKey(deps.Config.Auth.FernetKey, deps.Config.Auth.KeyTTL)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(deps.System, deps.Runner)
			r.Get("/health", systemHandler.Health)
			r.Get("/jobs", systemHandler.Jobs)
		})

		r.Route("/trade", func(r chi.Router) {
			r.Use(middleware.Tenant)
			tradeHandler := handlers.NewTradeHandler(deps.Trades)
			r.Get("/", tradeHandler.List)
			r.Get("/quantity", tradeHandler.QuantityAsOf)

			r.Group(func(r chi.Router) {
				r.Use(apiKey)
				r.Post("/import", tradeHandler.Import)
				r.Post("/import/csv", tradeHandler.ImportCSV)
				r.Delete("/", tradeHandler.Reset)
			})
		})

		r.Route("/dividend", func(r chi.Router) {
			r.Use(middleware.Tenant)
			dividendHandler := handlers.NewDividendHandler(deps.Dividends)
			r.Get("/", dividendHandler.List)
			r.Get("/totals", dividendHandler.Totals)
			r.Get("/ticker/{ticker}", dividendHandler.ListByTicker)

			r.Group(func(r chi.Router) {
				r.Use(apiKey)
				r.Post("/sync", dividendHandler.Sync)
				r.Post("/clean", dividendHandler.Clean)
				r.Post("/import/csv", dividendHandler.ImportCSV)
				r.Delete("/", dividendHandler.Reset)
			})
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(middleware.Tenant)
			portfolioHandler := handlers.NewPortfolioHandler(deps.Portfolio, deps.Positions, deps.Realized)
			r.Get("/summary", portfolioHandler.Summary)
			r.Get("/positions", portfolioHandler.Positions)
			r.Get("/realized", portfolioHandler.Realized)
		})
	})

	return r
}
