package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/gfranca/b3-ledger-backend/internal/api"
	"github.com/gfranca/b3-ledger-backend/internal/brapi"
	"github.com/gfranca/b3-ledger-backend/internal/config"
	"github.com/gfranca/b3-ledger-backend/internal/database"
	"github.com/gfranca/b3-ledger-backend/internal/jobs"
	"github.com/gfranca/b3-ledger-backend/internal/repository"
	"github.com/gfranca/b3-ledger-backend/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	logger.WithField("path", cfg.Database.Path).Info("connected to database")

	// Create repositories
	tradeRepo := repository.NewTradeRepository(db)
	dividendRepo := repository.NewDividendRepository(db)

	// External feed client and background runner
	feed := brapi.NewClient(cfg.Brapi.BaseURL, cfg.Brapi.Token, cfg.Brapi.RequestsPerSecond, cfg.Brapi.Timeout)
	runner := jobs.NewRunner(cfg.Sync.Workers, logger)
	defer runner.Shutdown()

	// Create services
	systemService := service.NewSystemService(db)
	tradeService := service.NewTradeService(tradeRepo, logger)
	positionService := service.NewPositionService(tradeService)
	realizedService := service.NewRealizedPnLService(tradeService)
	dividendService := service.NewDividendService(
		dividendRepo,
		tradeService,
		positionService,
		feed,
		cfg.Sync.Freshness,
		cfg.Sync.Workers,
		logger,
	)
	portfolioService := service.NewPortfolioService(
		positionService,
		realizedService,
		dividendService,
		feed,
		runner,
		logger,
	)

	// Nightly dividend reconciliation
	scheduler := cron.New()
	if cfg.Sync.CleanSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Sync.CleanSchedule, func() {
			runner.Submit("dividend-clean", dividendService.CleanAllTenants)
		})
		if err != nil {
			logger.WithError(err).Fatal("invalid clean schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create router
	router := api.NewRouter(api.Deps{
		System:    systemService,
		Trades:    tradeService,
		Positions: positionService,
		Realized:  realizedService,
		Dividends: dividendService,
		Portfolio: portfolioService,
		Runner:    runner,
		Logger:    logger,
		Config:    cfg,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.WithField("addr", cfg.Server.Addr).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server exited")
}
