package main

import (
	"context"
	"os"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/feed"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/server"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

// @title Inventory Ledger API
// @version 1.0
// @description Product catalog and signed stock ledger. Stock is the sum of a SKU's adjustments.
// @BasePath /

func main() {
	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("error", false)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DSN(), cfg.SQLLogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}
	log.Info().Msg("database connection established")

	// 3. Setup WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	wsHub := ws.NewHub(log)
	go wsHub.Run(hubCtx)

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	txManager := repository.NewTxManager(db)
	productFeed := feed.NewClient(cfg.ProductFeedURL, cfg.FeedTimeout)

	ledgerService := service.NewLedgerService(txManager, txRepo, wsHub)
	catalogService := service.NewCatalogService(txManager, productRepo, productFeed, wsHub, log)
	dashService := service.NewDashboardService(txRepo, cfg.LowStockLimit)

	app := server.New(server.Handlers{
		Products:     handler.NewProductHandler(catalogService, log),
		Transactions: handler.NewTransactionHandler(ledgerService, log),
		Dashboard:    handler.NewDashboardHandler(dashService, log),
		Health:       handler.NewHealthHandler(db),
		Hub:          wsHub,
	}, log)

	// 5. Serve
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// 6. Graceful Shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Info().Msg("shutting down server...")
				err := app.ShutdownWithContext(ctx)
				stopHub()
				return err
			},
		},
	)

	exitCode := <-wait
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
	log.Info().Int("exit_code", exitCode).Msg("server exited")
	os.Exit(exitCode)
}
