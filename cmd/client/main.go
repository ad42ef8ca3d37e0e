package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/papertrade/internal/client"
	"github.com/yourorg/papertrade/internal/config"
	"github.com/yourorg/papertrade/internal/fetcher"
	"github.com/yourorg/papertrade/internal/handler"
	"github.com/yourorg/papertrade/internal/middleware"
	"github.com/yourorg/papertrade/internal/model"
	"github.com/yourorg/papertrade/internal/scheduler"
	"github.com/yourorg/papertrade/internal/service"
	"github.com/yourorg/papertrade/internal/store"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize clients
	tokenSource := client.NewTokenSource(cfg.Identity.URL+"/api/auth/token", cfg.Identity.Timeout, logger)
	marketClient := client.NewMarketDataClient(cfg.Backend.URL, cfg.Backend.Timeout, logger)
	tradingClient := client.NewTradingClient(cfg.Backend.URL, cfg.Backend.Timeout, tokenSource, logger)

	// Initialize stores
	candles := store.NewCandleStore(logger)
	quotes := store.NewQuoteStore()
	status := store.NewStatusStore()
	balances := store.NewBalanceStore(tradingClient, logger)

	// A fresh identity invalidates the cached balance
	tokenSource.Subscribe(func() {
		logger.Info("Signed-in identity changed, clearing account state")
		balances.Clear()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Market.RequestTimeout)
		defer cancel()
		if err := balances.Refresh(ctx); err != nil {
			logger.Warn("Initial balance fetch for new identity failed", zap.Error(err))
		}
	})

	// Initialize refresh machinery
	clk := clock.New()
	gate := scheduler.NewVisibilityGate()
	historyFetcher := fetcher.NewHistoryFetcher(marketClient, logger)
	ticker := scheduler.NewPriceTicker(marketClient, quotes, gate, clk,
		cfg.Market.PriceInterval, cfg.Market.RequestTimeout, logger)
	historySched := scheduler.NewHistoryScheduler(historyFetcher, marketClient, candles, status, gate, clk,
		cfg.Market.HistoryInterval, cfg.Market.RequestTimeout, logger)

	// Initialize services
	initial, err := initialSelection(cfg.Market)
	if err != nil {
		logger.Fatal("Invalid default selection", zap.Error(err))
	}
	sessions, err := service.NewSessionService(ticker, historySched, gate, initial, logger)
	if err != nil {
		logger.Fatal("Failed to start session", zap.Error(err))
	}
	defer sessions.Close()

	orders := service.NewOrderService(tradingClient, quotes, status, balances, logger)

	// Fetch the starting balance; failures are tolerated, the UI can retry
	func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Market.RequestTimeout)
		defer cancel()
		if err := balances.Refresh(ctx); err != nil {
			logger.Warn("Initial balance fetch failed", zap.Error(err))
		}
	}()

	// Initialize handlers
	marketHandler := handler.NewMarketHandler(candles, quotes, status, logger)
	sessionHandler := handler.NewSessionHandler(sessions, logger)
	accountHandler := handler.NewAccountHandler(balances, logger)
	orderHandler := handler.NewOrderHandler(orders, logger)

	// Set up HTTP server with Gin
	router := setupRouter(marketHandler, sessionHandler, accountHandler, orderHandler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting client", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Client exited properly")
}

func setupRouter(
	marketHandler *handler.MarketHandler,
	sessionHandler *handler.SessionHandler,
	accountHandler *handler.AccountHandler,
	orderHandler *handler.OrderHandler,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		market := v1.Group("/market/:class")
		{
			market.GET("/price", marketHandler.GetPrice)
			market.GET("/history", marketHandler.GetCandles)
			market.GET("/market-status", marketHandler.GetMarketStatus)
			market.GET("/symbols", marketHandler.GetSymbols)
		}

		session := v1.Group("/session")
		{
			session.GET("/selection", sessionHandler.GetSelection)
			session.PUT("/selection", sessionHandler.UpdateSelection)
			session.PUT("/visibility", sessionHandler.UpdateVisibility)
		}

		account := v1.Group("/account")
		{
			account.GET("/balance", accountHandler.GetBalance)
			account.POST("/balance/refresh", accountHandler.RefreshBalance)
		}

		orders := v1.Group("/orders")
		{
			orders.PUT("/draft", orderHandler.UpdateDraft)
			orders.POST("/submit", orderHandler.Submit)
			orders.POST("/confirm", orderHandler.Confirm)
			orders.POST("/cancel", orderHandler.Cancel)
		}
	}

	return router
}

func initialSelection(market config.MarketConfig) (service.Selection, error) {
	class, err := model.ParseAssetClass(market.DefaultClass)
	if err != nil {
		return service.Selection{}, err
	}
	rangeKey, err := model.ParseRangeKey(market.DefaultRange)
	if err != nil {
		return service.Selection{}, err
	}
	return service.Selection{
		Class:  class,
		Symbol: market.DefaultSymbol,
		Range:  rangeKey,
	}, nil
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
