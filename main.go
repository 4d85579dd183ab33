package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kariqs/amexan-store/cart"
	"github.com/Kariqs/amexan-store/checkout"
	"github.com/Kariqs/amexan-store/controllers"
	"github.com/Kariqs/amexan-store/initializers"
	"github.com/Kariqs/amexan-store/inventory"
	"github.com/Kariqs/amexan-store/middlewares"
	"github.com/Kariqs/amexan-store/routes"
	"github.com/Kariqs/amexan-store/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := initializers.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration.")
	}
	logger := initializers.InitLogger(cfg)

	db, err := initializers.ConnectToDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database.")
	}
	if err := initializers.SyncDatabase(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to sync database.")
	}
	metrics := initializers.NewMetrics()

	gateway := store.New(db, store.WithTimeout(cfg.CheckoutTimeout))
	carts := cart.NewStore(db)
	ledger := inventory.NewLedger(db)
	checkoutService := checkout.NewService(gateway, carts, ledger,
		checkout.WithLogger(logger.With().Str("component", "checkout").Logger()),
		checkout.WithRecorder(metrics),
	)

	server := gin.New()
	server.Use(gin.Recovery(), middlewares.RequestID(), middlewares.RequestLogger(logger))
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", controllers.IdempotencyKeyHeader, middlewares.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middlewares.RequireAuth(cfg.JWTSecret)
	routes.DefaultRoutes(server, db)
	routes.MetricsRoutes(server, metrics.Handler())
	routes.CartRoutes(server, requireAuth, &controllers.CartController{Carts: carts})
	routes.OrderRoutes(server, requireAuth,
		&controllers.CheckoutController{Checkout: checkoutService},
		&controllers.OrderController{DB: db},
	)
	routes.AdminRoutes(server, requireAuth, &controllers.AdminController{Gateway: gateway, Ledger: ledger})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("Server listening.")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server stopped unexpectedly.")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info().Msg("Shutting down server.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed.")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
