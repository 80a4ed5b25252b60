package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mrp-api-server/config"
	"mrp-api-server/internal/api/routes"
	"mrp-api-server/internal/auth"
	"mrp-api-server/internal/automation"
	"mrp-api-server/internal/database"
	"mrp-api-server/internal/service"
	"mrp-api-server/internal/socket"
	"mrp-api-server/internal/store/mongodb"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log, err := initLogger()
	if err != nil {
		panic("could not init logger: " + err.Error())
	}
	defer log.Sync()

	ctx := context.Background()

	// Mongo client is constructed once here and closed on shutdown; every
	// store receives it by injection.
	client, db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error("failed to disconnect MongoDB client", zap.Error(err))
		}
	}()
	log.Info("MongoDB connection established", zap.String("database", cfg.Mongo.DBName))

	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("failed to ensure indexes", zap.Error(err))
	}
	if err := database.SeedAdmin(ctx, db, log); err != nil {
		log.Fatal("failed to seed admin account", zap.Error(err))
	}

	stores := mongodb.New(db)
	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	hub := socket.NewHub(log)
	notifier := socket.Notifier{Hub: hub}

	manufacturing := service.NewManufacturingService(
		stores.Products, stores.BOMs, stores.WorkCentres,
		stores.MOs, stores.WOs, stores.Ledger,
		notifier, log,
	)
	workOrders := service.NewWorkOrderService(stores.WOs, manufacturing, notifier, log)
	inventory := service.NewInventoryService(stores.Ledger, log)
	analytics := service.NewAnalyticsService(stores.MOs, log)

	sweeper := automation.NewSweeper(automation.Config{
		Interval:       cfg.Sweeper.Interval,
		StallThreshold: cfg.Sweeper.StallThreshold,
		SimulatedWork:  cfg.Sweeper.SimulatedWork,
	}, stores.WOs, stores.MOs, workOrders, notifier, log)
	if cfg.Sweeper.Enabled {
		sweeper.Start()
		defer sweeper.Stop()
	}

	router := routes.SetupRouter(routes.Deps{
		Cfg:           cfg,
		Tokens:        tokens,
		Hub:           hub,
		Log:           log,
		Products:      stores.Products,
		BOMs:          stores.BOMs,
		WorkCentres:   stores.WorkCentres,
		Users:         stores.Users,
		Manufacturing: manufacturing,
		WorkOrders:    workOrders,
		Inventory:     inventory,
		Analytics:     analytics,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("starting API server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}

func initLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
