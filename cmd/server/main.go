package main

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"atlas/server/config"
	"atlas/server/internal/api"
	"atlas/server/internal/auth"
	"atlas/server/internal/database"
	"atlas/server/internal/enrichment"
	"atlas/server/internal/rental"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.DatabaseURL)
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	logger.Info("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	if cfg.RentCast.APIKey == "" {
		logger.Warn("RENTCAST_API_KEY is not set; enrichment calls will be unauthenticated")
	}
	provider := rental.NewRentCast(cfg.RentCast.BaseURL, cfg.RentCast.APIKey, logger)
	enricher := enrichment.NewEnricher(db, provider, logger)

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessExpires, cfg.JWT.RefreshExpires)
	handler := api.NewHandler(db, tokens, enricher, logger)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if cfg.CORSOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
