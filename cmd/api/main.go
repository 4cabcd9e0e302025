package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bloodlink/internal/http/handlers"
	httpapi "bloodlink/internal/http/httpapi"
	"bloodlink/internal/infra"
	"bloodlink/internal/infra/geoip"
	"bloodlink/internal/infra/google"
	"bloodlink/internal/middleware"
	"bloodlink/internal/providers/stripepay"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	if cfg.DBAutoMigrate {
		if err := infra.EnsureSchema(ctx, cfg.DatabaseURL, logger); err != nil {
			logger.Fatal().Err(err).Msg("schema migration failed")
		}
	}

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	processor := stripepay.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, logger)
	if !processor.Ready() {
		logger.Warn().Msg("stripe secret key missing, payment endpoints will report unavailable")
	}

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, donor country disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := &handlers.App{
		SQL:            runner,
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		Processor:      processor,
		Webhooks:       processor,
		GoogleVerifier: google.NewVerifier(cfg.GoogleIssuer, cfg.GoogleClientID),
	}

	router := httpapi.NewRouter(app, cfg, countryLookup)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
