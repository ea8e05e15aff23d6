package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/sakif/oracle-enclave/internal/auth"
	"github.com/sakif/oracle-enclave/internal/handler"
	"github.com/sakif/oracle-enclave/internal/hostapi"
	"github.com/sakif/oracle-enclave/internal/repository"
	"github.com/sakif/oracle-enclave/internal/repository/sqlite"
	"github.com/sakif/oracle-enclave/internal/repository/walrus"
	"github.com/sakif/oracle-enclave/internal/server"
	"github.com/sakif/oracle-enclave/internal/service"
	"github.com/sakif/oracle-enclave/internal/signer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	port := envOr("PORT", "3000")
	dbPath := envOr("DB_PATH", "oracle.db")

	db, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Scripts come from the local cache by default; point
	// WALRUS_AGGREGATOR_URL at an aggregator to resolve published blobs
	// instead.
	var blobs repository.BlobStore = db
	if aggURL := os.Getenv("WALRUS_AGGREGATOR_URL"); aggURL != "" {
		blobs = walrus.New(aggURL, nil, logger)
		logger.Info("using walrus aggregator", slog.String("url", aggURL))
	}

	// An ephemeral keypair matches enclave semantics: identity comes from
	// attestation of the running image, not from persisted key material.
	sig, err := signerFromEnv()
	if err != nil {
		return err
	}
	logger.Info("signing key ready", slog.String("public_key", sig.PublicKeyHex()))

	api := hostapi.New(nil, logger)
	oracleSvc := service.NewOracleService(db, blobs, sig, api, logger)
	feedSvc := service.NewFeedService(db, db, logger)

	var tokens *auth.TokenService
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		tokens = auth.NewTokenService(secret, 24*time.Hour)
	}

	srv := server.New(server.Config{Port: port, Tokens: tokens},
		handler.NewOracleHandler(oracleSvc, logger),
		handler.NewFeedHandler(feedSvc, logger),
		logger)
	return srv.Start()
}

func signerFromEnv() (*signer.Ed25519Signer, error) {
	if seed := os.Getenv("SIGNER_SEED"); seed != "" {
		return signer.NewFromSeed(seed)
	}
	return signer.Generate()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
