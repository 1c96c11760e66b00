package main

import (
	"context"
	"database/sql"
	"dynamic-route-service/internal/adapters/ledger"
	"dynamic-route-service/internal/adapters/repositories"
	"dynamic-route-service/internal/config"
	"dynamic-route-service/internal/platform/db"
	"dynamic-route-service/internal/platform/obs"
	"strings"

	"github.com/rs/zerolog/log"
)

// dbtool creates the Postgres ledger schema and the local SQLite schema.
func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.SetupLogger("info", "console")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	obs.SetupLogger(cfg.LogLevel, "console")

	sqlite, err := repositories.OpenSqlite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open sqlite")
	}
	defer sqlite.Close()

	log.Info().Str("path", cfg.DBPath).Msg("initializing sqlite schema")
	if err := repositories.InitSchema(sqlite); err != nil {
		log.Fatal().Err(err).Msg("sqlite schema initialization failed")
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Warn().Msg("DATABASE_URL not set, skipping postgres schema")
		return
	}

	pg, err := db.Open(context.Background(), cfg.DatabaseURL, db.DefaultPool)
	if err != nil {
		log.Fatal().Err(err).Msg("open postgres")
	}
	defer pg.Close()

	initPostgres(pg)
}

func initPostgres(pg *sql.DB) {
	log.Info().Msg("initializing postgres schema")
	if err := ledger.InitSchema(pg); err != nil {
		log.Fatal().Err(err).Msg("postgres schema initialization failed")
	}
	log.Info().Msg("schema ready")
}
