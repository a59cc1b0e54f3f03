package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/adapters/observability"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/analytics"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/seed"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/shared"
	mysqlrepo "github.com/karan00190/HotelIQ-Revenue-Management/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("bookings", cfg.SeedCount).
		Int("workers", cfg.Workers).
		Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	gen := seed.New(repo, time.Now().UnixNano())
	res, err := gen.Run(ctx, cfg.SeedCount)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().
		Int("hotels", res.Hotels).
		Int("rooms", res.Rooms).
		Int("bookings", res.Bookings).
		Msg("seeding complete")

	// rebuild daily metrics over the seeded history
	calc := analytics.NewCalculator(repo, cfg.Workers)
	recalc, err := calc.RecalculateAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("metric recalculation failed")
	}
	log.Info().
		Int("hotels", recalc.HotelsProcessed).
		Int("metrics", recalc.MetricsCalculated).
		Msg("metrics ready")
}
