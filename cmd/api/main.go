package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/adapters/feed"
	server "github.com/karan00190/HotelIQ-Revenue-Management/internal/adapters/http_server"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/adapters/observability"
	redisad "github.com/karan00190/HotelIQ-Revenue-Management/internal/adapters/redis"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/analytics"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/app"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/etl"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/shared"
	mysqlrepo "github.com/karan00190/HotelIQ-Revenue-Management/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	calc := analytics.NewCalculator(repo, cfg.Workers)
	pipeline := etl.NewPipeline(repo)

	var bookingFeed domain.BookingFeed
	if cfg.FeedBase != "" {
		client, err := feed.New(cfg.FeedBase, cfg.FeedKey, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize booking feed client")
		}
		bookingFeed = client
	} else {
		log.Info().Msg("FEED_BASE_URL not set, feed sync disabled")
	}

	q := app.NewQueryService(repo, cache, calc, cfg.CacheTTL)
	c := app.NewCommandService(repo, cache)
	ing := app.NewIngestionService(repo, pipeline, calc, bookingFeed, cache)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c, I: ing})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
