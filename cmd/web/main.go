package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "experiences_portal/internal/adapters/http_server"
	"experiences_portal/internal/adapters/observability"
	redisad "experiences_portal/internal/adapters/redis"
	"experiences_portal/internal/adapters/turneo"
	"experiences_portal/internal/app"
	"experiences_portal/internal/shared"
	mysqlrepo "experiences_portal/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

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
	client, err := turneo.New(cfg.TurneoBase, cfg.TurneoKey, cfg.TurneoRPS, cfg.RequestTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Turneo client")
	}
	index := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	catalog := app.NewCatalogService(client, cache, cfg.CacheTTL)
	orders := app.NewOrderService(client, cache, index, cfg.OrderCacheTTL)
	drafts := app.NewDraftService(cache, cfg.DraftTTL)

	// http
	srv := server.New(cfg.RequestTimeout)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Catalog: catalog, Orders: orders, Drafts: drafts, Cfg: cfg})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("portal listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
