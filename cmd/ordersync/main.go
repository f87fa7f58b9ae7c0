package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"experiences_portal/internal/adapters/observability"
	redisad "experiences_portal/internal/adapters/redis"
	"experiences_portal/internal/adapters/turneo"
	"experiences_portal/internal/app"
	"experiences_portal/internal/shared"
	mysqlrepo "experiences_portal/internal/storage/mysql"
)

// ordersync re-reads every indexed order from the platform and refreshes
// its local status row. Meant to run from cron.
func main() {
	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.TurneoBase).
		Int("workers", cfg.SyncWorkers).
		Msg("ordersync starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	client, err := turneo.New(cfg.TurneoBase, cfg.TurneoKey, cfg.TurneoRPS, cfg.RequestTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Turneo client")
	}
	index := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	orders := app.NewOrderService(client, cache, index, cfg.OrderCacheTTL)

	ids, err := orders.IndexedOrderIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing indexed orders failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.SyncWorkers))
	var wg sync.WaitGroup

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := orders.SyncOrder(ctx, orderID); err != nil {
				log.Warn().Str("order", orderID).Err(err).Msg("sync failed")
				return
			}
			log.Info().Str("order", orderID).Msg("sync ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int("orders", len(ids)).Msg("sync completed")
}
