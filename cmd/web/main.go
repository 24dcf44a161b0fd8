// cmd/web/main.go
//
// HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load configuration (.env → conf/global.yaml → APIKIT_ env, with
//     `vault:` secrets resolved).
//
//  2. Start the daily rotating logger (tees to console in a TTY).
//
//  3. Open the database, apply the schema, and log the active-user count
//     as an early sanity check.
//
//  4. Open the task queue.  With the in-memory broker a worker pool runs
//     inside this process; with AMQP the pool runs under `manage worker`.
//     Staff publish through POST /api/tasks in both cases.
//
//  5. Build the router (/healthz, /metrics, /api/auth/token, /api/users,
//     /api/tasks)
//     and serve until SIGINT or SIGTERM, then shut down gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/yanizio/apikit/internal/api"
	"github.com/yanizio/apikit/internal/auth"
	"github.com/yanizio/apikit/internal/config"
	"github.com/yanizio/apikit/internal/database"
	"github.com/yanizio/apikit/internal/logger"
	"github.com/yanizio/apikit/internal/server"
	"github.com/yanizio/apikit/internal/tasks"
	"github.com/yanizio/apikit/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Console("info")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, logger.IsTTY(), cfg.Log.Level)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync()

	//
	// ── 1.  Database ────────────────────────────────────────────────────
	//
	db, err := database.OpenWithOptions(ctx, cfg.Database.DataSource(), database.Options{
		MaxOpen: cfg.Database.MaxOpen,
		MaxIdle: cfg.Database.MaxIdle,
	})
	if err != nil {
		logOut.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logOut.Fatalf("migrate: %v", err)
	}

	store := users.NewStore(db)
	if n, err := store.ActiveRecords().Count(ctx); err == nil {
		logOut.Infow("database online", "active_users", n)
	}

	//
	// ── 2.  Task queue ──────────────────────────────────────────────────
	//
	queue, err := tasks.Open(cfg.Tasks.Broker, cfg.Tasks.AMQPURL, cfg.Tasks.Queue,
		cfg.Tasks.Buffer, cfg.Tasks.Workers)
	if err != nil {
		logOut.Fatalf("open task queue: %v", err)
	}
	defer queue.Close()

	registry := tasks.NewRegistry()
	if cfg.Tasks.Broker == tasks.BrokerMemory {
		w := tasks.NewWorker(queue, registry, cfg.Tasks.Workers)
		go func() {
			if err := w.Run(ctx); err != nil {
				logOut.Errorw("in-process worker stopped", "err", err)
			}
		}()
	}

	//
	// ── 3.  HTTP ────────────────────────────────────────────────────────
	//
	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logOut.Fatalf("token issuer: %v", err)
	}

	router := api.NewRouter(api.Deps{
		DB:         db,
		Users:      users.NewHandler(store, cfg.Pagination.Defaults(), issuer),
		Tasks:      tasks.NewHandler(queue, registry),
		Issuer:     issuer,
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
	})

	srv := server.New(cfg.HTTP.ListenAddr, router, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	if err := server.Run(ctx, srv); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
	logOut.Info("bye")
}
