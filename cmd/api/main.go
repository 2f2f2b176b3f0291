package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rusample/sample-market/internal/config"
	"github.com/rusample/sample-market/internal/db"
	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/redisx"
	"github.com/rusample/sample-market/internal/server"
)

// Set via -ldflags at build time.
var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.Account{},
		&model.Category{},
		&model.Listing{},
		&model.Order{},
		&model.Review{},
		&model.Notification{},
		&model.SellerSubscription{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr, cfg.RedisDB)
		if err := redisx.Ping(context.Background(), rdb); err != nil {
			log.Printf("redis unavailable, unread-count cache disabled: %v", err)
			rdb = nil
		}
	}

	srv := server.New(conn, rdb, gitSHA, buildTime)
	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
