package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adpilot/meta-ads-monitor/internal/archive"
	"github.com/adpilot/meta-ads-monitor/internal/config"
	"github.com/adpilot/meta-ads-monitor/internal/meta"
	"github.com/adpilot/meta-ads-monitor/internal/pkg/distlock"
	"github.com/adpilot/meta-ads-monitor/internal/report"
	"github.com/adpilot/meta-ads-monitor/internal/repository/postgres"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
	"github.com/adpilot/meta-ads-monitor/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	log.Println("Starting Meta Ads Monitor worker...")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Polling.AccountIDs) == 0 {
		log.Fatal("No accounts to poll — set ACCOUNT_IDS or polling.account_ids in config")
	}
	if cfg.Meta.AccessToken == "" {
		log.Println("Warning: META_ACCESS_TOKEN not set — scoring runs will fail at fetch")
	}

	// Database connection
	if cfg.Database.URL == "" {
		log.Fatal("Database URL is required (set DATABASE_URL or database.url in config)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Redis is optional: without it run locks fall back to PG advisory locks.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisCtx, redisCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(redisCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — falling back to PG advisory locks", cfg.Redis.Addr, err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("Redis connected: %s", cfg.Redis.Addr)
		}
		redisCancel()
	}

	// Run-artifact archive (local directory or S3)
	store, err := archive.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize archive storage: %v", err)
	}

	// Wire the scoring engine
	snapshots := postgres.NewSnapshotRepo(db)
	configs := postgres.NewConfigRepo(db)
	runs := postgres.NewRunRepo(db)
	creatives := postgres.NewCreativeRepo(db)
	fetcher := meta.NewFetcher(meta.NewClient(cfg.Meta))

	lockFor := func(accountID string) distlock.DistLock {
		return distlock.NewLock(redisClient, db, "scoring:account:"+accountID, cfg.Scoring.LockTTL())
	}

	engine := scoring.NewEngine(snapshots, configs, runs, creatives, fetcher, lockFor, cfg.Scoring)
	engine.SetArchiver(store)
	if redisClient != nil {
		engine.SetResultCache(scoring.NewRedisResultCache(redisClient, cfg.Scoring.CacheTTL()))
	}
	log.Println("Scoring engine initialized")

	poller := worker.NewPoller(engine, cfg.Polling)
	renderer, err := report.NewDigestRenderer()
	if err != nil {
		log.Fatalf("Failed to initialize digest renderer: %v", err)
	}
	poller.SetDigestRenderer(renderer)

	if err := poller.Start(); err != nil {
		log.Fatalf("Failed to start poller: %v", err)
	}
	log.Printf("Worker running: %d accounts, interval %v", len(cfg.Polling.AccountIDs), cfg.Polling.Interval())

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	poller.Stop()

	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("Worker stopped")
}
