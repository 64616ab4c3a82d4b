package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/adpilot/meta-ads-monitor/internal/api"
	"github.com/adpilot/meta-ads-monitor/internal/archive"
	"github.com/adpilot/meta-ads-monitor/internal/config"
	"github.com/adpilot/meta-ads-monitor/internal/meta"
	"github.com/adpilot/meta-ads-monitor/internal/metrics"
	"github.com/adpilot/meta-ads-monitor/internal/pkg/distlock"
	"github.com/adpilot/meta-ads-monitor/internal/report"
	"github.com/adpilot/meta-ads-monitor/internal/repository/postgres"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Meta Ads Monitor API server starting...")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Database connection
	if cfg.Database.URL == "" {
		log.Fatal("Database URL is required (set DATABASE_URL or database.url in config)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Failed to ping database: %v", err)
	}
	pingCancel()
	log.Println("Connected to database")

	// Redis is optional: without it the run lock falls back to PG advisory
	// locks and the latest-results cache lives in memory only.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — falling back to PG advisory locks", cfg.Redis.Addr, err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("Redis connected: %s (run locks + result cache enabled)", cfg.Redis.Addr)
		}
		pingCancel()
	} else {
		log.Println("Redis not configured — using PG advisory locks, no cross-restart result cache")
	}

	// Run-artifact archive (local directory or S3)
	store, err := archive.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize archive storage: %v", err)
	}
	log.Printf("Archive storage initialized (type: %s)", cfg.Storage.Type)

	if cfg.Meta.AccessToken == "" {
		log.Println("Warning: META_ACCESS_TOKEN not set — scoring runs will fail at fetch")
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

	m := metrics.New(prometheus.DefaultRegisterer)

	engine := scoring.NewEngine(snapshots, configs, runs, creatives, fetcher, lockFor, cfg.Scoring)
	engine.SetArchiver(store)
	engine.SetMetrics(m)
	if redisClient != nil {
		engine.SetResultCache(scoring.NewRedisResultCache(redisClient, cfg.Scoring.CacheTTL()))
	}
	log.Printf("Scoring engine initialized (windows: %dd current / %dd baseline, %d workers)",
		cfg.Scoring.CurrentWindowDays, cfg.Scoring.BaselineWindowDays, cfg.Scoring.Workers)

	// HTTP surface
	handlers := api.NewHandlers(engine, configs, runs, creatives)
	renderer, err := report.NewDigestRenderer()
	if err != nil {
		log.Fatalf("Failed to initialize digest renderer: %v", err)
	}
	handlers.SetDigestRenderer(renderer)

	server := api.NewServer(handlers, cfg.Auth, m)
	if cfg.Auth.Enabled {
		log.Println("API key authentication enabled")
	} else {
		log.Println("Authentication disabled")
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("Server stopped")
}
