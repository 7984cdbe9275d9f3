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
	"strings"
	"syscall"
	"time"

	"github.com/mergington/activities/internal/api"
	"github.com/mergington/activities/internal/config"
	"github.com/mergington/activities/internal/events"
	"github.com/mergington/activities/internal/metrics"
	"github.com/mergington/activities/internal/pkg/logger"
	"github.com/mergington/activities/internal/roster"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// extractHost returns the host portion of a DSN so it can be logged without
// credentials.
func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

// openAuditDB connects the PostgreSQL audit sink and creates its table.
func openAuditDB(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, *events.PostgresAuditSink, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping audit database: %w", err)
	}

	sink, err := events.NewPostgresAuditSink(db, cfg.Table)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := sink.EnsureSchema(pingCtx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, sink, nil
}

func main() {
	log.Println("Mergington High School activities API (cmd/server/main.go)")

	// Load configuration
	cfg, err := config.LoadFromEnv(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.Redact())

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	logger.Info("pre-flight check passed", "port", port)

	seed, err := roster.LoadSeed(cfg.Catalog.SeedFile)
	if err != nil {
		log.Fatalf("Failed to load activity catalog: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.NewDefault()

	// Optional change feed sinks. A backend that cannot be reached is logged
	// and skipped; the roster itself never depends on it.
	var sinks []events.Sink

	var redisClient *redis.Client
	if cfg.Events.Redis.URL != "" {
		redisClient, err = events.Connect(ctx, cfg.Events.Redis.URL, 5*time.Second)
		if err != nil {
			logger.Warn("redis change feed disabled", "error", err)
			redisClient = nil
		} else {
			sinks = append(sinks, events.NewRedisStreamSink(redisClient, cfg.Events.Redis.Stream, cfg.Events.Redis.MaxLen))
			logger.Info("redis change feed enabled", "stream", cfg.Events.Redis.Stream)
		}
	}

	var auditDB *sql.DB
	if cfg.Events.Postgres.DatabaseURL != "" {
		logger.Info("connecting audit database", "host", extractHost(cfg.Events.Postgres.DatabaseURL))
		db, sink, err := openAuditDB(ctx, cfg.Events.Postgres)
		if err != nil {
			logger.Warn("postgres audit sink disabled", "error", err)
		} else {
			auditDB = db
			sinks = append(sinks, sink)
			logger.Info("postgres audit sink enabled", "table", cfg.Events.Postgres.Table)
		}
	}

	dispatcher := events.NewDispatcher(cfg.Events.BufferSize, sinks, events.WithRecorder(recorder))
	dispatcher.Start(ctx)

	registry, err := roster.New(seed,
		roster.WithListener(recorder.ObserveEvent),
		roster.WithListener(dispatcher.Publish),
	)
	if err != nil {
		log.Fatalf("Failed to build activity registry: %v", err)
	}
	recorder.Seed(registry.List())
	logger.Info("activity registry ready", "activities", len(registry.Names()))

	server := api.NewServer(cfg, registry, recorder)
	server.SetRedisClient(redisClient)
	server.SetAuditDB(auditDB)

	// Register health routes after all Set* calls so the checker sees every
	// dependency.
	server.RegisterHealthRoutes()

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Drain queued roster events before closing their backends.
	dispatcher.Stop()
	cancel()
	logger.Info("change feed stopped", "delivered", dispatcher.Delivered(), "dropped", dispatcher.Dropped())

	if redisClient != nil {
		redisClient.Close()
	}
	if auditDB != nil {
		auditDB.Close()
	}

	logger.Info("server stopped")
}
