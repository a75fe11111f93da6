package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"verdict/internal/access"
	decisionhandler "verdict/internal/decision/handler"
	decisionmetrics "verdict/internal/decision/metrics"
	"verdict/internal/decision/service"
	"verdict/internal/decision/store"
	"verdict/internal/decision/store/graphcache"
	jwttoken "verdict/internal/jwt_token"
	"verdict/internal/outbox"
	"verdict/internal/platform/config"
	"verdict/internal/platform/httpserver"
	"verdict/internal/platform/logger"
	platformmetrics "verdict/internal/platform/metrics"
	platformredis "verdict/internal/platform/redis"
	httptransport "verdict/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence: Postgres when configured, in-memory otherwise.
	var (
		decisionStore store.Store
		outboxStore   outbox.Store
		storeTx       service.StoreTx
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := store.Migrate(ctx, db); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		if err := outbox.MigrateOutbox(ctx, db); err != nil {
			log.Error("failed to run outbox migration", "error", err)
			os.Exit(1)
		}
		decisionStore = store.NewPostgresStore(db)
		outboxStore = outbox.NewPostgresStore(db)
		storeTx = newDecisionPostgresTx(db)
		log.Info("using postgres store")
	} else {
		decisionStore = store.NewInMemoryStore()
		outboxStore = outbox.NewInMemoryStore()
		storeTx = service.NewShardedTx()
		log.Info("using in-memory store")
	}

	// Graph snapshot cache, optional.
	var cache service.GraphCache
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = graphcache.NewRedisCache(redisClient.Client, cfg.Redis.CacheTTL, log)
		log.Info("graph cache enabled")
	}

	// Notification dispatch: Kafka when brokers are configured, log-only
	// otherwise.
	var dispatcher outbox.Dispatcher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := outbox.NewKafkaDispatcher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		dispatcher = kafka
		log.Info("notification dispatch to kafka", "topic", cfg.KafkaTopic)
	} else {
		dispatcher = outbox.NewLogDispatcher(log)
	}

	directory := access.NewInMemoryDirectory()
	engineMetrics := decisionmetrics.New()
	processMetrics := platformmetrics.New()

	svc := service.NewService(decisionStore, storeTx, directory, outboxStore, cache, engineMetrics, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "verdict", "verdict-api")
	handler := decisionhandler.New(svc, log, engineMetrics)
	router := httptransport.NewRouter(handler, jwttoken.NewJWTServiceAdapter(jwtService), log)

	worker := outbox.NewWorker(outboxStore, dispatcher, log, processMetrics)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("outbox worker stopped", "error", err)
		}
	}()

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting verdict", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
