package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"bre-gateway/internal/audit"
	audithandler "bre-gateway/internal/audit/handler"
	"bre-gateway/internal/decision"
	decisionhandler "bre-gateway/internal/decision/handler"
	"bre-gateway/internal/decision/metrics"
	"bre-gateway/internal/engine"
	"bre-gateway/internal/facts"
	"bre-gateway/internal/platform/config"
	"bre-gateway/internal/platform/httpserver"
	"bre-gateway/internal/platform/logger"
	redisplatform "bre-gateway/internal/platform/redis"
	"bre-gateway/internal/rules"
	ruleshandler "bre-gateway/internal/rules/handler"
	httptransport "bre-gateway/internal/transport/http"
)

const auditBufferSize = 256

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Rule storage: redis when configured, filesystem otherwise.
	var storage rules.ManagedStorage
	if redisClient != nil {
		storage = rules.NewRedisStorage(redisClient.Client, cfg.RulesBucket)
		log.Info("rule storage: redis", "prefix", cfg.RulesBucket)
	} else {
		storage = rules.NewFSStorage(cfg.RulesDir)
		log.Info("rule storage: filesystem", "dir", cfg.RulesDir)
	}

	repo := rules.NewRepository(storage, log)
	eng := engine.New(log)

	var evaluator decision.Evaluator
	switch cfg.EvaluatorMode {
	case config.EvaluatorThreshold:
		evaluator = decision.NewThresholdEvaluator(cfg.MinAge, cfg.MinCIBILScore)
	default:
		evaluator = decision.NewDelegatingEvaluator(eng)
	}
	log.Info("evaluator selected", "mode", cfg.EvaluatorMode)

	// Audit persistence: postgres when configured, in-memory otherwise.
	var store audit.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		store = audit.NewPostgresStore(db)
		log.Info("audit store: postgres")
	} else {
		store = audit.NewInMemoryStore()
		log.Info("audit store: in-memory")
	}
	publisher := audit.NewPublisher(store)

	sinks := audit.Fanout{publisher}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer kafka.Close()
		sinks = append(sinks, kafka)
		log.Info("audit publisher: kafka", "topic", cfg.KafkaTopic)
	}

	buffer := audit.NewBuffer(auditBufferSize, log)
	worker := audit.NewWorker(sinks, buffer.Inbox(), log)

	m := metrics.New()
	svc := decision.NewService(facts.NewAdapter(), repo, evaluator, buffer, log, m)

	var checks []httptransport.HealthChecker
	if redisClient != nil {
		checks = append(checks, redisClient)
	}

	router := httptransport.NewRouter([]httptransport.Registrar{
		decisionhandler.New(svc, log, cfg.DefaultRulePath),
		ruleshandler.New(storage, repo, eng, log, m.IncrementCacheInvalidation),
		audithandler.New(publisher, log),
	}, checks)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting bre-gateway", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
