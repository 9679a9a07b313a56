package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/qstina/relove-website/internal/config"
	"github.com/qstina/relove-website/internal/events"
	"github.com/qstina/relove-website/internal/infra/db"
	infra "github.com/qstina/relove-website/internal/infra/repository"
	"github.com/qstina/relove-website/internal/infra/token"
	"github.com/qstina/relove-website/internal/logging"
	"github.com/qstina/relove-website/internal/metrics"
	"github.com/qstina/relove-website/internal/server"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New("error").Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("service", "relove-api", "env", cfg.GoEnv)

	//deferを走らせてから終了する
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	tokens := token.NewJWT(cfg.JWTSecret, cfg.AccessTokenTTL)

	handlers, repos := server.Wire(server.Deps{
		DB:      gormDB,
		Tokens:  tokens,
		Hasher:  usecase.BcryptPasswordHasher{Cost: 12},
		Metrics: m,
		IDs:     usecase.UUIDGenerator{},
		Clock:   usecase.SystemClock{},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//outbox -> kafka。ブローカー未設定なら行はpendingのまま残る
	kafkaClient := &events.Client{Brokers: cfg.KafkaBrokers}
	if kafkaClient.Enabled() {
		publisher := events.NewKafkaPublisher(kafkaClient)
		defer publisher.Close()

		relay := events.NewRelay(infra.NewOutboxGormRepository(gormDB), publisher, cfg.OutboxPollInterval)
		go relay.Run(logging.IntoContext(ctx, logger))
		logger.Info("outbox relay started", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS is empty; events stay in outbox")
	}

	var origins []string
	if cfg.FEURL != "" {
		origins = []string{cfg.FEURL}
	}

	e := server.New(server.Options{
		Logger:       logger,
		Tokens:       tokens,
		Users:        repos.Users(),
		Metrics:      m,
		Gatherer:     reg,
		AllowOrigins: origins,
	}, handlers)

	logger.Info("server starting", "addr", cfg.Addr())
	return server.Start(ctx, e, cfg.Addr())
}
