package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/config"
	"github.com/GlebRadaev/gofood/internal/handlers"
	"github.com/GlebRadaev/gofood/internal/pg"
	"github.com/GlebRadaev/gofood/internal/relay"
	"github.com/GlebRadaev/gofood/internal/repo"
	"github.com/GlebRadaev/gofood/internal/service"
	"github.com/GlebRadaev/gofood/pkg/idempotency"
	"github.com/GlebRadaev/gofood/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg   *config.Config
	api   *handlers.Handlers
	srv   *service.Services
	repo  *repo.Repositories
	relay *relay.Service

	pool   *pgxpool.Pool
	redis  *redis.Client
	writer *kafka.Writer

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	a.pool = pool
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	guard, err := a.idempotencyGuard(ctx, cfg)
	if err != nil {
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	a.cfg = cfg
	a.repo = repo.New(pg.New(pool))
	a.srv = service.New(a.repo, txManager, service.Options{
		FeeRate:        cfg.FeeRate,
		InitialBalance: cfg.InitialBalance,
		JWTSecret:      cfg.JWTSecret,
	})
	a.api = handlers.New(a.srv, guard)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startRelay(ctx)
	a.closeOnShutdown(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// idempotencyGuard returns nil when no Redis address is configured.
func (a *Application) idempotencyGuard(ctx context.Context, cfg *config.Config) (*idempotency.Guard, error) {
	if cfg.RedisAddress == "" {
		zap.L().Info("redis address not set, idempotency keys are ignored")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	a.redis = client
	return idempotency.New(client, cfg.IdempotencyTTL), nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

// startRelay publishes the order event outbox. Without brokers events stay in the table.
func (a *Application) startRelay(ctx context.Context) {
	if len(a.cfg.KafkaBrokers) == 0 {
		zap.L().Info("kafka brokers not set, event relay disabled")
		return
	}
	a.writer = relay.NewKafkaWriter(a.cfg.KafkaBrokers, a.cfg.KafkaTopic)
	a.relay = relay.New(a.repo.EventRepo, relay.NewKafkaPublisher(a.writer), a.cfg.RelayInterval)
	a.relay.Start(ctx)
}

func (a *Application) closeOnShutdown(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		if a.writer != nil {
			if err := a.writer.Close(); err != nil {
				zap.L().Error("failed to close kafka writer", zap.Error(err))
			}
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				zap.L().Error("failed to close redis client", zap.Error(err))
			}
		}
		a.pool.Close()
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
