package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/miguelmartinez95/rest-api-project/internal/config"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// App owns the long-lived connections.
type App struct {
	Config      *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Revocations repositories.RevocationStore
}

func NewApp(cfg *config.Config) (*App, error) {
	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		cancel()
		if err == nil {
			utils.Logger.Infof("Successfully connected to database on attempt %d", i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed to connect to database on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)
		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	a := &App{Config: cfg, DB: dbPool}
	if err := a.initRevocationStore(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initRevocationStore() error {
	switch a.Config.RevocationBackend {
	case config.RevocationBackendPostgres:
		a.Revocations = repositories.NewBlocklistRepository(a.DB)
	case config.RevocationBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		client, err := repositories.NewRedisClient(ctx, a.Config.RedisURL)
		if err != nil {
			return err
		}
		a.Redis = client
		a.Revocations = repositories.NewRedisRevocationStore(client)
	default:
		a.Revocations = repositories.NewMemoryRevocationStore()
	}
	utils.Logger.Infof("Token blocklist backend: %s", a.Config.RevocationBackend)
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Error closing redis client")
		}
	}
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("Database connection closed.")
	}
}

// newDBPool constructs the pgx pool with production-safe settings.
func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.ConnectConfig(ctx, cfg)
}
