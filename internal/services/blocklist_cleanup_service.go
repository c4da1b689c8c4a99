package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

// One retry on transient network errors, after a short pause.
var cleanupRetryDelay = 3 * time.Second

// BlocklistCleanupService drops blocklist entries whose tokens have expired
// on their own.
type BlocklistCleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type blocklistCleanupService struct {
	store repositories.RevocationStore
}

func NewBlocklistCleanupService(store repositories.RevocationStore) BlocklistCleanupService {
	return &blocklistCleanupService{store: store}
}

func (s *blocklistCleanupService) runWithRetry(
	ctx context.Context,
	op func(context.Context) error,
) error {
	err := op(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
		strings.Contains(err.Error(), "connection was closed") {
		utils.Logger.WithError(err).Warn("blocklist cleanup hit transient error; retrying once")
		select {
		case <-time.After(cleanupRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		return op(ctx)
	}
	return err
}

func (s *blocklistCleanupService) CleanupDaily(ctx context.Context) error {
	if err := s.runWithRetry(ctx, s.store.CleanupExpired); err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired blocklisted tokens")
		return err
	}
	utils.Logger.Info("Daily blocklist cleanup completed successfully.")
	return nil
}
