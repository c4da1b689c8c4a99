package repositories

import (
	"context"
	"fmt"
	"time"
)

// blocklistRepository persists revoked token ids in blocklisted_tokens so
// logouts survive a restart. Rows past expires_at are purged by the cleanup job.
type blocklistRepository struct {
	db DB
}

var _ RevocationStore = (*blocklistRepository)(nil)

func NewBlocklistRepository(db DB) RevocationStore {
	return &blocklistRepository{db: db}
}

func (r *blocklistRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO blocklisted_tokens (token_id, expires_at, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (token_id) DO NOTHING
	`, jti, expiresAt)
	if err != nil {
		return false, fmt.Errorf("blocklist token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *blocklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blocklisted_tokens WHERE token_id = $1)`, jti,
	).Scan(&exists)
	return exists, err
}

func (r *blocklistRepository) CleanupExpired(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM blocklisted_tokens WHERE expires_at < NOW()`)
	return err
}
