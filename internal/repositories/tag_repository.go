package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	ListByStore(ctx context.Context, storeID int64) ([]*models.Tag, error)
	ListByItem(ctx context.Context, itemID int64) ([]*models.Tag, error)
	Delete(ctx context.Context, id int64) error

	LinkItem(ctx context.Context, itemID, tagID int64) error
	UnlinkItem(ctx context.Context, itemID, tagID int64) error
	CountLinkedItems(ctx context.Context, tagID int64) (int, error)
}

type tagRepo struct {
	db DB
}

func NewTagRepository(db DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) Create(ctx context.Context, tag *models.Tag) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tags (name, store_id) VALUES ($1, $2) RETURNING tag_id`,
		tag.Name, tag.StoreID,
	).Scan(&tag.ID)
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return fmt.Errorf("tag %q: %w", tag.Name, utils.ErrConflict)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("store %d: %w", tag.StoreID, utils.ErrNotFound)
	default:
		return fmt.Errorf("create tag: %w", err)
	}
}

func (r *tagRepo) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	var t models.Tag
	err := r.db.QueryRow(ctx,
		`SELECT tag_id, name, store_id FROM tags WHERE tag_id=$1`, id,
	).Scan(&t.ID, &t.Name, &t.StoreID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *tagRepo) ListByStore(ctx context.Context, storeID int64) ([]*models.Tag, error) {
	return r.queryTags(ctx,
		`SELECT tag_id, name, store_id FROM tags WHERE store_id=$1 ORDER BY tag_id`, storeID)
}

func (r *tagRepo) ListByItem(ctx context.Context, itemID int64) ([]*models.Tag, error) {
	return r.queryTags(ctx, `
		SELECT t.tag_id, t.name, t.store_id
		FROM tags t
		JOIN item_tags it ON it.tag_id = t.tag_id
		WHERE it.item_id=$1
		ORDER BY t.tag_id`, itemID)
}

func (r *tagRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE tag_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete tag %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// LinkItem is idempotent; linking twice leaves a single row.
func (r *tagRepo) LinkItem(ctx context.Context, itemID, tagID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO item_tags (item_id, tag_id) VALUES ($1, $2)
		ON CONFLICT (item_id, tag_id) DO NOTHING
	`, itemID, tagID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return utils.ErrNotFound
		}
		return fmt.Errorf("link item %d to tag %d: %w", itemID, tagID, err)
	}
	return nil
}

func (r *tagRepo) UnlinkItem(ctx context.Context, itemID, tagID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM item_tags WHERE item_id=$1 AND tag_id=$2`, itemID, tagID)
	if err != nil {
		return fmt.Errorf("unlink item %d from tag %d: %w", itemID, tagID, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *tagRepo) CountLinkedItems(ctx context.Context, tagID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM item_tags WHERE tag_id=$1`, tagID).Scan(&n)
	return n, err
}

func (r *tagRepo) queryTags(ctx context.Context, sql string, args ...interface{}) ([]*models.Tag, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.StoreID); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}
