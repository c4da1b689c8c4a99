package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	// CreateWithID inserts under a caller-chosen id (PUT on a missing item).
	CreateWithID(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	ListByStore(ctx context.Context, storeID int64) ([]*models.Item, error)
	ListByTag(ctx context.Context, tagID int64) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id int64) error
}

type itemRepo struct {
	db DB
}

func NewItemRepository(db DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO items (name, description, price, store_id)
		VALUES ($1, $2, $3, $4)
		RETURNING item_id
	`, item.Name, item.Description, item.Price, item.StoreID).Scan(&item.ID)
	return mapItemWriteErr(item, err)
}

func (r *itemRepo) CreateWithID(ctx context.Context, item *models.Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO items (item_id, name, description, price, store_id)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.Name, item.Description, item.Price, item.StoreID)
	if err != nil {
		return mapItemWriteErr(item, err)
	}

	// keep the serial ahead of explicitly chosen ids
	_, err = tx.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('items', 'item_id'),
		              GREATEST((SELECT MAX(item_id) FROM items), 1))
	`)
	if err != nil {
		return fmt.Errorf("advance items sequence: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	row := r.db.QueryRow(ctx, baseSelectItem()+" WHERE i.item_id=$1", id)
	it, err := scanItem(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return it, err
}

func (r *itemRepo) List(ctx context.Context) ([]*models.Item, error) {
	return r.queryItems(ctx, baseSelectItem()+" ORDER BY i.item_id")
}

func (r *itemRepo) ListByStore(ctx context.Context, storeID int64) ([]*models.Item, error) {
	return r.queryItems(ctx, baseSelectItem()+" WHERE i.store_id=$1 ORDER BY i.item_id", storeID)
}

func (r *itemRepo) ListByTag(ctx context.Context, tagID int64) ([]*models.Item, error) {
	return r.queryItems(ctx, baseSelectItem()+`
		JOIN item_tags it ON it.item_id = i.item_id
		WHERE it.tag_id=$1 ORDER BY i.item_id`, tagID)
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE items SET name=$1, description=$2, price=$3
		WHERE item_id=$4
	`, item.Name, item.Description, item.Price, item.ID)
	if err != nil {
		return mapItemWriteErr(item, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE item_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *itemRepo) queryItems(ctx context.Context, sql string, args ...interface{}) ([]*models.Item, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func baseSelectItem() string {
	return `
		SELECT i.item_id, i.name, i.description, i.price::float8, i.store_id
		FROM items i`
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var it models.Item
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.StoreID); err != nil {
		return nil, err
	}
	return &it, nil
}

func mapItemWriteErr(item *models.Item, err error) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return fmt.Errorf("item %q: %w", item.Name, utils.ErrConflict)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("store %d: %w", item.StoreID, utils.ErrNotFound)
	default:
		return fmt.Errorf("write item: %w", err)
	}
}
