package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id int64) (*models.Store, error)
	List(ctx context.Context) ([]*models.Store, error)
	Delete(ctx context.Context, id int64) error
}

type storeRepo struct {
	db DB
}

func NewStoreRepository(db DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, store *models.Store) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO stores (name) VALUES ($1) RETURNING store_id`, store.Name,
	).Scan(&store.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("create store %q: %w", store.Name, utils.ErrConflict)
		}
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	var s models.Store
	err := r.db.QueryRow(ctx, `SELECT store_id, name FROM stores WHERE store_id=$1`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *storeRepo) List(ctx context.Context) ([]*models.Store, error) {
	rows, err := r.db.Query(ctx, `SELECT store_id, name FROM stores ORDER BY store_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []*models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		stores = append(stores, &s)
	}
	return stores, rows.Err()
}

// Delete removes the store; items and tags go with it (ON DELETE CASCADE).
func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM stores WHERE store_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete store %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}
