package services

import (
	"context"
	"errors"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type StoreService interface {
	Create(ctx context.Context, name string) (*models.StoreDetail, error)
	Get(ctx context.Context, id int64) (*models.StoreDetail, error)
	List(ctx context.Context) ([]*models.StoreDetail, error)
	Delete(ctx context.Context, id int64) error
}

type storeService struct {
	stores repositories.StoreRepository
	items  repositories.ItemRepository
	tags   repositories.TagRepository
}

func NewStoreService(
	stores repositories.StoreRepository,
	items repositories.ItemRepository,
	tags repositories.TagRepository,
) StoreService {
	return &storeService{stores: stores, items: items, tags: tags}
}

func (s *storeService) Create(ctx context.Context, name string) (*models.StoreDetail, error) {
	store := &models.Store{Name: name}
	if err := s.stores.Create(ctx, store); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.NewConflictError("A store with that name already exists.", err)
		}
		return nil, utils.NewInternalError("An error occurred creating the store.", err)
	}
	return &models.StoreDetail{Store: *store, Items: []*models.Item{}, Tags: []*models.Tag{}}, nil
}

func (s *storeService) Get(ctx context.Context, id int64) (*models.StoreDetail, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load store", err)
	}
	if store == nil {
		return nil, utils.NewNotFoundError("Store not found.")
	}
	return s.detail(ctx, store)
}

func (s *storeService) List(ctx context.Context) ([]*models.StoreDetail, error) {
	stores, err := s.stores.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list stores", err)
	}
	out := make([]*models.StoreDetail, 0, len(stores))
	for _, st := range stores {
		d, err := s.detail(ctx, st)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Delete removes the store along with its items and tags.
func (s *storeService) Delete(ctx context.Context, id int64) error {
	if err := s.stores.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewNotFoundError("Store not found.")
		}
		return utils.NewInternalError("Failed to delete store", err)
	}
	utils.Logger.WithField("store_id", id).Info("Store deleted")
	return nil
}

func (s *storeService) detail(ctx context.Context, store *models.Store) (*models.StoreDetail, error) {
	items, err := s.items.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load store items", err)
	}
	tags, err := s.tags.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load store tags", err)
	}
	return &models.StoreDetail{Store: *store, Items: nonNil(items), Tags: nonNil(tags)}, nil
}

// nonNil keeps empty collections rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
