package services

import (
	"context"
	"errors"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

// ItemUpdate carries the mutable fields of an item. StoreID is only used
// when the update creates the item.
type ItemUpdate struct {
	Name        string
	Description *string
	Price       float64
	StoreID     *int64
}

type ItemService interface {
	Create(ctx context.Context, item *models.Item) (*models.ItemDetail, error)
	Get(ctx context.Context, id int64) (*models.ItemDetail, error)
	List(ctx context.Context) ([]*models.ItemDetail, error)
	// Upsert updates the item or creates it under id. created reports
	// which one happened.
	Upsert(ctx context.Context, id int64, upd ItemUpdate) (item *models.ItemDetail, created bool, err error)
	Delete(ctx context.Context, id int64) error
}

type itemService struct {
	items repositories.ItemRepository
	tags  repositories.TagRepository
}

func NewItemService(items repositories.ItemRepository, tags repositories.TagRepository) ItemService {
	return &itemService{items: items, tags: tags}
}

func (s *itemService) Create(ctx context.Context, item *models.Item) (*models.ItemDetail, error) {
	if err := s.items.Create(ctx, item); err != nil {
		return nil, itemWriteError(err)
	}
	return &models.ItemDetail{Item: *item, Tags: []*models.Tag{}}, nil
}

func (s *itemService) Get(ctx context.Context, id int64) (*models.ItemDetail, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load item", err)
	}
	if item == nil {
		return nil, utils.NewNotFoundError("Item not found.")
	}
	return s.detail(ctx, item)
}

func (s *itemService) List(ctx context.Context) ([]*models.ItemDetail, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list items", err)
	}
	out := make([]*models.ItemDetail, 0, len(items))
	for _, it := range items {
		d, err := s.detail(ctx, it)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *itemService) Upsert(ctx context.Context, id int64, upd ItemUpdate) (*models.ItemDetail, bool, error) {
	existing, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, false, utils.NewInternalError("Failed to load item", err)
	}

	if existing == nil {
		if upd.StoreID == nil {
			return nil, false, utils.NewBadRequestError("store_id is required to create an item.", nil)
		}
		item := &models.Item{
			ID:          id,
			Name:        upd.Name,
			Description: upd.Description,
			Price:       upd.Price,
			StoreID:     *upd.StoreID,
		}
		if err := s.items.CreateWithID(ctx, item); err != nil {
			return nil, false, itemWriteError(err)
		}
		return &models.ItemDetail{Item: *item, Tags: []*models.Tag{}}, true, nil
	}

	existing.Name = upd.Name
	existing.Price = upd.Price
	if upd.Description != nil {
		existing.Description = upd.Description
	}
	if err := s.items.Update(ctx, existing); err != nil {
		return nil, false, itemWriteError(err)
	}
	d, err := s.detail(ctx, existing)
	return d, false, err
}

func (s *itemService) Delete(ctx context.Context, id int64) error {
	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewNotFoundError("Item not found.")
		}
		return utils.NewInternalError("Failed to delete item", err)
	}
	utils.Logger.WithField("item_id", id).Info("Item deleted")
	return nil
}

func (s *itemService) detail(ctx context.Context, item *models.Item) (*models.ItemDetail, error) {
	tags, err := s.tags.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load item tags", err)
	}
	return &models.ItemDetail{Item: *item, Tags: nonNil(tags)}, nil
}

func itemWriteError(err error) error {
	switch {
	case errors.Is(err, utils.ErrConflict):
		return utils.NewConflictError("An item with that name already exists.", err)
	case errors.Is(err, utils.ErrNotFound):
		// a missing store on insert, or the row vanished under us on update
		return utils.NewNotFoundError("Store or item not found.")
	default:
		return utils.NewInternalError("An error occurred while inserting the item.", err)
	}
}
