package services

import (
	"context"
	"errors"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type TagService interface {
	CreateInStore(ctx context.Context, storeID int64, name string) (*models.TagDetail, error)
	ListByStore(ctx context.Context, storeID int64) ([]*models.Tag, error)
	Get(ctx context.Context, id int64) (*models.TagDetail, error)
	// Delete refuses while the tag is still attached to any item.
	Delete(ctx context.Context, id int64) error

	LinkItem(ctx context.Context, itemID, tagID int64) (*models.TagDetail, error)
	UnlinkItem(ctx context.Context, itemID, tagID int64) (*models.TagDetail, error)
}

type tagService struct {
	tags   repositories.TagRepository
	items  repositories.ItemRepository
	stores repositories.StoreRepository
}

func NewTagService(
	tags repositories.TagRepository,
	items repositories.ItemRepository,
	stores repositories.StoreRepository,
) TagService {
	return &tagService{tags: tags, items: items, stores: stores}
}

func (s *tagService) CreateInStore(ctx context.Context, storeID int64, name string) (*models.TagDetail, error) {
	tag := &models.Tag{Name: name, StoreID: storeID}
	if err := s.tags.Create(ctx, tag); err != nil {
		switch {
		case errors.Is(err, utils.ErrConflict):
			return nil, utils.NewConflictError("A tag with that name already exists.", err)
		case errors.Is(err, utils.ErrNotFound):
			return nil, utils.NewNotFoundError("Store not found.")
		default:
			return nil, utils.NewInternalError("Failed to create tag", err)
		}
	}
	return &models.TagDetail{Tag: *tag, Items: []*models.Item{}}, nil
}

func (s *tagService) ListByStore(ctx context.Context, storeID int64) ([]*models.Tag, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load store", err)
	}
	if store == nil {
		return nil, utils.NewNotFoundError("Store not found.")
	}
	tags, err := s.tags.ListByStore(ctx, storeID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list tags", err)
	}
	return nonNil(tags), nil
}

func (s *tagService) Get(ctx context.Context, id int64) (*models.TagDetail, error) {
	tag, err := s.loadTag(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, tag)
}

func (s *tagService) Delete(ctx context.Context, id int64) error {
	if _, err := s.loadTag(ctx, id); err != nil {
		return err
	}
	n, err := s.tags.CountLinkedItems(ctx, id)
	if err != nil {
		return utils.NewInternalError("Failed to inspect tag", err)
	}
	if n > 0 {
		return utils.NewBadRequestError(
			"Could not delete tag. Make sure tag is not associated with any items, then try again.",
			utils.ErrTagInUse,
		)
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewNotFoundError("Tag not found.")
		}
		return utils.NewInternalError("Failed to delete tag", err)
	}
	return nil
}

func (s *tagService) LinkItem(ctx context.Context, itemID, tagID int64) (*models.TagDetail, error) {
	item, tag, err := s.loadPair(ctx, itemID, tagID)
	if err != nil {
		return nil, err
	}
	if item.StoreID != tag.StoreID {
		return nil, utils.NewBadRequestError("Item and tag belong to different stores.", nil)
	}
	if err := s.tags.LinkItem(ctx, itemID, tagID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("Item or tag not found.")
		}
		return nil, utils.NewInternalError("An error occurred while inserting the tag.", err)
	}
	return s.detail(ctx, tag)
}

func (s *tagService) UnlinkItem(ctx context.Context, itemID, tagID int64) (*models.TagDetail, error) {
	_, tag, err := s.loadPair(ctx, itemID, tagID)
	if err != nil {
		return nil, err
	}
	if err := s.tags.UnlinkItem(ctx, itemID, tagID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("Item is not tagged with that tag.")
		}
		return nil, utils.NewInternalError("An error occurred while removing the tag.", err)
	}
	return s.detail(ctx, tag)
}

func (s *tagService) loadTag(ctx context.Context, id int64) (*models.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load tag", err)
	}
	if tag == nil {
		return nil, utils.NewNotFoundError("Tag not found.")
	}
	return tag, nil
}

func (s *tagService) loadPair(ctx context.Context, itemID, tagID int64) (*models.Item, *models.Tag, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, utils.NewInternalError("Failed to load item", err)
	}
	if item == nil {
		return nil, nil, utils.NewNotFoundError("Item not found.")
	}
	tag, err := s.loadTag(ctx, tagID)
	if err != nil {
		return nil, nil, err
	}
	return item, tag, nil
}

func (s *tagService) detail(ctx context.Context, tag *models.Tag) (*models.TagDetail, error) {
	items, err := s.items.ListByTag(ctx, tag.ID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load tagged items", err)
	}
	return &models.TagDetail{Tag: *tag, Items: nonNil(items)}, nil
}
