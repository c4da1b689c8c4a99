package dtos

type CreateStoreRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=80"`
	Description *string `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	StoreID     int64   `json:"store_id" validate:"required,gt=0"`
}

// UpdateItemRequest creates the item when it does not exist yet, in which
// case store_id becomes mandatory.
type UpdateItemRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=80"`
	Description *string `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	StoreID     *int64  `json:"store_id" validate:"omitempty,gt=0"`
}

type TagAndItemResponse struct {
	Message string `json:"message"`
	Tag     any    `json:"tag"`
}
