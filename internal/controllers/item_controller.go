package controllers

import (
	"net/http"

	"github.com/miguelmartinez95/rest-api-project/internal/dtos"
	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/services"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type ItemController struct {
	items services.ItemService
}

func NewItemController(items services.ItemService) *ItemController {
	return &ItemController{items: items}
}

func (c *ItemController) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := c.items.List(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (c *ItemController) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := c.items.Create(r.Context(), &models.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		StoreID:     req.StoreID,
	})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, item)
}

func (c *ItemController) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}
	item, err := c.items.Get(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, item)
}

// UpdateItem is an upsert: 201 when the item was created, 200 otherwise.
func (c *ItemController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}
	var req dtos.UpdateItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, created, err := c.items.Upsert(r.Context(), id, services.ItemUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		StoreID:     req.StoreID,
	})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, status, item)
}

func (c *ItemController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}
	if err := c.items.Delete(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Item deleted."})
}
