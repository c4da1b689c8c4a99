package controllers

import (
	"net/http"

	"github.com/miguelmartinez95/rest-api-project/internal/dtos"
	"github.com/miguelmartinez95/rest-api-project/internal/services"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type StoreController struct {
	stores services.StoreService
}

func NewStoreController(stores services.StoreService) *StoreController {
	return &StoreController{stores: stores}
}

func (c *StoreController) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := c.stores.List(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stores)
}

func (c *StoreController) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateStoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	store, err := c.stores.Create(r.Context(), req.Name)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, store)
}

func (c *StoreController) GetStore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "store_id")
	if !ok {
		return
	}
	store, err := c.stores.Get(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, store)
}

func (c *StoreController) DeleteStore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "store_id")
	if !ok {
		return
	}
	if err := c.stores.Delete(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Store deleted"})
}
