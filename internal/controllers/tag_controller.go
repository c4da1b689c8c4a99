package controllers

import (
	"net/http"

	"github.com/miguelmartinez95/rest-api-project/internal/dtos"
	"github.com/miguelmartinez95/rest-api-project/internal/services"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

type TagController struct {
	tags services.TagService
}

func NewTagController(tags services.TagService) *TagController {
	return &TagController{tags: tags}
}

func (c *TagController) ListStoreTags(w http.ResponseWriter, r *http.Request) {
	storeID, ok := pathID(w, r, "store_id")
	if !ok {
		return
	}
	tags, err := c.tags.ListByStore(r.Context(), storeID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tags)
}

func (c *TagController) CreateStoreTag(w http.ResponseWriter, r *http.Request) {
	storeID, ok := pathID(w, r, "store_id")
	if !ok {
		return
	}
	var req dtos.CreateTagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tag, err := c.tags.CreateInStore(r.Context(), storeID, req.Name)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, tag)
}

func (c *TagController) GetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tag_id")
	if !ok {
		return
	}
	tag, err := c.tags.Get(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tag)
}

func (c *TagController) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tag_id")
	if !ok {
		return
	}
	if err := c.tags.Delete(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, dtos.MessageResponse{Message: "Tag deleted."})
}

func (c *TagController) LinkItem(w http.ResponseWriter, r *http.Request) {
	itemID, tagID, ok := c.itemTagIDs(w, r)
	if !ok {
		return
	}
	tag, err := c.tags.LinkItem(r.Context(), itemID, tagID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, tag)
}

func (c *TagController) UnlinkItem(w http.ResponseWriter, r *http.Request) {
	itemID, tagID, ok := c.itemTagIDs(w, r)
	if !ok {
		return
	}
	tag, err := c.tags.UnlinkItem(r.Context(), itemID, tagID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.TagAndItemResponse{Message: "Item removed from tag", Tag: tag})
}

func (c *TagController) itemTagIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	itemID, ok := pathID(w, r, "item_id")
	if !ok {
		return 0, 0, false
	}
	tagID, ok := pathID(w, r, "tag_id")
	if !ok {
		return 0, 0, false
	}
	return itemID, tagID, true
}
