package delivery

import (
	"net/http"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SavedItemHandler struct {
	useCase domain.SavedItemUseCase
	log     *logrus.Logger
}

func NewSavedItemHandler(uc domain.SavedItemUseCase, logger *logrus.Logger) *SavedItemHandler {
	return &SavedItemHandler{useCase: uc, log: logger}
}

func (h *SavedItemHandler) RegisterRoutes(router gin.IRouter, g Guards) {
	saved := router.Group("/saved-items", g.Auth)
	{
		saved.GET("", h.ListSavedItems)
		saved.POST("", h.SaveItem)
		saved.DELETE("/:id", h.RemoveSavedItem)
	}
}

func (h *SavedItemHandler) ListSavedItems(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	items, err := h.useCase.ListSavedItems(c.Request.Context(), p.UserID)
	if err != nil {
		failWith(c, h.log, "retrieve saved items", err)
		return
	}
	if len(items) == 0 {
		SuccessResponse(c, http.StatusOK, "No saved items found", []domain.SavedItem{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Saved items retrieved successfully", items)
}

func (h *SavedItemHandler) SaveItem(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		ProductID int64 `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	item, err := h.useCase.SaveItem(c.Request.Context(), p.UserID, req.ProductID)
	if err != nil {
		failWith(c, h.log, "save item", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Item saved", item)
}

func (h *SavedItemHandler) RemoveSavedItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	if err := h.useCase.RemoveSavedItem(c.Request.Context(), p.UserID, id); err != nil {
		failWith(c, h.log, "remove saved item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Saved item removed", nil)
}
