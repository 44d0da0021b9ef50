package delivery

import (
	"net/http"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase        domain.CategoryUseCase
	maxUploadBytes int64
	log            *logrus.Logger
}

func NewCategoryHandler(uc domain.CategoryUseCase, maxUploadBytes int64, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase:        uc,
		maxUploadBytes: maxUploadBytes,
		log:            logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter, g Guards) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategoryByID)
		categories.POST("", g.Auth, g.Staff, h.CreateCategory)
		categories.PATCH("/:id", g.Auth, g.Staff, h.UpdateCategory)
		categories.DELETE("/:id", g.Auth, g.Staff, h.DeleteCategory)
		categories.POST("/:id/image", g.Auth, g.Staff, h.UploadImage)
	}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for create category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateCategory(c.Request.Context(), &domain.Category{Name: req.Name, Slug: req.Slug})
	if err != nil {
		failWith(c, h.log, "create category", err)
		return
	}

	h.log.Infof("Category created successfully: ID %d, Slug %s", created.ID, created.Slug)
	SuccessResponse(c, http.StatusCreated, "Category created successfully", created)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	category, err := h.useCase.GetCategory(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, "retrieve category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for update category ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.useCase.UpdateCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		failWith(c, h.log, "update category", err)
		return
	}
	h.log.Infof("Category updated successfully: ID %d", updated.ID)
	SuccessResponse(c, http.StatusOK, "Category updated successfully", updated)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.useCase.DeleteCategory(c.Request.Context(), id); err != nil {
		failWith(c, h.log, "delete category", err)
		return
	}
	h.log.Infof("Category deleted successfully: ID %d", id)
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		failWith(c, h.log, "retrieve categories", err)
		return
	}
	if len(categories) == 0 {
		SuccessResponse(c, http.StatusOK, "No categories found", []domain.Category{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *CategoryHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	upload, closeFn, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		failWith(c, h.log, "read category image", err)
		return
	}
	defer closeFn()

	category, err := h.useCase.SetCategoryImage(c.Request.Context(), id, upload)
	if err != nil {
		failWith(c, h.log, "store category image", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category image updated", category)
}
