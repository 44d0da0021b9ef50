package delivery

import (
	"net/http"
	"strconv"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase        domain.ProductUseCase
	maxUploadBytes int64
	log            *logrus.Logger
}

func NewProductHandler(uc domain.ProductUseCase, maxUploadBytes int64, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase:        uc,
		maxUploadBytes: maxUploadBytes,
		log:            logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter, g Guards) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:slug", h.GetProduct)
		products.POST("", g.Auth, g.Staff, h.CreateProduct)
		products.PATCH("/:slug", g.Auth, g.Staff, h.UpdateProduct)
		products.DELETE("/:slug", g.Auth, g.Staff, h.DeleteProduct)
		products.POST("/:slug/image", g.Auth, g.Staff, h.UploadImage)
	}
	router.GET("/purchased-products", g.Auth, h.ListPurchasedProducts)
}

type createProductRequest struct {
	Name          string              `json:"name" binding:"required"`
	Slug          string              `json:"slug"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	CategoryID    int64               `json:"category_id" binding:"required"`
	Stock         int                 `json:"stock"`
	IsFeatured    bool                `json:"is_featured"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateProduct")
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), &domain.Product{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		CategoryID:    req.CategoryID,
		Stock:         req.Stock,
		IsFeatured:    req.IsFeatured,
	})
	if err != nil {
		failWith(c, handlerLogger, "create product", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.useCase.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failWith(c, h.log.WithField("handler", "GetProduct"), "retrieve product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListProducts")
	limit, offset := pagination(c)
	filter := domain.ProductFilter{
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
		Limit:        limit,
		Offset:       offset,
	}
	if featuredStr := c.Query("featured"); featuredStr != "" {
		featured, err := strconv.ParseBool(featuredStr)
		if err != nil {
			handlerLogger.Warnf("Invalid featured query parameter: %s", featuredStr)
			ErrorResponse(c, http.StatusBadRequest, "Invalid featured format")
			return
		}
		filter.Featured = &featured
	}

	products, err := h.useCase.ListProducts(c.Request.Context(), filter)
	if err != nil {
		failWith(c, handlerLogger, "retrieve products", err)
		return
	}
	if len(products) == 0 {
		SuccessResponse(c, http.StatusOK, "No products found", []domain.Product{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateProduct")
	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		handlerLogger.Warnf("Failed to bind update request body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if patch.IsEmpty() {
		handlerLogger.Warn("Update request received, but no valid fields to update")
		ErrorResponse(c, http.StatusBadRequest, "No valid fields provided for update")
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), c.Param("slug"), patch)
	if err != nil {
		failWith(c, handlerLogger, "update product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.useCase.DeleteProduct(c.Request.Context(), c.Param("slug")); err != nil {
		failWith(c, h.log.WithField("handler", "DeleteProduct"), "delete product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) UploadImage(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UploadProductImage")
	upload, closeFn, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		failWith(c, handlerLogger, "read product image", err)
		return
	}
	defer closeFn()

	product, err := h.useCase.SetProductImage(c.Request.Context(), c.Param("slug"), upload)
	if err != nil {
		failWith(c, handlerLogger, "store product image", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product image updated", product)
}

func (h *ProductHandler) ListPurchasedProducts(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	products, err := h.useCase.ListPurchasedProducts(c.Request.Context(), p.UserID)
	if err != nil {
		failWith(c, h.log.WithField("handler", "ListPurchasedProducts"), "retrieve purchased products", err)
		return
	}
	if len(products) == 0 {
		SuccessResponse(c, http.StatusOK, "No purchased products found", []domain.Product{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Purchased products retrieved successfully", products)
}
