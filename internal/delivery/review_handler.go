package delivery

import (
	"net/http"
	"strconv"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReviewHandler struct {
	useCase domain.ReviewUseCase
	log     *logrus.Logger
}

func NewReviewHandler(uc domain.ReviewUseCase, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{useCase: uc, log: logger}
}

func (h *ReviewHandler) RegisterRoutes(router gin.IRouter, g Guards) {
	reviews := router.Group("/reviews")
	{
		reviews.GET("", h.ListReviews)
		reviews.POST("", g.Auth, h.SubmitReview)
		reviews.PATCH("/:id", g.Auth, h.UpdateReview)
		reviews.DELETE("/:id", g.Auth, h.DeleteReview)
	}
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	limit, offset := pagination(c)
	filter := domain.ReviewFilter{Limit: limit, Offset: offset}
	if productStr := c.Query("product"); productStr != "" {
		productID, err := strconv.ParseInt(productStr, 10, 64)
		if err != nil || productID <= 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid product format")
			return
		}
		filter.ProductID = productID
	}
	reviews, err := h.useCase.ListReviews(c.Request.Context(), filter)
	if err != nil {
		failWith(c, h.log, "retrieve reviews", err)
		return
	}
	if len(reviews) == 0 {
		SuccessResponse(c, http.StatusOK, "No reviews found", []domain.Review{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Reviews retrieved successfully", reviews)
}

type reviewRequest struct {
	Product int64   `json:"product"`
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	comment := ""
	if req.Comment != nil {
		comment = *req.Comment
	}
	review, err := h.useCase.SubmitReview(c.Request.Context(), p.UserID, req.Product, req.Rating, comment)
	if err != nil {
		failWith(c, h.log, "submit review", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Review saved successfully", review)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	review, err := h.useCase.UpdateReview(c.Request.Context(), p, id, req.Rating, req.Comment)
	if err != nil {
		failWith(c, h.log, "update review", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Review updated successfully", review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	if err := h.useCase.DeleteReview(c.Request.Context(), p, id); err != nil {
		failWith(c, h.log, "delete review", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Review deleted successfully", nil)
}
