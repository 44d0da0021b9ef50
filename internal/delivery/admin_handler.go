package delivery

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/export"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves the staff-only back office.
type AdminHandler struct {
	accounts  domain.AccountUseCase
	orders    domain.OrderUseCase
	reviews   domain.ReviewUseCase
	analytics domain.AnalyticsUseCase
	log       *logrus.Logger
}

func NewAdminHandler(
	accounts domain.AccountUseCase,
	orders domain.OrderUseCase,
	reviews domain.ReviewUseCase,
	analytics domain.AnalyticsUseCase,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		accounts:  accounts,
		orders:    orders,
		reviews:   reviews,
		analytics: analytics,
		log:       logger,
	}
}

func (h *AdminHandler) RegisterRoutes(router gin.IRouter, g Guards) {
	admin := router.Group("/admin", g.Auth, g.Staff)
	{
		admin.GET("/analytics", h.GetAnalytics)
		admin.GET("/customers", h.ListCustomers)
		admin.GET("/customers/:id", h.GetCustomer)
		admin.GET("/orders", h.ListOrders)
		admin.GET("/orders/export", h.ExportOrders)
		admin.GET("/orders/:id", h.GetOrder)
		admin.PATCH("/orders/:id", h.UpdateOrderStatus)
		admin.GET("/reviews", h.ListReviews)
	}
}

func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.analytics.GetAnalytics(c.Request.Context())
	if err != nil {
		failWith(c, h.log, "compute analytics", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Analytics computed", analytics)
}

func (h *AdminHandler) ListCustomers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.accounts.ListCustomers(c.Request.Context(), limit, offset)
	if err != nil {
		failWith(c, h.log, "retrieve customers", err)
		return
	}
	if len(users) == 0 {
		SuccessResponse(c, http.StatusOK, "No customers found", []domain.User{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Customers retrieved successfully", users)
}

func (h *AdminHandler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.accounts.GetProfile(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, "retrieve customer", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Customer retrieved successfully", user)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	limit, offset := pagination(c)
	orders, err := h.orders.ListOrders(c.Request.Context(), domain.OrderFilter{
		Status: domain.OrderStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		failWith(c, h.log, "retrieve orders", err)
		return
	}
	if len(orders) == 0 {
		SuccessResponse(c, http.StatusOK, "No orders found", []domain.Order{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *AdminHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), p, id)
	if err != nil {
		failWith(c, h.log, "retrieve order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var updateRequest struct {
		Status *domain.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&updateRequest); err != nil {
		h.log.Warnf("Failed to bind JSON for update order %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if updateRequest.Status == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: 'status' field is required")
		return
	}

	updated, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, *updateRequest.Status)
	if err != nil {
		failWith(c, h.log, "update order status", err)
		return
	}
	h.log.Infof("Order status updated successfully for ID %d to '%s'", updated.ID, updated.Status)
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", updated)
}

func (h *AdminHandler) ExportOrders(c *gin.Context) {
	orders, err := h.orders.ListAllOrders(c.Request.Context(), domain.OrderStatus(c.Query("status")))
	if err != nil {
		failWith(c, h.log, "export orders", err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", export.ContentTypeXLSX)
	c.Status(http.StatusOK)
	if err := export.WriteOrders(c.Writer, orders); err != nil {
		h.log.Errorf("Failed to write orders workbook: %v", err)
		_ = c.Error(err)
		return
	}
	h.log.Infof("Exported %d orders", len(orders))
}

func (h *AdminHandler) ListReviews(c *gin.Context) {
	limit, offset := pagination(c)
	reviews, err := h.reviews.ListReviews(c.Request.Context(), domain.ReviewFilter{Limit: limit, Offset: offset})
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
