package delivery

import (
	"net/http"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type OrderHandler struct {
	useCase domain.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter, g Guards) {
	orders := router.Group("/orders", g.Auth)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrderByID)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
}

type createOrderRequest struct {
	Items           []domain.OrderLine   `json:"items"`
	ShippingAddress string               `json:"shipping_address"`
	PhoneNumber     string               `json:"phone_number"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	h.log.Infof("Processing create order request for User ID: %d", p.UserID)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for create order (User: %d): %v", p.UserID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: items cannot be empty")
		return
	}

	order, created, err := h.useCase.PlaceOrder(c.Request.Context(), domain.PlaceOrderInput{
		UserID:          p.UserID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PhoneNumber:     req.PhoneNumber,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		failWith(c, h.log, "create order", err)
		return
	}

	if !created {
		SuccessResponse(c, http.StatusOK, "Order already placed", order)
		return
	}
	h.log.Infof("Order %d created successfully for user %d", order.ID, order.UserID)
	SuccessResponse(c, http.StatusCreated, "Order created successfully", order)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	order, err := h.useCase.GetOrder(c.Request.Context(), p, id)
	if err != nil {
		failWith(c, h.log, "retrieve order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	orders, err := h.useCase.ListOrders(c.Request.Context(), domain.OrderFilter{
		UserID: p.UserID,
		Status: domain.OrderStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		failWith(c, h.log, "retrieve orders", err)
		return
	}

	h.log.Infof("Retrieved %d orders for user %d", len(orders), p.UserID)
	if len(orders) == 0 {
		SuccessResponse(c, http.StatusOK, "No orders found for this user", []domain.Order{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	order, err := h.useCase.CancelOrder(c.Request.Context(), p, id)
	if err != nil {
		failWith(c, h.log, "cancel order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order cancelled", order)
}
