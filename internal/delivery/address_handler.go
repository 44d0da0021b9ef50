package delivery

import (
	"net/http"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AddressHandler struct {
	useCase domain.AddressUseCase
	log     *logrus.Logger
}

func NewAddressHandler(uc domain.AddressUseCase, logger *logrus.Logger) *AddressHandler {
	return &AddressHandler{useCase: uc, log: logger}
}

func (h *AddressHandler) RegisterRoutes(router gin.IRouter, g Guards) {
	addresses := router.Group("/addresses", g.Auth)
	{
		addresses.GET("", h.ListAddresses)
		addresses.POST("", h.CreateAddress)
		addresses.GET("/:id", h.GetAddress)
		addresses.PATCH("/:id", h.UpdateAddress)
		addresses.DELETE("/:id", h.DeleteAddress)
		addresses.POST("/:id/set-default", h.SetDefault)
	}
}

func (h *AddressHandler) ListAddresses(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	addresses, err := h.useCase.ListAddresses(c.Request.Context(), p.UserID)
	if err != nil {
		failWith(c, h.log, "retrieve addresses", err)
		return
	}
	if len(addresses) == 0 {
		SuccessResponse(c, http.StatusOK, "No addresses found", []domain.Address{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Addresses retrieved successfully", addresses)
}

func (h *AddressHandler) CreateAddress(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	var address domain.Address
	if err := c.ShouldBindJSON(&address); err != nil {
		h.log.Warnf("Failed to bind JSON for create address (User: %d): %v", p.UserID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	created, err := h.useCase.CreateAddress(c.Request.Context(), p.UserID, address)
	if err != nil {
		failWith(c, h.log, "create address", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Address created successfully", created)
}

func (h *AddressHandler) GetAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	address, err := h.useCase.GetAddress(c.Request.Context(), p.UserID, id)
	if err != nil {
		failWith(c, h.log, "retrieve address", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Address retrieved successfully", address)
}

func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	var patch domain.AddressPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.log.Warnf("Failed to bind JSON for update address %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	updated, err := h.useCase.UpdateAddress(c.Request.Context(), p.UserID, id, patch)
	if err != nil {
		failWith(c, h.log, "update address", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Address updated successfully", updated)
}

func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	if err := h.useCase.DeleteAddress(c.Request.Context(), p.UserID, id); err != nil {
		failWith(c, h.log, "delete address", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Address deleted successfully", nil)
}

func (h *AddressHandler) SetDefault(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := caller(c)
	if !ok {
		return
	}
	address, err := h.useCase.SetDefaultAddress(c.Request.Context(), p.UserID, id)
	if err != nil {
		failWith(c, h.log, "set default address", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Default address updated", address)
}
