package delivery

import (
	"net/http"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase        domain.AccountUseCase
	maxUploadBytes int64
	log            *logrus.Logger
}

func NewAuthHandler(uc domain.AccountUseCase, maxUploadBytes int64, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase:        uc,
		maxUploadBytes: maxUploadBytes,
		log:            logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter, g Guards) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", g.RateLimit, h.Register)
		authGroup.POST("/token", g.RateLimit, h.Login)
		authGroup.POST("/token/refresh", g.RateLimit, h.Refresh)
		authGroup.POST("/logout", h.Logout)

		me := authGroup.Group("/users/me", g.Auth)
		me.GET("", h.GetMe)
		me.PATCH("", h.UpdateMe)
		me.POST("/avatar", h.UploadAvatar)
	}
}

// LoginRequest defines the expected JSON body for login requests
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Register")
	var input domain.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handlerLogger.Warnf("Failed to bind register request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	input.IsStaff = false

	user, err := h.useCase.Register(c.Request.Context(), input)
	if err != nil {
		failWith(c, handlerLogger, "register", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Login")
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind login request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	handlerLogger.Infof("Processing login request for username: %s", req.Username)

	pair, err := h.useCase.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failWith(c, handlerLogger, "authenticate", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Authenticated", pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	pair, err := h.useCase.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		failWith(c, h.log.WithField("handler", "Refresh"), "refresh token", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Token refreshed", pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.useCase.Logout(c.Request.Context(), req.Refresh); err != nil {
		failWith(c, h.log.WithField("handler", "Logout"), "log out", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	user, err := h.useCase.GetProfile(c.Request.Context(), p.UserID)
	if err != nil {
		failWith(c, h.log, "retrieve profile", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", user)
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	user, err := h.useCase.UpdateProfile(c.Request.Context(), p.UserID, patch)
	if err != nil {
		failWith(c, h.log, "update profile", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile updated successfully", user)
}

func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	upload, closeFn, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		failWith(c, h.log, "read avatar", err)
		return
	}
	defer closeFn()

	user, err := h.useCase.SetAvatar(c.Request.Context(), p.UserID, upload)
	if err != nil {
		failWith(c, h.log, "store avatar", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Avatar updated", user)
}
