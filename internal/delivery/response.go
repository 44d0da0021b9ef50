package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// failWith maps err to a status and writes the envelope. Server errors are
// logged in full and reported to the client without detail.
func failWith(c *gin.Context, log logrus.FieldLogger, action string, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		log.Errorf("Failed to %s: %v", action, err)
		_ = c.Error(err)
		ErrorResponse(c, status, "Failed to "+action)
		return
	}
	log.Warnf("Failed to %s: %v", action, err)
	ErrorResponse(c, status, "Failed to "+action+": "+err.Error())
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+param+" format")
		return 0, false
	}
	return id, true
}

// pagination reads limit/offset; repositories clamp the limit.
func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// caller returns the principal set by the auth middleware, writing 401 when
// the route was mounted without it.
func caller(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return domain.Principal{}, false
	}
	return p, true
}

// Guards are the middleware chains handlers attach to protected routes.
type Guards struct {
	Auth      gin.HandlerFunc
	Staff     gin.HandlerFunc
	RateLimit gin.HandlerFunc
}
