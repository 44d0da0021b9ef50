package middleware

import (
	"net/http"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/auth"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const principalKey = "principal"

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"Status": "Fail", "Message": message})
}

// AuthMiddleware requires a valid access token and stores the caller as a
// domain.Principal on the context.
func AuthMiddleware(issuer *auth.Issuer, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Middleware: Invalid Authorization header format")
			abort(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		rawToken := parts[1]
		if rawToken == "" {
			log.Warn("Middleware: Bearer token is empty")
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		claims, err := issuer.Parse(rawToken, auth.AccessToken)
		if err != nil {
			log.Warnf("Middleware: Rejected access token: %v", err)
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			log.Warnf("Middleware: Access token has bad subject: %v", err)
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(principalKey, domain.Principal{UserID: userID, IsStaff: claims.IsStaff})
		c.Next()
	}
}

// RequireStaff must run after AuthMiddleware.
func RequireStaff(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !p.IsStaff {
			log.Warnf("Middleware: User %d denied access to %s", p.UserID, c.Request.URL.Path)
			abort(c, http.StatusForbidden, "Staff access required")
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller set by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// SetPrincipal is used by tests and by handlers mounted without AuthMiddleware.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
}
