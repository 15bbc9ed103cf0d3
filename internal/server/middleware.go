package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	authdomain "github.com/rutujak-bora/crm/internal/auth/domain"
	obscontext "github.com/rutujak-bora/crm/internal/observability/context"
)

const (
	contextNamespaceKey = "namespace"
	contextEmailKey     = "user_email"
)

// CORS allows the configured origins; "*" opens the API to any origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// inNamespace tags the request so error details and logs name the right system.
func inNamespace(namespace authdomain.Namespace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextNamespaceKey, string(namespace))
		c.Next()
	}
}

// TokenRequired accepts only bearer tokens issued for namespace.
func (s *Server) TokenRequired(namespace authdomain.Namespace) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		user, err := s.authsvc.Verify(c.Request.Context(), namespace, raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextEmailKey, user.Email)
		c.Set("user", *user)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), string(namespace), user.Email))
		c.Next()
	}
}

// authorize checks the casbin policy for the authenticated user.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.authzSvc == nil {
			c.Next()
			return
		}
		err := s.authzSvc.Authorize(c.Request.Context(), c.GetString(contextNamespaceKey), c.GetString(contextEmailKey), object, action)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
