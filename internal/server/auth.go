package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/rutujak-bora/crm/internal/auth/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(namespace authdomain.Namespace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}

		resp, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
			Namespace: namespace,
			Email:     req.Email,
			Password:  req.Password,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) Verify(namespace authdomain.Namespace) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.authsvc.Verify(c.Request.Context(), namespace, bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"valid": true, "user": user})
	}
}
