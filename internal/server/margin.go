package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	margindomain "github.com/rutujak-bora/crm/internal/margin/domain"
)

type updateFreightRequest struct {
	FreightAmount *float64 `json:"freight_amount"`
}

func (s *Server) ListMargins(c *gin.Context) {
	resp, err := s.marginSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateFreight(c *gin.Context) {
	var req updateFreightRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FreightAmount == nil {
		AbortWithError(c, newValidationError("freight_amount", "required", "Freight amount is required"))
		return
	}

	err := s.marginSvc.UpdateFreight(c.Request.Context(), margindomain.UpdateFreightRequest{
		ProformaInvoiceID: strings.TrimSpace(c.Param("proformaId")),
		PurchaseOrderID:   strings.TrimSpace(c.Param("poId")),
		FreightAmount:     *req.FreightAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Freight updated"})
}

func (s *Server) GetDashboardKPI(c *gin.Context) {
	resp, err := s.dashboard.KPI(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
