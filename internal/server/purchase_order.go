package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	podomain "github.com/rutujak-bora/crm/internal/purchaseorder/domain"
)

func (s *Server) CreatePurchaseOrder(c *gin.Context) {
	var req podomain.PurchaseOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListPurchaseOrders(c *gin.Context) {
	var query struct {
		VendorName string `form:"vendor_name"`
		Category   string `form:"category"`
		Date       string `form:"date"`
		Purpose    string `form:"purpose"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), podomain.ListRequest{
		VendorName: strings.TrimSpace(query.VendorName),
		Category:   strings.TrimSpace(query.Category),
		Date:       strings.TrimSpace(query.Date),
		Purpose:    strings.TrimSpace(query.Purpose),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetPurchaseOrderByID(c *gin.Context) {
	resp, err := s.orderSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdatePurchaseOrder(c *gin.Context) {
	var req podomain.PurchaseOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeletePurchaseOrder(c *gin.Context) {
	if err := s.orderSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Purchase Order deleted"})
}
