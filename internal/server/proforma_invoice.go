package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	"github.com/rutujak-bora/crm/internal/storage"
	"github.com/rutujak-bora/crm/pkg/lineitem"
)

func (s *Server) ListProformaInvoices(c *gin.Context) {
	var query struct {
		CustomerName string `form:"customer_name"`
		Category     string `form:"category"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), pidomain.ListRequest{
		CustomerName: strings.TrimSpace(query.CustomerName),
		Category:     strings.TrimSpace(query.Category),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProformaInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProformaInvoice takes the bare product array as its body.
func (s *Server) UpdateProformaInvoice(c *gin.Context) {
	var products []lineitem.Item
	if err := c.ShouldBindJSON(&products); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateProducts(c.Request.Context(), strings.TrimSpace(c.Param("id")), products)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteProformaInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Proforma Invoice deleted"})
}

func (s *Server) DownloadProformaInvoicePDF(c *gin.Context) {
	body, invoice, err := s.invoiceSvc.RenderPDF(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	name := storage.DownloadName(invoice.ProformaInvoiceNumber + ".pdf")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
