package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	leaddomain "github.com/rutujak-bora/crm/internal/lead/domain"
	"github.com/rutujak-bora/crm/pkg/attachment"
)

type convertLeadRequest struct {
	ProformaInvoiceNumber string `json:"proforma_invoice_number"`
}

func (s *Server) CreateLead(c *gin.Context) {
	var req leaddomain.LeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leadSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListLeads(c *gin.Context) {
	var query struct {
		CustomerName string `form:"customer_name"`
		Category     string `form:"category"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leadSvc.List(c.Request.Context(), leaddomain.ListLeadRequest{
		CustomerName: strings.TrimSpace(query.CustomerName),
		Category:     strings.TrimSpace(query.Category),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetLeadByID(c *gin.Context) {
	resp, err := s.leadSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateLead(c *gin.Context) {
	var req leaddomain.LeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leadSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteLead(c *gin.Context) {
	if err := s.leadSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

// ConvertLead accepts an empty body; the lead's stored number is used then.
func (s *Server) ConvertLead(c *gin.Context) {
	var req convertLeadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.leadSvc.Convert(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.ProformaInvoiceNumber)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UploadLeadDocument(slot attachment.Slot) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			AbortWithError(c, newValidationError("file", "required", "File is required"))
			return
		}
		file, err := header.Open()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		defer file.Close()

		resp, err := s.leadSvc.UploadDocument(c.Request.Context(), leaddomain.UploadDocumentRequest{
			LeadID:   strings.TrimSpace(c.Param("id")),
			Slot:     slot,
			FileName: header.Filename,
			Size:     header.Size,
			Content:  file,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) DeleteLeadDocument(slot attachment.Slot) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.leadSvc.DeleteDocument(c.Request.Context(), strings.TrimSpace(c.Param("id")), slot); err != nil {
			AbortWithError(c, err)
			return
		}

		message := "Document deleted"
		if slot == attachment.SlotWorkingSheet {
			message = "Working sheet deleted"
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}
