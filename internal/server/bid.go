package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	biddomain "github.com/rutujak-bora/crm/internal/bid/domain"
)

func (s *Server) ListBids(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	if status == "" {
		status = strings.TrimSpace(c.Query("status_filter"))
	}

	resp, err := s.bidSvc.List(c.Request.Context(), status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListNewBids(c *gin.Context) {
	resp, err := s.bidSvc.ListNew(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListCompletedBids(c *gin.Context) {
	resp, err := s.bidSvc.ListCompleted(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetBidByID(c *gin.Context) {
	resp, err := s.bidSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateBid(c *gin.Context) {
	var req biddomain.BidInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bidSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateBid(c *gin.Context) {
	var req biddomain.BidInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bidSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) PatchBidStatus(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	if _, err := s.bidSvc.PatchStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), status); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Status updated to %s", status)})
}

func (s *Server) DeleteBid(c *gin.Context) {
	if err := s.bidSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bid deleted"})
}

func (s *Server) UploadBidDocument(c *gin.Context) {
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

	resp, err := s.bidSvc.UploadDocument(c.Request.Context(), biddomain.UploadDocumentRequest{
		BidID:    strings.TrimSpace(c.Param("id")),
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

func (s *Server) DeleteBidDocument(c *gin.Context) {
	index, err := strconv.Atoi(strings.TrimSpace(c.Param("index")))
	if err != nil {
		AbortWithError(c, biddomain.ErrDocumentNotFound)
		return
	}

	if err := s.bidSvc.DeleteDocument(c.Request.Context(), strings.TrimSpace(c.Param("id")), index); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

func (s *Server) ListBidStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, s.bidSvc.Statuses())
}

func (s *Server) SchedulerStatus(c *gin.Context) {
	if s.reminder == nil {
		c.JSON(http.StatusOK, gin.H{"status": "not_initialized"})
		return
	}
	c.JSON(http.StatusOK, s.reminder.Status())
}
