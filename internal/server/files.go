package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rutujak-bora/crm/internal/bulkimport"
	"github.com/rutujak-bora/crm/internal/storage"
)

// ServeUpload streams a stored document back under a slugified name.
func (s *Server) ServeUpload(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.Param("filename"))
		file, err := store.Open(name)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+storage.DownloadName(name)+`"`)
		http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
	}
}

func (s *Server) DownloadTemplate(kind bulkimport.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, fileName, err := bulkimport.Template(kind)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename="+fileName)
		c.Data(http.StatusOK, bulkimport.ContentType, body)
	}
}

func (s *Server) BulkUpload(kind bulkimport.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			AbortWithError(c, newValidationError("file", "required", "File is required"))
			return
		}
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
			AbortWithError(c, newValidationError("file", "invalid_file_type", "Please upload an Excel (.xlsx) file"))
			return
		}
		file, err := header.Open()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		defer file.Close()

		resp, err := s.importer.Import(c.Request.Context(), kind, file)
		if errors.Is(err, bulkimport.ErrInvalidWorkbook) {
			AbortWithError(c, newValidationError("file", "invalid_workbook", "Could not read the Excel file"))
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}
