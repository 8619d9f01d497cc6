package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/models"
	"github.com/user-import-api/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// ExportUsers handles GET /export?format=...
// Streams all stored users as a file attachment, CSV by default
func (h *ExportHandler) ExportUsers(c *gin.Context) {
	format := models.ExportFormat(c.DefaultQuery("format", string(models.ExportFormatCSV)))
	if !models.ValidExportFormats[format] {
		c.JSON(http.StatusBadRequest, gin.H{"message": "format must be one of: csv, json, ndjson, xlsx"})
		return
	}

	if err := h.services.Export.StreamUsers(c.Request.Context(), c.Writer, format); err != nil {
		h.log.Error().Err(err).Str("format", string(format)).Msg("Export failed")
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Disposition")
			c.Writer.Header().Del("Content-Type")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "export failed"})
		}
		// Can't return error JSON after streaming has started
		return
	}
}

// ListUsers handles GET /users
func (h *ExportHandler) ListUsers(c *gin.Context) {
	users, err := h.services.Export.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}
