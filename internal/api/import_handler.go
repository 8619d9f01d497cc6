package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/config"
	"github.com/user-import-api/internal/models"
	"github.com/user-import-api/internal/service"
)

// ImportHandler handles upload and single-record endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// UploadCSV handles POST /upload?dryRun=true
// Accepts a multipart CSV file in the "file" field
func (h *ImportHandler) UploadCSV(c *gin.Context) {
	ctx := c.Request.Context()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	defer file.Close()

	if !isCSVUpload(header.Header.Get("Content-Type"), header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File must be a CSV"})
		return
	}

	maxSize := h.cfg.Import.MaxUploadSize
	if header.Size > maxSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("file too large, max size is %d bytes", maxSize),
		})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to read file"})
		return
	}

	dryRun := c.Query("dryRun") == "true"

	result, err := h.services.Import.UploadCSV(ctx, data, dryRun)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	h.log.Info().
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Bool("dry_run", dryRun).
		Int("accepted", len(result.Accepted)).
		Int("rejected", len(result.Rejected)).
		Msg("Upload processed")

	c.JSON(http.StatusOK, result)
}

// ValidateUser handles POST /validate
func (h *ImportHandler) ValidateUser(c *gin.Context) {
	input, ok := bindUserInput(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.services.Import.ValidateUser(c.Request.Context(), input.ToRawRow()))
}

// SaveRevalidatedUser handles POST /save-revalidated
func (h *ImportHandler) SaveRevalidatedUser(c *gin.Context) {
	input, ok := bindUserInput(c)
	if !ok {
		return
	}

	user, err := h.services.Import.SaveValidated(c.Request.Context(), input.ToRawRow())
	if err != nil {
		var rejection *service.RejectionError
		if errors.As(err, &rejection) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Validation failed",
				"errors":  rejection.Errors,
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to save validated user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// bindUserInput decodes a single-record body, rejecting fields outside the user schema.
// It writes the 400 response itself and reports whether the handler should continue.
func bindUserInput(c *gin.Context) (*models.UserInput, bool) {
	var input models.UserInput

	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid request body",
			"error":   err.Error(),
		})
		return nil, false
	}
	return &input, true
}

func isCSVUpload(contentType, filename string) bool {
	return strings.Contains(strings.ToLower(contentType), "csv") ||
		strings.HasSuffix(strings.ToLower(filename), ".csv")
}
