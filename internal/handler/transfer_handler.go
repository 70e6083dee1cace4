package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/service"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
	"github.com/noah-isme/timetable-organizer/pkg/response"
)

// maxImportBytes bounds uploaded import files.
const maxImportBytes = 5 << 20

// TransferHandler exposes export, share and import endpoints.
type TransferHandler struct {
	exports *service.ExportService
	imports *service.ImportService
}

// NewTransferHandler constructs a transfer handler.
func NewTransferHandler(exports *service.ExportService, imports *service.ImportService) *TransferHandler {
	return &TransferHandler{exports: exports, imports: imports}
}

// Export godoc
// @Summary Export the timetable
// @Description Browser builds receive the file as a download. Native builds receive a signed share link.
// @Tags Transfer
// @Produce json,text/csv,application/pdf
// @Param format query string false "json, csv or pdf" default(json)
// @Success 200 {object} response.Envelope{data=models.Delivery}
// @Failure 502 {object} response.Envelope
// @Router /export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(models.FormatJSON))))
	file, err := h.exports.Export(format)
	if err != nil {
		response.Error(c, err)
		return
	}
	delivery, err := h.exports.Deliver(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	if delivery.Method == models.DeliveryDownload {
		response.Attachment(c, file.Filename, file.ContentType, file.Data)
		return
	}
	response.JSON(c, http.StatusOK, delivery)
}

// Share godoc
// @Summary Download a shared export
// @Tags Transfer
// @Produce octet-stream
// @Param token path string true "Share token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /share/{token} [get]
func (h *TransferHandler) Share(c *gin.Context) {
	f, name, err := h.exports.OpenShared(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, f, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}

// Import godoc
// @Summary Import a timetable file
// @Description Replaces all subjects. Settings in a JSON envelope are merged over current settings.
// @Tags Transfer
// @Accept json,text/csv,mpfd
// @Produce json
// @Param format query string false "json or csv; defaults to the uploaded file extension, then json"
// @Param file formData file false "Exported file"
// @Success 200 {object} response.Envelope{data=models.ImportSummary}
// @Failure 400 {object} response.Envelope
// @Router /import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	contents, filename, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := models.ExportFormat(strings.ToLower(c.Query("format")))
	if format == "" {
		format = formatFromUpload(filename, c.ContentType())
	}
	summary, err := h.imports.Import(c.Request.Context(), format, contents)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

func readUpload(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, "", invalidPayload(err)
		}
		f, err := header.Open()
		if err != nil {
			return nil, "", invalidPayload(err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", invalidPayload(err)
		}
		return data, header.Filename, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, "", invalidPayload(err)
	}
	if len(data) == 0 {
		return nil, "", appErrors.ErrEmptyImport
	}
	return data, "", nil
}

func formatFromUpload(filename, contentType string) models.ExportFormat {
	if strings.EqualFold(filepath.Ext(filename), ".csv") || contentType == "text/csv" {
		return models.FormatCSV
	}
	return models.FormatJSON
}
