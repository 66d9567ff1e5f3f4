// Package uploads accepts text files and hands their content back to the
// caller for processing. Files are not stored server-side; the client keeps
// the content and submits it to the processing endpoint explicitly.
package uploads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/ledongthuc/pdf"

	"datalab-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

var textExtensions = map[string]bool{
	".txt":  true,
	".json": true,
	".md":   true,
	".csv":  true,
	".log":  true,
}

// Handler serves file uploads.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	var content string
	message := "file uploaded"
	switch {
	case ext == ".pdf":
		content, err = extractPDF(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to extract text from PDF", nil)
			return
		}
	case textExtensions[ext]:
		if !utf8.Valid(raw) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "file content must be UTF-8 text", nil)
			return
		}
		content = string(raw)
		if ext == ".json" && !json.Valid(raw) {
			message = "file uploaded; content is not valid JSON and will be treated as plain text"
		}
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("unsupported file type %q", ext), nil)
		return
	}

	respond.OK(c, gin.H{
		"message":  message,
		"filename": fileHeader.Filename,
		"content":  content,
	})
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
