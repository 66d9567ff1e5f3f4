package processing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datalab-backend/internal/apiconfig"
	"datalab-backend/internal/llm"
	"datalab-backend/internal/shared/server/respond"
)

const maxContentBytes = 10 << 20 // 10MB

// Handler wires HTTP handlers to the processing service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches processing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/process", h.submit)
	rg.GET("/process/:key/status", h.status)
	rg.POST("/process/export", h.export)
}

type submitRequest struct {
	Content      string  `json:"content"`
	ProcessType  string  `json:"process_type"`
	DimensionIDs []int64 `json:"dimensions"`
}

func (h *Handler) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxContentBytes)

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), c.GetString("requestId"))
	key, err := h.Svc.Submit(ctx, SubmitRequest{
		Content:      req.Content,
		ProcessType:  req.ProcessType,
		DimensionIDs: req.DimensionIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, apiconfig.ErrNotConfigured),
			errors.Is(err, llm.ErrMissingCredentials),
			errors.Is(err, llm.ErrUnsupportedProvider):
			respond.Error(c, http.StatusBadRequest, "configuration_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start processing", nil)
		}
		return
	}

	respond.Accepted(c, gin.H{"processing_key": key})
}

func (h *Handler) status(c *gin.Context) {
	key := c.Param("key")
	snap, err := h.Svc.Status(c.Request.Context(), key)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read job status", nil)
		return
	}
	respond.OK(c, snap)
}

type exportRequest struct {
	ProcessType     string   `json:"process_type"`
	Dimensions      []string `json:"dimensions"`
	OriginalData    string   `json:"original_data"`
	ProcessedResult any      `json:"processed_result"`
}

// export returns the processed data as a downloadable JSON attachment.
func (h *Handler) export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.ProcessedResult == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "processed_result is required", nil)
		return
	}

	now := time.Now().UTC()
	payload, err := json.MarshalIndent(gin.H{
		"timestamp":        now.Format(time.RFC3339),
		"process_type":     req.ProcessType,
		"dimensions":       req.Dimensions,
		"original_data":    req.OriginalData,
		"processed_result": req.ProcessedResult,
	}, "", "  ")
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to encode export", nil)
		return
	}

	filename := fmt.Sprintf("processed_data_%s.json", now.Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", payload)
}
