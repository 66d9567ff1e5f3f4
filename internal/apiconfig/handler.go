package apiconfig

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"datalab-backend/internal/llm"
	"datalab-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the config service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches config routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/config", h.current)
	rg.POST("/config", h.save)
}

func (h *Handler) current(c *gin.Context) {
	cfg, err := h.Svc.Current(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			respond.OK(c, gin.H{"configured": false})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load config", nil)
		return
	}
	respond.OK(c, gin.H{
		"configured":  true,
		"serviceType": cfg.ServiceType,
		"apiKey":      cfg.MaskedKey(),
		"baseUrl":     cfg.BaseURL,
		"updatedAt":   cfg.UpdatedAt,
	})
}

type saveRequest struct {
	ServiceType string `json:"service_type"`
	APIKey      string `json:"api_key"`
	BaseURL     string `json:"base_url"`
}

func (h *Handler) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.APIKey == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "api_key is required", nil)
		return
	}

	cfg, err := h.Svc.Save(c.Request.Context(), Config{
		ServiceType: req.ServiceType,
		APIKey:      req.APIKey,
		BaseURL:     strings.TrimSpace(req.BaseURL),
	})
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrUnsupportedProvider):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadRequest, "validation_failed", err.Error(), nil)
		}
		return
	}
	respond.OK(c, gin.H{
		"message":     "configuration saved",
		"serviceType": cfg.ServiceType,
	})
}
