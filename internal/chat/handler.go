package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"datalab-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the chat service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.send)
	rg.POST("/chat/clear", h.clear)
	rg.POST("/chat/export", h.export)
}

type sendRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.SessionID != "" {
		c.Set("sessionId", req.SessionID)
	}

	reply, err := h.Svc.Send(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveProvider):
			respond.Error(c, http.StatusBadRequest, "configuration_error", err.Error(), nil)
		case strings.TrimSpace(req.Message) == "":
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "provider_error", err.Error(), nil)
		}
		return
	}
	respond.OK(c, reply)
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func (h *Handler) clear(c *gin.Context) {
	// An empty or absent body clears the default session.
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.SessionID = ""
	}

	deleted, err := h.Svc.Clear(c.Request.Context(), req.SessionID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear chat history", nil)
		return
	}
	respond.OK(c, gin.H{"message": "chat history cleared", "deleted": deleted})
}

func (h *Handler) export(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.SessionID = ""
	}

	messages, err := h.Svc.History(c.Request.Context(), req.SessionID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load chat history", nil)
		return
	}
	if messages == nil {
		messages = []Message{}
	}

	now := time.Now().UTC()
	payload, err := json.MarshalIndent(gin.H{
		"timestamp": now.Format(time.RFC3339),
		"session":   req.SessionID,
		"messages":  messages,
	}, "", "  ")
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to encode export", nil)
		return
	}

	filename := fmt.Sprintf("chat_history_%s.json", now.Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", payload)
}
