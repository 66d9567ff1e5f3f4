package dimensions

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"datalab-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the dimension repository.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches dimension routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dimensions", h.list)
	rg.POST("/dimensions", h.create)
	rg.DELETE("/dimensions/:type/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	ctx := c.Request.Context()
	cleaning, err := h.Repo.ListByType(ctx, TypeCleaning)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list dimensions", nil)
		return
	}
	labeling, err := h.Repo.ListByType(ctx, TypeLabeling)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list dimensions", nil)
		return
	}
	if cleaning == nil {
		cleaning = []Dimension{}
	}
	if labeling == nil {
		labeling = []Dimension{}
	}
	respond.OK(c, gin.H{
		"cleaning": cleaning,
		"labeling": labeling,
	})
}

type createRequest struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if !ValidType(req.Type) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "type must be cleaning or labeling", nil)
		return
	}
	if req.Name == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}

	dim, err := h.Repo.Create(c.Request.Context(), Dimension{
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateName):
			respond.Error(c, http.StatusConflict, "duplicate_name", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create dimension", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, dim)
}

func (h *Handler) remove(c *gin.Context) {
	dimType := strings.ToLower(c.Param("type"))
	if !ValidType(dimType) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "type must be cleaning or labeling", nil)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid dimension id", nil)
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), dimType, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		case errors.Is(err, ErrDefaultProtected):
			respond.Error(c, http.StatusForbidden, "default_protected", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete dimension", nil)
		}
		return
	}
	respond.OK(c, gin.H{"message": "dimension deleted"})
}
