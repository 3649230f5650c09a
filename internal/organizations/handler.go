package organizations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches organization routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/organizations", h.create)
	rg.GET("/organizations/:orgID", h.get)
	rg.GET("/organizations/:orgID/usage", h.usage)
}

type createOrganizationRequest struct {
	Name   string `json:"name"`
	PlanID string `json:"planId"`
}

type organizationResponse struct {
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	PlanID         string `json:"planId"`
}

func toResponse(org Organization) organizationResponse {
	return organizationResponse{
		OrganizationID: org.ID,
		Name:           org.Name,
		PlanID:         org.PlanID,
	}
}

func (h *Handler) create(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}

	org, err := h.Svc.CreateOrganization(c.Request.Context(), req.Name, req.PlanID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create organization", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(org))
}

func (h *Handler) get(c *gin.Context) {
	org, err := h.Svc.GetOrganization(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "organization not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch organization", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(org))
}

func (h *Handler) usage(c *gin.Context) {
	usage, err := h.Svc.GetUsage(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "organization not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch usage", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"documentsCount":    usage.DocumentsCount,
		"totalSizeBytes":    usage.TotalSizeBytes,
		"maxDocumentsCount": usage.Plan.MaxDocumentsCount,
		"maxStorageBytes":   usage.Plan.MaxStorageBytes,
		"planId":            usage.Plan.ID,
	})
}
