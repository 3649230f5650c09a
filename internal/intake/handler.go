package intake

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/shared/server/respond"
	"docvault-backend/internal/shared/telemetry"
)

// Enqueuer hands an inbound email to a background worker instead of routing
// it in the request.
type Enqueuer interface {
	EnqueueInboundEmail(ctx context.Context, email InboundEmail) error
}

// Handler wires HTTP handlers to the intake service and router. When Enqueue
// is set, inbound webhook emails are queued for the worker; otherwise they
// are routed synchronously.
type Handler struct {
	Svc     *Service
	Router  *Router
	Enqueue Enqueuer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, router *Router) *Handler {
	return &Handler{Svc: svc, Router: router}
}

// RegisterRoutes attaches intake routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/organizations/:orgID/intake-emails", h.create)
	rg.GET("/organizations/:orgID/intake-emails", h.list)
	rg.PATCH("/organizations/:orgID/intake-emails/:emailID", h.update)
	rg.DELETE("/organizations/:orgID/intake-emails/:emailID", h.delete)
	rg.POST("/webhooks/intake-email", h.inboundEmail)
}

type createIntakeEmailRequest struct {
	AllowedOrigins []string `json:"allowedOrigins"`
}

type intakeEmailResponse struct {
	IntakeEmailID  string   `json:"intakeEmailId"`
	EmailAddress   string   `json:"emailAddress"`
	IsEnabled      bool     `json:"isEnabled"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

func toIntakeEmailResponse(email IntakeEmail) intakeEmailResponse {
	origins := email.AllowedOrigins
	if origins == nil {
		origins = []string{}
	}
	return intakeEmailResponse{
		IntakeEmailID:  email.ID,
		EmailAddress:   email.EmailAddress,
		IsEnabled:      email.IsEnabled,
		AllowedOrigins: origins,
	}
}

func (h *Handler) create(c *gin.Context) {
	var req createIntakeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	email, err := h.Svc.CreateIntakeEmail(c.Request.Context(), c.Param("orgID"), req.AllowedOrigins)
	if err != nil {
		switch {
		case errors.Is(err, ErrIntakeLimitReached):
			respond.Error(c, http.StatusForbidden, "intake_limit_reached", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create intake email", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, toIntakeEmailResponse(email))
}

func (h *Handler) list(c *gin.Context) {
	emails, err := h.Svc.ListIntakeEmails(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list intake emails", nil)
		return
	}
	resp := make([]intakeEmailResponse, 0, len(emails))
	for _, email := range emails {
		resp = append(resp, toIntakeEmailResponse(email))
	}
	respond.JSON(c, http.StatusOK, resp)
}

type updateIntakeEmailRequest struct {
	IsEnabled      *bool     `json:"isEnabled"`
	AllowedOrigins *[]string `json:"allowedOrigins"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateIntakeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.IsEnabled == nil && req.AllowedOrigins == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "isEnabled or allowedOrigins is required", nil)
		return
	}

	orgID, emailID := c.Param("orgID"), c.Param("emailID")
	if req.IsEnabled != nil {
		if err := h.Svc.SetEnabled(c.Request.Context(), orgID, emailID, *req.IsEnabled); err != nil {
			h.updateError(c, err)
			return
		}
	}
	if req.AllowedOrigins != nil {
		if err := h.Svc.SetAllowedOrigins(c.Request.Context(), orgID, emailID, *req.AllowedOrigins); err != nil {
			h.updateError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateError(c *gin.Context, err error) {
	if errors.Is(err, ErrIntakeEmailNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "intake email not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update intake email", nil)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.Svc.DeleteIntakeEmail(c.Request.Context(), c.Param("orgID"), c.Param("emailID"))
	if err != nil {
		switch {
		case errors.Is(err, ErrIntakeEmailNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "intake email not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete intake email", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

type inboundAttachmentRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"` // base64
}

type inboundEmailRequest struct {
	From        string                     `json:"from"`
	To          []string                   `json:"to"`
	Subject     string                     `json:"subject"`
	Attachments []inboundAttachmentRequest `json:"attachments"`
}

func (h *Handler) inboundEmail(c *gin.Context) {
	var req inboundEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.From == "" || len(req.To) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "from and to are required", nil)
		return
	}

	email := InboundEmail{
		FromAddress: req.From,
		ToAddresses: req.To,
		Subject:     req.Subject,
	}
	for _, att := range req.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "attachment content must be base64", gin.H{"fileName": att.FileName})
			return
		}
		email.Attachments = append(email.Attachments, Attachment{
			FileName: att.FileName,
			MimeType: att.MimeType,
			Data:     data,
		})
	}

	if h.Enqueue != nil {
		if err := h.Enqueue.EnqueueInboundEmail(c.Request.Context(), email); err != nil {
			telemetry.Error("intake email enqueue failed", map[string]any{
				"from":  email.FromAddress,
				"error": err.Error(),
			})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to queue inbound email", nil)
			return
		}
		respond.JSON(c, http.StatusAccepted, gin.H{
			"queued":     true,
			"recipients": len(email.ToAddresses),
		})
		return
	}

	result := h.Router.RouteInboundEmail(c.Request.Context(), email)
	respond.JSON(c, http.StatusOK, gin.H{
		"recipients": result.Recipients,
		"ingested":   result.Ingested,
		"rejected":   result.Rejected,
	})
}
