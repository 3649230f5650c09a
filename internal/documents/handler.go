package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/organizations"
	"docvault-backend/internal/shared/server/middleware"
	"docvault-backend/internal/shared/server/respond"
)

const maxUploadSize = 50 << 20 // 50MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/organizations/:orgID/documents", h.create)
	rg.GET("/organizations/:orgID/documents", h.list)
	rg.GET("/organizations/:orgID/documents/:documentID", h.get)
	rg.GET("/organizations/:orgID/documents/:documentID/content", h.download)
	rg.DELETE("/organizations/:orgID/documents/:documentID", h.softDelete)
	rg.POST("/organizations/:orgID/documents/:documentID/restore", h.restore)
	rg.GET("/organizations/:orgID/trash", h.listTrash)
	rg.DELETE("/organizations/:orgID/trash/:documentID", h.deleteTrashDocument)
	rg.DELETE("/organizations/:orgID/trash", h.emptyTrash)
}

func (h *Handler) create(c *gin.Context) {
	orgID := c.Param("orgID")
	userID := middleware.UserIDFromContext(c)
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

	doc, err := h.Svc.CreateDocument(c.Request.Context(), CreateDocumentInput{
		OrganizationID: orgID,
		FileName:       fileHeader.Filename,
		MimeType:       fileHeader.Header.Get("Content-Type"),
		Size:           fileHeader.Size,
		Body:           file,
		CreatedBy:      userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentAlreadyExists):
			respond.Error(c, http.StatusConflict, "document_already_exists", "a document with the same content already exists", gin.H{"documentId": doc.ID})
		case errors.Is(err, organizations.ErrQuotaExceeded):
			respond.Error(c, http.StatusForbidden, "quota_exceeded", err.Error(), nil)
		case errors.Is(err, organizations.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "organization not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	orgID := c.Param("orgID")

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	docs, err := h.Svc.ListDocuments(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.GetDocument(c.Request.Context(), c.Param("orgID"), c.Param("documentID"))
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) download(c *gin.Context) {
	doc, rc, err := h.Svc.OpenDocumentContent(c.Request.Context(), c.Param("orgID"), c.Param("documentID"))
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open document", nil)
		}
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	c.Header("Content-Type", doc.MimeType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func (h *Handler) softDelete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	err := h.Svc.SoftDeleteDocument(c.Request.Context(), c.Param("orgID"), c.Param("documentID"), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) restore(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.RestoreDocument(c.Request.Context(), c.Param("orgID"), c.Param("documentID"), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrDocumentNotDeleted):
			respond.Error(c, http.StatusBadRequest, "document_not_deleted", "document is not in the trash", nil)
		case errors.Is(err, ErrDocumentAlreadyExists):
			respond.Error(c, http.StatusConflict, "document_already_exists", "a live document with the same content already exists", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to restore document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) listTrash(c *gin.Context) {
	docs, err := h.Svc.ListTrashDocuments(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list trash", nil)
		return
	}
	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) deleteTrashDocument(c *gin.Context) {
	err := h.Svc.DeleteTrashDocument(c.Request.Context(), c.Param("orgID"), c.Param("documentID"))
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrDocumentNotDeleted):
			respond.Error(c, http.StatusBadRequest, "document_not_deleted", "document is not in the trash", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) emptyTrash(c *gin.Context) {
	deleted, err := h.Svc.DeleteAllTrashDocuments(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to empty trash", gin.H{"deleted": deleted})
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": deleted})
}
