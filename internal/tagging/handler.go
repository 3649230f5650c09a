package tagging

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

// RegisterRoutes attaches tagging routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/organizations/:orgID/tags", h.createTag)
	rg.GET("/organizations/:orgID/tags", h.listTags)
	rg.POST("/organizations/:orgID/tagging-rules", h.createRule)
	rg.GET("/organizations/:orgID/tagging-rules", h.listRules)
	rg.GET("/organizations/:orgID/documents/:documentID/tags", h.documentTags)
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type tagResponse struct {
	TagID string `json:"tagId"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func toTagResponse(tag Tag) tagResponse {
	return tagResponse{TagID: tag.ID, Name: tag.Name, Color: tag.Color}
}

func (h *Handler) createTag(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	tag, err := h.Svc.CreateTag(c.Request.Context(), c.Param("orgID"), req.Name, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, ErrTagAlreadyExists):
			respond.Error(c, http.StatusConflict, "tag_already_exists", "a tag with this name already exists", nil)
		case errors.Is(err, ErrInvalidRule):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create tag", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, toTagResponse(tag))
}

func (h *Handler) listTags(c *gin.Context) {
	tags, err := h.Svc.ListTags(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list tags", nil)
		return
	}
	resp := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		resp = append(resp, toTagResponse(tag))
	}
	respond.JSON(c, http.StatusOK, resp)
}

type conditionRequest struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type createRuleRequest struct {
	Name       string             `json:"name"`
	Enabled    *bool              `json:"enabled"`
	Conditions []conditionRequest `json:"conditions"`
	TagIDs     []string           `json:"tagIds"`
}

type ruleResponse struct {
	RuleID     string             `json:"ruleId"`
	Name       string             `json:"name"`
	Enabled    bool               `json:"enabled"`
	Conditions []conditionRequest `json:"conditions"`
	TagIDs     []string           `json:"tagIds"`
}

func toRuleResponse(rule Rule) ruleResponse {
	conds := make([]conditionRequest, 0, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		conds = append(conds, conditionRequest{Field: cond.Field, Operator: cond.Operator, Value: cond.Value})
	}
	return ruleResponse{
		RuleID:     rule.ID,
		Name:       rule.Name,
		Enabled:    rule.Enabled,
		Conditions: conds,
		TagIDs:     rule.TagIDs,
	}
}

func (h *Handler) createRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	conditions := make([]Condition, 0, len(req.Conditions))
	for _, cond := range req.Conditions {
		conditions = append(conditions, Condition{Field: cond.Field, Operator: cond.Operator, Value: cond.Value})
	}

	rule, err := h.Svc.CreateRule(c.Request.Context(), c.Param("orgID"), req.Name, enabled, conditions, req.TagIDs)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRule):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create rule", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, toRuleResponse(rule))
}

func (h *Handler) listRules(c *gin.Context) {
	rules, err := h.Svc.ListRules(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list rules", nil)
		return
	}
	resp := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		resp = append(resp, toRuleResponse(rule))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) documentTags(c *gin.Context) {
	tagIDs, err := h.Svc.DocumentTagIDs(c.Request.Context(), c.Param("documentID"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list document tags", nil)
		return
	}
	if tagIDs == nil {
		tagIDs = []string{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"tagIds": tagIDs})
}
