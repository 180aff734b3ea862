package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/audit-logs", middleware.RequireRole(workflow.RoleManagement))
	{
		audit.GET("", h.ListAuditLogs)
	}
}

// ListAuditLogs returns the audit trail, optionally filtered by action and
// document type
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        action    query  string  false  "Action filter"
// @Param        doc_type  query  string  false  "Document type filter"
// @Param        page      query  int     false  "Page"
// @Param        limit     query  int     false  "Page size"
// @Success      200       {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)
	logs, total, err := h.auditService.List(c.Request.Context(), c.Query("action"), c.Query("doc_type"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   logs,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}
