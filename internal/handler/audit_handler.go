package handler

import (
	"net/http"

	"billbook/internal/middleware"
	"billbook/internal/service"
	"billbook/pkg/pagination"
	"billbook/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/api/audit-logs")
	{
		audit.GET("", middleware.RequireAuth(), h.ListAuditLogs)
	}
}

// ListAuditLogs returns a paginated list of audit entries
// @Summary      List audit logs
// @Description  Retrieves audit log entries, newest first, optionally scoped to one entity
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        entity_id  query     string  false  "Filter by entity ID"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Failure      500        {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.ListAuditLogs(c.Request.Context(), c.Query("entity_id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"audit_logs": logs,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}
