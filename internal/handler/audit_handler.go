package handler

import (
	"net/http"

	"precast-erp/internal/middleware"
	"precast-erp/internal/service"
	"precast-erp/pkg/pagination"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	auth         *middleware.Auth
}

func NewAuditHandler(auditService service.AuditService, auth *middleware.Auth) *AuditHandler {
	return &AuditHandler{auditService: auditService, auth: auth}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(h.auth.RequirePermission(middleware.PermAuditRead))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves paginated audit records with their users
// @Summary      Get audit logs
// @Description  Every workflow step (report submission, order transitions, adjustments) leaves one row
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action     query     string  false  "Action, e.g. ORDER_TRANSITION"
// @Param        user_id    query     string  false  "Acting user"
// @Param        entity_id  query     string  false  "Entity the action touched"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	filter := service.AuditFilter{
		Action:   c.Query("action"),
		EntityID: c.Query("entity_id"),
	}
	var err error
	if filter.UserID, err = queryUUID(c, "user_id"); err != nil {
		respondError(c, "GetAuditLogs", err)
		return
	}

	p := pagination.Parse(c)
	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, "GetAuditLogs", err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}
