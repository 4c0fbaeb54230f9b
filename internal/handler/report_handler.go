package handler

import (
	"net/http"

	"precast-erp/internal/middleware"
	"precast-erp/internal/model"
	"precast-erp/internal/service"
	"precast-erp/pkg/pagination"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
	auth          *middleware.Auth
}

func NewReportHandler(reportService service.ReportService, auth *middleware.Auth) *ReportHandler {
	return &ReportHandler{reportService: reportService, auth: auth}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/reports")
	{
		group.GET("", h.auth.RequirePermission(middleware.PermReportsRead), h.ListReports)
		group.GET("/:id", h.auth.RequirePermission(middleware.PermReportsRead), h.GetReport)
		group.POST("", h.auth.RequirePermission(middleware.PermReportsWrite), h.CreateReport)
		group.PUT("/:id", h.auth.RequirePermission(middleware.PermReportsWrite), h.UpdateReport)
		group.DELETE("/:id", h.auth.RequirePermission(middleware.PermReportsWrite), h.DeleteReport)
		group.PUT("/:id/submit", h.auth.RequirePermission(middleware.PermReportsWrite), h.SubmitReport)
	}
}

// ListReports returns daily reports visible to the caller
// @Summary      List daily reports
// @Description  Operators see their own reports, managers and admins see everyone's
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        status   query     string  false  "draft or submitted"
// @Param        user_id  query     string  false  "Author (elevated roles only)"
// @Param        from     query     string  false  "From date (YYYY-MM-DD)"
// @Param        to       query     string  false  "To date (YYYY-MM-DD)"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Items per page (default 20)"
// @Success      200      {object}  response.Response{data=object}
// @Router       /api/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "ListReports", err)
		return
	}
	filter := service.ReportFilter{Status: model.ReportStatus(c.Query("status"))}
	if filter.UserID, err = queryUUID(c, "user_id"); err != nil {
		respondError(c, "ListReports", err)
		return
	}
	if filter.From, filter.To, err = dayRange(c); err != nil {
		respondError(c, "ListReports", err)
		return
	}

	p := pagination.Parse(c)
	reports, total, err := h.reportService.List(c.Request.Context(), actor, filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, "ListReports", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"reports": reports,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}

// GetReport returns one report with all of its lines
// @Summary      Get a daily report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  response.Response{data=model.DailyReport}
// @Failure      404  {object}  response.Response
// @Router       /api/reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "GetReport", err)
		return
	}
	report, err := h.reportService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "GetReport", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// CreateReport saves a draft report for the caller
// @Summary      Create a daily report
// @Description  Creates a draft. Only one report per operator and day is allowed
// @Tags         reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateReportRequest  true  "Report"
// @Success      201      {object}  response.Response{data=model.DailyReport}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "CreateReport", err)
		return
	}
	report, err := h.reportService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "CreateReport", err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, report))
}

// UpdateReport replaces the header and lines of a draft
// @Summary      Update a draft report
// @Tags         reports
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Report ID"
// @Param        payload  body      service.UpdateReportRequest  true  "Report"
// @Success      200      {object}  response.Response{data=model.DailyReport}
// @Failure      409      {object}  response.Response
// @Router       /api/reports/{id} [put]
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "UpdateReport", err)
		return
	}
	report, err := h.reportService.UpdateDraft(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, "UpdateReport", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// DeleteReport removes a draft
// @Summary      Delete a draft report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "DeleteReport", err)
		return
	}
	if err := h.reportService.DeleteDraft(c.Request.Context(), actor, id); err != nil {
		respondError(c, "DeleteReport", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Report deleted successfully"))
}

// SubmitReport posts every line of a draft to the stock ledger
// @Summary      Submit a daily report
// @Description  Applies production, material usage and armature lines as stock movements in one transaction
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  response.Response{data=service.SubmissionResult}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/reports/{id}/submit [put]
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "SubmitReport", err)
		return
	}
	result, err := h.reportService.Submit(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "SubmitReport", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
