package handler

import (
	"net/http"
	"time"

	"precast-erp/internal/middleware"
	"precast-erp/internal/service"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	statisticsService service.StatisticsService
	revenueService    service.RevenueService
	auth              *middleware.Auth
}

func NewDashboardHandler(statisticsService service.StatisticsService, revenueService service.RevenueService, auth *middleware.Auth) *DashboardHandler {
	return &DashboardHandler{statisticsService: statisticsService, revenueService: revenueService, auth: auth}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/dashboard")
	{
		group.GET("/overview", h.auth.RequirePermission(middleware.PermDashboardRead), h.GetOverview)
		group.GET("/revenue", h.auth.RequirePermission(middleware.PermDashboardRead), h.GetRevenue)
	}
}

// @Summary      Get dashboard overview
// @Description  Order pipeline counts, delivered revenue, top products and finished stock for a period
// @Tags         dashboard
// @Produce      json
// @Param        from  query     string  false  "Start date (YYYY-MM-DD), defaults to the first of the month"
// @Param        to    query     string  false  "End date (YYYY-MM-DD), defaults to today"
// @Success      200   {object}  response.Response{data=model.DashboardOverview}
// @Failure      400   {object}  response.Response "Invalid date format"
// @Failure      401   {object}  response.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /api/dashboard/overview [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	now := time.Now().UTC()
	start, end, err := periodFrom(c, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		respondError(c, "GetOverview", err)
		return
	}

	overview, err := h.statisticsService.GetOverview(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, "GetOverview", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}

// @Summary      Get revenue by period
// @Description  Invoiced and collected amounts bucketed by week, month, quarter or year
// @Tags         dashboard
// @Produce      json
// @Param        group_by  query     string  false  "week, month (default), quarter or year"
// @Param        from      query     string  false  "Start date (YYYY-MM-DD), defaults to January 1st"
// @Param        to        query     string  false  "End date (YYYY-MM-DD), defaults to today"
// @Success      200       {object}  response.Response{data=[]service.RevenueDataPoint}
// @Failure      400       {object}  response.Response
// @Security     BearerAuth
// @Router       /api/dashboard/revenue [get]
func (h *DashboardHandler) GetRevenue(c *gin.Context) {
	start, end, err := periodFrom(c, time.Date(time.Now().UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		respondError(c, "GetRevenue", err)
		return
	}

	points, err := h.revenueService.GetRevenueStatistics(c.Request.Context(), service.RevenueFilter{
		GroupBy: c.Query("group_by"),
		From:    start,
		To:      end,
	})
	if err != nil {
		respondError(c, "GetRevenue", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, points))
}

// periodFrom reads from/to, defaulting to [defaultStart, now].
func periodFrom(c *gin.Context, defaultStart time.Time) (time.Time, time.Time, error) {
	from, to, err := dayRange(c)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := defaultStart, time.Now().UTC()
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	return start, end, nil
}
