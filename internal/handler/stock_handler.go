package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"precast-erp/internal/middleware"
	"precast-erp/internal/model"
	"precast-erp/internal/service"
	"precast-erp/pkg/pagination"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StockHandler struct {
	ledger service.LedgerService
	auth   *middleware.Auth
}

func NewStockHandler(ledger service.LedgerService, auth *middleware.Auth) *StockHandler {
	return &StockHandler{ledger: ledger, auth: auth}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := h.auth.RequirePermission(middleware.PermStockRead)

	group := router.Group("/api/stock")
	{
		group.GET("", read, h.ListStock)
		group.GET("/summary", read, h.GetSummary)
		group.GET("/movements", read, h.ListMovements)
		group.GET("/movements/export", read, h.ExportMovements)
		group.GET("/:id/history", read, h.GetHistory)
		group.GET("/:id/reconcile", h.auth.RequirePermission(middleware.PermStockWrite), h.Reconcile)
		group.POST("/adjust", h.auth.RequirePermission(middleware.PermStockWrite), h.AdjustStock)
	}
}

// ListStock returns the ledger rows, optionally for one item class
// @Summary      List stock levels
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        class  query     string  false  "finished_product, raw_material or sub_assembly"
// @Success      200    {object}  response.Response{data=[]model.StockItem}
// @Failure      400    {object}  response.Response
// @Router       /api/stock [get]
func (h *StockHandler) ListStock(c *gin.Context) {
	items, err := h.ledger.ListStock(c.Request.Context(), model.ItemClass(c.Query("class")))
	if err != nil {
		respondError(c, "ListStock", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// GetSummary returns per-class totals and the low-stock list
// @Summary      Stock summary
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.StockSummary}
// @Router       /api/stock/summary [get]
func (h *StockHandler) GetSummary(c *gin.Context) {
	summary, err := h.ledger.Summary(c.Request.Context())
	if err != nil {
		respondError(c, "GetSummary", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetHistory returns the recent movements of one ledger row
// @Summary      Stock item history
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        id    path      string  true   "Stock item ID"
// @Param        days  query     int     false  "Look-back window in days (default 30)"
// @Success      200   {object}  response.Response{data=service.StockHistory}
// @Failure      404   {object}  response.Response
// @Router       /api/stock/{id}/history [get]
func (h *StockHandler) GetHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	history, err := h.ledger.History(c.Request.Context(), id, days)
	if err != nil {
		respondError(c, "GetHistory", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// Reconcile replays a row's movements and compares the result to its cached stock
// @Summary      Reconcile a stock item
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Stock item ID"
// @Success      200  {object}  response.Response{data=service.Reconciliation}
// @Failure      404  {object}  response.Response
// @Router       /api/stock/{id}/reconcile [get]
func (h *StockHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.ledger.Reconcile(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Reconcile", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// AdjustStock applies a manual correction
// @Summary      Adjust stock
// @Description  add, remove or set the quantity of a ledger row. Each adjustment is recorded as a movement
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AdjustStockRequest  true  "Adjustment"
// @Success      200      {object}  response.Response{data=service.MovementResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/stock/adjust [post]
func (h *StockHandler) AdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "AdjustStock", err)
		return
	}
	result, err := h.ledger.Adjust(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "AdjustStock", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListMovements pages through the movement log
// @Summary      List stock movements
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        stock_item_id  query     string  false  "Stock item ID"
// @Param        kind           query     string  false  "Movement kind"
// @Param        ref_kind       query     string  false  "Reference kind"
// @Param        ref_id         query     string  false  "Reference ID"
// @Param        from           query     string  false  "From date (YYYY-MM-DD)"
// @Param        to             query     string  false  "To date (YYYY-MM-DD)"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Items per page (default 20)"
// @Success      200            {object}  response.Response{data=object}
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	filter, err := movementFilter(c)
	if err != nil {
		respondError(c, "ListMovements", err)
		return
	}
	p := pagination.Parse(c)
	movements, total, err := h.ledger.ListMovements(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, "ListMovements", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     total,
		"page":      p.Page,
		"limit":     p.Limit,
	}))
}

// ExportMovements downloads the filtered movement log as a spreadsheet
// @Summary      Export stock movements
// @Tags         stock
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        stock_item_id  query     string  false  "Stock item ID"
// @Param        kind           query     string  false  "Movement kind"
// @Param        from           query     string  false  "From date (YYYY-MM-DD)"
// @Param        to             query     string  false  "To date (YYYY-MM-DD)"
// @Success      200            {file}    binary
// @Router       /api/stock/movements/export [get]
func (h *StockHandler) ExportMovements(c *gin.Context) {
	filter, err := movementFilter(c)
	if err != nil {
		respondError(c, "ExportMovements", err)
		return
	}
	buf, err := h.ledger.ExportMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "ExportMovements", err)
		return
	}
	filename := fmt.Sprintf("stock-movements-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func movementFilter(c *gin.Context) (service.MovementFilter, error) {
	filter := service.MovementFilter{
		Kind:    model.MovementKind(c.Query("kind")),
		RefKind: model.ReferenceKind(c.Query("ref_kind")),
	}
	var err error
	if filter.StockItemID, err = queryUUID(c, "stock_item_id"); err != nil {
		return filter, err
	}
	if filter.RefID, err = queryUUID(c, "ref_id"); err != nil {
		return filter, err
	}
	filter.From, filter.To, err = dayRange(c)
	return filter, err
}
