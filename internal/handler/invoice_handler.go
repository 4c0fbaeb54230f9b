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

// InvoiceHandler lists the quotes and invoices produced by the order
// workflow. They are created and paid through /api/orders.
type InvoiceHandler struct {
	billingService service.BillingService
	auth           *middleware.Auth
}

func NewInvoiceHandler(billingService service.BillingService, auth *middleware.Auth) *InvoiceHandler {
	return &InvoiceHandler{billingService: billingService, auth: auth}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := h.auth.RequirePermission(middleware.PermOrdersRead)

	router.GET("/api/invoices", read, h.ListInvoices)
	router.GET("/api/quotes", read, h.ListQuotes)
}

// ListInvoices retrieves invoices with optional filters
// @Summary      List invoices
// @Description  Unpaid invoices past their due date are reported as overdue
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status    query     string  false  "draft, sent, paid, overdue or cancelled"
// @Param        order_id  query     string  false  "Order ID"
// @Param        from      query     string  false  "From invoice date (YYYY-MM-DD)"
// @Param        to        query     string  false  "To invoice date (YYYY-MM-DD)"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      400       {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter := service.InvoiceFilter{Status: model.InvoiceStatus(c.Query("status"))}
	var err error
	if filter.OrderID, err = queryUUID(c, "order_id"); err != nil {
		respondError(c, "ListInvoices", err)
		return
	}
	if filter.From, filter.To, err = dayRange(c); err != nil {
		respondError(c, "ListInvoices", err)
		return
	}

	p := pagination.Parse(c)
	invoices, total, err := h.billingService.ListInvoices(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, "ListInvoices", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	}))
}

// ListQuotes retrieves quotes with optional filters
// @Summary      List quotes
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status    query     string  false  "pending, accepted, rejected or expired"
// @Param        order_id  query     string  false  "Order ID"
// @Param        from      query     string  false  "From quote date (YYYY-MM-DD)"
// @Param        to        query     string  false  "To quote date (YYYY-MM-DD)"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      400       {object}  response.Response
// @Router       /api/quotes [get]
func (h *InvoiceHandler) ListQuotes(c *gin.Context) {
	filter := service.QuoteFilter{Status: model.QuoteStatus(c.Query("status"))}
	var err error
	if filter.OrderID, err = queryUUID(c, "order_id"); err != nil {
		respondError(c, "ListQuotes", err)
		return
	}
	if filter.From, filter.To, err = dayRange(c); err != nil {
		respondError(c, "ListQuotes", err)
		return
	}

	p := pagination.Parse(c)
	quotes, total, err := h.billingService.ListQuotes(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, "ListQuotes", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	}))
}
