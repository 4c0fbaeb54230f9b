package handler

import (
	"net/http"
	"strings"

	"precast-erp/internal/middleware"
	"precast-erp/internal/model"
	"precast-erp/internal/service"
	"precast-erp/pkg/pagination"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.OrderService
	auth         *middleware.Auth
}

func NewOrderHandler(orderService service.OrderService, auth *middleware.Auth) *OrderHandler {
	return &OrderHandler{orderService: orderService, auth: auth}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := h.auth.RequirePermission(middleware.PermOrdersRead)
	write := h.auth.RequirePermission(middleware.PermOrdersWrite)

	group := router.Group("/api/orders")
	{
		group.GET("", read, h.ListOrders)
		group.GET("/:id", read, h.GetOrder)
		group.POST("", write, h.CreateOrder)
		group.DELETE("/:id", write, h.DeleteOrder)
		group.PUT("/:id/confirm", write, h.ConfirmOrder)
		group.POST("/:id/quote", write, h.CreateQuote)
		group.PUT("/:id/quote/accept", write, h.AcceptQuote)
		group.PUT("/:id/quote/reject", write, h.RejectQuote)
		group.POST("/:id/invoice", write, h.CreateInvoice)
		group.POST("/:id/payment", write, h.RecordPayment)
		group.PUT("/:id/cancel", write, h.CancelOrder)
	}
}

// ListOrders retrieves orders with optional filters
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status     query     string  false  "Order status"
// @Param        client_id  query     string  false  "Client ID"
// @Param        number     query     string  false  "Order number prefix"
// @Param        from       query     string  false  "From order date (YYYY-MM-DD)"
// @Param        to         query     string  false  "To order date (YYYY-MM-DD)"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := service.OrderFilter{
		Status: model.OrderStatus(c.Query("status")),
		Number: strings.TrimSpace(c.Query("number")),
	}
	var err error
	if filter.ClientID, err = queryUUID(c, "client_id"); err != nil {
		respondError(c, "ListOrders", err)
		return
	}
	if filter.From, filter.To, err = dayRange(c); err != nil {
		respondError(c, "ListOrders", err)
		return
	}

	p := pagination.Parse(c)
	orders, total, err := h.orderService.List(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, "ListOrders", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	}))
}

// GetOrder returns an order with its items, quotes and invoice
// @Summary      Get an order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetOrder", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CreateOrder opens a draft order for a client
// @Summary      Create an order
// @Description  Unit prices default to the catalog price. The order number is assigned on creation
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Order"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "CreateOrder", err)
		return
	}
	order, err := h.orderService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "CreateOrder", err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// DeleteOrder removes a draft order
// @Summary      Delete a draft order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	h.withActor(c, "DeleteOrder", func(actor service.Actor, id uuid.UUID) (interface{}, error) {
		if err := h.orderService.DeleteDraft(c.Request.Context(), actor, id); err != nil {
			return nil, err
		}
		return "Order deleted successfully", nil
	})
}

// ConfirmOrder moves a draft to confirmed
// @Summary      Confirm an order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      409  {object}  response.Response
// @Router       /api/orders/{id}/confirm [put]
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	h.withActor(c, "ConfirmOrder", func(actor service.Actor, id uuid.UUID) (interface{}, error) {
		return h.orderService.Confirm(c.Request.Context(), actor, id)
	})
}

// CreateQuote issues a quote for a confirmed order
// @Summary      Create a quote
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Order ID"
// @Param        payload  body      service.CreateQuoteRequest  true  "Quote"
// @Success      201      {object}  response.Response{data=model.Quote}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/orders/{id}/quote [post]
func (h *OrderHandler) CreateQuote(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	h.withActorStatus(c, "CreateQuote", http.StatusCreated, func(actor service.Actor, id uuid.UUID) (interface{}, error) {
		return h.orderService.CreateQuote(c.Request.Context(), actor, id, req)
	})
}

// AcceptQuote records the client's acceptance of the pending quote
// @Summary      Accept the pending quote
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Quote}
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response "Quote expired"
// @Router       /api/orders/{id}/quote/accept [put]
func (h *OrderHandler) AcceptQuote(c *gin.Context) {
	h.withActor(c, "AcceptQuote", func(actor service.Actor, id uuid.UUID) (interface{}, error) {
		return h.orderService.AcceptQuote(c.Request.Context(), actor, id)
	})
}

// RejectQuote closes the pending quote and returns the order to confirmed
// @Summary      Reject the pending quote
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Quote}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/quote/reject [put]
func (h *OrderHandler) RejectQuote(c *gin.Context) {
	h.withActor(c, "RejectQuote", func(actor service.Actor, id uuid.UUID) (interface{}, error) {
		return h.orderService.RejectQuote(c.Request.Context(), actor, id)
	})
}

// CreateInvoice invoices an order whose quote was accepted
// @Summary      Create the invoice
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Order ID"
// @Param        payload  body      service.CreateInvoiceRequest  true  "Invoice"
// @Success      201      {object}  response.Response{data=model.Invoice}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/orders/{id}/invoice [post]
func (h *OrderHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	h.withActorStatus(c, "CreateInvoice", http.StatusCreated, func(actor service.Actor, id uuid.UUID) (interface{}, error) {
		return h.orderService.CreateInvoice(c.Request.Context(), actor, id, req)
	})
}

// RecordPayment registers a payment against the order's invoice
// @Summary      Record a payment
// @Description  A payment that settles the invoice delivers the order and releases its stock
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Order ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment"
// @Success      201      {object}  response.Response{data=service.PaymentResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/orders/{id}/payment [post]
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	h.withActorStatus(c, "RecordPayment", http.StatusCreated, func(actor service.Actor, id uuid.UUID) (interface{}, error) {
		return h.orderService.RecordPayment(c.Request.Context(), actor, id, req)
	})
}

// CancelOrder cancels an order that has not been delivered
// @Summary      Cancel an order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/orders/{id}/cancel [put]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.withActor(c, "CancelOrder", func(actor service.Actor, id uuid.UUID) (interface{}, error) {
		return h.orderService.Cancel(c.Request.Context(), actor, id)
	})
}

func (h *OrderHandler) withActor(c *gin.Context, funcName string, fn func(service.Actor, uuid.UUID) (interface{}, error)) {
	h.withActorStatus(c, funcName, http.StatusOK, fn)
}

// withActorStatus runs one transition for the order in the path and writes
// its result with status on success.
func (h *OrderHandler) withActorStatus(c *gin.Context, funcName string, status int, fn func(service.Actor, uuid.UUID) (interface{}, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, funcName, err)
		return
	}
	data, err := fn(actor, id)
	if err != nil {
		respondError(c, funcName, err)
		return
	}
	c.JSON(status, response.Success(status, data))
}
