package handler

import (
	"net/http"
	"strings"

	"precast-erp/internal/middleware"
	"precast-erp/internal/service"
	"precast-erp/pkg/pagination"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetActiveRequest toggles whether a record can be used by new documents.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type ClientHandler struct {
	clientService service.ClientService
	auth          *middleware.Auth
}

func NewClientHandler(clientService service.ClientService, auth *middleware.Auth) *ClientHandler {
	return &ClientHandler{clientService: clientService, auth: auth}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/clients")
	{
		group.GET("", h.auth.RequirePermission(middleware.PermClientsRead), h.GetClients)
		group.GET("/:id", h.auth.RequirePermission(middleware.PermClientsRead), h.GetClient)
		group.POST("", h.auth.RequirePermission(middleware.PermClientsWrite), h.CreateClient)
		group.PUT("/:id", h.auth.RequirePermission(middleware.PermClientsWrite), h.UpdateClient)
		group.PUT("/:id/active", h.auth.RequirePermission(middleware.PermClientsWrite), h.SetActive)
	}
}

// GetClients handles retrieving paginated clients
// @Summary      Get clients
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        search       query     string  false  "Search by company name"
// @Param        active_only  query     bool    false  "Only active clients"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/clients [get]
func (h *ClientHandler) GetClients(c *gin.Context) {
	p := pagination.Parse(c)
	search := strings.TrimSpace(c.Query("search"))
	activeOnly := c.Query("active_only") == "true"

	clients, total, err := h.clientService.GetClients(c.Request.Context(), search, activeOnly, p.Page, p.Limit)
	if err != nil {
		respondError(c, "GetClients", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"clients": clients,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}

// GetClient returns a single client
// @Summary      Get client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=service.ClientResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetClient", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// CreateClient handles creating a new client
// @Summary      Create client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateClientRequest  true  "Create Client Payload"
// @Success      201      {object}  response.Response{data=service.ClientResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "CreateClient", err)
		return
	}
	client, err := h.clientService.CreateClient(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "CreateClient", err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

// UpdateClient handles partial updates of a client
// @Summary      Update client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Client ID"
// @Param        payload  body      service.UpdateClientRequest  true  "Update Client Payload"
// @Success      200      {object}  response.Response{data=service.ClientResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "UpdateClient", err)
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, "UpdateClient", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// SetActive activates or deactivates a client
// @Summary      Toggle client activity
// @Description  Inactive clients keep their history but cannot receive new orders
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string            true  "Client ID"
// @Param        payload  body      SetActiveRequest  true  "Activity flag"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/clients/{id}/active [put]
func (h *ClientHandler) SetActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "SetActive", err)
		return
	}
	if err := h.clientService.SetActive(c.Request.Context(), actor, id, *req.IsActive); err != nil {
		respondError(c, "SetActive", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Client updated successfully"))
}
