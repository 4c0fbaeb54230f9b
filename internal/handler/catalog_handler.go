package handler

import (
	"net/http"

	"precast-erp/internal/middleware"
	"precast-erp/internal/model"
	"precast-erp/internal/service"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
	auth           *middleware.Auth
}

func NewCatalogHandler(catalogService service.CatalogService, auth *middleware.Auth) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, auth: auth}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := h.auth.RequirePermission(middleware.PermCatalogRead)
	write := h.auth.RequirePermission(middleware.PermCatalogWrite)

	group := router.Group("/api/catalog")
	{
		group.GET("/products", read, h.ListProducts)
		group.POST("/products", write, h.CreateProduct)
		group.PUT("/products/:id/active", write, h.setActive(model.ItemClassFinishedProduct))

		group.GET("/materials", read, h.ListMaterials)
		group.POST("/materials", write, h.CreateMaterial)
		group.PUT("/materials/:id/active", write, h.setActive(model.ItemClassRawMaterial))

		group.GET("/armatures", read, h.ListArmatures)
		group.POST("/armatures", write, h.CreateArmature)
		group.PUT("/armatures/:id/active", write, h.setActive(model.ItemClassSubAssembly))
	}
}

// ListProducts returns the finished-product catalog
// @Summary      List PBA products
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        active_only  query     bool  false  "Only active products"
// @Success      200          {object}  response.Response{data=[]model.PBAProduct}
// @Router       /api/catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), c.Query("active_only") == "true")
	if err != nil {
		respondError(c, "ListProducts", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// ListMaterials returns the raw-material catalog
// @Summary      List materials
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        active_only  query     bool  false  "Only active materials"
// @Success      200          {object}  response.Response{data=[]model.Material}
// @Router       /api/catalog/materials [get]
func (h *CatalogHandler) ListMaterials(c *gin.Context) {
	materials, err := h.catalogService.ListMaterials(c.Request.Context(), c.Query("active_only") == "true")
	if err != nil {
		respondError(c, "ListMaterials", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, materials))
}

// ListArmatures returns the armature catalog
// @Summary      List armatures
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        active_only  query     bool  false  "Only active armatures"
// @Success      200          {object}  response.Response{data=[]model.Armature}
// @Router       /api/catalog/armatures [get]
func (h *CatalogHandler) ListArmatures(c *gin.Context) {
	armatures, err := h.catalogService.ListArmatures(c.Request.Context(), c.Query("active_only") == "true")
	if err != nil {
		respondError(c, "ListArmatures", err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, armatures))
}

// CreateProduct adds a finished product and opens its stock row
// @Summary      Create PBA product
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePBAProductRequest  true  "Product"
// @Success      201      {object}  response.Response{data=model.PBAProduct}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response "Duplicate code"
// @Router       /api/catalog/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.CreatePBAProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "CreateProduct", err)
		return
	}
	product, err := h.catalogService.CreateProduct(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// CreateMaterial adds a raw material and opens its stock row
// @Summary      Create material
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateMaterialRequest  true  "Material"
// @Success      201      {object}  response.Response{data=model.Material}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response "Duplicate code"
// @Router       /api/catalog/materials [post]
func (h *CatalogHandler) CreateMaterial(c *gin.Context) {
	var req service.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "CreateMaterial", err)
		return
	}
	material, err := h.catalogService.CreateMaterial(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "CreateMaterial", err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, material))
}

// CreateArmature adds an armature and opens its stock row
// @Summary      Create armature
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateArmatureRequest  true  "Armature"
// @Success      201      {object}  response.Response{data=model.Armature}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response "Duplicate code"
// @Router       /api/catalog/armatures [post]
func (h *CatalogHandler) CreateArmature(c *gin.Context) {
	var req service.CreateArmatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	actor, err := actorFrom(c)
	if err != nil {
		respondError(c, "CreateArmature", err)
		return
	}
	armature, err := h.catalogService.CreateArmature(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, "CreateArmature", err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, armature))
}

// setActive toggles a catalog entry of the given class
// @Summary      Toggle catalog item activity
// @Description  Inactive items keep their stock and history but are refused by new reports and orders
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string            true  "Item ID"
// @Param        payload  body      SetActiveRequest  true  "Activity flag"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/catalog/products/{id}/active [put]
// @Router       /api/catalog/materials/{id}/active [put]
// @Router       /api/catalog/armatures/{id}/active [put]
func (h *CatalogHandler) setActive(class model.ItemClass) gin.HandlerFunc {
	return func(c *gin.Context) {
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
		if err := h.catalogService.SetActive(c.Request.Context(), actor, class, id, *req.IsActive); err != nil {
			respondError(c, "SetActive", err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, "Item updated successfully"))
	}
}
