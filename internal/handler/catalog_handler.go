package handler

import (
	"net/http"

	"dhobighar-backend/internal/middleware"
	"dhobighar-backend/internal/service"
	"dhobighar-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/api/items")
	{
		items.GET("", middleware.RequireRole("admin", "staff"), h.ListItems)
		items.POST("", middleware.RequireRole("admin"), h.CreateItem)
		items.PUT("/:id", middleware.RequireRole("admin"), h.UpdateItem)
		items.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteItem)
	}

	packages := router.Group("/api/packages")
	{
		packages.GET("", middleware.RequireRole("admin", "staff"), h.ListPackages)
		packages.POST("", middleware.RequireRole("admin"), h.CreatePackage)
		packages.PUT("/:id", middleware.RequireRole("admin"), h.UpdatePackage)
		packages.DELETE("/:id", middleware.RequireRole("admin"), h.DeletePackage)
	}
}

// ListItems returns the service items grouped by category
// @Summary      List service items
// @Description  Retrieves all laundry service items grouped by category (Wash, Wash & Iron, Dry Cleaning)
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/items [get]
func (h *CatalogHandler) ListItems(c *gin.Context) {
	grouped, err := h.catalogService.ListItemsGrouped(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, grouped))
}

// CreateItem adds a new service item to the price list
// @Summary      Create service item
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ServiceItemRequest  true  "Service Item Payload"
// @Success      201      {object}  response.Response{data=service.ServiceItemResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/items [post]
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req service.ServiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.catalogService.CreateItem(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdateItem updates an existing service item
// @Summary      Update service item
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Item ID"
// @Param        payload  body      service.ServiceItemRequest  true  "Service Item Payload"
// @Success      200      {object}  response.Response{data=service.ServiceItemResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/items/{id} [put]
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	var req service.ServiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.catalogService.UpdateItem(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteItem removes a service item from the price list
// @Summary      Delete service item
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/items/{id} [delete]
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	if err := h.catalogService.DeleteItem(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListPackages returns the weight-based package definitions
// @Summary      List packages
// @Description  Retrieves all weight-based package definitions with their per-KG rates
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.PackageResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/packages [get]
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	packages, err := h.catalogService.ListPackages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, packages))
}

// CreatePackage adds a new package definition
// @Summary      Create package
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PackageRequest  true  "Package Payload"
// @Success      201      {object}  response.Response{data=service.PackageResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/packages [post]
func (h *CatalogHandler) CreatePackage(c *gin.Context) {
	var req service.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pkg, err := h.catalogService.CreatePackage(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, pkg))
}

// UpdatePackage updates a package definition
// @Summary      Update package
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Package ID"
// @Param        payload  body      service.PackageRequest  true  "Package Payload"
// @Success      200      {object}  response.Response{data=service.PackageResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/packages/{id} [put]
func (h *CatalogHandler) UpdatePackage(c *gin.Context) {
	var req service.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pkg, err := h.catalogService.UpdatePackage(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pkg))
}

// DeletePackage removes a package definition
// @Summary      Delete package
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Package ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/packages/{id} [delete]
func (h *CatalogHandler) DeletePackage(c *gin.Context) {
	if err := h.catalogService.DeletePackage(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
