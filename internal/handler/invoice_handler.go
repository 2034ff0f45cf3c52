package handler

import (
	"net/http"

	"dhobighar-backend/internal/middleware"
	"dhobighar-backend/internal/service"
	"dhobighar-backend/pkg/pagination"
	"dhobighar-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	billingService service.BillingService
	syncService    service.SyncService
}

func NewInvoiceHandler(billingService service.BillingService, syncService service.SyncService) *InvoiceHandler {
	return &InvoiceHandler{
		billingService: billingService,
		syncService:    syncService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.POST("", middleware.RequireRole("admin", "staff"), h.CreateInvoice)
		invoices.GET("", middleware.RequireRole("admin", "staff"), h.ListInvoices)
		invoices.GET("/:id", middleware.RequireRole("admin", "staff"), h.GetInvoice)
		invoices.POST("/sync", middleware.RequireRole("admin", "staff"), h.SyncInvoices)
	}
}

// CreateInvoice builds an invoice from the cart and saves it (or queues it offline)
// @Summary      Create invoice
// @Description  Builds an invoice from cart selections or package details, prices it, and saves it. When the backing store is unreachable the invoice is queued locally and flushed later.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BuildInvoiceRequest  true  "Invoice Payload"
// @Success      201      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.BuildInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.billingService.BuildInvoice(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	id, err := h.syncService.SaveInvoice(c.Request.Context(), invoice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{
		"id":      id,
		"invoice": invoice,
	}))
}

// ListInvoices returns the invoice history, newest first
// @Summary      List invoices
// @Description  Retrieves the invoice history, newest first. Served from the remote store when reachable, from the local cache otherwise.
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	invoices, err := h.syncService.GetInvoices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	total := len(invoices)
	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"invoices": invoices[start:end],
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetInvoice returns a single invoice by id
// @Summary      Get invoice
// @Description  Retrieves a single invoice by its id
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.syncService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// SyncInvoices triggers a manual drain of the offline queue
// @Summary      Sync queued invoices
// @Description  Flushes queued offline invoices to the remote store. A drain already in progress is skipped, not waited on.
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DrainResult}
// @Router       /api/invoices/sync [post]
func (h *InvoiceHandler) SyncInvoices(c *gin.Context) {
	result := h.syncService.Drain(c.Request.Context())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
