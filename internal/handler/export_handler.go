package handler

import (
	"net/http"

	"dhobighar-backend/internal/middleware"
	"dhobighar-backend/internal/service"
	"dhobighar-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.GET("/:id/share", middleware.RequireRole("admin", "staff"), h.ShareMessage)
		invoices.POST("/:id/whatsapp", middleware.RequireRole("admin", "staff"), h.SendWhatsApp)
		invoices.GET("/:id/pdf", middleware.RequireRole("admin", "staff"), h.DownloadPDF)
	}
}

// ShareMessage returns the formatted share text and WhatsApp deep link for an invoice
// @Summary      Invoice share message
// @Description  Returns the formatted bill text and a wa deep link targeting the customer's phone
// @Tags         export
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.ShareResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/share [get]
func (h *ExportHandler) ShareMessage(c *gin.Context) {
	share, err := h.exportService.ShareMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, share))
}

// SendWhatsApp delivers the invoice message to the customer over WhatsApp
// @Summary      Send invoice via WhatsApp
// @Description  Sends the formatted bill text to the customer's WhatsApp number through the configured Twilio sender
// @Tags         export
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/invoices/{id}/whatsapp [post]
func (h *ExportHandler) SendWhatsApp(c *gin.Context) {
	if err := h.exportService.SendWhatsApp(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"sent": true}))
}

// DownloadPDF renders the invoice as a PDF document
// @Summary      Invoice PDF
// @Description  Renders the invoice as an A4 PDF bill
// @Tags         export
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/pdf [get]
func (h *ExportHandler) DownloadPDF(c *gin.Context) {
	pdf, err := h.exportService.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice-`+c.Param("id")+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
