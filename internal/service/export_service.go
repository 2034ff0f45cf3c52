package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"dhobighar-backend/internal/model"

	"github.com/jung-kurt/gofpdf"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// --- DTOs ---

// ShareResponse carries the formatted message plus the deep link the mobile
// client hands to the messaging app.
type ShareResponse struct {
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsappUrl"`
}

// --- Interface ---

// ExportService renders invoices for delivery to the customer: share text,
// direct WhatsApp delivery and PDF bytes.
type ExportService interface {
	ShareMessage(ctx context.Context, invoiceID string) (*ShareResponse, error)
	SendWhatsApp(ctx context.Context, invoiceID string) error
	RenderPDF(ctx context.Context, invoiceID string) ([]byte, error)
}

type exportService struct {
	sync   SyncService
	client *twilio.RestClient
}

func NewExportService(sync SyncService) ExportService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	var client *twilio.RestClient
	if accountSid != "" && authToken != "" {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})
	}

	return &exportService{sync: sync, client: client}
}

// --- Implementation ---

func (s *exportService) ShareMessage(ctx context.Context, invoiceID string) (*ShareResponse, error) {
	invoice, err := s.sync.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	message := FormatForSharing(invoice)
	return &ShareResponse{
		Message:     message,
		WhatsAppURL: WhatsAppURL(invoice.Phone, message),
	}, nil
}

// WhatsAppURL builds the deep link opening the messaging app with the invoice
// message prefilled.
func WhatsAppURL(phone, message string) string {
	return fmt.Sprintf("whatsapp://send?phone=%s&text=%s", phone, url.QueryEscape(message))
}

func (s *exportService) SendWhatsApp(ctx context.Context, invoiceID string) error {
	if s.client == nil {
		return errors.New("whatsapp delivery is not configured")
	}

	invoice, err := s.sync.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:+" + invoice.Phone)
	params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	params.SetBody(FormatForSharing(invoice))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	return nil
}

func (s *exportService) RenderPDF(ctx context.Context, invoiceID string) ([]byte, error) {
	invoice, err := s.sync.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return RenderInvoicePDF(invoice)
}

// categoryDisplay maps catalog categories to the short codes printed in the
// Type column.
func categoryDisplay(category string) string {
	switch category {
	case model.CategoryDryCleaning:
		return "DC"
	case model.CategoryWashAndIron:
		return "W&I"
	case model.CategoryWash:
		return "Wash"
	default:
		return category
	}
}

// RenderInvoicePDF renders the printable invoice: header, customer block and
// the billed rows table with a closing total row.
func RenderInvoicePDF(invoice *model.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 24)
	pdf.CellFormat(0, 12, "DHOBIGHAR", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, "Laundry & Dry Cleaning", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Customer details
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(25, 7, "Invoice:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, invoice.ID, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(25, 7, "Name:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, invoice.CustomerName, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(25, 7, "Phone:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, invoice.Phone, "", 1, "L", false, 0, "")

	if invoice.Address != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(25, 7, "Address:", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, invoice.Address, "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(25, 7, "Date:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, invoice.Date.Format("02 Jan 2006, 03:04 PM"), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Items table
	widths := []float64{12, 78, 25, 20, 27, 28}
	headers := []string{"S.N", "Particulars", "Type", "Qty", "Rate", "Amount"}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(76, 175, 80)
	pdf.SetTextColor(255, 255, 255)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(51, 51, 51)
	for i, item := range invoice.Items {
		pdf.CellFormat(widths[0], 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 8, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, categoryDisplay(item.Category), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 8, item.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 8, item.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 8, item.Amount().StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 9, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4]+widths[5], 9, "Rs "+invoice.Total.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 6, "Service Duration: 2 days (Excluding pickup and delivery)", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Thank you for choosing Dhobighar!", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
