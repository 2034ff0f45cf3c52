package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"dhobighar-backend/internal/model"
	"dhobighar-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

// Selection is a cart: service-item id -> selected quantity.
type Selection map[string]decimal.Decimal

// PriceOverrides carries manual per-item price edits keyed by item id.
type PriceOverrides map[string]decimal.Decimal

// PriceSource tags how a row's price was resolved. Unknown reference ids
// degrade to a zero price instead of failing the build; the tag lets callers
// tell the degraded path apart from a normally priced row.
type PriceSource string

const (
	PricedFromReference PriceSource = "reference"
	PricedFromOverride  PriceSource = "override"
	PricedFromFallback  PriceSource = "fallback"
)

// ItemRow pairs a built invoice row with its price provenance.
type ItemRow struct {
	Item      model.InvoiceItem
	PricedVia PriceSource
}

type BuildInvoiceRequest struct {
	CustomerName   string                     `json:"customerName" binding:"required"`
	Phone          string                     `json:"phone" binding:"required"`
	Address        string                     `json:"address"`
	Cart           map[string]decimal.Decimal `json:"cart"`
	PriceOverrides map[string]decimal.Decimal `json:"prices"`
	PackageInfo    *model.PackageInfo         `json:"packageInfo"`
}

// --- Interface ---

// BillingService turns a cart or package selection plus customer details into
// a persist-ready invoice with a provisional locally issued id. The server id
// is assigned later, when the sync queue writes the invoice remotely.
type BillingService interface {
	BuildInvoice(ctx context.Context, req BuildInvoiceRequest) (*model.Invoice, error)
}

type billingService struct {
	itemRepo repository.ServiceItemRepository
	local    repository.LocalStore
	now      func() time.Time
}

func NewBillingService(itemRepo repository.ServiceItemRepository, local repository.LocalStore) BillingService {
	return &billingService{itemRepo: itemRepo, local: local, now: time.Now}
}

// --- Implementation ---

func (s *billingService) BuildInvoice(ctx context.Context, req BuildInvoiceRequest) (*model.Invoice, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, errors.New("customer name and phone are required")
	}

	now := s.now()

	var rows []ItemRow
	var total decimal.Decimal
	var info *model.PackageInfo

	if req.PackageInfo != nil {
		info = NormalizePackageInfo(req.PackageInfo)
		rows = BuildPackageRows(info, now)
		total = PackageTotal(info)
	} else {
		refItems, err := s.itemRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch service items: %w", err)
		}
		ref := make(map[string]model.ServiceItem, len(refItems))
		for _, item := range refItems {
			ref[item.ID.String()] = item
		}
		rows = BuildItemRows(req.Cart, req.PriceOverrides, ref)
		total = ComputeTotal(req.Cart, req.PriceOverrides, ref)
	}

	id, err := s.nextLocalInvoiceID(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice id: %w", err)
	}

	items := make(model.InvoiceItems, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Item)
	}

	return &model.Invoice{
		ID:           id,
		CustomerName: req.CustomerName,
		Phone:        NormalizePhone(req.Phone),
		Address:      req.Address,
		Date:         now.UTC(),
		Items:        items,
		Total:        total,
		PackageInfo:  info,
	}, nil
}

// nextLocalInvoiceID increments the device-local counter seeded from the last
// known id. Offline, this may collide with a server-assigned id generated
// concurrently on another device; that gap is accepted, not reconciled.
func (s *billingService) nextLocalInvoiceID(ctx context.Context, now time.Time) (string, error) {
	last, err := s.local.LastInvoiceID(ctx)
	if err != nil {
		return "", err
	}
	id := NextLocalInvoiceID(last, now)
	if err := s.local.SetLastInvoiceID(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// --- Builder functions ---

// ComputeTotal sums (override ?? reference price) * quantity over the cart,
// rounded to currency precision. Unknown item ids contribute zero; an empty
// selection yields zero, never an error.
func ComputeTotal(selection Selection, overrides PriceOverrides, ref map[string]model.ServiceItem) decimal.Decimal {
	total := decimal.Zero
	for itemID, quantity := range selection {
		total = total.Add(resolvePrice(itemID, overrides, ref).Mul(quantity))
	}
	return total.Round(2)
}

// BuildItemRows builds one row per cart entry, ordered by item id for
// deterministic output. Rows carry a PricedVia tag so the zero-price fallback
// on a missing reference item is observable.
func BuildItemRows(selection Selection, overrides PriceOverrides, ref map[string]model.ServiceItem) []ItemRow {
	ids := make([]string, 0, len(selection))
	for id := range selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]ItemRow, 0, len(ids))
	for _, id := range ids {
		row := ItemRow{Item: model.InvoiceItem{
			ID:       id,
			Quantity: selection[id],
			Price:    resolvePrice(id, overrides, ref),
		}}
		switch {
		case hasOverride(id, overrides):
			row.PricedVia = PricedFromOverride
		case hasReference(id, ref):
			row.PricedVia = PricedFromReference
		default:
			row.PricedVia = PricedFromFallback
		}
		if item, ok := ref[id]; ok {
			row.Item.Name = item.Name
			row.Item.Category = item.Category
		}
		rows = append(rows, row)
	}
	return rows
}

func hasOverride(itemID string, overrides PriceOverrides) bool {
	_, ok := overrides[itemID]
	return ok
}

func hasReference(itemID string, ref map[string]model.ServiceItem) bool {
	_, ok := ref[itemID]
	return ok
}

func resolvePrice(itemID string, overrides PriceOverrides, ref map[string]model.ServiceItem) decimal.Decimal {
	if price, ok := overrides[itemID]; ok {
		return price
	}
	if item, ok := ref[itemID]; ok {
		return item.Price
	}
	return decimal.Zero
}

// NormalizePackageInfo returns a copy with totals recomputed from weight and
// rate, honoring the invariant that totals are derived, never hand-set.
func NormalizePackageInfo(info *model.PackageInfo) *model.PackageInfo {
	out := *info
	if out.IsMulti() {
		out.Packages = make([]model.PackageEntry, len(info.Packages))
		copy(out.Packages, info.Packages)
		grand := decimal.Zero
		for i := range out.Packages {
			out.Packages[i].Total = out.Packages[i].Weight.Mul(out.Packages[i].Rate).Round(2)
			grand = grand.Add(out.Packages[i].Total)
		}
		out.GrandTotal = grand.Round(2)
		return &out
	}
	out.Total = out.Weight.Mul(out.Rate).Round(2)
	return &out
}

// PackageTotal returns the grand total for multi-package billing, the package
// total otherwise.
func PackageTotal(info *model.PackageInfo) decimal.Decimal {
	if info.IsMulti() {
		return info.GrandTotal
	}
	return info.Total
}

// BuildPackageRows synthesizes invoice rows for package billing: one row per
// package (price = rate, quantity = weight) plus a zero-priced row per
// included garment. Categories discriminate the shapes for the renderer:
// "Package"/"Package Items" in single mode, "Package N"/"Package N Items" per
// package in multi mode. Row ids are timestamp + index, since these rows are
// not backed by reference data.
func BuildPackageRows(info *model.PackageInfo, now time.Time) []ItemRow {
	synID := func(idx int) string {
		return fmt.Sprintf("pkg_%d_%d", now.UnixMilli(), idx)
	}

	var rows []ItemRow
	idx := 0
	appendPackage := func(name string, weight, rate decimal.Decimal, items []model.PackageItem, category, itemsCategory string) {
		rows = append(rows, ItemRow{
			Item: model.InvoiceItem{
				ID:       synID(idx),
				Name:     fmt.Sprintf("%s (%s KG)", name, weight.String()),
				Category: category,
				Quantity: weight,
				Price:    rate,
			},
			PricedVia: PricedFromReference,
		})
		idx++
		for _, item := range items {
			rows = append(rows, ItemRow{
				Item: model.InvoiceItem{
					ID:       synID(idx),
					Name:     fmt.Sprintf("%s (Included)", item.Item),
					Category: itemsCategory,
					Quantity: item.Quantity,
					Price:    decimal.Zero,
				},
				PricedVia: PricedFromReference,
			})
			idx++
		}
	}

	if info.IsMulti() {
		for i, pkg := range info.Packages {
			category := fmt.Sprintf("%s %d", model.CategoryPackage, i+1)
			appendPackage(pkg.PackageName, pkg.Weight, pkg.Rate, pkg.Items, category, category+" Items")
		}
		return rows
	}

	appendPackage(info.PackageName, info.Weight, info.Rate, info.Items,
		model.CategoryPackage, model.CategoryPackageItems)
	return rows
}

// NormalizePhone strips non-digits and prefixes the country code unless the
// number already carries it.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if strings.HasPrefix(cleaned, "91") {
		return cleaned
	}
	return "91" + cleaned
}

// NextLocalInvoiceID increments the numeric suffix of the last known invoice
// id. An unparsable id falls back to a timestamp-based one rather than failing.
func NextLocalInvoiceID(last string, now time.Time) string {
	if last == "" {
		return FormatInvoiceID(1)
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(last, model.InvoiceIDPrefix), 10, 64)
	if err != nil {
		return fmt.Sprintf("%s%d", model.InvoiceIDPrefix, now.UnixMilli())
	}
	return FormatInvoiceID(n + 1)
}

// FormatInvoiceID renders a sequence number as a zero-padded invoice id.
func FormatInvoiceID(n int64) string {
	return fmt.Sprintf("%s%0*d", model.InvoiceIDPrefix, model.InvoiceIDDigits, n)
}

// FormatForSharing renders an invoice as the customer-facing message: rows
// grouped by category in first-appearance order, a localized date and the
// fixed footer. Pure function of the invoice.
func FormatForSharing(inv *model.Invoice) string {
	var categories []string
	grouped := map[string][]model.InvoiceItem{}
	for _, item := range inv.Items {
		if _, ok := grouped[item.Category]; !ok {
			categories = append(categories, item.Category)
		}
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	var sections []string
	for _, category := range categories {
		var lines []string
		for _, item := range grouped[category] {
			lines = append(lines, fmt.Sprintf("   • %s\n     Qty: %s × ₹%s = ₹%s",
				item.Name, item.Quantity.String(), item.Price.String(), item.Amount().String()))
		}
		sections = append(sections, fmt.Sprintf("📦 *%s*\n%s", category, strings.Join(lines, "\n")))
	}

	var b strings.Builder
	b.WriteString("*Dhobighar*\n\n")
	b.WriteString("🧾 *Invoice Details:*\n")
	fmt.Fprintf(&b, "Invoice ID: %s\n\n", inv.ID)
	b.WriteString("👤 *Customer Details:*\n")
	fmt.Fprintf(&b, "Name: %s\n", inv.CustomerName)
	if inv.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", inv.Address)
	}
	fmt.Fprintf(&b, "Phone: %s\n\n", inv.Phone)
	b.WriteString("📋 *Order Details*\n")
	b.WriteString(strings.Join(sections, "\n\n"))
	fmt.Fprintf(&b, "\n\n💰 *Total Amount: ₹%s*\n\n", inv.Total.String())
	fmt.Fprintf(&b, "Date: %s\n\n", inv.Date.Format("02 Jan 2006, 03:04 PM"))
	b.WriteString("*Service Duration*: 2 days (Excluding pickup and delivery)\n\n")
	b.WriteString("Thank you! 🙏")
	return b.String()
}
