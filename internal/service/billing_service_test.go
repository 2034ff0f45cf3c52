package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"dhobighar-backend/internal/model"
	"dhobighar-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func refItems(t *testing.T) (map[string]model.ServiceItem, string, string) {
	t.Helper()
	shirtID := uuid.New()
	pantID := uuid.New()
	ref := map[string]model.ServiceItem{
		shirtID.String(): {ID: shirtID, Name: "Shirt", Category: model.CategoryWashAndIron, Price: dec("50")},
		pantID.String():  {ID: pantID, Name: "Pant", Category: model.CategoryDryCleaning, Price: dec("80")},
	}
	return ref, shirtID.String(), pantID.String()
}

type fakeItemRepo struct {
	items []model.ServiceItem
	err   error
}

func (f *fakeItemRepo) Create(context.Context, *model.ServiceItem) error { return nil }
func (f *fakeItemRepo) FindByID(context.Context, uuid.UUID) (*model.ServiceItem, error) {
	return nil, nil
}
func (f *fakeItemRepo) List(context.Context) ([]model.ServiceItem, error) { return f.items, f.err }
func (f *fakeItemRepo) Update(context.Context, *model.ServiceItem) error  { return nil }
func (f *fakeItemRepo) Delete(context.Context, uuid.UUID) error           { return nil }

func TestBuildInvoice(t *testing.T) {
	ref, shirt, _ := refItems(t)
	items := make([]model.ServiceItem, 0, len(ref))
	for _, item := range ref {
		items = append(items, item)
	}
	local := repository.NewMemoryStore()
	svc := NewBillingService(&fakeItemRepo{items: items}, local)
	ctx := context.Background()

	t.Run("item billing", func(t *testing.T) {
		inv, err := svc.BuildInvoice(ctx, BuildInvoiceRequest{
			CustomerName: "Asha",
			Phone:        "98765 43210",
			Cart:         map[string]decimal.Decimal{shirt: dec("2")},
		})
		require.NoError(t, err)
		require.Equal(t, "MA000001", inv.ID, "first provisional id")
		require.Equal(t, "919876543210", inv.Phone)
		require.Len(t, inv.Items, 1)
		require.True(t, inv.Total.Equal(dec("100")))
		require.Nil(t, inv.PackageInfo)
	})

	t.Run("provisional ids increment", func(t *testing.T) {
		inv, err := svc.BuildInvoice(ctx, BuildInvoiceRequest{
			CustomerName: "Ravi",
			Phone:        "9876543210",
			Cart:         map[string]decimal.Decimal{},
		})
		require.NoError(t, err)
		require.Equal(t, "MA000002", inv.ID)
		require.True(t, inv.Total.IsZero(), "empty cart totals zero")
	})

	t.Run("package billing skips the catalog", func(t *testing.T) {
		inv, err := svc.BuildInvoice(ctx, BuildInvoiceRequest{
			CustomerName: "Asha",
			Phone:        "9876543210",
			PackageInfo: &model.PackageInfo{
				PackageName: "Basic",
				Weight:      dec("5"),
				Rate:        dec("40"),
			},
		})
		require.NoError(t, err)
		require.NotNil(t, inv.PackageInfo)
		require.True(t, inv.Total.Equal(dec("200")))
		require.Len(t, inv.Items, 1)
		require.Equal(t, model.CategoryPackage, inv.Items[0].Category)
	})

	t.Run("missing customer details", func(t *testing.T) {
		_, err := svc.BuildInvoice(ctx, BuildInvoiceRequest{CustomerName: "  ", Phone: "123"})
		require.ErrorContains(t, err, "customer name and phone are required")
	})
}

func TestComputeTotal(t *testing.T) {
	ref, shirt, pant := refItems(t)

	t.Run("quantity times reference price", func(t *testing.T) {
		total := ComputeTotal(Selection{shirt: dec("2")}, nil, ref)
		require.True(t, total.Equal(dec("100")), "got %s", total)
	})

	t.Run("empty selection is zero", func(t *testing.T) {
		require.True(t, ComputeTotal(Selection{}, nil, ref).IsZero())
		require.True(t, ComputeTotal(nil, nil, ref).IsZero())
	})

	t.Run("override wins over reference", func(t *testing.T) {
		total := ComputeTotal(Selection{shirt: dec("2")}, PriceOverrides{shirt: dec("60")}, ref)
		require.True(t, total.Equal(dec("120")), "got %s", total)
	})

	t.Run("unknown item contributes zero", func(t *testing.T) {
		total := ComputeTotal(Selection{"missing": dec("5"), pant: dec("1")}, nil, ref)
		require.True(t, total.Equal(dec("80")), "got %s", total)
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		id := uuid.New().String()
		one := map[string]model.ServiceItem{id: {Name: "X", Price: dec("33.335")}}
		total := ComputeTotal(Selection{id: dec("1")}, nil, one)
		require.True(t, total.Equal(dec("33.34")), "got %s", total)
	})
}

func TestBuildItemRows(t *testing.T) {
	ref, shirt, _ := refItems(t)

	t.Run("reference priced row", func(t *testing.T) {
		rows := BuildItemRows(Selection{shirt: dec("2")}, nil, ref)
		require.Len(t, rows, 1)
		require.Equal(t, "Shirt", rows[0].Item.Name)
		require.Equal(t, model.CategoryWashAndIron, rows[0].Item.Category)
		require.True(t, rows[0].Item.Price.Equal(dec("50")))
		require.True(t, rows[0].Item.Amount().Equal(dec("100")))
		require.Equal(t, PricedFromReference, rows[0].PricedVia)
	})

	t.Run("override tagged", func(t *testing.T) {
		rows := BuildItemRows(Selection{shirt: dec("1")}, PriceOverrides{shirt: dec("45")}, ref)
		require.Len(t, rows, 1)
		require.True(t, rows[0].Item.Price.Equal(dec("45")))
		require.Equal(t, PricedFromOverride, rows[0].PricedVia)
	})

	t.Run("missing reference falls back to zero and is tagged", func(t *testing.T) {
		rows := BuildItemRows(Selection{"gone": dec("3")}, nil, ref)
		require.Len(t, rows, 1)
		require.True(t, rows[0].Item.Price.IsZero())
		require.Equal(t, PricedFromFallback, rows[0].PricedVia)
	})

	t.Run("deterministic order", func(t *testing.T) {
		sel := Selection{"b": dec("1"), "a": dec("1"), "c": dec("1")}
		rows := BuildItemRows(sel, nil, ref)
		require.Equal(t, "a", rows[0].Item.ID)
		require.Equal(t, "b", rows[1].Item.ID)
		require.Equal(t, "c", rows[2].Item.ID)
	})
}

func TestSinglePackageBilling(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	info := NormalizePackageInfo(&model.PackageInfo{
		PackageName: "Basic",
		Weight:      dec("5"),
		Rate:        dec("40"),
		Items: []model.PackageItem{
			{Item: "Shirt", Quantity: dec("4")},
			{Item: "Towel", Quantity: dec("2")},
		},
	})

	require.True(t, info.Total.Equal(dec("200")), "got %s", info.Total)
	require.True(t, PackageTotal(info).Equal(dec("200")))

	rows := BuildPackageRows(info, now)
	require.Len(t, rows, 3)

	require.Equal(t, "Basic (5 KG)", rows[0].Item.Name)
	require.Equal(t, model.CategoryPackage, rows[0].Item.Category)
	require.True(t, rows[0].Item.Quantity.Equal(dec("5")))
	require.True(t, rows[0].Item.Price.Equal(dec("40")))
	require.True(t, rows[0].Item.Amount().Equal(dec("200")))

	require.Equal(t, "Shirt (Included)", rows[1].Item.Name)
	require.Equal(t, model.CategoryPackageItems, rows[1].Item.Category)
	require.True(t, rows[1].Item.Price.IsZero())

	require.Equal(t, "Towel (Included)", rows[2].Item.Name)
	require.True(t, rows[2].Item.Price.IsZero())
}

func TestMultiPackageBilling(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	info := NormalizePackageInfo(&model.PackageInfo{
		Packages: []model.PackageEntry{
			{PackageName: "Basic", Weight: dec("5"), Rate: dec("40"),
				Items: []model.PackageItem{{Item: "Shirt", Quantity: dec("4")}}},
			{PackageName: "Premium", Weight: dec("3"), Rate: dec("50")},
		},
	})

	require.True(t, info.Packages[0].Total.Equal(dec("200")))
	require.True(t, info.Packages[1].Total.Equal(dec("150")))
	require.True(t, info.GrandTotal.Equal(dec("350")), "got %s", info.GrandTotal)
	require.True(t, PackageTotal(info).Equal(dec("350")))

	rows := BuildPackageRows(info, now)
	require.Len(t, rows, 3)
	require.Equal(t, "Package 1", rows[0].Item.Category)
	require.Equal(t, "Package 1 Items", rows[1].Item.Category)
	require.Equal(t, "Package 2", rows[2].Item.Category)

	// Removing a package and renormalizing recomputes the grand total.
	info.Packages = info.Packages[:1]
	info = NormalizePackageInfo(info)
	require.True(t, info.GrandTotal.Equal(dec("200")), "got %s", info.GrandTotal)
}

func TestNormalizePhone(t *testing.T) {
	require.Equal(t, "919876543210", NormalizePhone("98765 43210"))
	require.Equal(t, "919876543210", NormalizePhone("+91 98765-43210"))
	require.Equal(t, "919876543210", NormalizePhone("919876543210"))
}

func TestNextLocalInvoiceID(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.Equal(t, "MA000001", NextLocalInvoiceID("", now))
	require.Equal(t, "MA000124", NextLocalInvoiceID("MA000123", now))
	require.Equal(t, "MA1000000", NextLocalInvoiceID("MA999999", now))

	// Unparsable ids fall back to a timestamp suffix instead of failing.
	got := NextLocalInvoiceID("garbage", now)
	require.Equal(t, "MA1741608000000", got)
}

func TestFormatForSharing(t *testing.T) {
	inv := &model.Invoice{
		ID:           "MA000042",
		CustomerName: "Asha",
		Phone:        "919876543210",
		Address:      "12 MG Road",
		Date:         time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
		Items: model.InvoiceItems{
			{Name: "Shirt", Category: model.CategoryWashAndIron, Quantity: dec("2"), Price: dec("50")},
			{Name: "Pant", Category: model.CategoryDryCleaning, Quantity: dec("1"), Price: dec("80")},
			{Name: "Kurta", Category: model.CategoryWashAndIron, Quantity: dec("1"), Price: dec("60")},
		},
		Total: dec("240"),
	}

	msg := FormatForSharing(inv)

	require.Contains(t, msg, "*Dhobighar*")
	require.Contains(t, msg, "Invoice ID: MA000042")
	require.Contains(t, msg, "Name: Asha")
	require.Contains(t, msg, "Address: 12 MG Road")
	require.Contains(t, msg, "Phone: 919876543210")
	require.Contains(t, msg, "Qty: 2 × ₹50 = ₹100")
	require.Contains(t, msg, "💰 *Total Amount: ₹240*")
	require.Contains(t, msg, "Date: 10 Mar 2025, 02:30 PM")
	require.Contains(t, msg, "*Service Duration*: 2 days (Excluding pickup and delivery)")
	require.Contains(t, msg, "Thank you! 🙏")

	// Categories appear once each, grouped in first-appearance order.
	require.Less(t, strings.Index(msg, model.CategoryWashAndIron), strings.Index(msg, model.CategoryDryCleaning))
	require.Equal(t, 1, strings.Count(msg, "📦 *"+model.CategoryWashAndIron+"*"))

	// Pure function: rendering twice yields the same message.
	require.Equal(t, msg, FormatForSharing(inv))

	// No address line when the address is empty.
	inv.Address = ""
	require.NotContains(t, FormatForSharing(inv), "Address:")
}
