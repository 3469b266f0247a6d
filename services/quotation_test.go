package services

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedOnlyEntry() CatalogEntry {
	return CatalogEntry{
		ID:              "e1",
		Product:         "Carrara White",
		Description:     "Polished marble",
		Pack:            "Crate",
		CutOff:          "600x600",
		BaseUSDFinished: dec("100"),
		BaseRMBFinished: dec("700"),
	}
}

func bulkEntry() CatalogEntry {
	e := finishedOnlyEntry()
	e.ID = "e2"
	e.Product = "Nero Marquina"
	e.BaseUSDBulk = decimal.NewNullDecimal(dec("80"))
	e.BaseRMBBulk = decimal.NewNullDecimal(dec("560"))
	return e
}

func newDraft(t *testing.T) *QuotationDraft {
	t.Helper()
	d, err := NewQuotationDraft("owner-1", "  Acme Stone  ", DefaultPriceParams())
	require.NoError(t, err)
	return d
}

func TestNewQuotationDraft(t *testing.T) {
	d := newDraft(t)
	assert.Equal(t, "owner-1", d.Owner())
	assert.Equal(t, "Acme Stone", d.CustomerName())
	assert.Equal(t, 0, d.Len())

	_, err := NewQuotationDraft("owner-1", "x", PriceParams{ExchangeRate: dec("0"), TaxRate: dec("0")})
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestNewLineItem_Snapshot(t *testing.T) {
	entry := finishedOnlyEntry()
	item, err := NewLineItem(entry, FormFinished, DefaultMarkup, DefaultPriceParams())
	require.NoError(t, err)

	assert.Equal(t, "Carrara White", item.Product)
	assert.Equal(t, "600x600", item.Specimen)
	assert.Equal(t, "Crate", item.Format)
	assert.Equal(t, "Crate", item.Pack)
	assert.Equal(t, DefaultQuantity, item.Quantity)
	assert.True(t, item.FinalUSDFinished.Equal(dec("110")))
	assert.True(t, item.FinalRMBFinished.Equal(dec("882.53")))
	assert.False(t, item.FinalUSDBulk.Valid)

	// Later catalog edits must not reach the item.
	entry.Product = "Renamed"
	entry.BaseUSDFinished = dec("1")
	assert.Equal(t, "Carrara White", item.Product)
	assert.True(t, item.BaseUSDFinished.Equal(dec("100")))
}

func TestQuotationDraft_AddItem(t *testing.T) {
	tests := []struct {
		name    string
		entry   CatalogEntry
		form    ProductForm
		markup  string
		wantErr error
	}{
		{"finished", finishedOnlyEntry(), FormFinished, "0.10", nil},
		{"bulk with bulk price", bulkEntry(), FormBulk, "0.10", nil},
		{"bulk without bulk price", finishedOnlyEntry(), FormBulk, "0.10", ErrInvalidProductForm},
		{"unknown form", finishedOnlyEntry(), ProductForm("slab"), "0.10", ErrInvalidProductForm},
		{"negative markup", finishedOnlyEntry(), FormFinished, "-0.01", ErrInvalidMarkup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDraft(t)
			item, err := d.AddItem(tt.entry, tt.form, dec(tt.markup))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, d.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.form, item.ProductType)
			assert.Equal(t, 1, d.Len())
		})
	}
}

func TestQuotationDraft_RemoveItem(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)
	_, err = d.AddItem(bulkEntry(), FormBulk, DefaultMarkup)
	require.NoError(t, err)

	t.Run("out of range leaves list unchanged", func(t *testing.T) {
		before := d.Items()
		for _, idx := range []int{2, 5, -1} {
			assert.ErrorIs(t, d.RemoveItem(idx), ErrIndexOutOfRange)
		}
		assert.Equal(t, before, d.Items())
	})

	t.Run("keeps order of the rest", func(t *testing.T) {
		require.NoError(t, d.RemoveItem(0))
		items := d.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "Nero Marquina", items[0].Product)
	})
}

func TestQuotationDraft_UpdateQuantity(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)

	require.NoError(t, d.UpdateQuantity(0, 4))
	items := d.Items()
	assert.Equal(t, 4, items[0].Quantity)
	assert.True(t, items[0].FinalUSDFinished.Equal(dec("110")), "unit price unchanged")

	assert.ErrorIs(t, d.UpdateQuantity(0, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, d.UpdateQuantity(0, -3), ErrInvalidQuantity)
	assert.ErrorIs(t, d.UpdateQuantity(3, 1), ErrIndexOutOfRange)
	assert.Equal(t, 4, d.Items()[0].Quantity)
}

func TestQuotationDraft_UpdateMarkup(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(bulkEntry(), FormBulk, DefaultMarkup)
	require.NoError(t, err)

	item, err := d.UpdateMarkup(0, dec("0.25"))
	require.NoError(t, err)
	assert.True(t, item.FinalUSDFinished.Equal(dec("125")))
	assert.True(t, item.FinalUSDBulk.Decimal.Equal(dec("100")))
	assert.True(t, item.FinalRMBBulk.Decimal.Equal(dec("802.3")))

	_, err = d.UpdateMarkup(0, dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidMarkup)
}

func TestQuotationDraft_UpdateManualPrice(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)

	item, err := d.UpdateManualPrice(0, FormFinished, CurrencyUSD, dec("120"))
	require.NoError(t, err)
	assert.True(t, item.FinalRMBFinished.Equal(dec("962.76")))

	item, err = d.UpdateManualPrice(0, FormFinished, CurrencyRMB, dec("900"))
	require.NoError(t, err)
	assert.True(t, item.FinalRMBFinished.Equal(dec("900")))
	assert.True(t, item.FinalUSDFinished.Equal(dec("120")))

	_, err = d.UpdateManualPrice(0, FormBulk, CurrencyUSD, dec("10"))
	assert.ErrorIs(t, err, ErrInvalidProductForm)

	_, err = d.UpdateManualPrice(0, FormFinished, CurrencyUSD, dec("-5"))
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestQuotationDraft_UpdateParams(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)

	params := PriceParams{ExchangeRate: dec("7"), TaxRate: dec("0")}
	require.NoError(t, d.UpdateParams(params))
	assert.True(t, d.Items()[0].FinalRMBFinished.Equal(dec("882.53")), "existing prices are kept")

	item, err := d.UpdateMarkup(0, DefaultMarkup)
	require.NoError(t, err)
	assert.True(t, item.FinalRMBFinished.Equal(dec("770")))

	assert.ErrorIs(t, d.UpdateParams(PriceParams{ExchangeRate: dec("-1")}), ErrInvalidRate)
}

func TestQuotationDraft_SavedIsReadOnly(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)
	d.saved = true

	_, err = d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	assert.ErrorIs(t, err, ErrQuotationSaved)
	assert.ErrorIs(t, d.RemoveItem(0), ErrQuotationSaved)
	assert.ErrorIs(t, d.UpdateQuantity(0, 2), ErrQuotationSaved)
	_, err = d.UpdateMarkup(0, DefaultMarkup)
	assert.ErrorIs(t, err, ErrQuotationSaved)
	assert.ErrorIs(t, d.SetCustomerName("x"), ErrQuotationSaved)
	assert.ErrorIs(t, d.UpdateParams(DefaultPriceParams()), ErrQuotationSaved)
}

func TestQuotationDraft_Summarize(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)
	_, err = d.AddItem(bulkEntry(), FormBulk, DefaultMarkup)
	require.NoError(t, err)
	require.NoError(t, d.UpdateQuantity(1, 2))

	totals := d.Summarize()
	assert.True(t, totals.FinishedTotalUSD.Equal(dec("330")))
	assert.True(t, totals.FinishedTotalRMB.Equal(dec("2647.59")))
	assert.True(t, totals.BulkTotalUSD.Equal(dec("176")))
	assert.True(t, totals.BulkTotalRMB.Equal(dec("1412.048")))
}

func TestQuotationDraft_ConcurrentEdits(t *testing.T) {
	d := newDraft(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
			_ = d.UpdateQuantity(0, 2)
			_ = d.Summarize()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, d.Len())
}

func TestQuotationDraft_ExportPayload(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)

	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	payload := d.ExportPayload("QT-1", created)
	assert.Equal(t, "QT-1", payload.QuotationNumber)
	assert.Equal(t, "Acme Stone", payload.CustomerName)
	assert.Equal(t, "2025-03-14", payload.CreatedDate)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, 1, payload.Items[0].No)
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestQuotationDraft_UpdateItem(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)

	item, err := d.UpdateItem(0, ItemUpdate{
		Quantity: intPtr(3),
		Markup:   decPtr("0.2"),
		Manual:   &ManualPrice{Form: FormFinished, Currency: CurrencyRMB, Value: dec("900")},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.MarkupPercentage.Equal(dec("0.2")))
	assert.True(t, item.FinalUSDFinished.Equal(dec("120")))
	assert.True(t, item.FinalRMBFinished.Equal(dec("900")))
	assert.Equal(t, item, d.Items()[0])
}

func TestQuotationDraft_UpdateItemIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		upd     ItemUpdate
		wantErr error
	}{
		{"bad markup after good quantity", ItemUpdate{Quantity: intPtr(5), Markup: decPtr("-0.5")}, ErrInvalidMarkup},
		{"bad quantity before good markup", ItemUpdate{Quantity: intPtr(0), Markup: decPtr("0.3")}, ErrInvalidQuantity},
		{"bulk edit without bulk price", ItemUpdate{
			Quantity: intPtr(5),
			Markup:   decPtr("0.3"),
			Manual:   &ManualPrice{Form: FormBulk, Currency: CurrencyUSD, Value: dec("50")},
		}, ErrInvalidProductForm},
		{"unknown currency", ItemUpdate{
			Markup: decPtr("0.3"),
			Manual: &ManualPrice{Form: FormFinished, Currency: "eur", Value: dec("50")},
		}, ErrInvalidCurrency},
		{"negative manual price", ItemUpdate{
			Quantity: intPtr(2),
			Manual:   &ManualPrice{Form: FormFinished, Currency: CurrencyUSD, Value: dec("-1")},
		}, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDraft(t)
			_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
			require.NoError(t, err)
			before := d.Items()

			_, err = d.UpdateItem(0, tt.upd)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, d.Items())
		})
	}
}

func TestQuotationDraft_UpdateItemOutOfRange(t *testing.T) {
	d := newDraft(t)
	_, err := d.UpdateItem(0, ItemUpdate{Quantity: intPtr(2)})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestQuotationDraft_View(t *testing.T) {
	d := newDraft(t)
	_, err := d.AddItem(finishedOnlyEntry(), FormFinished, DefaultMarkup)
	require.NoError(t, err)
	_, err = d.UpdateItem(0, ItemUpdate{Quantity: intPtr(2)})
	require.NoError(t, err)

	view := d.View()
	assert.Equal(t, "Acme Stone", view.CustomerName)
	require.Len(t, view.Items, 1)
	assert.Equal(t, view.Items.Summarize(), view.Totals)
	assert.True(t, view.Totals.FinishedTotalUSD.Equal(dec("220")))

	view.Items[0].Quantity = 9
	assert.Equal(t, 2, d.Items()[0].Quantity)
}
