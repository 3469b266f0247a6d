package services

import "github.com/shopspring/decimal"

// ProductForm selects which price pair of a catalog product is quoted.
type ProductForm string

const (
	FormFinished ProductForm = "finished"
	FormBulk     ProductForm = "bulk"
)

// Valid reports whether f is one of the known forms.
func (f ProductForm) Valid() bool {
	return f == FormFinished || f == FormBulk
}

// Currency identifies which final price field a manual edit targets.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyRMB Currency = "rmb"
)

// DefaultQuantity is the quantity of a freshly added line item.
const DefaultQuantity = 1

// LineItem is one product on a quotation. Product fields are a snapshot of
// the catalog entry taken when the item was added; the item never refers
// back to the catalog.
type LineItem struct {
	Product     string `json:"product"`
	Description string `json:"description"`
	Specimen    string `json:"specimen"`
	Format      string `json:"format"`
	Pack        string `json:"pack"`

	ProductType      ProductForm     `json:"productType"`
	Quantity         int             `json:"quantity"`
	MarkupPercentage decimal.Decimal `json:"markupPercentage"`

	BaseUSDFinished decimal.Decimal     `json:"baseUsdFinished"`
	BaseRMBFinished decimal.Decimal     `json:"baseRmbFinished"`
	BaseUSDBulk     decimal.NullDecimal `json:"baseUsdBulk"`
	BaseRMBBulk     decimal.NullDecimal `json:"baseRmbBulk"`

	FinalUSDFinished decimal.Decimal     `json:"finalUsdFinished"`
	FinalRMBFinished decimal.Decimal     `json:"finalRmbFinished"`
	FinalUSDBulk     decimal.NullDecimal `json:"finalUsdBulk"`
	FinalRMBBulk     decimal.NullDecimal `json:"finalRmbBulk"`
}

// HasBulk reports whether the item carries bulk pricing.
func (li LineItem) HasBulk() bool {
	return li.BaseUSDBulk.Valid && !li.BaseUSDBulk.Decimal.IsZero()
}

// ActiveFinal returns the final USD/RMB pair of the item's selected form.
// Absent bulk prices come back as zero.
func (li LineItem) ActiveFinal() (usd, rmb decimal.Decimal) {
	if li.ProductType == FormBulk {
		return li.FinalUSDBulk.Decimal, li.FinalRMBBulk.Decimal
	}
	return li.FinalUSDFinished, li.FinalRMBFinished
}

// LineItems is an ordered list of quotation items. Order is insertion order
// and is preserved through persistence and export.
type LineItems []LineItem

// QuotationTotals holds quotation-level sums per product form.
type QuotationTotals struct {
	FinishedTotalUSD decimal.Decimal `json:"finishedTotalUsd"`
	FinishedTotalRMB decimal.Decimal `json:"finishedTotalRmb"`
	BulkTotalUSD     decimal.Decimal `json:"bulkTotalUsd"`
	BulkTotalRMB     decimal.Decimal `json:"bulkTotalRmb"`
}

// Summarize sums final prices times quantity across all items, in order.
// Missing bulk prices count as zero.
func (items LineItems) Summarize() QuotationTotals {
	totals := QuotationTotals{
		FinishedTotalUSD: decimal.Zero,
		FinishedTotalRMB: decimal.Zero,
		BulkTotalUSD:     decimal.Zero,
		BulkTotalRMB:     decimal.Zero,
	}
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		totals.FinishedTotalUSD = totals.FinishedTotalUSD.Add(item.FinalUSDFinished.Mul(qty))
		totals.FinishedTotalRMB = totals.FinishedTotalRMB.Add(item.FinalRMBFinished.Mul(qty))
		totals.BulkTotalUSD = totals.BulkTotalUSD.Add(item.FinalUSDBulk.Decimal.Mul(qty))
		totals.BulkTotalRMB = totals.BulkTotalRMB.Add(item.FinalRMBBulk.Decimal.Mul(qty))
	}
	return totals
}
