package services

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LabelPlaceholder stands in for a missing specimen, format or pack label.
const LabelPlaceholder = "-"

// ExportRow is one line of the quotation export.
type ExportRow struct {
	No               int
	Product          string
	Specimen         string
	Format           string
	Pack             string
	ProductType      ProductForm
	Quantity         int
	MarkupPercentage string
	FinalUSDFinished decimal.Decimal
	FinalRMBFinished decimal.Decimal
	FinalUSDBulk     decimal.NullDecimal
	FinalRMBBulk     decimal.NullDecimal
}

// ExportPayload is the renderer-independent quotation export.
type ExportPayload struct {
	QuotationNumber string          `json:"quotationNumber"`
	CustomerName    string          `json:"customerName"`
	CreatedDate     string          `json:"createdDate"`
	ExchangeRate    decimal.Decimal `json:"-"`
	TaxRate         decimal.Decimal `json:"-"`
	Items           []ExportRow     `json:"items"`
	Totals          QuotationTotals `json:"-"`
}

// BuildExportPayload projects q into export rows numbered from 1 in item
// order.
func BuildExportPayload(q Quotation) ExportPayload {
	rows := make([]ExportRow, 0, len(q.Items))
	for i, item := range q.Items {
		rows = append(rows, ExportRow{
			No:               i + 1,
			Product:          item.Product,
			Specimen:         labelOrPlaceholder(item.Specimen),
			Format:           labelOrPlaceholder(item.Format),
			Pack:             labelOrPlaceholder(item.Pack),
			ProductType:      item.ProductType,
			Quantity:         item.Quantity,
			MarkupPercentage: FormatPercent(item.MarkupPercentage),
			FinalUSDFinished: item.FinalUSDFinished,
			FinalRMBFinished: item.FinalRMBFinished,
			FinalUSDBulk:     item.FinalUSDBulk,
			FinalRMBBulk:     item.FinalRMBBulk,
		})
	}

	createdDate := ""
	if !q.Created.IsZero() {
		createdDate = q.Created.Format("2006-01-02")
	}

	return ExportPayload{
		QuotationNumber: q.QuotationNumber,
		CustomerName:    q.CustomerName,
		CreatedDate:     createdDate,
		ExchangeRate:    q.Params.ExchangeRate,
		TaxRate:         q.Params.TaxRate,
		Items:           rows,
		Totals:          q.Items.Summarize(),
	}
}

func labelOrPlaceholder(s string) string {
	if s == "" {
		return LabelPlaceholder
	}
	return s
}

// MarshalJSON writes prices as plain JSON numbers and absent bulk prices as
// explicit nulls.
func (r ExportRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		No               int          `json:"no"`
		Product          string       `json:"product"`
		Specimen         string       `json:"specimen"`
		Format           string       `json:"format"`
		Pack             string       `json:"pack"`
		ProductType      ProductForm  `json:"productType"`
		Quantity         int          `json:"quantity"`
		MarkupPercentage string       `json:"markupPercentage"`
		FinalUSDFinished json.Number  `json:"finalUsdFinished"`
		FinalRMBFinished json.Number  `json:"finalRmbFinished"`
		FinalUSDBulk     *json.Number `json:"finalUsdBulk"`
		FinalRMBBulk     *json.Number `json:"finalRmbBulk"`
	}{
		No:               r.No,
		Product:          r.Product,
		Specimen:         r.Specimen,
		Format:           r.Format,
		Pack:             r.Pack,
		ProductType:      r.ProductType,
		Quantity:         r.Quantity,
		MarkupPercentage: r.MarkupPercentage,
		FinalUSDFinished: json.Number(r.FinalUSDFinished.String()),
		FinalRMBFinished: json.Number(r.FinalRMBFinished.String()),
		FinalUSDBulk:     nullNumber(r.FinalUSDBulk),
		FinalRMBBulk:     nullNumber(r.FinalRMBBulk),
	})
}

func nullNumber(d decimal.NullDecimal) *json.Number {
	if !d.Valid {
		return nil
	}
	n := json.Number(d.Decimal.String())
	return &n
}
