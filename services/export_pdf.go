package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// pdfGridSize gives eleven table columns room to breathe.
const pdfGridSize = 24

// pdfColumns are the grid widths of the quotation table. They sum to
// pdfGridSize.
var pdfColumns = []struct {
	title string
	size  int
	align align.Type
}{
	{"No.", 1, align.Center},
	{"Product", 4, align.Left},
	{"Specimen", 2, align.Center},
	{"Format", 2, align.Center},
	{"Pack", 2, align.Center},
	{"Qty", 1, align.Right},
	{"Markup", 2, align.Right},
	{"Finished USD", 3, align.Right},
	{"Finished RMB", 2, align.Right},
	{"Bulk USD", 3, align.Right},
	{"Bulk RMB", 2, align.Right},
}

// GeneratePDF renders the quotation payload as a landscape A4 PDF using
// maroto/v2.
func GeneratePDF(data ExportPayload) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithMaxGridSize(pdfGridSize).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuotationHeader(m, data)
	addQuotationTableHeader(m)
	for i, r := range data.Items {
		addQuotationRow(m, r, i%2 == 1)
	}
	addQuotationTotals(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// pdfRMB spells the currency out; the built-in PDF fonts lack a yuan sign.
func pdfRMB(d decimal.Decimal) string {
	return formatMoney("RMB ", d, RMBPlaces)
}

func pdfNullUSD(d decimal.NullDecimal) string {
	if !d.Valid {
		return LabelPlaceholder
	}
	return FormatUSD(d.Decimal)
}

func pdfNullRMB(d decimal.NullDecimal) string {
	if !d.Valid {
		return LabelPlaceholder
	}
	return pdfRMB(d.Decimal)
}

func addQuotationHeader(m core.Maroto, data ExportPayload) {
	grey := &props.Color{Red: 80, Green: 80, Blue: 80}

	m.AddRows(
		row.New(12).Add(
			col.New(pdfGridSize).Add(
				text.New("Quotation "+data.QuotationNumber, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Customer: %s", data.CustomerName), props.Text{
					Size: 9, Align: align.Left, Color: grey,
				}),
			),
			col.New(12).Add(
				text.New(fmt.Sprintf("Date: %s", data.CreatedDate), props.Text{
					Size: 9, Align: align.Right, Color: grey,
				}),
			),
		),
	)

	m.AddRows(
		row.New(6).Add(
			col.New(pdfGridSize).Add(
				text.New(fmt.Sprintf("Exchange rate: %s   Tax rate: %s",
					data.ExchangeRate.String(), FormatPercent(data.TaxRate)), props.Text{
					Size: 8, Align: align.Left, Color: grey,
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

func addQuotationTableHeader(m core.Maroto) {
	headerCell := props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}

	cols := make([]core.Col, 0, len(pdfColumns))
	for _, c := range pdfColumns {
		cols = append(cols, col.New(c.size).Add(
			text.New(c.title, props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Align: c.align,
				Color: &props.Color{Red: 255, Green: 255, Blue: 255},
			}),
		).WithStyle(&headerCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

func addQuotationRow(m core.Maroto, r ExportRow, shaded bool) {
	values := []string{
		fmt.Sprintf("%d", r.No),
		r.Product,
		r.Specimen,
		r.Format,
		r.Pack,
		fmt.Sprintf("%d", r.Quantity),
		r.MarkupPercentage,
		FormatUSD(r.FinalUSDFinished),
		pdfRMB(r.FinalRMBFinished),
		pdfNullUSD(r.FinalUSDBulk),
		pdfNullRMB(r.FinalRMBBulk),
	}

	var cellStyle *props.Cell
	if shaded {
		cellStyle = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	}

	cols := make([]core.Col, 0, len(pdfColumns))
	for i, c := range pdfColumns {
		cc := col.New(c.size).Add(text.New(values[i], props.Text{Size: 7, Align: c.align}))
		if cellStyle != nil {
			cc = cc.WithStyle(cellStyle)
		}
		cols = append(cols, cc)
	}
	m.AddRows(row.New(7).Add(cols...))
}

func addQuotationTotals(m core.Maroto, data ExportPayload) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	totals := []struct {
		label    string
		usd, rmb decimal.Decimal
	}{
		{"Finished Total", data.Totals.FinishedTotalUSD, data.Totals.FinishedTotalRMB},
		{"Bulk Total", data.Totals.BulkTotalUSD, data.Totals.BulkTotalRMB},
	}
	for _, t := range totals {
		m.AddRows(
			row.New(8).Add(
				col.New(14).Add(text.New(t.label, bold)).WithStyle(summaryCell),
				col.New(5).Add(text.New(FormatUSD(t.usd), bold)).WithStyle(summaryCell),
				col.New(5).Add(text.New(pdfRMB(t.rmb), bold)).WithStyle(summaryCell),
			),
		)
	}
}
