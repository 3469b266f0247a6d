package services

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	excelSheetName = "Quotation"
	excelUSDFormat = "#,##0.0000"
	excelRMBFormat = "#,##0.00"
)

// excelHeaders is the column order of the quotation table, A through K.
var excelHeaders = []string{
	"No.", "Product", "Specimen", "Format", "Pack", "Qty", "Markup",
	"Finished USD", "Finished RMB", "Bulk USD", "Bulk RMB",
}

// GenerateExcel renders the quotation payload as an xlsx workbook and
// returns the file contents.
func GenerateExcel(data ExportPayload) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, excelSheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	sheet := excelSheetName

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	lastCol := columns[len(columns)-1]

	widths := []float64{6, 36, 12, 14, 14, 8, 10, 16, 16, 16, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	textStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create text style: %w", err)
	}

	usdFormat := excelUSDFormat
	usdStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &usdFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create usd style: %w", err)
	}

	rmbFormat := excelRMBFormat
	rmbStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &rmbFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create rmb style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryUSDStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &usdFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary usd style: %w", err)
	}

	summaryRMBStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &rmbFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary rmb style: %w", err)
	}

	// ── Header Rows (1-4) ───────────────────────────────────────────────

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", "Quotation "+data.QuotationNumber)
	f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle)

	info := []string{
		"Customer: " + data.CustomerName,
		"Date: " + data.CreatedDate,
		fmt.Sprintf("Exchange rate: %s  Tax rate: %s", data.ExchangeRate.String(), FormatPercent(data.TaxRate)),
	}
	for i, line := range info {
		r := fmt.Sprintf("%d", i+2)
		if err := f.MergeCell(sheet, "A"+r, lastCol+r); err != nil {
			return nil, fmt.Errorf("merge info row %s: %w", r, err)
		}
		f.SetCellValue(sheet, "A"+r, line)
		f.SetCellStyle(sheet, "A"+r, lastCol+r, subtitleStyle)
	}

	// ── Row 6: Column Headers ───────────────────────────────────────────

	for i, h := range excelHeaders {
		f.SetCellValue(sheet, columns[i]+"6", h)
	}
	f.SetCellStyle(sheet, "A6", lastCol+"6", headerStyle)

	// ── Data Rows (starting row 7) ──────────────────────────────────────

	row := 7
	for _, r := range data.Items {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheet, "A"+rowStr, r.No)
		f.SetCellValue(sheet, "B"+rowStr, sanitizeExcelCell(r.Product))
		f.SetCellValue(sheet, "C"+rowStr, sanitizeExcelCell(r.Specimen))
		f.SetCellValue(sheet, "D"+rowStr, sanitizeExcelCell(r.Format))
		f.SetCellValue(sheet, "E"+rowStr, sanitizeExcelCell(r.Pack))
		f.SetCellValue(sheet, "F"+rowStr, r.Quantity)
		f.SetCellValue(sheet, "G"+rowStr, r.MarkupPercentage)
		f.SetCellStyle(sheet, "A"+rowStr, "G"+rowStr, textStyle)

		setMoneyCell(f, sheet, "H"+rowStr, r.FinalUSDFinished)
		setMoneyCell(f, sheet, "I"+rowStr, r.FinalRMBFinished)
		if r.FinalUSDBulk.Valid {
			setMoneyCell(f, sheet, "J"+rowStr, r.FinalUSDBulk.Decimal)
		}
		if r.FinalRMBBulk.Valid {
			setMoneyCell(f, sheet, "K"+rowStr, r.FinalRMBBulk.Decimal)
		}
		f.SetCellStyle(sheet, "H"+rowStr, "H"+rowStr, usdStyle)
		f.SetCellStyle(sheet, "I"+rowStr, "I"+rowStr, rmbStyle)
		f.SetCellStyle(sheet, "J"+rowStr, "J"+rowStr, usdStyle)
		f.SetCellStyle(sheet, "K"+rowStr, "K"+rowStr, rmbStyle)

		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++

	summaryRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "G"+summaryRow, "Finished Total:")
	f.SetCellStyle(sheet, "G"+summaryRow, "G"+summaryRow, summaryLabelStyle)
	setMoneyCell(f, sheet, "H"+summaryRow, data.Totals.FinishedTotalUSD)
	f.SetCellStyle(sheet, "H"+summaryRow, "H"+summaryRow, summaryUSDStyle)
	setMoneyCell(f, sheet, "I"+summaryRow, data.Totals.FinishedTotalRMB)
	f.SetCellStyle(sheet, "I"+summaryRow, "I"+summaryRow, summaryRMBStyle)
	row++

	summaryRow = fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "G"+summaryRow, "Bulk Total:")
	f.SetCellStyle(sheet, "G"+summaryRow, "G"+summaryRow, summaryLabelStyle)
	setMoneyCell(f, sheet, "J"+summaryRow, data.Totals.BulkTotalUSD)
	f.SetCellStyle(sheet, "J"+summaryRow, "J"+summaryRow, summaryUSDStyle)
	setMoneyCell(f, sheet, "K"+summaryRow, data.Totals.BulkTotalRMB)
	f.SetCellStyle(sheet, "K"+summaryRow, "K"+summaryRow, summaryRMBStyle)

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// setMoneyCell writes a numeric cell. The number format on the cell style
// decides the displayed precision; the stored value is unrounded.
func setMoneyCell(f *excelize.File, sheet, cell string, d decimal.Decimal) {
	f.SetCellFloat(sheet, cell, d.InexactFloat64(), -1, 64)
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
// A lone "-" is the missing-label placeholder and is left alone.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 || s == LabelPlaceholder {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
