package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const importBatchSize = 100

// Price-list header labels. Finished goods are 成品, bulk board is 大板.
const (
	groupFinished = "成品"
	groupBulk     = "大板"
	noPriceMarker = "/"
)

// ImportRowError points at one rejected spreadsheet row. Row is 1-indexed
// as shown in a spreadsheet program.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CatalogParseResult is the outcome of reading a price-list workbook.
type CatalogParseResult struct {
	TotalRows int              `json:"total_rows"`
	Entries   []CatalogEntry   `json:"-"`
	Errors    []ImportRowError `json:"errors"`
}

// ImportResult holds the outcome of a batch import.
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Imported   int              `json:"imported"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
	RolledBack bool             `json:"rolled_back"`
}

// priceColumns maps the eight price-list columns to their sheet index.
type priceColumns struct {
	product, description, cutOff, pack int
	usdFinished, rmbFinished           int
	usdBulk, rmbBulk                   int
}

// ParseCatalogWorkbook reads the first sheet of a price-list workbook. The
// sheet has a two-row header: Product, Description, Cut-Off and Pack with
// the merged 成品 and 大板 groups on the first row, and RMB/USD under each
// group on the second. Rows above the header are ignored.
func ParseCatalogWorkbook(r io.Reader) (*CatalogParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	headerIdx := -1
	for i, row := range rows {
		if len(row) > 0 && strings.EqualFold(cellAt(row, 0), "Product") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 || headerIdx+1 >= len(rows) {
		return nil, fmt.Errorf("price list header not found: expected a Product row followed by RMB/USD labels")
	}

	cols, err := mapPriceColumns(rows[headerIdx], rows[headerIdx+1])
	if err != nil {
		return nil, err
	}

	result := &CatalogParseResult{}
	lastProduct := ""
	for i, row := range rows[headerIdx+2:] {
		rowNum := headerIdx + 3 + i

		product := cellAt(row, cols.product)
		if product == "" {
			product = lastProduct
		} else {
			lastProduct = product
		}
		description := cellAt(row, cols.description)
		pack := cellAt(row, cols.pack)

		raw := map[string]string{
			"USD " + groupFinished: cellAt(row, cols.usdFinished),
			"RMB " + groupFinished: cellAt(row, cols.rmbFinished),
			"USD " + groupBulk:     cellAt(row, cols.usdBulk),
			"RMB " + groupBulk:     cellAt(row, cols.rmbBulk),
		}
		anyPrice := false
		for _, v := range raw {
			if v != "" && v != noPriceMarker {
				anyPrice = true
			}
		}
		if description == "" && pack == "" && !anyPrice {
			continue
		}
		result.TotalRows++

		prices := make(map[string]decimal.NullDecimal, len(raw))
		rowOK := true
		for label, v := range raw {
			p, err := parsePriceCell(v)
			if err != nil {
				result.Errors = append(result.Errors, ImportRowError{
					Row:     rowNum,
					Field:   label,
					Message: fmt.Sprintf("%q is not a price", v),
				})
				rowOK = false
				continue
			}
			prices[label] = p
		}
		if !rowOK {
			continue
		}

		if product == "" {
			result.Errors = append(result.Errors, ImportRowError{
				Row: rowNum, Field: "Product", Message: "product name is missing",
			})
			continue
		}
		finishedUSD := prices["USD "+groupFinished]
		if !finishedUSD.Valid {
			result.Errors = append(result.Errors, ImportRowError{
				Row: rowNum, Field: "USD " + groupFinished, Message: "finished USD price is required",
			})
			continue
		}

		entry := CatalogEntry{
			Product:         product,
			Description:     description,
			Pack:            pack,
			CutOff:          cellAt(row, cols.cutOff),
			BaseUSDFinished: finishedUSD.Decimal,
			BaseRMBFinished: prices["RMB "+groupFinished].Decimal,
			BaseUSDBulk:     prices["USD "+groupBulk],
			BaseRMBBulk:     prices["RMB "+groupBulk],
		}
		if err := entry.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	return result, nil
}

// mapPriceColumns resolves column positions from the two header rows. The
// group label of a merged cell only appears in its first column, so it is
// carried right until the next label.
func mapPriceColumns(top, sub []string) (priceColumns, error) {
	cols := priceColumns{
		product: -1, description: -1, cutOff: -1, pack: -1,
		usdFinished: -1, rmbFinished: -1, usdBulk: -1, rmbBulk: -1,
	}

	width := len(top)
	if len(sub) > width {
		width = len(sub)
	}
	group := ""
	for j := 0; j < width; j++ {
		label := cellAt(top, j)
		if label != "" {
			group = label
		}
		switch strings.ToLower(label) {
		case "product":
			cols.product = j
			continue
		case "description":
			cols.description = j
			continue
		case "cut-off", "cutoff", "cut off":
			cols.cutOff = j
			continue
		case "pack":
			cols.pack = j
			continue
		}

		currency := strings.ToUpper(cellAt(sub, j))
		switch {
		case group == groupFinished && currency == "USD":
			cols.usdFinished = j
		case group == groupFinished && currency == "RMB":
			cols.rmbFinished = j
		case group == groupBulk && currency == "USD":
			cols.usdBulk = j
		case group == groupBulk && currency == "RMB":
			cols.rmbBulk = j
		}
	}

	if cols.product < 0 || cols.usdFinished < 0 {
		return cols, fmt.Errorf("price list header is missing Product or %s/USD", groupFinished)
	}
	return cols, nil
}

// parsePriceCell treats blanks and "/" as no price.
func parsePriceCell(v string) (decimal.NullDecimal, error) {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" || v == noPriceMarker {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func cellAt(row []string, j int) string {
	if j < 0 || j >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[j])
}

// ImportCatalog inserts entries in chunks of importBatchSize. Each chunk
// runs in its own transaction; a failing row rolls back its chunk only and
// the import moves on to the next one.
func ImportCatalog(ctx context.Context, app core.App, logger *zap.Logger, entries []CatalogEntry) (*ImportResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	col, err := app.FindCollectionByNameOrId(CatalogCollection)
	if err != nil {
		return nil, fmt.Errorf("%s collection not found: %w", CatalogCollection, err)
	}

	result := &ImportResult{TotalRows: len(entries)}
	for chunkStart := 0; chunkStart < len(entries); chunkStart += importBatchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		chunkEnd := min(chunkStart+importBatchSize, len(entries))
		chunk := entries[chunkStart:chunkEnd]

		chunkErrors := insertCatalogChunk(ctx, app, logger, col, chunk, chunkStart)
		if len(chunkErrors) > 0 {
			result.Errors = append(result.Errors, chunkErrors...)
			result.Failed += len(chunk)
			result.RolledBack = true
		} else {
			result.Imported += len(chunk)
		}
	}

	logger.Info("catalog import finished",
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed))
	return result, nil
}

func insertCatalogChunk(
	ctx context.Context,
	app core.App,
	logger *zap.Logger,
	col *core.Collection,
	chunk []CatalogEntry,
	startOffset int,
) []ImportRowError {
	var chunkErrors []ImportRowError

	err := app.RunInTransaction(func(txApp core.App) error {
		for i, entry := range chunk {
			rowNum := startOffset + i + 1
			if err := entry.Validate(); err != nil {
				chunkErrors = append(chunkErrors, ImportRowError{Row: rowNum, Message: err.Error()})
				return fmt.Errorf("entry %d: %w", rowNum, err)
			}
			record := core.NewRecord(col)
			fillCatalogRecord(record, entry)
			if err := txApp.SaveWithContext(ctx, record); err != nil {
				chunkErrors = append(chunkErrors, ImportRowError{
					Row:     rowNum,
					Message: fmt.Sprintf("Failed to save: %s", err.Error()),
				})
				return fmt.Errorf("save failed at entry %d: %w", rowNum, err)
			}
		}
		return nil
	})

	if err != nil {
		logger.Warn("catalog import chunk rolled back", zap.Int("offset", startOffset), zap.Error(err))
		if len(chunkErrors) == 0 {
			chunkErrors = append(chunkErrors, ImportRowError{
				Row:     startOffset + 1,
				Message: fmt.Sprintf("Transaction failed: %s", err.Error()),
			})
		}
	}
	return chunkErrors
}
