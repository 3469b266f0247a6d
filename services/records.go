package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// Collection names.
const (
	CatalogCollection        = "catalog_entries"
	QuotationsCollection     = "quotations"
	QuotationItemsCollection = "quotation_items"
)

// Money is persisted as text so values survive save/reload without passing
// through binary floating point.

func decimalField(rec *core.Record, key string) (decimal.Decimal, error) {
	raw := rec.GetString(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s.%s: %w", rec.Collection().Name, key, err)
	}
	return d, nil
}

func nullDecimalField(rec *core.Record, key string) (decimal.NullDecimal, error) {
	raw := rec.GetString(key)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%s.%s: %w", rec.Collection().Name, key, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func setNullDecimal(rec *core.Record, key string, d decimal.NullDecimal) {
	if d.Valid {
		rec.Set(key, d.Decimal.String())
		return
	}
	rec.Set(key, "")
}

// findRecord maps a missing row to ErrNotFound.
func findRecord(app core.App, collection, id string) (*core.Record, error) {
	rec, err := app.FindRecordById(collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("find %s %s: %w", collection, id, err)
	}
	return rec, nil
}
