// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quotedesk/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	if err := collections.Setup(app, zap.NewNop()); err != nil {
		t.Fatalf("failed to set up collections: %v", err)
	}

	return app
}

// CreateTestCatalogEntry creates a catalog entry with the given finished USD
// price. An empty usdBulk leaves the entry without a bulk form. RMB base
// prices are set to seven times the USD price.
func CreateTestCatalogEntry(t *testing.T, app core.App, product, usdFinished, usdBulk string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.CatalogEntries)
	if err != nil {
		t.Fatalf("failed to find catalog_entries collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("product", product)
	record.Set("description", product+" description")
	record.Set("pack", "Crate")
	record.Set("cut_off", "600x600")
	record.Set("base_usd_finished", usdFinished)
	record.Set("base_rmb_finished", timesSeven(usdFinished))
	record.Set("base_usd_bulk", usdBulk)
	record.Set("base_rmb_bulk", timesSeven(usdBulk))

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test catalog entry: %v", err)
	}

	return record
}

// CreateTestQuotationRecord creates a bare quotation header owned by owner.
func CreateTestQuotationRecord(t *testing.T, app core.App, owner, number string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.Quotations)
	if err != nil {
		t.Fatalf("failed to find quotations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("owner", owner)
	record.Set("customer_name", "Test Customer")
	record.Set("quotation_number", number)
	record.Set("exchange_rate", "7.1")
	record.Set("tax_rate", "0.13")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quotation: %v", err)
	}

	return record
}

// AssertBodyContains checks that body contains all specified fragments.
func AssertBodyContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q, body was:\n%s", frag, truncate(body, 500))
		}
	}
}

func timesSeven(usd string) string {
	if usd == "" {
		return ""
	}
	return decimal.RequireFromString(usd).Mul(decimal.NewFromInt(7)).String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
