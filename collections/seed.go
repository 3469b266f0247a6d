package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
)

type catalogDef struct {
	product     string
	description string
	pack        string
	cutOff      string
	usdFinished string
	rmbFinished string
	usdBulk     string
	rmbBulk     string
}

// seedCatalog is a small price list for local development. Empty bulk
// prices mean the product is only sold finished.
var seedCatalog = []catalogDef{
	{"Carrara White", "Polished marble tile", "Crate 20pcs", "600x600", "38.5", "270", "29", "205"},
	{"Carrara White", "Honed marble tile", "Crate 20pcs", "300x600", "36", "252", "", ""},
	{"Nero Marquina", "Polished marble slab", "A-frame", "2400x1200", "96", "680", "74", "525"},
	{"Calacatta Gold", "Book-matched slab", "A-frame", "2700x1600", "240", "1700", "", ""},
	{"Absolute Black", "Flamed granite", "Pallet", "600x300", "21.75", "154", "16.5", "117"},
	{"Travertine Classic", "Filled and honed", "Crate 30pcs", "457x457", "18", "128", "13.2", "94"},
}

// Seed inserts the development price list. It is safe to call on every
// startup because it returns early if any catalog entries already exist.
func Seed(app core.App, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	col, err := app.FindCollectionByNameOrId(CatalogEntries)
	if err != nil {
		return fmt.Errorf("seed: could not find %s collection: %w", CatalogEntries, err)
	}
	total, err := app.CountRecords(CatalogEntries)
	if err != nil {
		return fmt.Errorf("seed: could not count catalog entries: %w", err)
	}
	if total > 0 {
		return nil // already seeded
	}

	logger.Info("seed: catalog is empty, inserting sample price list", zap.Int("entries", len(seedCatalog)))

	return app.RunInTransaction(func(txApp core.App) error {
		for _, d := range seedCatalog {
			r := core.NewRecord(col)
			r.Set("product", d.product)
			r.Set("description", d.description)
			r.Set("pack", d.pack)
			r.Set("cut_off", d.cutOff)
			r.Set("base_usd_finished", d.usdFinished)
			r.Set("base_rmb_finished", d.rmbFinished)
			r.Set("base_usd_bulk", d.usdBulk)
			r.Set("base_rmb_bulk", d.rmbBulk)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: save %q: %w", d.product, err)
			}
		}
		return nil
	})
}
