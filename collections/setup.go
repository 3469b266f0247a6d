// Package collections defines the PocketBase schema of the quotation desk
// and its development seed data.
package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
)

// Collection names. They mirror the constants in services.
const (
	CatalogEntries = "catalog_entries"
	Quotations     = "quotations"
	QuotationItems = "quotation_items"
)

// Setup programmatically creates/ensures the catalog_entries, quotations and
// quotation_items collections exist. Money fields are text so decimal
// values are stored exactly.
func Setup(app core.App, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	_, err := ensureCollection(app, logger, CatalogEntries, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "product", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.TextField{Name: "pack"})
		c.Fields.Add(&core.TextField{Name: "cut_off"})
		c.Fields.Add(&core.TextField{Name: "base_usd_finished", Required: true})
		c.Fields.Add(&core.TextField{Name: "base_rmb_finished"})
		c.Fields.Add(&core.TextField{Name: "base_usd_bulk"})
		c.Fields.Add(&core.TextField{Name: "base_rmb_bulk"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_catalog_entries_product", false, "product", "")
	})
	if err != nil {
		return err
	}

	quotations, err := ensureCollection(app, logger, Quotations, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "owner", Required: true})
		c.Fields.Add(&core.TextField{Name: "customer_name"})
		c.Fields.Add(&core.TextField{Name: "quotation_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "exchange_rate", Required: true})
		c.Fields.Add(&core.TextField{Name: "tax_rate", Required: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_quotations_number", true, "quotation_number", "")
		c.AddIndex("idx_quotations_owner", false, "owner", "")
	})
	if err != nil {
		return err
	}

	_, err = ensureCollection(app, logger, QuotationItems, func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quotation",
			Required:      true,
			CollectionId:  quotations.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true, OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "product", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.TextField{Name: "specimen"})
		c.Fields.Add(&core.TextField{Name: "format"})
		c.Fields.Add(&core.TextField{Name: "pack"})
		c.Fields.Add(&core.SelectField{
			Name:      "product_type",
			Required:  true,
			Values:    []string{"finished", "bulk"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true, OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "markup_percentage"})
		c.Fields.Add(&core.TextField{Name: "base_usd_finished"})
		c.Fields.Add(&core.TextField{Name: "base_rmb_finished"})
		c.Fields.Add(&core.TextField{Name: "base_usd_bulk"})
		c.Fields.Add(&core.TextField{Name: "base_rmb_bulk"})
		c.Fields.Add(&core.TextField{Name: "final_usd_finished"})
		c.Fields.Add(&core.TextField{Name: "final_rmb_finished"})
		c.Fields.Add(&core.TextField{Name: "final_usd_bulk"})
		c.Fields.Add(&core.TextField{Name: "final_rmb_bulk"})
		c.AddIndex("idx_quotation_items_order", false, "quotation, sort_order", "")
	})
	return err
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, logger *zap.Logger, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		logger.Debug("collection already exists, skipping creation", zap.String("collection", name))
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	logger.Info("created collection", zap.String("collection", name), zap.String("id", collection.Id))
	return collection, nil
}
